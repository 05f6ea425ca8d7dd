package grower

import (
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/voodooEntity/regrow/src/system/archivist"
	"github.com/voodooEntity/regrow/src/system/rgg"
	"github.com/voodooEntity/regrow/src/system/ruleBuilder"
)

func testLogger() *archivist.Archivist {
	return archivist.New(&archivist.Config{
		Logger:   log.New(io.Discard, "", 0),
		LogLevel: archivist.LEVEL_ERROR,
	})
}

func seededGraph(t *testing.T) *rgg.Graph {
	t.Helper()
	graph := rgg.NewGraph()
	seed := rgg.NewNode("stem")
	seed.Values["dir"] = rgg.NewFloat(0)
	graph.InsertNodeWith(seed)
	return graph
}

func extendRule(t *testing.T) rgg.Rule {
	t.Helper()
	rule, err := ruleBuilder.NewRule().
		From(ruleBuilder.NewPatternNode(0).SetName("stem")).
		Add([]int{0}, ruleBuilder.NewTemplate("stem").Set("dir", "dir + 1")).
		Build()
	require.NoError(t, err)
	return rule
}

func Test_Tick_AppliesRulesAndAdvancesGeneration(t *testing.T) {
	graph := seededGraph(t)
	grower := New(graph, []rgg.Rule{extendRule(t)}, testLogger())

	before := graph.Dirty.Generation()
	result, err := grower.Tick()
	require.NoError(t, err)
	require.Len(t, result.Added, 1)
	require.Equal(t, 2, graph.Order())
	require.Equal(t, before+1, graph.Dirty.Generation())
	require.Equal(t, 1, grower.Ticks())
}

func Test_Tick_InvokesTickFunctionBeforeGenerationAdvance(t *testing.T) {
	graph := seededGraph(t)
	grower := New(graph, []rgg.Rule{extendRule(t)}, testLogger())

	var dirtyDuringTick int
	tickFn := func(g *rgg.Graph, l *archivist.Archivist) {
		dirtyDuringTick = len(grower.DirtyNodes())
	}
	grower.RegisterTickFunction(&tickFn)

	_, err := grower.Tick()
	require.NoError(t, err)
	// the freshly added stem is still stamped current inside the tick
	// function, the advance happens afterwards
	require.Equal(t, 2, dirtyDuringTick)
	require.Empty(t, grower.DirtyNodes())
}

func Test_Grow_RunsForMaxTicks(t *testing.T) {
	graph := seededGraph(t)
	grower := New(graph, []rgg.Rule{extendRule(t)}, testLogger())

	results, err := grower.Grow(3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	// each tick extends every stem found in its snapshot: 1 -> 2 -> 4 -> 8
	require.Equal(t, 8, graph.Order())
}

func Test_Grow_StopsEarlyWhenStable(t *testing.T) {
	graph := seededGraph(t)
	noMatch, err := ruleBuilder.NewRule().
		From(ruleBuilder.NewPatternNode(0).SetName("leaf")).
		Delete(0).
		Build()
	require.NoError(t, err)

	grower := New(graph, []rgg.Rule{noMatch}, testLogger())
	results, err := grower.Grow(5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, 1, grower.Ticks())
	require.Equal(t, 1, graph.Order())
}

func Test_Tick_RuleOrderIsApplicationOrder(t *testing.T) {
	graph := seededGraph(t)
	rename, err := ruleBuilder.NewRule().
		From(ruleBuilder.NewPatternNode(0).SetName("stem")).
		Replace(0, ruleBuilder.NewTemplate("leaf").Set("dir", "dir")).
		Build()
	require.NoError(t, err)
	pruneLeaf, err := ruleBuilder.NewRule().
		From(ruleBuilder.NewPatternNode(0).SetName("leaf")).
		Delete(0).
		Build()
	require.NoError(t, err)

	grower := New(graph, []rgg.Rule{rename, pruneLeaf}, testLogger())
	result, err := grower.Tick()
	require.NoError(t, err)
	// the second rule sees the first rule's rewrite within the same tick
	require.Len(t, result.Modified, 1)
	require.Len(t, result.Removed, 1)
	require.Equal(t, 0, graph.Order())
}
