package rgg

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/voodooEntity/regrow/src/system/dirtygraph"
)

// triangle builds three pairwise connected nodes a, b, c.
func triangle(t *testing.T) (*Graph, dirtygraph.ID, dirtygraph.ID, dirtygraph.ID) {
	t.Helper()
	g := NewGraph()
	a := g.InsertNodeWith(NewNode("a"))
	b := g.InsertNodeWith(NewNode("b"))
	c := g.InsertNodeWith(NewNode("c"))
	require.NoError(t, g.Dirty.AddEdge(a, b))
	require.NoError(t, g.Dirty.AddEdge(b, c))
	require.NoError(t, g.Dirty.AddEdge(a, c))
	return g, a, b, c
}

func Test_Delete_RemovesTargetAndMappingEntry(t *testing.T) {
	g, a, _, _ := triangle(t)
	mapping := Mapping{0: a}
	procedure := &DeleteProcedure{Target: 0}

	require.True(t, procedure.TargetsExist(g, mapping))
	result, err := procedure.Apply(g, mapping, testLogger())
	require.NoError(t, err)
	require.Equal(t, ApplyRemoved, result.Kind)
	require.Equal(t, []dirtygraph.ID{a}, result.Removed)
	require.Equal(t, 2, g.Order())
	require.False(t, g.Dirty.HasNode(a))
	_, stillMapped := mapping[0]
	require.False(t, stillMapped)
}

func Test_Delete_AbsentTargetFailsWithoutSideEffects(t *testing.T) {
	g, a, _, _ := triangle(t)
	g.RemoveNode(a)
	mapping := Mapping{0: a}
	procedure := &DeleteProcedure{Target: 0}

	require.False(t, procedure.TargetsExist(g, mapping))
	result, err := procedure.Apply(g, mapping, testLogger())
	require.NoError(t, err)
	require.Equal(t, ApplyFailed, result.Kind)
	require.Equal(t, 2, g.Order())
}

func Test_Replace_OverwritesNodeInPlace(t *testing.T) {
	g, a, b, _ := triangle(t)
	node := g.Values[a]
	node.Values["v"] = NewFloat(1)
	g.Values[a] = node

	procedure := &ReplaceProcedure{
		Target:      0,
		Replacement: ToNode{Name: "renamed", Values: map[string]string{"v": "v + 1"}},
	}
	result, err := procedure.Apply(g, Mapping{0: a}, testLogger())
	require.NoError(t, err)
	require.Equal(t, ApplyModified, result.Kind)
	require.Equal(t, a, result.Modified)

	require.Equal(t, "renamed", g.Values[a].Name)
	require.Equal(t, NewFloat(2), g.Values[a].Values["v"])
	// structure untouched
	require.Equal(t, 3, g.Order())
	require.True(t, g.Dirty.HasEdge(a, b))
}

func Test_Replace_EvaluationErrorPropagates(t *testing.T) {
	g, a, _, _ := triangle(t)
	procedure := &ReplaceProcedure{
		Target:      0,
		Replacement: ToNode{Name: "a", Values: map[string]string{"v": "bogus +"}},
	}
	result, err := procedure.Apply(g, Mapping{0: a}, testLogger())
	require.Error(t, err)
	require.Equal(t, ApplyFailed, result.Kind)
}

func Test_Add_WiresNeighborsAndAncestor(t *testing.T) {
	g, a, b, _ := triangle(t)
	node := g.Values[a]
	node.Values["dir"] = NewFloat(5)
	g.Values[a] = node

	procedure := &AddProcedure{
		Neighbors: []PatternID{0, 1},
		NewNode:   ToNode{Name: "fresh", Values: map[string]string{"dir": "dir + 1"}},
	}
	result, err := procedure.Apply(g, Mapping{0: a, 1: b}, testLogger())
	require.NoError(t, err)
	require.Equal(t, ApplyAdded, result.Kind)

	added := result.Added
	require.Equal(t, 4, g.Order())
	require.True(t, g.Dirty.HasEdge(added, a))
	require.True(t, g.Dirty.HasEdge(added, b))

	// the first neighbor is the ancestor and the evaluation base
	parent, ok := g.Dirty.GetAncestor(added)
	require.True(t, ok)
	require.Equal(t, a, parent)
	require.Equal(t, "fresh", g.Values[added].Name)
	require.Equal(t, NewFloat(6), g.Values[added].Values["dir"])
}

func Test_Add_UnresolvedNeighborFails(t *testing.T) {
	g, a, _, _ := triangle(t)
	procedure := &AddProcedure{
		Neighbors: []PatternID{0, 7},
		NewNode:   ToNode{Name: "fresh"},
	}
	require.False(t, procedure.TargetsExist(g, Mapping{0: a}))

	result, err := procedure.Apply(g, Mapping{0: a}, testLogger())
	require.NoError(t, err)
	require.Equal(t, ApplyFailed, result.Kind)
	// fail fast leaves the allocated node and the edges wired so far in place
	require.Equal(t, 4, g.Order())
}

func Test_Merge_CollapsesIntoSurvivor(t *testing.T) {
	g, a, b, c := triangle(t)
	d := g.InsertNodeWith(NewNode("d"))
	require.NoError(t, g.Dirty.AddEdge(b, d))
	child := g.InsertNodeWith(NewNode("child"))
	g.Dirty.AddAncestor(child, b)

	mapping := Mapping{0: a, 1: b}
	procedure := &MergeProcedure{Targets: []PatternID{0, 1}, FinalNode: 0}
	require.True(t, procedure.TargetsExist(g, mapping))

	result, err := procedure.Apply(g, mapping, testLogger())
	require.NoError(t, err)
	require.Equal(t, ApplyRemoved, result.Kind)
	require.Equal(t, []dirtygraph.ID{b}, result.Removed)

	require.False(t, g.Dirty.HasNode(b))
	// survivor inherits the union of the merged nodes' neighbors
	require.True(t, g.Dirty.HasEdge(a, c))
	require.True(t, g.Dirty.HasEdge(a, d))
	// overlay children of removed targets reparent to the survivor
	parent, ok := g.Dirty.GetAncestor(child)
	require.True(t, ok)
	require.Equal(t, a, parent)

	_, stillMapped := mapping[1]
	require.False(t, stillMapped)
}

func Test_Merge_InheritsFirstAncestorAmongTargets(t *testing.T) {
	g := NewGraph()
	root := g.InsertNodeWith(NewNode("root"))
	a := g.InsertNodeWith(NewNode("a"))
	b := g.InsertNodeWith(NewNode("b"))
	require.NoError(t, g.Dirty.AddEdge(a, b))
	g.Dirty.AddAncestor(b, root)

	procedure := &MergeProcedure{Targets: []PatternID{0, 1}, FinalNode: 0}
	_, err := procedure.Apply(g, Mapping{0: a, 1: b}, testLogger())
	require.NoError(t, err)

	parent, ok := g.Dirty.GetAncestor(a)
	require.True(t, ok)
	require.Equal(t, root, parent)
}

func Test_Merge_IntoOwnOverlayChildNeverSelfParents(t *testing.T) {
	g := NewGraph()
	parent := g.InsertNodeWith(NewNode("parent"))
	child := g.InsertNodeWith(NewNode("child"))
	require.NoError(t, g.Dirty.AddEdge(parent, child))
	g.Dirty.AddAncestor(child, parent)

	// the surviving node is an overlay child of the node merged away
	procedure := &MergeProcedure{Targets: []PatternID{0, 1}, FinalNode: 1}
	result, err := procedure.Apply(g, Mapping{0: parent, 1: child}, testLogger())
	require.NoError(t, err)
	require.Equal(t, []dirtygraph.ID{parent}, result.Removed)

	require.False(t, g.Dirty.HasNode(parent))
	ancestor, ok := g.Dirty.GetAncestor(child)
	require.False(t, ok, "survivor must not inherit itself as ancestor, got %d", ancestor)
	require.NotContains(t, g.Dirty.GetChildren(child), child)
}

func Test_Merge_IntoOwnChildInheritsLiveAncestor(t *testing.T) {
	g := NewGraph()
	root := g.InsertNodeWith(NewNode("root"))
	parent := g.InsertNodeWith(NewNode("parent"))
	child := g.InsertNodeWith(NewNode("child"))
	require.NoError(t, g.Dirty.AddEdge(parent, child))
	g.Dirty.AddAncestor(parent, root)
	g.Dirty.AddAncestor(child, parent)

	procedure := &MergeProcedure{Targets: []PatternID{0, 1}, FinalNode: 1}
	_, err := procedure.Apply(g, Mapping{0: parent, 1: child}, testLogger())
	require.NoError(t, err)

	ancestor, ok := g.Dirty.GetAncestor(child)
	require.True(t, ok)
	require.Equal(t, root, ancestor)
	require.NotContains(t, g.Dirty.GetChildren(child), child)
}

func Test_Merge_MissingTargetFailsBeforeMutating(t *testing.T) {
	g, a, b, _ := triangle(t)
	g.RemoveNode(b)

	procedure := &MergeProcedure{Targets: []PatternID{0, 1}, FinalNode: 0}
	mapping := Mapping{0: a, 1: b}
	require.False(t, procedure.TargetsExist(g, mapping))

	result, err := procedure.Apply(g, mapping, testLogger())
	require.NoError(t, err)
	require.Equal(t, ApplyFailed, result.Kind)
	require.Equal(t, 2, g.Order())
}
