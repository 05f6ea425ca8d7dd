package grower

import (
	"github.com/voodooEntity/regrow/src/system/archivist"
	"github.com/voodooEntity/regrow/src/system/dirtygraph"
	"github.com/voodooEntity/regrow/src/system/rgg"
)

// Grower drives the growth loop over one graph: per tick it applies every
// registered rule once, in order, then advances the graph's generation. The
// engine itself never gates on dirtiness; the grower is the caller-side
// policy layer that owns the generation lifecycle.
type Grower struct {
	graph        *rgg.Graph
	rules        []rgg.Rule
	log          *archivist.Archivist
	tickFunction *func(graph *rgg.Graph, logger *archivist.Archivist)
	ticks        int
}

func New(graph *rgg.Graph, rules []rgg.Rule, logger *archivist.Archivist) *Grower {
	logger.Info("Creating grower")
	return &Grower{
		graph: graph,
		rules: rules,
		log:   logger,
	}
}

// RegisterTickFunction registers a function invoked after every completed
// tick, before the generation advances.
func (g *Grower) RegisterTickFunction(tickFn *func(graph *rgg.Graph, logger *archivist.Archivist)) {
	g.tickFunction = tickFn
}

// Ticks returns the number of completed ticks.
func (g *Grower) Ticks() int {
	return g.ticks
}

// Tick runs one full growth tick: every rule applied once against the
// graph, results aggregated, generation advanced afterwards.
func (g *Grower) Tick() (rgg.RuleResult, error) {
	aggregate := rgg.RuleResult{}
	for i := range g.rules {
		result, err := g.rules[i].Apply(g.graph, g.log)
		if err != nil {
			return aggregate, err
		}
		aggregate.Removed = append(aggregate.Removed, result.Removed...)
		aggregate.Added = append(aggregate.Added, result.Added...)
		aggregate.Modified = append(aggregate.Modified, result.Modified...)
	}
	g.log.Debug(archivist.DEBUG_LEVEL_TRACE, "grower tick done", len(aggregate.Added), len(aggregate.Removed), len(aggregate.Modified))

	if nil != g.tickFunction {
		(*g.tickFunction)(g.graph, g.log)
	}
	g.graph.Dirty.AdvanceGeneration()
	g.ticks++
	return aggregate, nil
}

// Grow ticks until maxTicks is reached or a tick leaves the graph
// untouched, whichever comes first. Returns the per-tick results.
func (g *Grower) Grow(maxTicks int) ([]rgg.RuleResult, error) {
	var results []rgg.RuleResult
	for i := 0; i < maxTicks; i++ {
		result, err := g.Tick()
		if err != nil {
			return results, err
		}
		results = append(results, result)
		if len(result.Added) == 0 && len(result.Removed) == 0 && len(result.Modified) == 0 {
			g.log.Info("Grower reached a stable graph, stopping early")
			break
		}
	}
	return results, nil
}

// DirtyNodes reports which nodes carry the current generation stamp, i.e.
// structure touched since the last generation advance.
func (g *Grower) DirtyNodes() []dirtygraph.ID {
	var dirty []dirtygraph.ID
	for _, id := range g.graph.Dirty.Nodes() {
		if g.graph.Dirty.NodeIsDirty(id) {
			dirty = append(dirty, id)
		}
	}
	return dirty
}
