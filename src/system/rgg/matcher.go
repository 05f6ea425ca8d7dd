package rgg

import (
	"github.com/voodooEntity/regrow/src/system/archivist"
	"github.com/voodooEntity/regrow/src/system/dirtygraph"
)

// MatchingState enumerates, lazily and exhaustively, every way to map each
// pattern node to a distinct graph node such that every pattern node's
// predicate matches and every pattern edge corresponds to an actual edge in
// the live graph.
//
// The search is index-based chronological backtracking over a snapshot of
// the graph's node ids taken at construction: pattern nodes are tried in
// declaration order, candidates in ascending id order. Each yielded mapping
// is an independent value. Once exhausted, the matcher permanently reports
// no more solutions; it is not restartable.
type MatchingState struct {
	graph *Graph
	rule  *Rule
	log   *archivist.Archivist
	// snapshot of graph node ids in ascending order
	snapshot []dirtygraph.ID
	// bindings built incrementally, pattern id -> graph id
	mapping Mapping
	// index into the pattern's node list
	cursor int
	// per cursor level: snapshot index to resume scanning from
	resume    []int
	exhausted bool
}

func newMatchingState(rule *Rule, graph *Graph, log *archivist.Archivist) *MatchingState {
	return &MatchingState{
		graph:    graph,
		rule:     rule,
		log:      log,
		snapshot: graph.Dirty.Nodes(),
		mapping:  make(Mapping),
		cursor:   0,
		resume:   make([]int, len(rule.From.Nodes)),
	}
}

// Next returns the next valid mapping, or false when the search space is
// exhausted. Exhaustion is permanent.
func (m *MatchingState) Next() (Mapping, bool) {
	if m.exhausted {
		return nil, false
	}
	nodes := m.rule.From.Nodes
	for {
		if m.cursor == len(nodes) {
			// full candidate mapping, verify the pattern edges
			verified := m.checkEdges()
			var solution Mapping
			if verified {
				solution = m.mapping.Clone()
			}
			// retreat one level either way so the search resumes with the
			// last level's next candidate
			m.retreat()
			if verified {
				m.log.Debug(archivist.DEBUG_LEVEL_TRACE, "matcher solution", solution)
				return solution, true
			}
			if m.exhausted {
				return nil, false
			}
			continue
		}

		pattern := &nodes[m.cursor]
		if m.scan(pattern) {
			continue
		}

		// scan exhausted at this level
		m.resume[m.cursor] = 0
		if m.cursor == 0 {
			m.log.Debug(archivist.DEBUG_LEVEL_TRACE, "matcher exhausted")
			m.exhausted = true
			return nil, false
		}
		m.cursor--
		delete(m.mapping, nodes[m.cursor].ID)
	}
}

// scan looks for the next candidate for the pattern node at the current
// cursor level, binding the first graph node that satisfies the predicate
// and is not already bound at another level.
func (m *MatchingState) scan(pattern *FromNode) bool {
	for i := m.resume[m.cursor]; i < len(m.snapshot); i++ {
		graphID := m.snapshot[i]
		if m.isBound(graphID) {
			continue
		}
		node, ok := m.graph.Values[graphID]
		if !ok {
			continue
		}
		if !pattern.Match(node, m.rule.MatchAttributes) {
			continue
		}
		m.log.Debug(archivist.DEBUG_LEVEL_TRACE, "matcher tentative bind", pattern.ID, graphID)
		m.mapping[pattern.ID] = graphID
		m.resume[m.cursor] = i + 1
		m.cursor++
		return true
	}
	return false
}

func (m *MatchingState) isBound(graphID dirtygraph.ID) bool {
	for _, bound := range m.mapping {
		if bound == graphID {
			return true
		}
	}
	return false
}

// checkEdges verifies every pattern edge against the live graph through the
// mapped graph ids.
func (m *MatchingState) checkEdges() bool {
	for _, edge := range m.rule.From.Edges {
		from, okFrom := m.mapping[edge[0]]
		to, okTo := m.mapping[edge[1]]
		if !okFrom || !okTo {
			m.log.Warning("matcher: pattern edge references unbound node", edge)
			return false
		}
		if !m.graph.Dirty.HasEdge(from, to) {
			m.log.Debug(archivist.DEBUG_LEVEL_TRACE, "matcher edge check failed", edge, from, to)
			return false
		}
	}
	return true
}

// retreat unbinds the deepest bound level and steps the cursor back to it;
// stepping back past the first level ends the search.
func (m *MatchingState) retreat() {
	m.cursor--
	if m.cursor < 0 {
		m.exhausted = true
		return
	}
	delete(m.mapping, m.rule.From.Nodes[m.cursor].ID)
}
