package rgg

import (
	"github.com/voodooEntity/regrow/src/system/archivist"
	"github.com/voodooEntity/regrow/src/system/dirtygraph"
)

// Rule is an immutable, reusable rewrite template: a pattern to find plus
// the procedures to run against every occurrence. Applying a rule never
// mutates the rule itself.
type Rule struct {
	From NodeSet
	To   []Procedure
	// MatchAttributes enables evaluation of pattern attribute Conditions
	// during matching. Off by default: name-only matching.
	MatchAttributes bool
}

// Matches returns a fresh matcher enumerating every mapping of the rule's
// pattern into the graph.
func (r *Rule) Matches(g *Graph, log *archivist.Archivist) *MatchingState {
	return newMatchingState(r, g, log)
}

// RuleResult aggregates the per-procedure outcomes of one rule application
// pass into three id lists. Ids reference nodes that existed in the graph
// at the moment the result was produced.
type RuleResult struct {
	Removed  []dirtygraph.ID
	Added    []dirtygraph.ID
	Modified []dirtygraph.ID
}

func (r *RuleResult) fold(result ApplyResult) {
	switch result.Kind {
	case ApplyRemoved:
		r.Removed = append(r.Removed, result.Removed...)
	case ApplyAdded:
		r.Added = append(r.Added, result.Added)
	case ApplyModified:
		r.Modified = append(r.Modified, result.Modified)
	}
}

// Apply runs one full rule application pass: every mapping is collected
// before any mutation, so each match reflects the pre-mutation graph and
// the batch outcome does not depend on discovery order. A match whose
// procedure prerequisites were consumed by an earlier match in the same
// batch is skipped whole, never partially applied. Procedure failures are
// logged and folded as Failed; only expression-evaluation errors abort.
func (r *Rule) Apply(g *Graph, log *archivist.Archivist) (RuleResult, error) {
	result := RuleResult{}

	matcher := r.Matches(g, log)
	var mappings []Mapping
	for {
		mapping, ok := matcher.Next()
		if !ok {
			break
		}
		mappings = append(mappings, mapping)
	}
	log.Debug(archivist.DEBUG_LEVEL_TRACE, "rule apply collected mappings", len(mappings))

	for _, mapping := range mappings {
		if !r.targetsStillExist(g, mapping) {
			log.Debug(archivist.DEBUG_LEVEL_TRACE, "rule apply skipping stale match", mapping)
			continue
		}
		for _, procedure := range r.To {
			applied, err := procedure.Apply(g, mapping, log)
			if err != nil {
				return result, err
			}
			result.fold(applied)
		}
	}
	return result, nil
}

func (r *Rule) targetsStillExist(g *Graph, mapping Mapping) bool {
	for _, procedure := range r.To {
		if !procedure.TargetsExist(g, mapping) {
			return false
		}
	}
	return true
}
