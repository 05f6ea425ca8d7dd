package rgg

import (
	"github.com/voodooEntity/regrow/src/system/archivist"
	"github.com/voodooEntity/regrow/src/system/dirtygraph"
)

// ApplyKind tags the outcome of one procedure application.
type ApplyKind uint8

const (
	ApplyNone ApplyKind = iota
	ApplyRemoved
	ApplyAdded
	ApplyModified
	ApplyFailed
)

// ApplyResult is the per-procedure outcome folded into a RuleResult.
type ApplyResult struct {
	Kind     ApplyKind
	Removed  []dirtygraph.ID
	Added    dirtygraph.ID
	Modified dirtygraph.ID
}

func resultRemoved(ids ...dirtygraph.ID) ApplyResult {
	return ApplyResult{Kind: ApplyRemoved, Removed: ids}
}

func resultAdded(id dirtygraph.ID) ApplyResult {
	return ApplyResult{Kind: ApplyAdded, Added: id}
}

func resultModified(id dirtygraph.ID) ApplyResult {
	return ApplyResult{Kind: ApplyModified, Modified: id}
}

func resultFailed() ApplyResult {
	return ApplyResult{Kind: ApplyFailed}
}

// Procedure is one atomic graph mutation a rule executes per match.
//
// TargetsExist reports whether every pattern id the procedure references is
// present in the mapping AND still resolves to a live graph node. Mappings
// are independent values per match, so the existence check is what lets a
// batch detect that an earlier match already consumed a shared node.
//
// Apply mutates the graph. A Failed result is non-fatal (logged, batch
// continues); a returned error is an expression-evaluation failure and
// aborts the enclosing rule application.
type Procedure interface {
	TargetsExist(g *Graph, mapping Mapping) bool
	Apply(g *Graph, mapping Mapping, log *archivist.Archivist) (ApplyResult, error)
}

func targetExists(g *Graph, mapping Mapping, target PatternID) bool {
	id, ok := mapping[target]
	if !ok {
		return false
	}
	return g.Dirty.HasNode(id)
}

// DeleteProcedure removes the mapped target node.
type DeleteProcedure struct {
	Target PatternID
}

func (p *DeleteProcedure) TargetsExist(g *Graph, mapping Mapping) bool {
	return targetExists(g, mapping, p.Target)
}

func (p *DeleteProcedure) Apply(g *Graph, mapping Mapping, log *archivist.Archivist) (ApplyResult, error) {
	id, ok := mapping[p.Target]
	if !ok {
		log.Warning("delete: target not in mapping", p.Target)
		return resultFailed(), nil
	}
	if g.RemoveNode(id) == 0 {
		log.Warning("delete: target node already gone", id)
		return resultFailed(), nil
	}
	delete(mapping, p.Target)
	return resultRemoved(id), nil
}

// ReplaceProcedure overwrites the target node's name and attributes in
// place; graph and edge structure stay untouched. The replacement template
// is evaluated against the node currently stored at the target.
type ReplaceProcedure struct {
	Target      PatternID
	Replacement ToNode
}

func (p *ReplaceProcedure) TargetsExist(g *Graph, mapping Mapping) bool {
	return targetExists(g, mapping, p.Target)
}

func (p *ReplaceProcedure) Apply(g *Graph, mapping Mapping, log *archivist.Archivist) (ApplyResult, error) {
	id, ok := mapping[p.Target]
	if !ok {
		log.Warning("replace: target not in mapping", p.Target)
		return resultFailed(), nil
	}
	base, ok := g.Values[id]
	if !ok {
		log.Warning("replace: target node does not exist", id)
		return resultFailed(), nil
	}
	replacement, err := p.Replacement.Eval(&base)
	if err != nil {
		return resultFailed(), err
	}
	g.Values[id] = replacement
	return resultModified(id), nil
}

// AddProcedure allocates a new node and connects it to every resolved
// neighbor. The first listed neighbor becomes the new node's ancestor in
// the overlay forest and serves as the evaluation context for the node
// template. An unresolvable neighbor fails the procedure; the node and the
// edges added up to that point remain (fail fast, log, stop).
type AddProcedure struct {
	Neighbors []PatternID
	NewNode   ToNode
}

func (p *AddProcedure) TargetsExist(g *Graph, mapping Mapping) bool {
	for _, neighbor := range p.Neighbors {
		if !targetExists(g, mapping, neighbor) {
			return false
		}
	}
	return true
}

func (p *AddProcedure) Apply(g *Graph, mapping Mapping, log *archivist.Archivist) (ApplyResult, error) {
	id := g.InsertNode()
	var ancestor *dirtygraph.ID
	for _, neighbor := range p.Neighbors {
		target, ok := mapping[neighbor]
		if !ok {
			log.Warning("add: could not find neighbor in mapping", neighbor)
			return resultFailed(), nil
		}
		if err := g.Dirty.AddEdge(id, target); err != nil {
			log.Warning("add: could not wire neighbor", neighbor, err)
			return resultFailed(), nil
		}
		if ancestor == nil {
			value := target
			ancestor = &value
			g.Dirty.AddAncestor(id, target)
		}
	}

	var base *Node
	if ancestor != nil {
		if node, ok := g.Values[*ancestor]; ok {
			clone := node.Clone()
			base = &clone
		}
	}
	node, err := p.NewNode.Eval(base)
	if err != nil {
		return resultFailed(), err
	}
	g.Values[id] = node
	return resultAdded(id), nil
}

// MergeProcedure collapses several mapped targets into one survivor. The
// survivor inherits the union of the targets' neighbors, the first ancestor
// found among the targets, and the overlay children of every removed
// target.
type MergeProcedure struct {
	Targets   []PatternID
	FinalNode PatternID
}

func (p *MergeProcedure) TargetsExist(g *Graph, mapping Mapping) bool {
	for _, target := range p.Targets {
		if !targetExists(g, mapping, target) {
			return false
		}
	}
	return targetExists(g, mapping, p.FinalNode)
}

func (p *MergeProcedure) Apply(g *Graph, mapping Mapping, log *archivist.Archivist) (ApplyResult, error) {
	// resolve everything up front, the merge must not partially apply on a
	// bad mapping
	resolved := make(map[PatternID]dirtygraph.ID, len(p.Targets))
	for _, target := range p.Targets {
		id, ok := mapping[target]
		if !ok || !g.Dirty.HasNode(id) {
			log.Warning("merge: target does not exist", target)
			return resultFailed(), nil
		}
		resolved[target] = id
	}
	survivor, ok := mapping[p.FinalNode]
	if !ok || !g.Dirty.HasNode(survivor) {
		log.Warning("merge: final node does not exist", p.FinalNode)
		return resultFailed(), nil
	}

	// union of all neighbors plus the first ancestor found among targets
	neighborSet := make(map[dirtygraph.ID]struct{})
	var ancestor *dirtygraph.ID
	for _, target := range p.Targets {
		id := resolved[target]
		neighbors, err := g.Dirty.Neighbors(id)
		if err != nil {
			log.Warning("merge: could not read neighbors", id, err)
			return resultFailed(), nil
		}
		for _, neighbor := range neighbors {
			neighborSet[neighbor] = struct{}{}
		}
		if ancestor == nil {
			if parent, found := g.Dirty.GetAncestor(id); found {
				value := parent
				ancestor = &value
			}
		}
	}

	// remove everything but the survivor, reparenting overlay children first
	removed := make([]dirtygraph.ID, 0, len(p.Targets))
	for _, target := range p.Targets {
		if target == p.FinalNode {
			continue
		}
		id := resolved[target]
		// when the survivor is a child of the node being removed it must be
		// detached first, otherwise the reparenting below would make it its
		// own ancestor
		if parent, found := g.Dirty.GetAncestor(survivor); found && parent == id {
			g.Dirty.RemoveAncestor(survivor)
		}
		g.Dirty.RemoveChildren(id, &survivor)
		g.RemoveNode(id)
		delete(mapping, target)
		removed = append(removed, id)
	}

	// re-add the collected neighbor edges from the survivor; neighbors that
	// were merged away (or the survivor itself) would break the edge
	// endpoint invariant
	for neighbor := range neighborSet {
		if neighbor == survivor || !g.Dirty.HasNode(neighbor) {
			continue
		}
		if err := g.Dirty.AddEdge(survivor, neighbor); err != nil {
			log.Warning("merge: could not re-add edge", survivor, neighbor, err)
		}
	}
	if ancestor != nil && g.Dirty.HasNode(*ancestor) && *ancestor != survivor {
		g.Dirty.AddAncestor(survivor, *ancestor)
	}
	return resultRemoved(removed...), nil
}
