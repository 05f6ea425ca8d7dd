package rgg

import (
	"fmt"

	"github.com/voodooEntity/regrow/src/system/dirtygraph"
)

// PatternID identifies a node inside a rule's pattern. Pattern ids live in
// their own namespace, they never reference graph ids directly; a Mapping
// bridges the two.
type PatternID int

// Mapping assigns a graph node to every pattern node of a match.
type Mapping map[PatternID]dirtygraph.ID

// Clone returns an independent copy of the mapping.
func (m Mapping) Clone() Mapping {
	clone := make(Mapping, len(m))
	for patternID, graphID := range m {
		clone[patternID] = graphID
	}
	return clone
}

// FromNode identifies one node to match against. An empty Name matches any
// node name. Values constrain attributes, but are only consulted when the
// enclosing rule sets MatchAttributes (name-only matching is the default).
type FromNode struct {
	ID     PatternID
	Name   string
	Values map[string]Condition
}

// Match checks whether the pattern node can match the provided node.
func (f *FromNode) Match(node Node, checkAttributes bool) bool {
	if f.Name != "" && f.Name != node.Name {
		return false
	}
	if checkAttributes {
		for attribute, condition := range f.Values {
			value, ok := node.Values[attribute]
			if !ok {
				return false
			}
			if !condition.Check(value) {
				return false
			}
		}
	}
	return true
}

// NodeSet is a rule's left-hand side: pattern nodes in declaration order
// plus the edges required between them. Edge endpoints reference FromNode
// ids, not graph ids.
type NodeSet struct {
	Nodes []FromNode
	Edges [][2]PatternID
}

// Validate checks that pattern ids are unique and that every edge endpoint
// references a declared pattern node. It builds a throwaway dirtygraph from
// the pattern, so the same duplicate/missing checks guard both properties.
func (ns *NodeSet) Validate() error {
	pattern := dirtygraph.New()
	for _, node := range ns.Nodes {
		if err := pattern.AddNodeWith(dirtygraph.ID(node.ID)); err != nil {
			return fmt.Errorf("pattern node %d: %w", node.ID, err)
		}
	}
	for _, edge := range ns.Edges {
		if err := pattern.AddEdge(dirtygraph.ID(edge[0]), dirtygraph.ID(edge[1])); err != nil {
			return fmt.Errorf("pattern edge (%d,%d): %w", edge[0], edge[1], err)
		}
	}
	return nil
}
