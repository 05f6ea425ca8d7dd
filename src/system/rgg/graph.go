package rgg

import (
	"fmt"
	"strings"

	"github.com/voodooEntity/regrow/src/system/dirtygraph"
)

// Graph is the unit of state the engine operates on: one dirtygraph.Graph
// holding structure plus one id -> Node map holding attributes. The two are
// kept in lock-step: every id present in the structure has exactly one Node
// value and vice versa. Only whole-node operations mutate the pair.
type Graph struct {
	Dirty  *dirtygraph.Graph
	Values map[dirtygraph.ID]Node
}

func NewGraph() *Graph {
	return &Graph{
		Dirty:  dirtygraph.New(),
		Values: make(map[dirtygraph.ID]Node),
	}
}

// InsertNode creates a graph node carrying an empty Node value.
func (g *Graph) InsertNode() dirtygraph.ID {
	return g.InsertNodeWith(NewNode(""))
}

// InsertNodeWith creates a graph node and stores its attributes atomically.
func (g *Graph) InsertNodeWith(node Node) dirtygraph.ID {
	id := g.Dirty.AddNode()
	g.Values[id] = node
	return id
}

// InsertNodeWithID creates a graph node under the given id.
func (g *Graph) InsertNodeWithID(id dirtygraph.ID, node Node) error {
	if err := g.Dirty.AddNodeWith(id); err != nil {
		return err
	}
	g.Values[id] = node
	return nil
}

// RemoveNode removes the graph node including all incident edges and drops
// its attributes as one operation. Returns the number of nodes removed.
func (g *Graph) RemoveNode(id dirtygraph.ID) int {
	removed := g.Dirty.RemoveNode(id)
	delete(g.Values, id)
	return removed
}

func (g *Graph) Order() int {
	return g.Dirty.Order()
}

func (g *Graph) Neighbors(id dirtygraph.ID) ([]dirtygraph.ID, error) {
	return g.Dirty.Neighbors(id)
}

// Dump renders the graph as a deterministic DOT-like string: one line per
// node labeled by name, one line per edge, hierarchy overlay edges rendered
// dashed. Intended for diagnostics and tests.
func (g *Graph) Dump() string {
	var sb strings.Builder
	sb.WriteString("graph rgg {\n")
	for _, id := range g.Dirty.Nodes() {
		sb.WriteString(fmt.Sprintf("  %d [label=%q];\n", id, g.Values[id].Name))
	}
	for _, edge := range g.Dirty.Edges() {
		sb.WriteString(fmt.Sprintf("  %d -- %d;\n", edge.A, edge.B))
	}
	for _, id := range g.Dirty.Nodes() {
		if parent, ok := g.Dirty.GetAncestor(id); ok {
			sb.WriteString(fmt.Sprintf("  %d -- %d [style=dashed];\n", parent, id))
		}
	}
	sb.WriteString("}\n")
	return sb.String()
}
