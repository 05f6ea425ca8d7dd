package dirtygraph

import (
	"errors"
	"fmt"
	"sort"
)

// ID identifies a node in the graph. IDs are dense and allocated
// monotonically by AddNode.
type ID int

var (
	ErrMissingNode   = errors.New("missing node")
	ErrDuplicateNode = errors.New("duplicate node")
)

// Edge is an undirected edge stored in canonical form, A <= B.
type Edge struct {
	A ID
	B ID
}

func NewEdge(a, b ID) Edge {
	if a <= b {
		return Edge{A: a, B: b}
	}
	return Edge{A: b, B: a}
}

// Graph is an undirected graph over dense integer ids that additionally
// stamps every node and edge with the generation it was last touched in.
// The stamps allow a caller to tell freshly created structure apart from
// structure that predates the current growth tick; the graph itself never
// consults them.
//
// Independent of the symmetric edge set, the graph carries an
// ancestor/children overlay: a rooted forest in which every node has at
// most one parent. The overlay serves hierarchy queries only and may
// reference nodes with degree 0 in the main graph.
type Graph struct {
	nodes          map[ID]struct{}
	edges          map[Edge]struct{}
	adjacency      map[ID][]ID
	ancestors      map[ID]ID
	children       map[ID]map[ID]struct{}
	nodeGeneration map[ID]uint8
	edgeGeneration map[Edge]uint8
	nextNode       ID
	nextGeneration uint8
}

func New() *Graph {
	return &Graph{
		nodes:          make(map[ID]struct{}),
		edges:          make(map[Edge]struct{}),
		adjacency:      make(map[ID][]ID),
		ancestors:      make(map[ID]ID),
		children:       make(map[ID]map[ID]struct{}),
		nodeGeneration: make(map[ID]uint8),
		edgeGeneration: make(map[Edge]uint8),
		nextNode:       0,
		nextGeneration: 1,
	}
}

// AddNode creates a node under the next free id and returns it.
func (g *Graph) AddNode() ID {
	id := g.nextNode
	// cannot collide, nextNode is always past every explicitly added id
	_ = g.AddNodeWith(id)
	return id
}

// AddNodeWith creates a node under the given id.
func (g *Graph) AddNodeWith(id ID) error {
	if _, ok := g.nodes[id]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateNode, id)
	}
	g.nodes[id] = struct{}{}
	g.nodeGeneration[id] = g.nextGeneration
	g.adjacency[id] = []ID{}
	if id >= g.nextNode {
		g.nextNode = id + 1
	}
	return nil
}

// AddEdge inserts the undirected edge (a,b). Inserting an existing edge is
// a no-op on the edge set but still restamps its generation.
func (g *Graph) AddEdge(a, b ID) error {
	if _, ok := g.nodes[a]; !ok {
		return fmt.Errorf("%w: %d", ErrMissingNode, a)
	}
	if _, ok := g.nodes[b]; !ok {
		return fmt.Errorf("%w: %d", ErrMissingNode, b)
	}
	edge := NewEdge(a, b)
	if _, ok := g.edges[edge]; !ok {
		g.edges[edge] = struct{}{}
		g.adjacency[a] = append(g.adjacency[a], b)
		g.adjacency[b] = append(g.adjacency[b], a)
	}
	g.edgeGeneration[edge] = g.nextGeneration
	return nil
}

// RemoveNode removes all incident edges, then the node itself. Returns the
// number of nodes removed (0 if the node was absent); never fails.
func (g *Graph) RemoveNode(id ID) int {
	if _, ok := g.nodes[id]; !ok {
		return 0
	}
	g.RemoveEdgesWith(id)
	delete(g.adjacency, id)
	delete(g.nodeGeneration, id)
	delete(g.nodes, id)
	return 1
}

// RemoveEdge removes the undirected edge (a,b), returning 1 if it existed.
func (g *Graph) RemoveEdge(a, b ID) int {
	edge := NewEdge(a, b)
	if _, ok := g.edges[edge]; !ok {
		return 0
	}
	delete(g.edges, edge)
	delete(g.edgeGeneration, edge)
	g.adjacency[edge.A] = removeFromList(g.adjacency[edge.A], edge.B)
	g.adjacency[edge.B] = removeFromList(g.adjacency[edge.B], edge.A)
	return 1
}

// RemoveEdgesWith removes every edge incident to id, returning the count.
func (g *Graph) RemoveEdgesWith(id ID) int {
	removed := 0
	for _, neighbor := range append([]ID{}, g.adjacency[id]...) {
		removed += g.RemoveEdge(id, neighbor)
	}
	return removed
}

func removeFromList(list []ID, id ID) []ID {
	for i, val := range list {
		if val == id {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

func (g *Graph) HasNode(id ID) bool {
	_, ok := g.nodes[id]
	return ok
}

func (g *Graph) HasEdge(a, b ID) bool {
	_, ok := g.edges[NewEdge(a, b)]
	return ok
}

// Nodes returns a snapshot of all node ids in ascending order.
func (g *Graph) Nodes() []ID {
	ids := make([]ID, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Edges returns a snapshot of all edges in ascending canonical order.
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0, len(g.edges))
	for edge := range g.edges {
		edges = append(edges, edge)
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].A != edges[j].A {
			return edges[i].A < edges[j].A
		}
		return edges[i].B < edges[j].B
	})
	return edges
}

// Neighbors returns all nodes adjacent to id.
func (g *Graph) Neighbors(id ID) ([]ID, error) {
	neighbors, ok := g.adjacency[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrMissingNode, id)
	}
	return append([]ID{}, neighbors...), nil
}

func (g *Graph) Degree(id ID) (int, error) {
	neighbors, ok := g.adjacency[id]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrMissingNode, id)
	}
	return len(neighbors), nil
}

// Order is the number of nodes.
func (g *Graph) Order() int {
	return len(g.nodes)
}

// Size is the number of edges.
func (g *Graph) Size() int {
	return len(g.edges)
}

func (g *Graph) IsEmpty() bool {
	return len(g.nodes) == 0
}

// AdvanceGeneration increments the generation counter. When the counter
// would reach 255 all stamps are reset to 0 and the counter restarts at 1,
// so no stale stamp from a previous window can be mistaken for current.
func (g *Graph) AdvanceGeneration() {
	g.nextGeneration++
	if g.nextGeneration == 255 {
		for id := range g.nodeGeneration {
			g.nodeGeneration[id] = 0
		}
		for edge := range g.edgeGeneration {
			g.edgeGeneration[edge] = 0
		}
		g.nextGeneration = 1
	}
}

// SetNodeDirty stamps the node with the current generation. Returns false
// if the node does not exist.
func (g *Graph) SetNodeDirty(id ID) bool {
	if _, ok := g.nodeGeneration[id]; !ok {
		return false
	}
	g.nodeGeneration[id] = g.nextGeneration
	return true
}

// NodeIsDirty reports whether the node exists and was stamped in the
// current generation.
func (g *Graph) NodeIsDirty(id ID) bool {
	if _, ok := g.nodes[id]; !ok {
		return false
	}
	generation, ok := g.nodeGeneration[id]
	if !ok {
		return false
	}
	return generation >= g.nextGeneration
}

// EdgeIsDirty reports whether the edge exists and was stamped in the
// current generation. Edges are stamped on insertion, including repeated
// insertion of an existing edge.
func (g *Graph) EdgeIsDirty(a, b ID) bool {
	generation, ok := g.edgeGeneration[NewEdge(a, b)]
	if !ok {
		return false
	}
	return generation >= g.nextGeneration
}

// Generation returns the current generation counter value.
func (g *Graph) Generation() uint8 {
	return g.nextGeneration
}

// AddAncestor sets (or overwrites) the single parent of child in the
// overlay forest and records child in the parent's children set.
func (g *Graph) AddAncestor(child, parent ID) {
	if previous, ok := g.ancestors[child]; ok {
		delete(g.children[previous], child)
	}
	g.ancestors[child] = parent
	set, ok := g.children[parent]
	if !ok {
		set = make(map[ID]struct{})
		g.children[parent] = set
	}
	set[child] = struct{}{}
}

// RemoveAncestor clears the parent of child in the overlay forest.
func (g *Graph) RemoveAncestor(child ID) {
	if parent, ok := g.ancestors[child]; ok {
		delete(g.children[parent], child)
	}
	delete(g.ancestors, child)
}

// RemoveChildren detaches all of id's children. When remap is non-nil they
// are re-parented to *remap; otherwise to id's own former ancestor if one
// exists, else orphaned.
func (g *Graph) RemoveChildren(id ID, remap *ID) {
	var parent *ID
	if remap != nil {
		parent = remap
	} else if ancestor, ok := g.ancestors[id]; ok {
		value := ancestor
		parent = &value
	}
	for _, child := range g.GetChildren(id) {
		if parent != nil {
			g.AddAncestor(child, *parent)
		} else {
			g.RemoveAncestor(child)
		}
	}
	delete(g.children, id)
}

// GetAncestor returns the overlay parent of id, if any.
func (g *Graph) GetAncestor(id ID) (ID, bool) {
	parent, ok := g.ancestors[id]
	return parent, ok
}

// GetChildren returns the overlay children of id in ascending order.
func (g *Graph) GetChildren(id ID) []ID {
	set, ok := g.children[id]
	if !ok {
		return nil
	}
	children := make([]ID, 0, len(set))
	for child := range set {
		children = append(children, child)
	}
	sort.Slice(children, func(i, j int) bool { return children[i] < children[j] })
	return children
}
