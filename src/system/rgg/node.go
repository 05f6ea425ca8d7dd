package rgg

// Node holds the attribute values stored for one graph node. Immutable once
// placed in a graph except via whole-node replacement.
type Node struct {
	Name   string
	Values map[string]Value
}

func NewNode(name string) Node {
	return Node{
		Name:   name,
		Values: make(map[string]Value),
	}
}

// Clone returns an independent copy of the node.
func (n Node) Clone() Node {
	values := make(map[string]Value, len(n.Values))
	for key, value := range n.Values {
		values[key] = value
	}
	return Node{Name: n.Name, Values: values}
}
