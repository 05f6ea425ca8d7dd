package ruleBuilder

import (
	"fmt"

	"github.com/voodooEntity/regrow/src/system/rgg"
)

// RuleBuilder assembles rgg.Rule values through a fluent interface. It is
// the construction boundary for whatever loads human-authored rule
// descriptions: the loader translates its format into builder calls and
// Build rejects malformed definitions before the engine ever sees them.
type RuleBuilder struct {
	nodes           []rgg.FromNode
	edges           [][2]rgg.PatternID
	procedures      []rgg.Procedure
	matchAttributes bool
}

func NewRule() *RuleBuilder {
	return &RuleBuilder{}
}

// From adds a pattern node to the rule's left-hand side. Declaration order
// is the matcher's search order.
func (builder *RuleBuilder) From(node *PatternNode) *RuleBuilder {
	builder.nodes = append(builder.nodes, node.build())
	return builder
}

// Connect requires an edge between two pattern nodes.
func (builder *RuleBuilder) Connect(a int, b int) *RuleBuilder {
	builder.edges = append(builder.edges, [2]rgg.PatternID{rgg.PatternID(a), rgg.PatternID(b)})
	return builder
}

// Delete appends a procedure removing the mapped target.
func (builder *RuleBuilder) Delete(target int) *RuleBuilder {
	builder.procedures = append(builder.procedures, &rgg.DeleteProcedure{
		Target: rgg.PatternID(target),
	})
	return builder
}

// Replace appends a procedure overwriting the mapped target with the
// evaluated template.
func (builder *RuleBuilder) Replace(target int, template *Template) *RuleBuilder {
	builder.procedures = append(builder.procedures, &rgg.ReplaceProcedure{
		Target:      rgg.PatternID(target),
		Replacement: template.build(),
	})
	return builder
}

// Add appends a procedure creating a new node wired to the given pattern
// neighbors. The first neighbor becomes the new node's ancestor.
func (builder *RuleBuilder) Add(neighbors []int, template *Template) *RuleBuilder {
	ids := make([]rgg.PatternID, 0, len(neighbors))
	for _, neighbor := range neighbors {
		ids = append(ids, rgg.PatternID(neighbor))
	}
	builder.procedures = append(builder.procedures, &rgg.AddProcedure{
		Neighbors: ids,
		NewNode:   template.build(),
	})
	return builder
}

// Merge appends a procedure collapsing the targets into finalNode.
func (builder *RuleBuilder) Merge(targets []int, finalNode int) *RuleBuilder {
	ids := make([]rgg.PatternID, 0, len(targets))
	for _, target := range targets {
		ids = append(ids, rgg.PatternID(target))
	}
	builder.procedures = append(builder.procedures, &rgg.MergeProcedure{
		Targets:   ids,
		FinalNode: rgg.PatternID(finalNode),
	})
	return builder
}

// MatchAttributes enables attribute Condition evaluation during matching
// for the built rule.
func (builder *RuleBuilder) MatchAttributes() *RuleBuilder {
	builder.matchAttributes = true
	return builder
}

// Build validates the assembled definition and materializes the rule.
func (builder *RuleBuilder) Build() (rgg.Rule, error) {
	if len(builder.nodes) == 0 {
		return rgg.Rule{}, fmt.Errorf("rule has no pattern nodes")
	}
	rule := rgg.Rule{
		From: rgg.NodeSet{
			Nodes: builder.nodes,
			Edges: builder.edges,
		},
		To:              builder.procedures,
		MatchAttributes: builder.matchAttributes,
	}
	if err := rule.From.Validate(); err != nil {
		return rgg.Rule{}, err
	}
	return rule, nil
}

// PatternNode builds one rgg.FromNode.
type PatternNode struct {
	id         int
	name       string
	conditions map[string]rgg.Condition
}

func NewPatternNode(id int) *PatternNode {
	return &PatternNode{
		id:         id,
		conditions: make(map[string]rgg.Condition),
	}
}

// SetName constrains the matched node's name. Unset matches any name.
func (node *PatternNode) SetName(name string) *PatternNode {
	node.name = name
	return node
}

// AddCondition constrains an attribute of the matched node. Only consulted
// when the rule is built with MatchAttributes.
func (node *PatternNode) AddCondition(attribute string, condition rgg.Condition) *PatternNode {
	node.conditions[attribute] = condition
	return node
}

func (node *PatternNode) build() rgg.FromNode {
	return rgg.FromNode{
		ID:     rgg.PatternID(node.id),
		Name:   node.name,
		Values: node.conditions,
	}
}

// Template builds one rgg.ToNode.
type Template struct {
	name   string
	values map[string]string
}

func NewTemplate(name string) *Template {
	return &Template{
		name:   name,
		values: make(map[string]string),
	}
}

// Set assigns an attribute expression, evaluated per application against
// the base node's attributes.
func (template *Template) Set(attribute string, expression string) *Template {
	template.values[attribute] = expression
	return template
}

func (template *Template) build() rgg.ToNode {
	return rgg.ToNode{
		Name:   template.name,
		Values: template.values,
	}
}
