package rgg

import (
	"fmt"
	"math/rand"

	"github.com/expr-lang/expr"
)

// ToNode is a rule's replacement/creation template: a fixed node name plus
// one arithmetic expression per attribute. Expressions may reference the
// evaluating base node's attribute names as variables (read as floats) and
// call rand(min, max) for a uniformly distributed float.
type ToNode struct {
	Name   string
	Values map[string]string
}

// Eval evaluates every attribute expression against base and returns the
// resulting node. All produced values are Float typed regardless of the
// original attribute's type. A failing expression is a configuration error
// in the rule definition itself and aborts the evaluation.
func (t *ToNode) Eval(base *Node) (Node, error) {
	env := map[string]interface{}{
		"rand": func(min, max float64) float64 {
			return min + rand.Float64()*(max-min)
		},
	}
	if base != nil {
		for attribute, value := range base.Values {
			env[attribute] = value.AsFloat()
		}
	}

	node := NewNode(t.Name)
	for attribute, expression := range t.Values {
		// Compile with the environment's types so expr converts integer
		// literals to float64 when calling rand.
		program, err := expr.Compile(expression, expr.Env(env))
		if err != nil {
			return Node{}, fmt.Errorf("evaluating %q for attribute %q: %w", expression, attribute, err)
		}
		out, err := expr.Run(program, env)
		if err != nil {
			return Node{}, fmt.Errorf("evaluating %q for attribute %q: %w", expression, attribute, err)
		}
		result, err := toFloat(out)
		if err != nil {
			return Node{}, fmt.Errorf("evaluating %q for attribute %q: %w", expression, attribute, err)
		}
		node.Values[attribute] = NewFloat(result)
	}
	return node, nil
}

func toFloat(out interface{}) (float32, error) {
	switch v := out.(type) {
	case float64:
		return float32(v), nil
	case float32:
		return v, nil
	case int:
		return float32(v), nil
	case int64:
		return float32(v), nil
	}
	return 0, fmt.Errorf("expression result %v (%T) is not numeric", out, out)
}
