package rules

import (
	"github.com/InfedmixDBMS/queryopt/algebra"
	"github.com/InfedmixDBMS/queryopt/transform"
)

func init() { register(R2, swapSelection) }

// swapSelection implements R2: σ_a(σ_b(T)) becomes σ_b(σ_a(T)). Applied
// once per matching site in a single bottom-up pass (§4.1: "R2... produce
// a single transformation per invocation site; the enumerator, not the
// rule, decides repetition").
func swapSelection(n algebra.Node) (algebra.Node, transform.TreeIdentity, error) {
	return transform.TransformUp(n, func(node algebra.Node) (algebra.Node, transform.TreeIdentity, error) {
		outer, ok := node.(*algebra.SelectNode)
		if !ok {
			return node, transform.SameTree, nil
		}
		inner, ok := outer.Child.(*algebra.SelectNode)
		if !ok {
			return node, transform.SameTree, nil
		}

		newInner, err := algebra.NewSelect(outer.Condition, inner.Child)
		if err != nil {
			return nil, transform.SameTree, err
		}
		newOuter, err := algebra.NewSelect(inner.Condition, newInner)
		if err != nil {
			return nil, transform.SameTree, err
		}
		return newOuter, transform.NewTree, nil
	})
}
