package rules

import (
	"github.com/InfedmixDBMS/queryopt/algebra"
	"github.com/InfedmixDBMS/queryopt/cond"
	"github.com/InfedmixDBMS/queryopt/transform"
)

func init() { register(R3, combineSelections) }

// combineSelections implements R3, the inverse of R1: σ_a(σ_b(T)) folds
// into σ_(a ∧ b)(T). Single-pass, bottom-up.
func combineSelections(n algebra.Node) (algebra.Node, transform.TreeIdentity, error) {
	return transform.TransformUp(n, func(node algebra.Node) (algebra.Node, transform.TreeIdentity, error) {
		outer, ok := node.(*algebra.SelectNode)
		if !ok {
			return node, transform.SameTree, nil
		}
		inner, ok := outer.Child.(*algebra.SelectNode)
		if !ok {
			return node, transform.SameTree, nil
		}

		combined := cond.NewAnd(outer.Condition, inner.Condition)
		merged, err := algebra.NewSelect(combined, inner.Child)
		if err != nil {
			return nil, transform.SameTree, err
		}
		return merged, transform.NewTree, nil
	})
}
