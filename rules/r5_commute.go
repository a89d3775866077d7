package rules

import (
	"github.com/InfedmixDBMS/queryopt/algebra"
	"github.com/InfedmixDBMS/queryopt/transform"
)

func init() { register(R5, joinCommute) }

// joinCommute implements R5: swap the children of a JOIN or NATURAL-JOIN.
// The condition is left exactly as stored — only the operand order
// changes — matching §4.1: "the condition is unchanged." HASH-JOIN and
// CARTESIAN-PRODUCT are physical hints / cross products, not subject to
// this rule.
func joinCommute(n algebra.Node) (algebra.Node, transform.TreeIdentity, error) {
	return transform.TransformUp(n, func(node algebra.Node) (algebra.Node, transform.TreeIdentity, error) {
		switch v := node.(type) {
		case *algebra.JoinNode:
			swapped, err := algebra.NewJoin(v.Condition, v.Right, v.Left)
			if err != nil {
				return nil, transform.SameTree, err
			}
			return swapped, transform.NewTree, nil
		case *algebra.NaturalJoinNode:
			swapped, err := algebra.NewNaturalJoin(v.Right, v.Left)
			if err != nil {
				return nil, transform.SameTree, err
			}
			return swapped, transform.NewTree, nil
		default:
			return node, transform.SameTree, nil
		}
	})
}
