package rules

import (
	"github.com/InfedmixDBMS/queryopt/algebra"
	"github.com/InfedmixDBMS/queryopt/cond"
	"github.com/InfedmixDBMS/queryopt/transform"
)

func init() { register(R7, pushSelection) }

// isBinaryJoin reports whether n is one of the four two-child join-family
// operators this rule and R8 distribute over.
func isBinaryJoin(n algebra.Node) bool {
	switch n.(type) {
	case *algebra.JoinNode, *algebra.NaturalJoinNode, *algebra.HashJoinNode, *algebra.CartesianProductNode:
		return true
	default:
		return false
	}
}

// pushSelection implements R7: σ_(c1 ∧ … ∧ ck)(A ⋈_θ B) distributes each
// atom ci to whichever side's attributes it resolves to entirely, leaving
// anything spanning both sides (or unresolved) as a SELECT directly above
// the join (§4.1 R7).
func pushSelection(n algebra.Node) (algebra.Node, transform.TreeIdentity, error) {
	return transform.TransformUp(n, func(node algebra.Node) (algebra.Node, transform.TreeIdentity, error) {
		sel, ok := node.(*algebra.SelectNode)
		if !ok || !isBinaryJoin(sel.Child) {
			return node, transform.SameTree, nil
		}
		join := sel.Child
		children := join.Children()
		left, right := children[0], children[1]

		leftQ := algebra.QualifierSet(left)
		rightQ := algebra.QualifierSet(right)

		var leftAtoms, rightAtoms, stayAtoms []cond.Expr
		for _, atom := range cond.FlattenAnd(sel.Condition) {
			switch atomSide(atom, leftQ, rightQ) {
			case algebra.SideLeft:
				leftAtoms = append(leftAtoms, atom)
			case algebra.SideRight:
				rightAtoms = append(rightAtoms, atom)
			default:
				logAmbiguousAttrs(atom, leftQ, rightQ)
				stayAtoms = append(stayAtoms, atom)
			}
		}

		if len(leftAtoms) == 0 && len(rightAtoms) == 0 {
			return node, transform.SameTree, nil
		}

		newLeft := wrapSelect(conjoinOrNil(leftAtoms), left)
		newRight := wrapSelect(conjoinOrNil(rightAtoms), right)

		newJoin, err := join.WithChildren(newLeft, newRight)
		if err != nil {
			return nil, transform.SameTree, err
		}

		result := algebra.Node(newJoin)
		if stayCond := conjoinOrNil(stayAtoms); stayCond != nil {
			withSelect, err := algebra.NewSelect(stayCond, newJoin)
			if err != nil {
				return nil, transform.SameTree, err
			}
			result = withSelect
		}
		return result, transform.NewTree, nil
	})
}
