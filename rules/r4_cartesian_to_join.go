package rules

import (
	"github.com/InfedmixDBMS/queryopt/algebra"
	"github.com/InfedmixDBMS/queryopt/cond"
	"github.com/InfedmixDBMS/queryopt/transform"
)

func init() { register(R4, cartesianToJoin) }

// cartesianToJoin implements R4: σ_θ(A × B) becomes A ⋈_θ' B, where θ' is
// the conjunction of atoms referencing attributes of both A and B. Atoms
// purely on A or purely on B are left as SELECT nodes just above A or B;
// atoms referencing neither side or only unresolved attributes stay as a
// SELECT above the join (§4.1 R4; atom-side resolution shared with R7).
func cartesianToJoin(n algebra.Node) (algebra.Node, transform.TreeIdentity, error) {
	return transform.TransformUp(n, func(node algebra.Node) (algebra.Node, transform.TreeIdentity, error) {
		sel, ok := node.(*algebra.SelectNode)
		if !ok {
			return node, transform.SameTree, nil
		}
		cp, ok := sel.Child.(*algebra.CartesianProductNode)
		if !ok {
			return node, transform.SameTree, nil
		}

		leftQ := algebra.QualifierSet(cp.Left)
		rightQ := algebra.QualifierSet(cp.Right)

		var leftAtoms, rightAtoms, joinAtoms, aboveAtoms []cond.Expr
		for _, atom := range cond.FlattenAnd(sel.Condition) {
			switch atomSide(atom, leftQ, rightQ) {
			case algebra.SideLeft:
				leftAtoms = append(leftAtoms, atom)
			case algebra.SideRight:
				rightAtoms = append(rightAtoms, atom)
			default:
				sides := map[algebra.Side]bool{}
				for _, a := range exprAttrs(atom) {
					sides[algebra.AttributeSide(a, leftQ, rightQ)] = true
				}
				if len(sides) == 2 && sides[algebra.SideLeft] && sides[algebra.SideRight] {
					joinAtoms = append(joinAtoms, atom)
				} else {
					aboveAtoms = append(aboveAtoms, atom)
				}
			}
		}

		if len(joinAtoms) == 0 {
			// No atom spans both sides: there is no θ' to build a join
			// condition from, so this is not a true equi/theta join
			// site. Leave the cartesian product alone.
			return node, transform.SameTree, nil
		}

		newLeft := wrapSelect(conjoinOrNil(leftAtoms), cp.Left)
		newRight := wrapSelect(conjoinOrNil(rightAtoms), cp.Right)

		join, err := algebra.NewJoin(conjoinOrNil(joinAtoms), newLeft, newRight)
		if err != nil {
			return nil, transform.SameTree, err
		}
		return wrapSelect(conjoinOrNil(aboveAtoms), join), transform.NewTree, nil
	})
}
