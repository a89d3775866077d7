package rules

import (
	"github.com/InfedmixDBMS/queryopt/algebra"
	"github.com/InfedmixDBMS/queryopt/cond"
	"github.com/InfedmixDBMS/queryopt/transform"
)

func init() { register(R6, joinAssociate) }

// joinAssociate implements R6: (A ⋈ B) ⋈ C becomes A ⋈ (B ⋈ C). The combined
// atom pool of both original conditions is re-partitioned so each new join
// only carries atoms resolvable within its own subtree (§4.1 R6). Atoms that
// touch A at all, together with any unresolved or ambiguous atom, stay on
// the new outer join; the rest move down to the new inner join over (B, C).
// The rule only fires when at least one atom can move to the inner join —
// otherwise the re-association would produce a join with no condition at
// all, which R4's enumerator-driven cartesian handling is better placed to
// decide than this rule.
func joinAssociate(n algebra.Node) (algebra.Node, transform.TreeIdentity, error) {
	return transform.TransformUp(n, func(node algebra.Node) (algebra.Node, transform.TreeIdentity, error) {
		outer, ok := node.(*algebra.JoinNode)
		if !ok {
			return node, transform.SameTree, nil
		}
		inner, ok := outer.Left.(*algebra.JoinNode)
		if !ok {
			return node, transform.SameTree, nil
		}

		a, b, c := inner.Left, inner.Right, outer.Right
		qa := algebra.QualifierSet(a)
		qbc := unionQualifiers(algebra.QualifierSet(b), algebra.QualifierSet(c))

		pool := append(cond.FlattenAnd(inner.Condition), cond.FlattenAnd(outer.Condition)...)

		var innerAtoms, outerAtoms []cond.Expr
		for _, atom := range pool {
			if atomSide(atom, qa, qbc) == algebra.SideRight {
				innerAtoms = append(innerAtoms, atom)
			} else {
				outerAtoms = append(outerAtoms, atom)
			}
		}

		if len(innerAtoms) == 0 {
			return node, transform.SameTree, nil
		}

		newInner, err := algebra.NewJoin(conjoinOrNil(innerAtoms), b, c)
		if err != nil {
			return nil, transform.SameTree, err
		}

		outerCond := conjoinOrNil(outerAtoms)
		if outerCond == nil {
			newOuter, err := algebra.NewCartesianProduct(a, newInner)
			if err != nil {
				return nil, transform.SameTree, err
			}
			return newOuter, transform.NewTree, nil
		}
		newOuter, err := algebra.NewJoin(outerCond, a, newInner)
		if err != nil {
			return nil, transform.SameTree, err
		}
		return newOuter, transform.NewTree, nil
	})
}

func unionQualifiers(a, b map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		out[k] = struct{}{}
	}
	for k := range b {
		out[k] = struct{}{}
	}
	return out
}
