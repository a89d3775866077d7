package rules

import (
	"github.com/InfedmixDBMS/queryopt/algebra"
	"github.com/InfedmixDBMS/queryopt/errorkinds"
	"github.com/InfedmixDBMS/queryopt/transform"
)

func init() { register(R8, distributeProjection) }

// conditionAttrs returns the attribute references used by a join-family
// node's own theta condition. NATURAL-JOIN and CARTESIAN-PRODUCT carry no
// explicit condition, so they contribute none (§4.1 R8: J is the set of
// attributes θ uses).
func conditionAttrs(n algebra.Node) []algebra.AttrRef {
	switch v := n.(type) {
	case *algebra.JoinNode:
		return exprAttrs(v.Condition)
	case *algebra.HashJoinNode:
		return exprAttrs(v.Condition)
	default:
		return nil
	}
}

// distributeProjection implements R8: π_L(A ⋈_θ B) splits L into L1 (the
// attributes of L resolvable to A) and L2 (resolvable to B, §4.1 R8).
// Attributes θ needs but L does not already carry (L3 from A, L4 from B)
// are added to the corresponding side's projection so the join can still
// evaluate its condition; the original π_L is kept on top unless L3 and L4
// are both empty, in which case it is redundant and dropped. An attribute
// of L that cannot be resolved to exactly one side defaults to L1 and is
// logged (§7 AmbiguousAttribute).
func distributeProjection(n algebra.Node) (algebra.Node, transform.TreeIdentity, error) {
	return transform.TransformUp(n, func(node algebra.Node) (algebra.Node, transform.TreeIdentity, error) {
		proj, ok := node.(*algebra.ProjectNode)
		if !ok || !isBinaryJoin(proj.Child) {
			return node, transform.SameTree, nil
		}
		join := proj.Child
		children := join.Children()
		left, right := children[0], children[1]

		leftQ := algebra.QualifierSet(left)
		rightQ := algebra.QualifierSet(right)

		var l1, l2 []algebra.AttrRef
		for _, a := range proj.Attrs {
			side := algebra.AttributeSide(a, leftQ, rightQ)
			if side == algebra.SideRight {
				l2 = append(l2, a)
				continue
			}
			if side != algebra.SideLeft {
				log.WithField("attribute", a.String()).Warn(errorkinds.AmbiguousAttribute.New(a.String()))
			}
			l1 = append(l1, a)
		}

		jAttrs := conditionAttrs(join)
		var ja, jb []algebra.AttrRef
		for _, a := range jAttrs {
			switch algebra.AttributeSide(a, leftQ, rightQ) {
			case algebra.SideLeft:
				ja = append(ja, a)
			case algebra.SideRight:
				jb = append(jb, a)
			}
		}

		l3 := missing(ja, l1)
		l4 := missing(jb, l2)

		newLeft := projectOrChild(append(append([]algebra.AttrRef(nil), l1...), l3...), left)
		newRight := projectOrChild(append(append([]algebra.AttrRef(nil), l2...), l4...), right)

		newJoin, err := join.WithChildren(newLeft, newRight)
		if err != nil {
			return nil, transform.SameTree, err
		}

		if len(l3) == 0 && len(l4) == 0 {
			return newJoin, transform.NewTree, nil
		}
		outer, err := algebra.NewProject(proj.Attrs, newJoin)
		if err != nil {
			return nil, transform.SameTree, err
		}
		return outer, transform.NewTree, nil
	})
}

// missing returns the elements of J not already present in L, by attribute
// string identity, preserving J's order.
func missing(j, l []algebra.AttrRef) []algebra.AttrRef {
	present := map[string]struct{}{}
	for _, a := range l {
		present[a.String()] = struct{}{}
	}
	var out []algebra.AttrRef
	for _, a := range j {
		if _, ok := present[a.String()]; !ok {
			out = append(out, a)
		}
	}
	return out
}

// projectOrChild wraps child in a PROJECT over the deduplicated attrs, or
// returns child unchanged if there is nothing to project.
func projectOrChild(attrs []algebra.AttrRef, child algebra.Node) algebra.Node {
	attrs = dedupeAttrs(attrs)
	if len(attrs) == 0 {
		return child
	}
	p, err := algebra.NewProject(attrs, child)
	if err != nil {
		// child is never nil here; arity cannot fail.
		panic(err)
	}
	return p
}
