package rules

import (
	"github.com/InfedmixDBMS/queryopt/algebra"
	"github.com/InfedmixDBMS/queryopt/transform"
)

// pushProjection implements the standalone push-π step referenced by
// PushProjection in rule.go: π_L sitting above a chain of one or more
// SELECT nodes that bottoms out at a join moves down to sit directly
// above that join, widened to also carry every attribute the skipped
// SELECTs' conditions need, with the original π_L kept in place at the
// top to re-trim the final output (§4.3.1: "push-π skips through a chain
// of σ nodes between π and the join"). R8 then matches the new,
// join-adjacent projection and distributes it across the join's sides.
//
// The rule no-ops when there is no SELECT to skip (a π directly over a
// join is already R8's concern) or when the chain does not bottom out at
// a join-family node.
func pushProjection(n algebra.Node) (algebra.Node, transform.TreeIdentity, error) {
	return transform.TransformUp(n, func(node algebra.Node) (algebra.Node, transform.TreeIdentity, error) {
		proj, ok := node.(*algebra.ProjectNode)
		if !ok {
			return node, transform.SameTree, nil
		}

		var chain []*algebra.SelectNode
		cursor := proj.Child
		for {
			sel, ok := cursor.(*algebra.SelectNode)
			if !ok {
				break
			}
			chain = append(chain, sel)
			cursor = sel.Child
		}
		if len(chain) == 0 || !isBinaryJoin(cursor) {
			return node, transform.SameTree, nil
		}

		needed := append([]algebra.AttrRef(nil), proj.Attrs...)
		for _, sel := range chain {
			needed = append(needed, exprAttrs(sel.Condition)...)
		}
		needed = dedupeAttrs(needed)

		pushedProj, err := algebra.NewProject(needed, cursor)
		if err != nil {
			return nil, transform.SameTree, err
		}

		var rebuilt algebra.Node = pushedProj
		for i := len(chain) - 1; i >= 0; i-- {
			rebuilt, err = algebra.NewSelect(chain[i].Condition, rebuilt)
			if err != nil {
				return nil, transform.SameTree, err
			}
		}

		outer, err := algebra.NewProject(proj.Attrs, rebuilt)
		if err != nil {
			return nil, transform.SameTree, err
		}
		return outer, transform.NewTree, nil
	})
}

// dedupeAttrs removes repeated attribute references, preserving the order
// of first occurrence.
func dedupeAttrs(attrs []algebra.AttrRef) []algebra.AttrRef {
	seen := map[string]struct{}{}
	out := make([]algebra.AttrRef, 0, len(attrs))
	for _, a := range attrs {
		key := a.String()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, a)
	}
	return out
}
