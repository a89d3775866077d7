package rules

import (
	"github.com/InfedmixDBMS/queryopt/algebra"
	"github.com/InfedmixDBMS/queryopt/cond"
	"github.com/InfedmixDBMS/queryopt/transform"
)

func init() { register(R1, decomposeConjunctiveSelection) }

// decomposeConjunctiveSelection implements R1: a SELECT whose condition is
// an AND-tree of k >= 2 atoms becomes a right-leaning chain of k SELECT
// nodes, one atom each, in the atoms' in-order flattening order (§8 S3).
// OR atoms are left intact as a single atom. The traversal is bottom-up;
// because FlattenAnd already fully flattens nested ANDs in one call, a
// single post-order pass is sufficient — a freshly built SELECT in the
// chain carries exactly one atom and can never itself match the rule.
func decomposeConjunctiveSelection(n algebra.Node) (algebra.Node, transform.TreeIdentity, error) {
	return transform.TransformUp(n, func(node algebra.Node) (algebra.Node, transform.TreeIdentity, error) {
		sel, ok := node.(*algebra.SelectNode)
		if !ok {
			return node, transform.SameTree, nil
		}
		atoms := cond.FlattenAnd(sel.Condition)
		if len(atoms) < 2 {
			return node, transform.SameTree, nil
		}

		current := sel.Child
		for i := len(atoms) - 1; i >= 0; i-- {
			next, err := algebra.NewSelect(atoms[i], current)
			if err != nil {
				return nil, transform.SameTree, err
			}
			current = next
		}
		return current, transform.NewTree, nil
	})
}
