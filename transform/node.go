// Package transform provides the rewrite substrate used by every rule in
// package rules: a bottom-up tree transformation that rebuilds only the
// nodes on the path from a changed node to the root, leaving every
// untouched subtree shared by reference between input and output. This is
// the mechanism behind §3.2's "rewrites always produce fresh roots and do
// not alias input" contract, modeled directly on the teacher's
// sql/transform package (TransformUp / NodeFunc / TreeIdentity).
package transform

import "github.com/InfedmixDBMS/queryopt/algebra"

// TreeIdentity reports whether a transformation actually produced a new
// tree (NewTree) or left it as-is (SameTree). A rule that returns SameTree
// at every node it visits is a true no-op for P5's aliasing exception.
type TreeIdentity bool

const (
	SameTree TreeIdentity = false
	NewTree  TreeIdentity = true
)

// NodeFunc is applied to one node during a traversal. It returns the
// (possibly replaced) node, whether it changed, and an error. Returning a
// non-nil error aborts the traversal; rule implementations in package
// rules never do this for the non-fatal conditions in §7 — those are
// logged as warnings and the function returns the node unchanged instead.
type NodeFunc func(n algebra.Node) (algebra.Node, TreeIdentity, error)

// TransformUp applies f in post-order (§4.1: "transform children, then the
// node"): every child is transformed first, the node is rebuilt with
// WithChildren only if at least one child actually changed, and then f is
// applied to the (possibly rebuilt) node itself. If neither the children
// nor f change anything, the original node is returned unchanged — this is
// what lets an untouched subtree remain identity-shared between the input
// and output trees.
func TransformUp(n algebra.Node, f NodeFunc) (algebra.Node, TreeIdentity, error) {
	if n == nil {
		return nil, SameTree, nil
	}

	children := n.Children()
	newChildren := make([]algebra.Node, len(children))
	childChanged := SameTree
	for i, c := range children {
		nc, same, err := TransformUp(c, f)
		if err != nil {
			return nil, SameTree, err
		}
		newChildren[i] = nc
		if same == NewTree {
			childChanged = NewTree
		}
	}

	current := n
	if childChanged == NewTree {
		rebuilt, err := n.WithChildren(newChildren...)
		if err != nil {
			return nil, SameTree, err
		}
		current = rebuilt
	}

	result, same, err := f(current)
	if err != nil {
		return nil, SameTree, err
	}
	if same == NewTree || childChanged == NewTree {
		return result, NewTree, nil
	}
	return result, SameTree, nil
}

// TransformDown applies f in pre-order: the node first, then its
// (possibly replaced) children, for a rule whose match shape requires
// top-down matching before descending. The rules in package rules all use
// TransformUp; none currently calls TransformDown.
func TransformDown(n algebra.Node, f NodeFunc) (algebra.Node, TreeIdentity, error) {
	if n == nil {
		return nil, SameTree, nil
	}

	current, topSame, err := f(n)
	if err != nil {
		return nil, SameTree, err
	}

	children := current.Children()
	newChildren := make([]algebra.Node, len(children))
	childChanged := SameTree
	for i, c := range children {
		nc, same, err := TransformDown(c, f)
		if err != nil {
			return nil, SameTree, err
		}
		newChildren[i] = nc
		if same == NewTree {
			childChanged = NewTree
		}
	}

	if childChanged == NewTree {
		rebuilt, err := current.WithChildren(newChildren...)
		if err != nil {
			return nil, SameTree, err
		}
		current = rebuilt
	}

	if topSame == NewTree || childChanged == NewTree {
		return current, NewTree, nil
	}
	return current, SameTree, nil
}
