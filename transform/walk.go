package transform

import "github.com/InfedmixDBMS/queryopt/algebra"

// Visitor is called once per node in a pre-order Walk. Returning nil stops
// the descent into that node's children; any non-nil Visitor continues
// with it for the children.
type Visitor func(n algebra.Node) Visitor

// Walk traverses n pre-order, calling v on each node. It is read-only —
// unlike TransformUp/TransformDown it never rebuilds nodes — for callers
// that need to inspect a tree without risking an accidental rewrite.
// algebra.PrintTree does its own recursion and does not use Walk.
func Walk(v Visitor, n algebra.Node) {
	if n == nil || v == nil {
		return
	}
	next := v(n)
	if next == nil {
		return
	}
	for _, c := range n.Children() {
		Walk(next, c)
	}
}
