package algebra

// Clone returns a deep, structurally-equal copy of n sharing no node
// pointers with the original. Used by the optimizer to hand each
// enumeration strategy its own independent tree, so that one strategy's
// rewrites can never be observed by another even if a future rule were to
// mutate a node in place (§5: "no global mutable state").
func Clone(n Node) Node {
	if n == nil {
		return nil
	}
	children := n.Children()
	if len(children) == 0 {
		clone, err := n.WithChildren()
		if err != nil {
			// n's own children already satisfied its arity; cloning
			// with the same count can never fail.
			panic(err)
		}
		return clone
	}
	cloned := make([]Node, len(children))
	for i, c := range children {
		cloned[i] = Clone(c)
	}
	clone, err := n.WithChildren(cloned...)
	if err != nil {
		panic(err)
	}
	return clone
}
