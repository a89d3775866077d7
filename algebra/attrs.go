package algebra

import "strings"

// QualifierSet is the set of identifiers (aliases and/or relation names)
// under which an attribute in this subtree may be qualified. A TABLE node
// contributes both its alias (if any) and its relation name, per §4.1 R7:
// "a table node contributes {alias?.*, relation.*}".
func QualifierSet(n Node) map[string]struct{} {
	set := map[string]struct{}{}
	collectQualifiers(n, set)
	return set
}

func collectQualifiers(n Node, set map[string]struct{}) {
	if n == nil {
		return
	}
	if t, ok := n.(*TableNode); ok {
		set[strings.ToLower(t.Ref.Relation)] = struct{}{}
		if t.Ref.Alias != "" {
			set[strings.ToLower(t.Ref.Alias)] = struct{}{}
		}
		return
	}
	for _, c := range n.Children() {
		collectQualifiers(c, set)
	}
}

// Side is the result of deciding which subtree of a binary node an
// attribute belongs to.
type Side int

const (
	SideNeither Side = iota
	SideLeft
	SideRight
	SideBoth
)

// AttributeSide resolves a single attribute reference against the
// qualifier sets of a join's two children, per §4.1 R7's rule: a qualified
// reference is looked up in each side's qualifier set (built by an
// explicit alias→relation map populated by the front-end, not by lossy
// prefix matching); an unqualified reference is ambiguous and reported as
// SideBoth, mirroring "if unqualified, treated as ambiguous → remains
// above."
func AttributeSide(attr AttrRef, left, right map[string]struct{}) Side {
	if attr.Qualifier == "" {
		return SideBoth
	}
	q := strings.ToLower(attr.Qualifier)
	_, inLeft := left[q]
	_, inRight := right[q]
	switch {
	case inLeft && inRight:
		return SideBoth
	case inLeft:
		return SideLeft
	case inRight:
		return SideRight
	default:
		return SideNeither
	}
}

// TableNames returns the relation names of every TABLE node reachable from
// n, in left-to-right, depth-first order. Used to verify P6 (table
// preservation) and the "multiset of TABLE values" invariant after a
// rewrite.
func TableNames(n Node) []string {
	var out []string
	collectTableNames(n, &out)
	return out
}

func collectTableNames(n Node, out *[]string) {
	if n == nil {
		return
	}
	if t, ok := n.(*TableNode); ok {
		*out = append(*out, t.Ref.Relation)
		return
	}
	for _, c := range n.Children() {
		collectTableNames(c, out)
	}
}

// Validate walks the tree checking every node's child count against its
// tag's arity (P4) and that no TABLE node is reachable twice via distinct
// positions sharing the same pointer (the no-sharing invariant of §3.2).
// It does not (and cannot, on a tree with no back-pointers) detect cycles
// through shared subtrees other than by this pointer check.
func Validate(n Node) error {
	seen := map[Node]struct{}{}
	return validate(n, seen)
}

func validate(n Node, seen map[Node]struct{}) error {
	if n == nil {
		return nil
	}
	if _, ok := seen[n]; ok {
		return &ValidationError{Reason: "node reachable from more than one position (aliased subtree)"}
	}
	seen[n] = struct{}{}
	children := nonNil(n.Children()...)
	if len(children) != n.Tag().Arity() {
		return &ArityError{Tag: n.Tag(), Expected: n.Tag().Arity(), Got: len(children)}
	}
	for _, c := range children {
		if err := validate(c, seen); err != nil {
			return err
		}
	}
	return nil
}

// ValidationError reports a structural invariant violation found by
// Validate other than an arity mismatch (§7 ValidationError kind).
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "algebra: validation failed: " + e.Reason }

// Equal reports structural equality between two trees: same tag, same
// value, and recursive equality of children, regardless of node identity.
// An UPDATE node's value is compared by relation name only; its
// assignments are not compared. Used by tests validating rule idempotence (P2) and round-trips (S4).
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Tag() != b.Tag() {
		return false
	}
	if !valueEqual(a, b) {
		return false
	}
	ac, bc := a.Children(), b.Children()
	if len(ac) != len(bc) {
		return false
	}
	for i := range ac {
		if !Equal(ac[i], bc[i]) {
			return false
		}
	}
	return true
}

func valueEqual(a, b Node) bool {
	switch av := a.(type) {
	case *TableNode:
		bv := b.(*TableNode)
		return av.Ref == bv.Ref
	case *SelectNode:
		bv := b.(*SelectNode)
		return av.Condition.String() == bv.Condition.String()
	case *ProjectNode:
		bv := b.(*ProjectNode)
		return joinAttrs(av.Attrs) == joinAttrs(bv.Attrs)
	case *JoinNode:
		bv := b.(*JoinNode)
		return av.Condition.String() == bv.Condition.String()
	case *HashJoinNode:
		bv := b.(*HashJoinNode)
		return av.Condition.String() == bv.Condition.String()
	case *NaturalJoinNode, *CartesianProductNode:
		return true
	case *OrderByNode:
		bv := b.(*OrderByNode)
		return av.String() == bv.String()
	case *LimitNode:
		bv := b.(*LimitNode)
		return av.N == bv.N
	case *UpdateNode:
		bv := b.(*UpdateNode)
		return av.Spec.Relation == bv.Spec.Relation
	default:
		return false
	}
}

// Identical reports pointer identity of the two nodes' concrete values,
// i.e. whether b is literally the same node as a rather than a
// structurally-equal copy. Used by tests validating P5 (no aliasing).
func Identical(a, b Node) bool { return a == b }
