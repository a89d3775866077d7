// Package algebra implements the logical-plan tree: nodes typed by
// operator tag, each with a tag-specific value and a fixed-arity list of
// children (§3.2). Trees are owned top-down — no node carries a
// back-pointer — and rewrites always build fresh roots rather than
// mutating shared input, so that no rule can alias its input and output.
package algebra

import (
	"fmt"

	"github.com/InfedmixDBMS/queryopt/cond"
)

// Tag identifies an algebra node's operator and therefore its fixed arity
// and value type (§3.2).
type Tag int

const (
	Table Tag = iota
	Select
	Project
	Join
	NaturalJoin
	HashJoin
	CartesianProduct
	OrderBy
	Limit
	Update
)

func (t Tag) String() string {
	switch t {
	case Table:
		return "TABLE"
	case Select:
		return "SELECT"
	case Project:
		return "PROJECT"
	case Join:
		return "JOIN"
	case NaturalJoin:
		return "NATURAL-JOIN"
	case HashJoin:
		return "HASH-JOIN"
	case CartesianProduct:
		return "CARTESIAN-PRODUCT"
	case OrderBy:
		return "ORDER-BY"
	case Limit:
		return "LIMIT"
	case Update:
		return "UPDATE"
	default:
		return "UNKNOWN"
	}
}

// Arity returns the fixed child count for a tag.
func (t Tag) Arity() int {
	switch t {
	case Table:
		return 0
	case Select, Project, OrderBy, Limit, Update:
		return 1
	case Join, NaturalJoin, HashJoin, CartesianProduct:
		return 2
	default:
		return -1
	}
}

// Node is an algebra tree node: a tag, a tag-specific value (exposed by
// the concrete type), and an ordered, fixed-arity list of children.
type Node interface {
	Tag() Tag
	Children() []Node
	// WithChildren returns a fresh node of the same concrete type and
	// value, with its children replaced. It fails if len(children)
	// does not match the tag's arity. It never mutates the receiver.
	WithChildren(children ...Node) (Node, error)
	String() string
}

// ArityError reports a fixed-arity violation at construction or
// WithChildren time (§3.2 invariant: "implementations MUST fail
// construction on violation").
type ArityError struct {
	Tag      Tag
	Expected int
	Got      int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("algebra: %s requires %d children, got %d", e.Tag, e.Expected, e.Got)
}

func checkArity(tag Tag, children []Node) error {
	if want := tag.Arity(); want != len(children) {
		return &ArityError{Tag: tag, Expected: want, Got: len(children)}
	}
	return nil
}

// TableRef is the value of a TABLE node: a base relation name and an
// optional alias.
type TableRef struct {
	Relation string
	Alias    string
}

// TableNode is a base relation leaf (arity 0).
type TableNode struct {
	Ref TableRef
}

// NewTable builds a TABLE node. alias may be "".
func NewTable(relation, alias string) *TableNode {
	return &TableNode{Ref: TableRef{Relation: relation, Alias: alias}}
}

func (*TableNode) Tag() Tag          { return Table }
func (*TableNode) Children() []Node  { return nil }
func (n *TableNode) String() string {
	if n.Ref.Alias != "" {
		return fmt.Sprintf("TABLE: %s AS %s", n.Ref.Relation, n.Ref.Alias)
	}
	return fmt.Sprintf("TABLE: %s", n.Ref.Relation)
}
func (n *TableNode) WithChildren(children ...Node) (Node, error) {
	if err := checkArity(Table, children); err != nil {
		return nil, err
	}
	cp := *n
	return &cp, nil
}

// SelectNode is a filter (σ), arity 1.
type SelectNode struct {
	Condition cond.Expr
	Child     Node
}

// NewSelect builds a SELECT node. Fails if child is nil.
func NewSelect(condition cond.Expr, child Node) (*SelectNode, error) {
	if err := checkArity(Select, nonNil(child)); err != nil {
		return nil, err
	}
	return &SelectNode{Condition: condition, Child: child}, nil
}

func (*SelectNode) Tag() Tag         { return Select }
func (n *SelectNode) Children() []Node { return []Node{n.Child} }
func (n *SelectNode) String() string   { return fmt.Sprintf("SELECT: %s", n.Condition.String()) }
func (n *SelectNode) WithChildren(children ...Node) (Node, error) {
	if err := checkArity(Select, children); err != nil {
		return nil, err
	}
	return &SelectNode{Condition: n.Condition, Child: children[0]}, nil
}

// AttrRef is an attribute reference of the form "alias.name" or "name".
type AttrRef struct {
	Qualifier string // "" if unqualified
	Name      string
}

// ParseAttr splits a dotted attribute reference into qualifier and name.
func ParseAttr(ref string) AttrRef {
	for i := 0; i < len(ref); i++ {
		if ref[i] == '.' {
			return AttrRef{Qualifier: ref[:i], Name: ref[i+1:]}
		}
	}
	return AttrRef{Name: ref}
}

func (a AttrRef) String() string {
	if a.Qualifier == "" {
		return a.Name
	}
	return a.Qualifier + "." + a.Name
}

// ProjectNode is a projection (π) over an ordered, possibly-repeated list
// of attribute references, arity 1.
type ProjectNode struct {
	Attrs []AttrRef
	Child Node
}

// NewProject builds a PROJECT node. Fails if child is nil.
func NewProject(attrs []AttrRef, child Node) (*ProjectNode, error) {
	if err := checkArity(Project, nonNil(child)); err != nil {
		return nil, err
	}
	return &ProjectNode{Attrs: append([]AttrRef(nil), attrs...), Child: child}, nil
}

func (*ProjectNode) Tag() Tag         { return Project }
func (n *ProjectNode) Children() []Node { return []Node{n.Child} }
func (n *ProjectNode) String() string {
	return fmt.Sprintf("PROJECT: %s", joinAttrs(n.Attrs))
}
func (n *ProjectNode) WithChildren(children ...Node) (Node, error) {
	if err := checkArity(Project, children); err != nil {
		return nil, err
	}
	return &ProjectNode{Attrs: n.Attrs, Child: children[0]}, nil
}

func joinAttrs(attrs []AttrRef) string {
	out := ""
	for i, a := range attrs {
		if i > 0 {
			out += ", "
		}
		out += a.String()
	}
	return out
}

// JoinNode is an inner theta-join (⋈θ), arity 2.
type JoinNode struct {
	Condition   cond.Expr
	Left, Right Node
}

// NewJoin builds a JOIN node. Fails if either child is nil.
func NewJoin(condition cond.Expr, left, right Node) (*JoinNode, error) {
	if err := checkArity(Join, nonNil(left, right)); err != nil {
		return nil, err
	}
	return &JoinNode{Condition: condition, Left: left, Right: right}, nil
}

func (*JoinNode) Tag() Tag         { return Join }
func (n *JoinNode) Children() []Node { return []Node{n.Left, n.Right} }
func (n *JoinNode) String() string   { return fmt.Sprintf("JOIN: %s", n.Condition.String()) }
func (n *JoinNode) WithChildren(children ...Node) (Node, error) {
	if err := checkArity(Join, children); err != nil {
		return nil, err
	}
	return &JoinNode{Condition: n.Condition, Left: children[0], Right: children[1]}, nil
}

// NaturalJoinNode joins on all equally-named attributes, arity 2, no value.
type NaturalJoinNode struct {
	Left, Right Node
}

// NewNaturalJoin builds a NATURAL-JOIN node.
func NewNaturalJoin(left, right Node) (*NaturalJoinNode, error) {
	if err := checkArity(NaturalJoin, nonNil(left, right)); err != nil {
		return nil, err
	}
	return &NaturalJoinNode{Left: left, Right: right}, nil
}

func (*NaturalJoinNode) Tag() Tag           { return NaturalJoin }
func (n *NaturalJoinNode) Children() []Node { return []Node{n.Left, n.Right} }
func (n *NaturalJoinNode) String() string   { return "NATURAL-JOIN:" }
func (n *NaturalJoinNode) WithChildren(children ...Node) (Node, error) {
	if err := checkArity(NaturalJoin, children); err != nil {
		return nil, err
	}
	return &NaturalJoinNode{Left: children[0], Right: children[1]}, nil
}

// HashJoinNode is a physical-hint join carrying a theta condition, arity 2.
type HashJoinNode struct {
	Condition   cond.Expr
	Left, Right Node
}

// NewHashJoin builds a HASH-JOIN node.
func NewHashJoin(condition cond.Expr, left, right Node) (*HashJoinNode, error) {
	if err := checkArity(HashJoin, nonNil(left, right)); err != nil {
		return nil, err
	}
	return &HashJoinNode{Condition: condition, Left: left, Right: right}, nil
}

func (*HashJoinNode) Tag() Tag         { return HashJoin }
func (n *HashJoinNode) Children() []Node { return []Node{n.Left, n.Right} }
func (n *HashJoinNode) String() string   { return fmt.Sprintf("HASH-JOIN: %s", n.Condition.String()) }
func (n *HashJoinNode) WithChildren(children ...Node) (Node, error) {
	if err := checkArity(HashJoin, children); err != nil {
		return nil, err
	}
	return &HashJoinNode{Condition: n.Condition, Left: children[0], Right: children[1]}, nil
}

// CartesianProductNode is the unrestricted cross product (×), arity 2, no value.
type CartesianProductNode struct {
	Left, Right Node
}

// NewCartesianProduct builds a CARTESIAN-PRODUCT node.
func NewCartesianProduct(left, right Node) (*CartesianProductNode, error) {
	if err := checkArity(CartesianProduct, nonNil(left, right)); err != nil {
		return nil, err
	}
	return &CartesianProductNode{Left: left, Right: right}, nil
}

func (*CartesianProductNode) Tag() Tag         { return CartesianProduct }
func (n *CartesianProductNode) Children() []Node { return []Node{n.Left, n.Right} }
func (n *CartesianProductNode) String() string   { return "CARTESIAN-PRODUCT:" }
func (n *CartesianProductNode) WithChildren(children ...Node) (Node, error) {
	if err := checkArity(CartesianProduct, children); err != nil {
		return nil, err
	}
	return &CartesianProductNode{Left: children[0], Right: children[1]}, nil
}

// SortDirection is ASC or DESC for an ORDER-BY key.
type SortDirection int

const (
	Asc SortDirection = iota
	Desc
)

func (d SortDirection) String() string {
	if d == Desc {
		return "DESC"
	}
	return "ASC"
}

// SortKey is one (attribute, direction) pair in an ORDER-BY list.
type SortKey struct {
	Attr      AttrRef
	Direction SortDirection
}

// OrderByNode sorts its input, arity 1.
type OrderByNode struct {
	Keys  []SortKey
	Child Node
}

// NewOrderBy builds an ORDER-BY node. Fails if child is nil.
func NewOrderBy(keys []SortKey, child Node) (*OrderByNode, error) {
	if err := checkArity(OrderBy, nonNil(child)); err != nil {
		return nil, err
	}
	return &OrderByNode{Keys: append([]SortKey(nil), keys...), Child: child}, nil
}

func (*OrderByNode) Tag() Tag         { return OrderBy }
func (n *OrderByNode) Children() []Node { return []Node{n.Child} }
func (n *OrderByNode) String() string {
	out := ""
	for i, k := range n.Keys {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s %s", k.Attr.String(), k.Direction)
	}
	return fmt.Sprintf("ORDER-BY: %s", out)
}
func (n *OrderByNode) WithChildren(children ...Node) (Node, error) {
	if err := checkArity(OrderBy, children); err != nil {
		return nil, err
	}
	return &OrderByNode{Keys: n.Keys, Child: children[0]}, nil
}

// LimitNode truncates its input to N rows, arity 1.
type LimitNode struct {
	N     int64
	Child Node
}

// NewLimit builds a LIMIT node. Fails if child is nil.
func NewLimit(n int64, child Node) (*LimitNode, error) {
	if err := checkArity(Limit, nonNil(child)); err != nil {
		return nil, err
	}
	return &LimitNode{N: n, Child: child}, nil
}

func (*LimitNode) Tag() Tag         { return Limit }
func (n *LimitNode) Children() []Node { return []Node{n.Child} }
func (n *LimitNode) String() string   { return fmt.Sprintf("LIMIT: %d", n.N) }
func (n *LimitNode) WithChildren(children ...Node) (Node, error) {
	if err := checkArity(Limit, children); err != nil {
		return nil, err
	}
	return &LimitNode{N: n.N, Child: children[0]}, nil
}

// UpdateSpec is the value of an UPDATE node, retained for parity with the
// original system; this spec does not otherwise interpret it.
type UpdateSpec struct {
	Relation    string
	Assignments map[string]string
}

// UpdateNode is retained for parity with the original system, arity 1.
type UpdateNode struct {
	Spec  UpdateSpec
	Child Node
}

// NewUpdate builds an UPDATE node. Fails if child is nil.
func NewUpdate(spec UpdateSpec, child Node) (*UpdateNode, error) {
	if err := checkArity(Update, nonNil(child)); err != nil {
		return nil, err
	}
	return &UpdateNode{Spec: spec, Child: child}, nil
}

func (*UpdateNode) Tag() Tag         { return Update }
func (n *UpdateNode) Children() []Node { return []Node{n.Child} }
func (n *UpdateNode) String() string   { return fmt.Sprintf("UPDATE: %s", n.Spec.Relation) }
func (n *UpdateNode) WithChildren(children ...Node) (Node, error) {
	if err := checkArity(Update, children); err != nil {
		return nil, err
	}
	return &UpdateNode{Spec: n.Spec, Child: children[0]}, nil
}

// nonNil turns a list of possibly-nil Node arguments into a children slice
// suitable for checkArity, treating a nil Node as "absent" so construction
// fails with an ArityError rather than panicking later on a nil child.
func nonNil(nodes ...Node) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}
