package algebra

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/InfedmixDBMS/queryopt/cond"
)

func TestArityEnforcedAtConstruction(t *testing.T) {
	_, err := NewJoin(cond.NewLeaf("a.x = b.x"), NewTable("a", ""), nil)
	require.Error(t, err)
	var arityErr *ArityError
	require.ErrorAs(t, err, &arityErr)
	require.Equal(t, Join, arityErr.Tag)
}

func TestWithChildrenRejectsWrongArity(t *testing.T) {
	tbl := NewTable("employees", "emp")
	sel, err := NewSelect(cond.NewLeaf("emp.salary > 1"), tbl)
	require.NoError(t, err)

	_, err = sel.WithChildren(tbl, tbl)
	require.Error(t, err)
}

func TestWithChildrenProducesFreshNode(t *testing.T) {
	tbl := NewTable("employees", "emp")
	sel, err := NewSelect(cond.NewLeaf("emp.salary > 1"), tbl)
	require.NoError(t, err)

	rebuilt, err := sel.WithChildren(NewTable("employees", "emp"))
	require.NoError(t, err)
	require.False(t, Identical(sel, rebuilt))
	require.True(t, Equal(sel, rebuilt))
}

func TestTableNamesPreservesMultisetOrder(t *testing.T) {
	tree, err := NewJoin(cond.NewLeaf("s.dept_id = d.id"),
		NewTable("students", "s"),
		NewTable("departments", "d"),
	)
	require.NoError(t, err)

	require.Equal(t, []string{"students", "departments"}, TableNames(tree))
}

func TestQualifierSetContributesAliasAndRelation(t *testing.T) {
	tbl := NewTable("employees", "emp")
	set := QualifierSet(tbl)

	_, hasAlias := set["emp"]
	_, hasRelation := set["employees"]
	require.True(t, hasAlias)
	require.True(t, hasRelation)
}

func TestAttributeSideAmbiguousWhenUnqualified(t *testing.T) {
	left := map[string]struct{}{"a": {}}
	right := map[string]struct{}{"b": {}}

	require.Equal(t, SideBoth, AttributeSide(AttrRef{Name: "x"}, left, right))
	require.Equal(t, SideLeft, AttributeSide(AttrRef{Qualifier: "a", Name: "x"}, left, right))
	require.Equal(t, SideRight, AttributeSide(AttrRef{Qualifier: "b", Name: "x"}, left, right))
	require.Equal(t, SideNeither, AttributeSide(AttrRef{Qualifier: "c", Name: "x"}, left, right))
}

func TestValidateDetectsArityMismatch(t *testing.T) {
	broken := &JoinNode{Condition: cond.NewLeaf("x"), Left: NewTable("a", ""), Right: nil}
	err := Validate(broken)
	require.Error(t, err)
}

func TestValidateDetectsSharedSubtree(t *testing.T) {
	shared := NewTable("a", "")
	broken := &JoinNode{Condition: cond.NewLeaf("x"), Left: shared, Right: shared}
	err := Validate(broken)
	require.Error(t, err)
}
