package cond

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEqualStructural(t *testing.T) {
	a := NewAnd(NewLeaf("a=1"), NewLeaf("b=2"))
	b := NewAnd(NewLeaf("a=1"), NewLeaf("b=2"))
	c := NewAnd(NewLeaf("b=2"), NewLeaf("a=1"))

	require.True(t, Equal(a, b))
	require.False(t, Equal(a, c), "operand order matters for structural equality")
	require.False(t, Equal(a, NewLeaf("a=1")))
}

func TestFlattenAndPreservesOrder(t *testing.T) {
	tree := NewAnd(NewAnd(NewLeaf("a=1"), NewLeaf("b=2")), NewLeaf("c=3"))
	atoms := FlattenAnd(tree)

	require.Len(t, atoms, 3)
	require.Equal(t, "a=1", atoms[0].String())
	require.Equal(t, "b=2", atoms[1].String())
	require.Equal(t, "c=3", atoms[2].String())
}

func TestFlattenAndStopsAtOr(t *testing.T) {
	orNode := NewOr(NewLeaf("a=1"), NewLeaf("b=2"))
	tree := NewAnd(orNode, NewLeaf("c=3"))

	atoms := FlattenAnd(tree)
	require.Len(t, atoms, 2)
	require.True(t, Equal(atoms[0], orNode))
}

func TestConjoinAllRoundTrip(t *testing.T) {
	atoms := []Expr{NewLeaf("a=1"), NewLeaf("b=2"), NewLeaf("c=3")}
	joined := ConjoinAll(atoms)

	require.Equal(t, atoms, FlattenAnd(joined))
}

func TestComparator(t *testing.T) {
	cases := map[string]string{
		"emp.salary > 80000":   ">",
		"emp.salary >= 80000":  ">=",
		"emp.id <> 3":          "<>",
		"emp.id != 3":          "!=",
		"emp.name = 'bob'":     "=",
		"emp.name LIKE '%bo%'": "LIKE",
		"emp.id <= 3":          "<=",
		"emp.id < 3":           "<",
	}
	for leaf, want := range cases {
		require.Equal(t, want, Comparator(leaf), leaf)
	}
}
