package algebra

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/InfedmixDBMS/queryopt/cond"
)

func buildJoinTree(t *testing.T) Node {
	t.Helper()
	left := NewTable("students", "s")
	right := NewTable("departments", "d")
	join, err := NewJoin(cond.NewLeaf("s.dept_id = d.id"), left, right)
	require.NoError(t, err)
	proj, err := NewProject([]AttrRef{ParseAttr("s.name")}, join)
	require.NoError(t, err)
	return proj
}

func TestCloneProducesDistinctButEqualTree(t *testing.T) {
	tree := buildJoinTree(t)
	clone := Clone(tree)

	require.True(t, Equal(tree, clone))
	require.False(t, Identical(tree, clone))
}

func TestCloneHashesIdenticalToOriginal(t *testing.T) {
	tree := buildJoinTree(t)
	clone := Clone(tree)

	wantHash, err := StructuralHash(tree)
	require.NoError(t, err)
	gotHash, err := StructuralHash(clone)
	require.NoError(t, err)
	require.Equal(t, wantHash, gotHash)
}

func TestStructuralHashDiffersOnDifferentTrees(t *testing.T) {
	tree := buildJoinTree(t)
	other := NewTable("students", "s")

	treeHash, err := StructuralHash(tree)
	require.NoError(t, err)
	otherHash, err := StructuralHash(other)
	require.NoError(t, err)
	require.NotEqual(t, treeHash, otherHash)
}
