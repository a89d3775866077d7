package transform

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/InfedmixDBMS/queryopt/algebra"
	"github.com/InfedmixDBMS/queryopt/cond"
)

func TestTransformUpRebuildsOnlyChangedPath(t *testing.T) {
	leftTable := algebra.NewTable("a", "")
	rightTable := algebra.NewTable("b", "")
	join, err := algebra.NewJoin(cond.NewLeaf("a.x = b.x"), leftTable, rightTable)
	require.NoError(t, err)

	result, same, err := TransformUp(join, func(n algebra.Node) (algebra.Node, TreeIdentity, error) {
		if t, ok := n.(*algebra.TableNode); ok && t.Ref.Relation == "a" {
			return algebra.NewTable("a2", ""), NewTree, nil
		}
		return n, SameTree, nil
	})
	require.NoError(t, err)
	require.Equal(t, NewTree, same)

	resultJoin := result.(*algebra.JoinNode)
	require.True(t, algebra.Identical(rightTable, resultJoin.Right), "untouched subtree must be identity-shared")
	require.False(t, algebra.Identical(leftTable, resultJoin.Left), "changed subtree must be a fresh node")
}

func TestTransformUpNoOpReturnsSameTree(t *testing.T) {
	tbl := algebra.NewTable("a", "")
	result, same, err := TransformUp(tbl, func(n algebra.Node) (algebra.Node, TreeIdentity, error) {
		return n, SameTree, nil
	})
	require.NoError(t, err)
	require.Equal(t, SameTree, same)
	require.True(t, algebra.Identical(tbl, result))
}

func TestWalkVisitsPreOrder(t *testing.T) {
	leftTable := algebra.NewTable("a", "")
	rightTable := algebra.NewTable("b", "")
	join, err := algebra.NewJoin(cond.NewLeaf("a.x = b.x"), leftTable, rightTable)
	require.NoError(t, err)

	var tags []algebra.Tag
	Walk(func(n algebra.Node) Visitor {
		tags = append(tags, n.Tag())
		return func(n algebra.Node) Visitor {
			tags = append(tags, n.Tag())
			return nil
		}
	}, join)

	require.Equal(t, []algebra.Tag{algebra.Join, algebra.Table, algebra.Table}, tags)
}
