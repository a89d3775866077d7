package cost

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/InfedmixDBMS/queryopt/algebra"
	"github.com/InfedmixDBMS/queryopt/cond"
	"github.com/InfedmixDBMS/queryopt/stats"
)

func defaultProvider(t *testing.T) *stats.MemoryProvider {
	t.Helper()
	p := stats.NewMemoryProvider()
	p.AddRelation("a", stats.TableStats{NR: 1000, FR: 100})
	p.AddRelation("b", stats.TableStats{NR: 1000, FR: 100})
	return p
}

// S5 — cost of a nested-loop join with defaults n=1000, b=10 on both sides:
// 10*10 + 0.5*(10+10) = 110.
func TestJoinCostS5(t *testing.T) {
	e := New(defaultProvider(t), nil)
	join, err := algebra.NewJoin(cond.NewLeaf("a.x = b.x"), algebra.NewTable("a", ""), algebra.NewTable("b", ""))
	require.NoError(t, err)

	require.InDelta(t, 110.0, e.Cost(join), 1e-9)
}

// S6 — sel((x=1) OR (y>5)) = 0.10 + 0.30 - 0.10*0.30 = 0.37.
func TestSelectivityCompositionS6(t *testing.T) {
	e := New(defaultProvider(t), nil)
	expr := cond.NewOr(cond.NewLeaf("x=1"), cond.NewLeaf("y>5"))

	require.InDelta(t, 0.37, e.Selectivity(expr), 1e-9)
}

func TestSelectivityTable(t *testing.T) {
	e := New(defaultProvider(t), nil)
	cases := map[string]float64{
		"x=1":         0.10,
		"x<>1":        0.90,
		"x!=1":        0.90,
		"x<=1":        0.40,
		"x>=1":        0.40,
		"x<1":         0.30,
		"x>1":         0.30,
		"x LIKE '%a'": 0.20,
		"garbage":     0.50,
	}
	for leaf, want := range cases {
		require.InDelta(t, want, e.Selectivity(cond.NewLeaf(leaf)), 1e-9, leaf)
	}
}

func TestEqualitySelectivityUsesDistinctValues(t *testing.T) {
	p := stats.NewMemoryProvider()
	p.AddRelation("dept", stats.TableStats{NR: 1000, FR: 100, Distinct: map[string]int64{"id": 20}})
	e := New(p, nil)

	got := e.Selectivity(cond.NewLeaf("dept.id=5"))
	require.InDelta(t, 1.0/20.0, got, 1e-9)
}

func TestProjectCostAddsTenPercent(t *testing.T) {
	e := New(defaultProvider(t), nil)
	tbl := algebra.NewTable("a", "")
	proj, err := algebra.NewProject([]algebra.AttrRef{{Name: "x"}}, tbl)
	require.NoError(t, err)

	require.InDelta(t, 11.0, e.Cost(proj), 1e-9)
}

func TestLimitCostScalesByFractionOfThousand(t *testing.T) {
	e := New(defaultProvider(t), nil)
	tbl := algebra.NewTable("a", "")
	limit, err := algebra.NewLimit(500, tbl)
	require.NoError(t, err)

	require.InDelta(t, 5.0, e.Cost(limit), 1e-9)
}

func TestLimitCostCapsAtInputCost(t *testing.T) {
	e := New(defaultProvider(t), nil)
	tbl := algebra.NewTable("a", "")
	limit, err := algebra.NewLimit(5000, tbl)
	require.NoError(t, err)

	require.InDelta(t, 10.0, e.Cost(limit), 1e-9)
}

func TestUnknownRelationFallsBackToDefaultStats(t *testing.T) {
	e := New(stats.NewMemoryProvider(), nil)
	tbl := algebra.NewTable("ghost", "")

	require.InDelta(t, float64(stats.DefaultStats.BR), e.Cost(tbl), 1e-9)
}

func TestUpdateCostMatchesTwoPointFiveMultiplier(t *testing.T) {
	e := New(defaultProvider(t), nil)
	tbl := algebra.NewTable("a", "")
	upd, err := algebra.NewUpdate(algebra.UpdateSpec{Relation: "a"}, tbl)
	require.NoError(t, err)

	require.InDelta(t, 25.0, e.Cost(upd), 1e-9)
}
