package optimizer

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/InfedmixDBMS/queryopt/algebra"
	"github.com/InfedmixDBMS/queryopt/cond"
	"github.com/InfedmixDBMS/queryopt/cost"
	"github.com/InfedmixDBMS/queryopt/stats"
)

// buildS2Tree mirrors spec scenario S2: a three-way join with a
// conjunctive predicate over the cartesian product of all three tables.
func buildS2Tree(t *testing.T) algebra.Node {
	t.Helper()
	students := algebra.NewTable("students", "s")
	departments := algebra.NewTable("departments", "d")
	projects := algebra.NewTable("projects", "p")

	cp1, err := algebra.NewCartesianProduct(students, departments)
	require.NoError(t, err)
	cp2, err := algebra.NewCartesianProduct(cp1, projects)
	require.NoError(t, err)

	condition := cond.NewAnd(
		cond.NewAnd(cond.NewLeaf("s.dept_id = d.id"), cond.NewLeaf("s.project_id = p.id")),
		cond.NewAnd(cond.NewLeaf("s.age > 20"), cond.NewLeaf("d.budget > 100000")),
	)
	sel, err := algebra.NewSelect(condition, cp2)
	require.NoError(t, err)

	proj, err := algebra.NewProject([]algebra.AttrRef{
		algebra.ParseAttr("s.name"),
		algebra.ParseAttr("d.dept_name"),
		algebra.ParseAttr("p.project_name"),
	}, sel)
	require.NoError(t, err)
	return proj
}

func testEstimator() *cost.Estimator {
	provider := stats.NewMemoryProvider()
	provider.AddRelation("students", stats.TableStats{NR: 5000, LR: 50, BR: 50})
	provider.AddRelation("departments", stats.TableStats{NR: 20, LR: 50, BR: 2})
	provider.AddRelation("projects", stats.TableStats{NR: 200, LR: 50, BR: 5})
	return cost.New(provider, nil)
}

// P3: the enumerator's output cost never exceeds the input's.
func TestHeuristicEnsembleMonotonicCost(t *testing.T) {
	tree := buildS2Tree(t)
	estimator := testEstimator()
	inputCost := estimator.Cost(tree)

	winner, report := RunHeuristicEnsemble(tree, estimator, nil)
	require.LessOrEqual(t, estimator.Cost(winner), inputCost)
	require.Len(t, report.Results, len(Strategies))
}

// P6: table preservation across the heuristic ensemble.
func TestHeuristicEnsemblePreservesTables(t *testing.T) {
	tree := buildS2Tree(t)
	estimator := testEstimator()

	winner, _ := RunHeuristicEnsemble(tree, estimator, nil)
	require.ElementsMatch(t,
		[]string{"students", "departments", "projects"},
		algebra.TableNames(winner))
}

func TestHeuristicEnsembleNeverMutatesInput(t *testing.T) {
	tree := buildS2Tree(t)
	estimator := testEstimator()
	before := tree.String()

	RunHeuristicEnsemble(tree, estimator, nil)
	require.Equal(t, before, tree.String())
}

// S7: genetic determinism — same seed, same defaults, reproducible best
// cost that is no worse than the best heuristic strategy's.
func TestGeneticSearchDeterministicWithFixedSeed(t *testing.T) {
	tree := buildS2Tree(t)
	estimator := testEstimator()
	params := DefaultGeneticParams()

	_, heuristicReport := RunHeuristicEnsemble(tree, estimator, nil)
	bestHeuristicCost := estimator.Cost(tree)
	for _, r := range heuristicReport.Results {
		if r.Cost < bestHeuristicCost {
			bestHeuristicCost = r.Cost
		}
	}

	run := func() GeneticReport {
		rng := rand.New(rand.NewSource(42))
		_, report := RunGeneticSearch(tree, estimator, params, rng, nil)
		return report
	}

	first := run()
	second := run()

	require.Equal(t, first.BestCost, second.BestCost)
	require.Equal(t, first.BestChromosome, second.BestChromosome)
	require.LessOrEqual(t, first.BestCost, bestHeuristicCost)
	require.Len(t, first.Generations, params.Generations)
}

func TestGeneticSearchMonotonicCost(t *testing.T) {
	tree := buildS2Tree(t)
	estimator := testEstimator()
	rng := rand.New(rand.NewSource(7))

	inputCost := estimator.Cost(tree)
	winner, _ := RunGeneticSearch(tree, estimator, DefaultGeneticParams(), rng, nil)
	require.LessOrEqual(t, estimator.Cost(winner), inputCost)
}
