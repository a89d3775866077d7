package queryopt

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/InfedmixDBMS/queryopt/optimizer"
	"github.com/InfedmixDBMS/queryopt/stats"
)

func testEngine() *Engine {
	provider := stats.NewMemoryProvider()
	provider.AddRelation("students", stats.TableStats{NR: 5000, LR: 50, BR: 50})
	provider.AddRelation("departments", stats.TableStats{NR: 20, LR: 50, BR: 2})
	provider.AddRelation("projects", stats.TableStats{NR: 200, LR: 50, BR: 5})
	return New(provider, nil)
}

func TestEngineParseOptimizeAndCost(t *testing.T) {
	e := testEngine()

	tree, err := e.ParseQuery(`SELECT s.name, d.dept_name, p.project_name
FROM students s
JOIN departments d ON s.dept_id = d.id
JOIN projects p ON s.project_id = p.id
WHERE s.age > 20 AND d.budget > 100000`)
	require.NoError(t, err)

	inputCost := e.GetCost(tree)
	best, report := e.OptimizeQuery(context.Background(), tree)
	require.LessOrEqual(t, e.GetCost(best), inputCost)
	require.Len(t, report.Results, len(optimizer.Strategies))

	rendered := e.PrintTree(best)
	require.NotEmpty(t, rendered)
}

func TestEngineOptimizeWithGeneticAlgorithmDeterministic(t *testing.T) {
	e := testEngine()
	tree, err := e.ParseQuery("SELECT s.name FROM students s WHERE s.age > 20")
	require.NoError(t, err)

	params := optimizer.DefaultGeneticParams()
	run := func() optimizer.GeneticReport {
		rng := rand.New(rand.NewSource(99))
		_, report := e.OptimizeQueryWithGeneticAlgorithm(context.Background(), tree, params, rng)
		return report
	}

	first := run()
	second := run()
	require.Equal(t, first.BestCost, second.BestCost)
	require.Equal(t, first.BestChromosome, second.BestChromosome)
}

func TestEngineParseQueryRejectsMalformedSQL(t *testing.T) {
	e := testEngine()
	_, err := e.ParseQuery("SELECT FROM")
	require.Error(t, err)
}
