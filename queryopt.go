// Package queryopt wires the front-end, rewrite rules, optimizer, and
// cost estimator into the five public operations of §6: ParseQuery,
// OptimizeQuery, OptimizeQueryWithGeneticAlgorithm, GetCost, and
// PrintTree.
package queryopt

import (
	"context"
	"math/rand"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"

	"github.com/InfedmixDBMS/queryopt/algebra"
	"github.com/InfedmixDBMS/queryopt/cost"
	"github.com/InfedmixDBMS/queryopt/optimizer"
	"github.com/InfedmixDBMS/queryopt/sqlfront"
	"github.com/InfedmixDBMS/queryopt/stats"
)

// Engine bundles a statistics provider and logger behind the five public
// operations, so a caller configures them once and reuses the Engine
// across queries (§5: "no global mutable state beyond an injected
// statistics object").
type Engine struct {
	estimator *cost.Estimator
	log       logrus.FieldLogger
}

// New builds an Engine over the given statistics provider. A nil logger
// defaults to logrus's standard logger.
func New(provider stats.Provider, log logrus.FieldLogger) *Engine {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Engine{estimator: cost.New(provider, log), log: log}
}

// ParseQuery parses sql into an algebra tree, per §6.
func (e *Engine) ParseQuery(sql string) (algebra.Node, error) {
	log := e.log.WithField("run_id", newRunID()).WithField("op", "parse_query")
	tree, err := sqlfront.Parse(sql)
	if err != nil {
		log.WithError(err).Warn("queryopt: parse failed")
		return nil, err
	}
	return tree, nil
}

// OptimizeQuery runs the six fixed heuristic strategies of §4.3.1 over
// tree and returns the best-found rewrite plus a full report.
func (e *Engine) OptimizeQuery(ctx context.Context, tree algebra.Node) (algebra.Node, optimizer.EnsembleReport) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "queryopt.OptimizeQuery")
	defer span.Finish()
	_ = ctx
	log := e.log.WithField("run_id", newRunID()).WithField("op", "optimize_query")
	best, report := optimizer.RunHeuristicEnsemble(tree, e.estimator, log)
	log.WithField("winner", report.Winner).Info("queryopt: heuristic ensemble complete")
	return best, report
}

// OptimizeQueryWithGeneticAlgorithm runs the §4.3.2 genetic search over
// tree. A nil rng seeds a fresh one from the run's UUID-derived seed,
// otherwise rng is used as-is so callers can reproduce a run (§5:
// "seed-injectable RNG").
func (e *Engine) OptimizeQueryWithGeneticAlgorithm(ctx context.Context, tree algebra.Node, params optimizer.GeneticParams, rng *rand.Rand) (algebra.Node, optimizer.GeneticReport) {
	runID, seed := newRunIDWithSeed()
	span, ctx := opentracing.StartSpanFromContext(ctx, "queryopt.OptimizeQueryWithGeneticAlgorithm")
	defer span.Finish()
	_ = ctx
	log := e.log.WithField("run_id", runID).WithField("op", "optimize_query_with_genetic_algorithm")
	if rng == nil {
		rng = rand.New(rand.NewSource(seed))
	}
	best, report := optimizer.RunGeneticSearch(tree, e.estimator, params, rng, log)
	log.WithField("best_cost", report.BestCost).Info("queryopt: genetic search complete")
	return best, report
}

// GetCost estimates tree's cost under the Engine's statistics provider.
func (e *Engine) GetCost(tree algebra.Node) float64 {
	return e.estimator.Cost(tree)
}

// PrintTree renders tree as an indented pre-order listing.
func (e *Engine) PrintTree(tree algebra.Node) string {
	return algebra.PrintTree(tree)
}

// newRunID mints a per-call correlation ID for log lines, falling back to
// the nil UUID if the platform's random source is unavailable rather than
// failing the operation over a logging detail.
func newRunID() string {
	id, err := uuid.NewV4()
	if err != nil {
		return uuid.Nil.String()
	}
	return id.String()
}

// newRunIDWithSeed mints a run ID and derives a deterministic int64 seed
// from its first eight bytes, so a logged run_id is enough to reproduce a
// genetic run whose caller didn't supply its own *rand.Rand.
func newRunIDWithSeed() (string, int64) {
	id, err := uuid.NewV4()
	if err != nil {
		id = uuid.Nil
	}
	b := id.Bytes()
	var seed int64
	for _, v := range b[:8] {
		seed = seed<<8 | int64(v)
	}
	if seed < 0 {
		seed = -seed
	}
	return id.String(), seed
}
