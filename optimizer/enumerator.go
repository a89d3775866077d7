package optimizer

import (
	"github.com/sirupsen/logrus"

	"github.com/InfedmixDBMS/queryopt/algebra"
	"github.com/InfedmixDBMS/queryopt/cost"
	"github.com/InfedmixDBMS/queryopt/rules"
)

// StrategyResult is one heuristic strategy's outcome, kept around so a
// caller can inspect every candidate, not just the winner (§4 Supplemented
// Features: EnsembleReport).
type StrategyResult struct {
	Name string
	Cost float64
	Tree algebra.Node
}

// EnsembleReport carries the per-strategy results and the index of the
// winner, for explain-style consumers.
type EnsembleReport struct {
	Results []StrategyResult
	Winner  int
}

// applySteps runs a strategy's fixed rule sequence against a private clone
// of n, returning the rewritten tree. Errors from a rule are logged and
// treated as a no-op for that single step, since §7 reserves hard errors
// for front-end/validation failures, not rule application.
func applySteps(steps []step, n algebra.Node, log logrus.FieldLogger) algebra.Node {
	current := algebra.Clone(n)
	for _, s := range steps {
		var next algebra.Node
		var err error
		if s.isPushPi {
			next, _, err = rules.PushProjection(current)
		} else {
			next, _, err = rules.Apply(s.id, current)
		}
		if err != nil {
			log.WithError(err).Warn("optimizer: rule application failed, skipping step")
			continue
		}
		current = next
	}
	return current
}

// RunHeuristicEnsemble runs all six fixed strategies (§4.3.1) against
// independent clones of n, scores each with estimator, and returns a full
// report plus the winning tree. Per the monotonic-cost contract (P3), the
// winner is compared against the cost of the untouched input; if no
// strategy beats it, n itself is returned unchanged.
func RunHeuristicEnsemble(n algebra.Node, estimator *cost.Estimator, log logrus.FieldLogger) (algebra.Node, EnsembleReport) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	baseline := estimator.Cost(n)

	report := EnsembleReport{Results: make([]StrategyResult, len(Strategies)), Winner: -1}
	bestCost := baseline
	var bestTree algebra.Node

	for i, strat := range Strategies {
		tree := applySteps(strat.Steps, n, log)
		c := estimator.Cost(tree)
		report.Results[i] = StrategyResult{Name: strat.Name, Cost: c, Tree: tree}
		if c < bestCost {
			bestCost = c
			bestTree = tree
			report.Winner = i
		}
	}

	if bestTree == nil {
		return n, report
	}
	return bestTree, report
}
