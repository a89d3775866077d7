// Package cost implements the cost estimator (§4.2): a bottom-up,
// per-operator cost formula driven by table statistics, plus the
// selectivity model in selectivity.go.
package cost

import (
	"context"
	"math"
	"sync"

	"github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"

	"github.com/InfedmixDBMS/queryopt/algebra"
	"github.com/InfedmixDBMS/queryopt/errorkinds"
	"github.com/InfedmixDBMS/queryopt/stats"
)

// Estimator costs an algebra tree against a Provider, per the formulas in
// §4.2. Its only state is the set of relations already warned about,
// guarded by a mutex, so it is safe for concurrent use across independent
// trees: nothing it does mutates the provider or the tree.
type Estimator struct {
	provider stats.Provider
	log      logrus.FieldLogger
	mu       sync.Mutex
	warned   map[string]struct{}
}

// New builds an Estimator over the given statistics provider. A nil
// logger defaults to logrus's standard logger.
func New(provider stats.Provider, log logrus.FieldLogger) *Estimator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Estimator{provider: provider, log: log, warned: map[string]struct{}{}}
}

// Cost computes the dimensionless score of a tree, per the table in §4.2.
// A nil child contributes 0; an unrecognized tag contributes the sum of
// its children's costs.
func (e *Estimator) Cost(n algebra.Node) float64 {
	span, _ := opentracing.StartSpanFromContext(context.Background(), "cost.Cost")
	defer span.Finish()
	return e.cost(n)
}

func (e *Estimator) cost(n algebra.Node) float64 {
	if n == nil {
		return 0
	}
	switch v := n.(type) {
	case *algebra.TableNode:
		return float64(e.statsFor(v.Ref.Relation).BR)
	case *algebra.SelectNode:
		return e.cost(v.Child) * e.Selectivity(v.Condition)
	case *algebra.ProjectNode:
		return e.cost(v.Child) * 1.10
	case *algebra.JoinNode:
		l, r := e.cost(v.Left), e.cost(v.Right)
		return l*r + 0.5*(l+r)
	case *algebra.NaturalJoinNode:
		l, r := e.cost(v.Left), e.cost(v.Right)
		return (l + r) * 1.30
	case *algebra.HashJoinNode:
		l, r := e.cost(v.Left), e.cost(v.Right)
		return (l + r) * 1.20
	case *algebra.CartesianProductNode:
		l, r := e.cost(v.Left), e.cost(v.Right)
		return l * r
	case *algebra.OrderByNode:
		c := e.cost(v.Child)
		tuples := c * 100
		return c + tuples*math.Log2(math.Max(tuples, 1))
	case *algebra.LimitNode:
		c := e.cost(v.Child)
		return c * math.Min(float64(v.N)/1000.0, 1.0)
	case *algebra.UpdateNode:
		return e.cost(v.Child) * 2.50
	default:
		total := 0.0
		for _, c := range n.Children() {
			total += e.cost(c)
		}
		return total
	}
}

// statsFor resolves a relation's statistics, logging an UnknownStatistics
// warning exactly once per relation per Estimator (§7: non-fatal, default
// statistics used, warning emitted).
func (e *Estimator) statsFor(relation string) stats.TableStats {
	if e.provider == nil {
		return stats.DefaultStats
	}
	s, known := e.provider.GetTableStatistics(relation)
	if known {
		return s
	}
	e.mu.Lock()
	_, logged := e.warned[relation]
	e.warned[relation] = struct{}{}
	e.mu.Unlock()
	if !logged {
		e.log.WithField("relation", relation).
			Warn(errorkinds.UnknownStatistics.New(relation).Error())
	}
	return stats.DefaultStats
}
