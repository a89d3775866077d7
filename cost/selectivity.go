package cost

import (
	"strings"

	"github.com/InfedmixDBMS/queryopt/algebra"
	"github.com/InfedmixDBMS/queryopt/cond"
)

// Selectivity estimates a condition's selectivity in [0,1], per §4.2's
// baseline model: a per-comparator table for leaves, independence for
// AND, inclusion-exclusion for OR. When the Estimator has a provider, an
// "=" leaf whose left operand is qualified by a relation the provider
// knows uses 1/V(a,r) (the richer estimator §4.2 allows); any leaf that
// can't be resolved that way, or whose comparator isn't "=", falls back to
// the fixed table.
func (e *Estimator) Selectivity(expr cond.Expr) float64 {
	switch v := expr.(type) {
	case cond.Leaf:
		return e.leafSelectivity(v)
	case cond.Binary:
		left := e.Selectivity(v.Left)
		right := e.Selectivity(v.Right)
		switch v.Operator {
		case cond.And:
			return left * right
		case cond.Or:
			return left + right - left*right
		default:
			return (left + right) / 2
		}
	default:
		return 0.5
	}
}

func (e *Estimator) leafSelectivity(leaf cond.Leaf) float64 {
	op := cond.Comparator(leaf.Condition)
	if op == "=" {
		if v, ok := e.equalitySelectivityFromStats(leaf.Condition); ok {
			return v
		}
	}
	switch op {
	case "=":
		return 0.10
	case "<>", "!=":
		return 0.90
	case "<=", ">=":
		return 0.40
	case "<", ">":
		return 0.30
	case "LIKE":
		return 0.20
	default:
		return 0.50
	}
}

// equalitySelectivityFromStats implements the richer estimator §4.2
// permits: for an "=" leaf whose left operand resolves to a known
// "relation.attribute", selectivity is 1/V(a,r) rather than the flat 0.10.
// It returns ok=false whenever the attribute or relation can't be
// resolved, leaving the baseline fallback in force.
func (e *Estimator) equalitySelectivityFromStats(condition string) (float64, bool) {
	if e == nil || e.provider == nil {
		return 0, false
	}
	idx := strings.Index(condition, "=")
	if idx <= 0 {
		return 0, false
	}
	left := strings.TrimSpace(condition[:idx])
	attr := algebra.ParseAttr(left)
	if attr.Qualifier == "" {
		return 0, false
	}
	s, known := e.provider.GetTableStatistics(attr.Qualifier)
	if !known {
		return 0, false
	}
	v := s.DistinctValues(attr.Name)
	if v <= 0 {
		return 0, false
	}
	return 1.0 / float64(v), true
}
