// Package stats implements the statistics-provider side of the cost model
// (§3.3, §4.5): per-relation tuple counts, block counts, and distinct-value
// histograms, with the derivation rules the spec requires when a provider
// supplies only part of the tuple.
package stats

import "math"

// TableStats holds the per-relation counters consumed by package cost.
type TableStats struct {
	// NR is the tuple count n_r.
	NR int64
	// LR is the tuple length in bytes, l_r.
	LR int64
	// BR is the block count b_r.
	BR int64
	// FR is the blocking factor f_r.
	FR int64
	// Distinct maps attribute name to V(a,r), the distinct-value count.
	Distinct map[string]int64
}

// DefaultStats is returned for any relation a Provider does not recognize
// (§4.5): "undefined relations yield default (1000, 10, 100, 100, {})" —
// n_r, b_r, l_r, f_r in that order per §4.5's tuple shape.
var DefaultStats = TableStats{NR: 1000, LR: 100, BR: 10, FR: 100, Distinct: map[string]int64{}}

// DistinctValues returns V(a,r) for the named attribute, falling back to n_r/10
// per §3.3 when the attribute has no recorded histogram entry.
func (s TableStats) DistinctValues(attr string) int64 {
	if s.Distinct != nil {
		if v, ok := s.Distinct[attr]; ok {
			return v
		}
	}
	if s.NR <= 0 {
		return 0
	}
	return s.NR / 10
}

// Derive fills in BR and FR when only a partial tuple was supplied, per
// §3.3: "if b_r missing, b_r = ceil(n_r/f_r); if both b_r and f_r missing,
// f_r <- 100 then derive b_r." A zero value for BR or FR is treated as
// "missing" since neither is meaningfully zero for a non-empty relation.
func Derive(s TableStats) TableStats {
	switch {
	case s.BR == 0 && s.FR == 0:
		s.FR = 100
		s.BR = ceilDiv(s.NR, s.FR)
	case s.BR == 0:
		s.BR = ceilDiv(s.NR, s.FR)
	case s.FR == 0 && s.BR > 0:
		s.FR = ceilDiv(s.NR, s.BR)
	}
	return s
}

func ceilDiv(n, d int64) int64 {
	if d <= 0 {
		return 0
	}
	return int64(math.Ceil(float64(n) / float64(d)))
}

// Provider is the statistics interface the cost estimator consumes (§4.5):
// "get_table_statistics(name) -> {...} — total, side-effect-free, MUST be
// defined for every relation named in the tree; undefined relations yield
// default statistics." Implementations MUST NOT mutate shared state when
// queried, and MUST NOT return an error for an unknown relation — they
// return DefaultStats instead, and the caller (package cost) is
// responsible for logging the UnknownStatistics warning (§7).
type Provider interface {
	GetTableStatistics(relation string) (stats TableStats, known bool)
}
