package stats

import "strings"

// MemoryProvider is a simple map-backed Provider, the in-memory default
// analogous to the teacher's mem.Database for table storage. Relation
// names are matched case-insensitively.
type MemoryProvider struct {
	relations map[string]TableStats
}

// NewMemoryProvider builds an empty MemoryProvider; call AddRelation to
// populate it.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{relations: map[string]TableStats{}}
}

// AddRelation records statistics for a relation, applying the §3.3
// derivation rules for any missing BR/FR before storing.
func (p *MemoryProvider) AddRelation(name string, s TableStats) {
	if s.Distinct == nil {
		s.Distinct = map[string]int64{}
	}
	p.relations[strings.ToLower(name)] = Derive(s)
}

// GetTableStatistics implements Provider.
func (p *MemoryProvider) GetTableStatistics(relation string) (TableStats, bool) {
	s, ok := p.relations[strings.ToLower(relation)]
	if !ok {
		return DefaultStats, false
	}
	return s, true
}
