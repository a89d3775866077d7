package stats

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBoltProviderCachesBackingLookup(t *testing.T) {
	backing := NewMemoryProvider()
	backing.AddRelation("employees", TableStats{NR: 1000, FR: 100})

	path := filepath.Join(t.TempDir(), "stats.db")
	bp, err := OpenBoltProvider(path, backing)
	require.NoError(t, err)
	defer bp.Close()

	s, known := bp.GetTableStatistics("employees")
	require.True(t, known)
	require.EqualValues(t, 1000, s.NR)

	cached, found := bp.lookupCache("employees")
	require.True(t, found)
	require.EqualValues(t, 1000, cached.NR)

	_, known = bp.GetTableStatistics("ghost")
	require.False(t, known)
}
