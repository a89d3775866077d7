package stats

import (
	"bytes"
	"encoding/gob"

	"github.com/boltdb/bolt"
)

var statsBucket = []byte("table_stats")

// BoltProvider wraps a backing Provider with an on-disk cache: a lookup
// first checks the bolt database, and on a miss asks the backing provider
// and persists the result for next time. This is the concrete,
// swappable shape of the "storage catalog" that §4.5 treats as an
// external collaborator.
type BoltProvider struct {
	db      *bolt.DB
	backing Provider
}

// OpenBoltProvider opens (creating if absent) a bolt database at path and
// wraps backing with it. Closing the returned *BoltProvider is the
// caller's responsibility (via Close).
func OpenBoltProvider(path string, backing Provider) (*BoltProvider, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(statsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &BoltProvider{db: db, backing: backing}, nil
}

// Close releases the underlying bolt database handle.
func (p *BoltProvider) Close() error { return p.db.Close() }

// GetTableStatistics implements Provider, checking the on-disk cache
// before falling back to the backing provider (§4.5: the core is
// indifferent to how the provider is implemented, since it only reads).
func (p *BoltProvider) GetTableStatistics(relation string) (TableStats, bool) {
	if s, ok := p.lookupCache(relation); ok {
		return s, true
	}

	s, known := p.backing.GetTableStatistics(relation)
	if !known {
		return s, false
	}
	p.storeCache(relation, s)
	return s, true
}

func (p *BoltProvider) lookupCache(relation string) (TableStats, bool) {
	var (
		s     TableStats
		found bool
	)
	_ = p.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(statsBucket)
		if b == nil {
			return nil
		}
		raw := b.Get([]byte(relation))
		if raw == nil {
			return nil
		}
		dec := gob.NewDecoder(bytes.NewReader(raw))
		if err := dec.Decode(&s); err != nil {
			return err
		}
		found = true
		return nil
	})
	return s, found
}

func (p *BoltProvider) storeCache(relation string, s TableStats) {
	_ = p.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(statsBucket)
		if b == nil {
			return nil
		}
		var buf bytes.Buffer
		if err := gob.NewEncoder(&buf).Encode(s); err != nil {
			return err
		}
		return b.Put([]byte(relation), buf.Bytes())
	})
}
