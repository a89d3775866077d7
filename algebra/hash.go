package algebra

import "github.com/mitchellh/hashstructure"

// StructuralHash returns a hash over n's shape and values, independent of
// node identity: two distinct trees built from equal constructors hash
// equal. Used by package optimizer to memoize genetic-search fitness
// evaluations across chromosomes that land on the same tree shape, and by
// tests as a cheap equality probe alongside Equal.
func StructuralHash(n Node) (uint64, error) {
	return hashstructure.Hash(n, nil)
}
