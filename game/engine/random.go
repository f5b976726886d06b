package engine

import (
	"encoding/binary"

	"lukechampine.com/frand"
)

// Random is the randomness the engine and the bot need. *rand.Rand from math/rand/v2 satisfies it.
type Random interface {
	// IntN returns a uniform integer in [0, n)
	IntN(n int) int
	// Shuffle permutes n elements using swap
	Shuffle(n int, swap func(i, j int))
}

// IntRange returns a uniform integer in [lo, hi]
func IntRange(r Random, lo, hi int) int {
	return lo + r.IntN(hi-lo+1)
}

// Pick returns a uniformly chosen element of items, which must not be empty
func Pick[T any](r Random, items []T) T {
	return items[r.IntN(len(items))]
}

type cryptoRandom struct{}

func (cryptoRandom) IntN(n int) int                     { return frand.Intn(n) }
func (cryptoRandom) Shuffle(n int, swap func(i, j int)) { frand.Shuffle(n, swap) }

// NewRandom returns a fast cryptographically seeded source, safe for concurrent use
func NewRandom() Random {
	return cryptoRandom{}
}

type seededRandom struct {
	rng *frand.RNG
}

func (r seededRandom) IntN(n int) int                     { return r.rng.Intn(n) }
func (r seededRandom) Shuffle(n int, swap func(i, j int)) { r.rng.Shuffle(n, swap) }

// NewSeededRandom returns a reproducible source: a ChaCha12 stream keyed by the seed.
// It is not safe for concurrent use.
func NewSeededRandom(seed uint64) Random {
	key := make([]byte, 32)
	binary.LittleEndian.PutUint64(key, seed)
	return seededRandom{rng: frand.NewCustom(key, 1024, 12)}
}

// frozenRandom always yields the smallest value and never reorders.
// Simulated games draw from it so they never touch the real game's stream.
type frozenRandom struct{}

func (frozenRandom) IntN(int) int                 { return 0 }
func (frozenRandom) Shuffle(int, func(i, j int)) {}
