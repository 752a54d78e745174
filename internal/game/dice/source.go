// Package dice provides the randomness abstraction used by hit rolls, loot rolls,
// and dice-valued ability effects. Every random draw in the combat core goes
// through a Source so tests and replays can pin outcomes.
package dice

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand"
	"sync"
)

// Source is the randomness provider.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand, for live play.
func NewCryptoSource() Source {
	return cryptoSource{}
}

// Intn panics when n <= 0 or crypto/rand fails.
func (cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	return int(v.Int64())
}

// SeededSource is a deterministic Source. Two sources built from the same seed
// produce the same sequence, which makes battles replayable.
type SeededSource struct {
	mu   sync.Mutex
	seed int64
	rng  *mrand.Rand
	pos  int64
}

// NewSeededSource returns a deterministic Source for seed.
func NewSeededSource(seed int64) *SeededSource {
	return &SeededSource{seed: seed, rng: mrand.New(mrand.NewSource(seed))}
}

// Intn returns a deterministic value in [0, n).
//
// Precondition: n > 0.
func (s *SeededSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pos++
	return s.rng.Intn(n)
}

// Seed returns the seed the source was built from.
func (s *SeededSource) Seed() int64 { return s.seed }

// Draws returns how many values have been drawn so far.
func (s *SeededSource) Draws() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}

// FixedSource replays a scripted sequence of values, cycling when exhausted.
// Values are reduced modulo n on each draw. Intended for tests.
type FixedSource struct {
	mu     sync.Mutex
	values []int
	next   int
}

// NewFixedSource returns a FixedSource that yields values in order.
//
// Precondition: len(values) > 0.
func NewFixedSource(values ...int) *FixedSource {
	if len(values) == 0 {
		panic("dice: NewFixedSource requires at least one value")
	}
	return &FixedSource{values: values}
}

// Intn returns the next scripted value modulo n.
func (f *FixedSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	v := f.values[f.next%len(f.values)]
	f.next++
	if v < 0 {
		v = -v
	}
	return v % n
}
