package behavior

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Source is the randomness provider for patrol points, wait times and
// reaction variants.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
	// Float64 returns a random float in [0, 1).
	Float64() float64
}

// lockedSource adapts a math/rand/v2 generator to Source.
// It is safe for concurrent use.
type lockedSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeededSource returns a deterministic Source for seed.
//
// Postcondition: two sources built from the same seed produce the same sequence.
func NewSeededSource(seed uint64) Source {
	return &lockedSource{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewTimeSource returns a Source seeded from the wall clock.
func NewTimeSource() Source {
	return NewSeededSource(uint64(time.Now().UnixNano()))
}

func (s *lockedSource) Intn(n int) int {
	if n <= 0 {
		panic("behavior: Intn called with n <= 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

func (s *lockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// rangeFloat returns a value in [lo, hi].
func rangeFloat(src Source, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + (hi-lo)*src.Float64()
}
