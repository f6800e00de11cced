package testutil

import (
	"math"
	"math/rand/v2"
	"sort"
	"sync"
)

// RNG is a seeded, deterministic source for test workloads.
// It is safe for concurrent use.
type RNG struct {
	mu   sync.Mutex
	rand *rand.Rand
	seed int64

	// zipf caches cumulative weights per (n, s).
	zipf map[zipfKey][]float64
}

type zipfKey struct {
	n int
	s float64
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: newRand(seed),
		seed: seed,
		zipf: make(map[zipfKey][]float64),
	}
}

func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)) //nolint:gosec // test data
}

// Reset rewinds the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand = newRand(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a pseudo-random number in [0, n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.IntN(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Float64 returns a pseudo-random number in [0.0, 1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Zipf returns a Zipfian-distributed value in [0, n).
// P(k) ∝ 1/k^s; s=1.5 concentrates most picks on a few values, which
// produces the large shared-endpoint buckets real link graphs have.
func (r *RNG) Zipf(n int, s float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.zipfLocked(n, s)
}

// zipfLocked draws from the cached cumulative distribution (caller holds mu).
func (r *RNG) zipfLocked(n int, s float64) int {
	if n <= 1 {
		return 0
	}

	cdf, ok := r.zipf[zipfKey{n, s}]
	if !ok {
		cdf = make([]float64, n)
		var sum float64
		for k := range n {
			sum += 1 / math.Pow(float64(k+1), s)
			cdf[k] = sum
		}
		r.zipf[zipfKey{n, s}] = cdf
	}

	u := r.rand.Float64() * cdf[n-1]
	return min(sort.SearchFloat64s(cdf, u), n-1)
}
