// Package random wraps the reward engine's randomness behind an injectable
// source so card type/value draws can be pinned in tests.
package random

import "math/rand/v2"

type Source interface {
	// Float64 returns a draw in [0, 1).
	Float64() float64
	// IntN returns a draw in [0, n).
	IntN(n int) int
}

type source struct {
	r *rand.Rand
}

func (s source) Float64() float64 { return s.r.Float64() }
func (s source) IntN(n int) int   { return s.r.IntN(n) }

// New returns a non-deterministically seeded source.
func New() Source {
	return source{r: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// Seeded returns a reproducible source for tests.
func Seeded(seed uint64) Source {
	return source{r: rand.New(rand.NewPCG(seed, seed))}
}
