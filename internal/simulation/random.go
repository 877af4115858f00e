package simulation

import "math/rand/v2"

// pcgStream decorrelates the second PCG word from the seed
const pcgStream = 0x9e3779b97f4a7c15

// RandomSource is the single uniform generator a World draws from. Every draw
// happens in a fixed order within a tick, so a given seed and command
// sequence always reproduce the same trajectory.
type RandomSource interface {
	Float64() float64
}

// NewRandomSource returns a seeded PCG generator
func NewRandomSource(seed uint64) RandomSource {
	return rand.New(rand.NewPCG(seed, seed^pcgStream))
}

func uniform(rng RandomSource, lo, hi float64) float64 {
	return lo + (hi-lo)*rng.Float64()
}
