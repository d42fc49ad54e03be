// Package randomness provides the single seedable random stream shared by
// every synthesizer in a generation run, plus a discrete weighted
// distribution used for categorical branching.
package randomness

import (
	"encoding/binary"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

const hexDigits = "0123456789abcdef"

// Source wraps a PCG-backed *rand.Rand. It is not safe for concurrent use;
// a generation run owns exactly one Source.
type Source struct {
	rng  *rand.Rand
	seed uint64
}

// New returns a Source seeded deterministically from seed. Two Sources
// created with the same seed yield identical streams.
func New(seed uint64) *Source {
	return &Source{
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		seed: seed,
	}
}

// NewUnseeded returns a Source seeded from the wall clock. The chosen seed is
// available from Seed so the run can be reproduced later.
func NewUnseeded() *Source {
	return New(uint64(time.Now().UnixNano()))
}

// Seed returns the seed the stream was created with.
func (s *Source) Seed() uint64 {
	return s.seed
}

// Float64 returns a uniform value in [0, 1).
func (s *Source) Float64() float64 {
	return s.rng.Float64()
}

// Uniform returns a uniform value in [lo, hi).
func (s *Source) Uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*s.rng.Float64()
}

// IntRange returns a uniform integer in [lo, hi], both ends inclusive.
func (s *Source) IntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.rng.IntN(hi-lo+1)
}

// Chance reports true with probability p.
func (s *Source) Chance(p float64) bool {
	return s.rng.Float64() < p
}

// Seconds returns a whole-second duration drawn from [lo, hi].
func (s *Source) Seconds(lo, hi int) time.Duration {
	return time.Duration(s.IntRange(lo, hi)) * time.Second
}

// Hex returns n lowercase hexadecimal characters.
func (s *Source) Hex(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = hexDigits[s.rng.IntN(len(hexDigits))]
	}
	return string(b)
}

// Read fills p from the stream. It never fails, which makes a Source usable
// wherever an io.Reader of random bytes is expected.
func (s *Source) Read(p []byte) (int, error) {
	var word [8]byte
	for i := 0; i < len(p); i += 8 {
		binary.LittleEndian.PutUint64(word[:], s.rng.Uint64())
		copy(p[i:], word[:])
	}
	return len(p), nil
}

// UUID returns a version 4 UUID drawn from the stream.
func (s *Source) UUID() string {
	id, err := uuid.NewRandomFromReader(s)
	if err != nil {
		// Read never fails, so this is unreachable in practice.
		return uuid.Nil.String()
	}
	return id.String()
}

// Choice returns a uniformly chosen element of items. It panics on an empty
// slice, matching rand.IntN.
func Choice[T any](s *Source, items []T) T {
	return items[s.rng.IntN(len(items))]
}

// Sample returns k distinct elements of items in random order. If k exceeds
// len(items) every element is returned.
func Sample[T any](s *Source, items []T, k int) []T {
	if k > len(items) {
		k = len(items)
	}
	idx := s.rng.Perm(len(items))[:k]
	out := make([]T, k)
	for i, j := range idx {
		out[i] = items[j]
	}
	return out
}
