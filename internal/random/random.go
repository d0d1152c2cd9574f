// Package random provides the seeded random source shared by content
// selection, reward draws and message picking.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"sync"
)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// Source is a goroutine-safe pseudo-random source.
type Source struct {
	mu   sync.Mutex
	rng  *rand.Rand
	seed int64
}

// New creates a Source from seed. A zero seed is replaced by NewSeed.
func New(seed int64) (*Source, error) {
	if seed == 0 {
		s, err := NewSeed()
		if err != nil {
			return nil, err
		}
		seed = s
	}
	return &Source{rng: rand.New(rand.NewSource(seed)), seed: seed}, nil
}

// MustNew is New for a non-zero seed, which cannot fail.
func MustNew(seed int64) *Source {
	s, err := New(seed)
	if err != nil {
		panic(err)
	}
	return s
}

// Seed returns the seed the source was created with.
func (s *Source) Seed() int64 {
	return s.seed
}

// Intn returns a uniform integer in [0, n). It panics if n <= 0.
func (s *Source) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

// Shuffle pseudo-randomizes the order of n elements using swap.
func (s *Source) Shuffle(n int, swap func(i, j int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng.Shuffle(n, swap)
}

// Pick returns a uniformly chosen element of items and false when items is empty.
func Pick[T any](s *Source, items []T) (T, bool) {
	if len(items) == 0 {
		var zero T
		return zero, false
	}
	return items[s.Intn(len(items))], true
}

// Shuffled returns a shuffled copy of items.
func Shuffled[T any](s *Source, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	s.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
