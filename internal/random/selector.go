// Package random holds the two sampling primitives every random choice in a
// match goes through: uniform sampling without replacement and weighted
// picks. The generator is injected so tests can script outcomes.
package random

import (
	"time"

	"golang.org/x/exp/rand"
)

// Source is the generator a Selector draws from.
type Source interface {
	// Intn returns a uniform integer in [0, n). n is always > 0.
	Intn(n int) int
	// Float64 returns a uniform float in [0, 1).
	Float64() float64
}

// Selector draws from a Source. It is owned by a single match and is not
// safe for concurrent use.
type Selector struct {
	src Source
}

// New returns a Selector backed by a PCG generator. A zero seed means
// time based.
func New(seed uint64) *Selector {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Selector{src: rand.New(rand.NewSource(seed))}
}

// NewWithSource wraps an arbitrary generator.
func NewWithSource(src Source) *Selector {
	return &Selector{src: src}
}

// Intn returns a uniform integer in [0, n). It returns 0 when n <= 0.
func (s *Selector) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return s.src.Intn(n)
}

// SampleIndexes returns k distinct indexes drawn uniformly without
// replacement from [0, n), in draw order. k is clamped to [0, n].
func (s *Selector) SampleIndexes(n, k int) []int {
	if k > n {
		k = n
	}
	if k <= 0 {
		return nil
	}
	// partial Fisher-Yates over an index table
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + s.Intn(n-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx[:k]
}

// WeightedIndex draws a point in [0, total) and returns the first index
// whose running cumulative weight exceeds it, scanning left to right.
// Negative weights count as zero. When every weight is zero the choice is
// uniform. If rounding leaves the point past the final crossing, the first
// positive-weight index wins. It returns -1 for an empty slice.
func (s *Selector) WeightedIndex(weights []float64) int {
	if len(weights) == 0 {
		return -1
	}
	total := 0.0
	first := -1
	for i, w := range weights {
		if w > 0 {
			total += w
			if first < 0 {
				first = i
			}
		}
	}
	if total <= 0 {
		return s.Intn(len(weights))
	}
	point := s.src.Float64() * total
	cum := 0.0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		cum += w
		if cum > point {
			return i
		}
	}
	return first
}

// Dice rolls a six-sided die: one face sampled from the six.
func (s *Selector) Dice() int {
	return Sample(s, []int{1, 2, 3, 4, 5, 6}, 1)[0]
}

// Sample returns up to k distinct elements of pool drawn uniformly without
// replacement. The pool is not modified.
func Sample[T any](s *Selector, pool []T, k int) []T {
	idx := s.SampleIndexes(len(pool), k)
	out := make([]T, len(idx))
	for i, j := range idx {
		out[i] = pool[j]
	}
	return out
}

// Pick returns one element of items chosen uniformly. ok is false for an
// empty slice.
func Pick[T any](s *Selector, items []T) (v T, ok bool) {
	if len(items) == 0 {
		return v, false
	}
	return items[s.Intn(len(items))], true
}

// PickWeighted applies WeightedIndex using weight for each item.
func PickWeighted[T any](s *Selector, items []T, weight func(T) float64) (v T, ok bool) {
	if len(items) == 0 {
		return v, false
	}
	ws := make([]float64, len(items))
	for i, it := range items {
		ws[i] = weight(it)
	}
	return items[s.WeightedIndex(ws)], true
}

// Shuffle permutes items in place.
func Shuffle[T any](s *Selector, items []T) {
	for i := len(items) - 1; i > 0; i-- {
		j := s.Intn(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}
