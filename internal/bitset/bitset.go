// Package bitset is a fixed-size bitmap over []uint64 words.
package bitset

import "math/bits"

// Set is a fixed-capacity bitmap. The zero value holds no bits.
type Set struct {
	words []uint64
	n     int
}

// New returns a Set able to hold n bits, all clear.
func New(n int) *Set {
	return &Set{words: make([]uint64, (n+63)>>6), n: n}
}

// Len returns the capacity in bits.
func (s *Set) Len() int { return s.n }

// Has reports whether bit i is set. Out-of-range bits are never set.
func (s *Set) Has(i int) bool {
	if i < 0 || i >= s.n {
		return false
	}
	return s.words[i>>6]&(1<<(uint(i)&63)) != 0
}

// Set sets bit i and reports whether it was previously clear.
func (s *Set) Set(i int) bool {
	if i < 0 || i >= s.n {
		return false
	}
	w, m := i>>6, uint64(1)<<(uint(i)&63)
	was := s.words[w]&m != 0
	s.words[w] |= m
	return !was
}

// Unset clears bit i and reports whether it was previously set.
func (s *Set) Unset(i int) bool {
	if i < 0 || i >= s.n {
		return false
	}
	w, m := i>>6, uint64(1)<<(uint(i)&63)
	was := s.words[w]&m != 0
	s.words[w] &^= m
	return was
}

// Clear unsets every bit.
func (s *Set) Clear() {
	clear(s.words)
}

// Count returns the number of set bits.
func (s *Set) Count() int {
	n := 0
	for _, w := range s.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// Each calls fn with the index of every set bit in ascending order.
func (s *Set) Each(fn func(i int)) {
	for wi, w := range s.words {
		for w != 0 {
			tz := bits.TrailingZeros64(w)
			fn(wi<<6 + tz)
			w &= w - 1
		}
	}
}
