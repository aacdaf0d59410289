// Package instance holds per-instance render data as a struct of arrays, and the
// drawable interface the data is flushed to.
package instance

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Store is a fixed-capacity struct-of-arrays buffer of instance transforms and
// colors. A single owner mutates it and records touched ranges with MarkDirty;
// Flush pushes the accumulated range to a Sink.
type Store struct {
	Transforms []mgl32.Mat4
	Colors     []mgl32.Vec3

	dirtyLo, dirtyHi int // half-open, empty when lo >= hi
	writes           uint64
}

// NewStore allocates a store for capacity instances.
func NewStore(capacity int) *Store {
	return &Store{
		Transforms: make([]mgl32.Mat4, capacity),
		Colors:     make([]mgl32.Vec3, capacity),
	}
}

// Len returns the capacity.
func (s *Store) Len() int {
	return len(s.Transforms)
}

// Set writes one instance. The caller marks the range dirty.
func (s *Store) Set(i int, m mgl32.Mat4, c mgl32.Vec3) {
	s.Transforms[i] = m
	s.Colors[i] = c
	s.writes++
}

// SetColor overwrites the color of one instance.
func (s *Store) SetColor(i int, c mgl32.Vec3) {
	s.Colors[i] = c
	s.writes++
}

// Writes counts Set and SetColor calls since allocation.
func (s *Store) Writes() uint64 {
	return s.writes
}

// MarkDirty extends the pending upload range to cover [lo, hi).
func (s *Store) MarkDirty(lo, hi int) {
	lo = max(lo, 0)
	hi = min(hi, s.Len())
	if lo >= hi {
		return
	}
	if s.dirtyLo >= s.dirtyHi {
		s.dirtyLo, s.dirtyHi = lo, hi
		return
	}
	s.dirtyLo = min(s.dirtyLo, lo)
	s.dirtyHi = max(s.dirtyHi, hi)
}

// Dirty returns the pending range.
func (s *Store) Dirty() (lo, hi int, ok bool) {
	return s.dirtyLo, s.dirtyHi, s.dirtyLo < s.dirtyHi
}

// Flush uploads the pending range to sink and clears it. It reports whether
// anything was uploaded.
func (s *Store) Flush(sink Sink) bool {
	lo, hi, ok := s.Dirty()
	if !ok {
		return false
	}
	s.dirtyLo, s.dirtyHi = 0, 0
	if sink != nil {
		sink.Upload(s, lo, hi)
	}
	return true
}

// Reset zeroes every instance and drops the pending range.
func (s *Store) Reset() {
	clear(s.Transforms)
	clear(s.Colors)
	s.dirtyLo, s.dirtyHi = 0, 0
}
