package raster

import (
	"math"
	"sync/atomic"
)

// State is the process-wide viewer state: the watched path, the one current
// Buffer, the active level window, and the isoline marker value.
//
// Ownership discipline: the current Buffer is held behind an atomic pointer
// and is only ever replaced whole, never written in place, so any goroutine
// may call Buffer() without locking and will see either the old or the new
// buffer, never a mix. Everything else (level range, pin flag, isoline) has
// a single writer, the event loop, and must not be touched from other
// goroutines.
type State struct {
	Path string

	buf     atomic.Pointer[Buffer]
	rng     LevelRange
	pinned  bool
	isoline float64
}

// NewState loads path and returns a ready State. The initial load failing
// is the caller's fatal-error case; there is nothing to show.
func NewState(path string) (*State, error) {
	b, err := Load(path)
	if err != nil {
		return nil, err
	}
	s := &State{Path: path, isoline: 0.8}
	s.buf.Store(b)
	s.rng = DefaultRange(b)
	return s, nil
}

// Buffer returns the current buffer. Safe from any goroutine.
func (s *State) Buffer() *Buffer {
	return s.buf.Load()
}

// ApplyReload publishes the freshly decoded buffer and, unless the user has
// pinned the level window, resets the window to the new buffer's extremes.
// Reload policy: the range always follows the data except under an explicit
// pin; a reload never silently keeps a stale window.
func (s *State) ApplyReload(b *Buffer) {
	s.buf.Store(b)
	if !s.pinned {
		s.rng = DefaultRange(b)
	}
}

// Reload decodes the watched path again and publishes the result. On error
// the previous buffer stays current and the error is returned for display.
func (s *State) Reload() error {
	b, err := Load(s.Path)
	if err != nil {
		return err
	}
	s.ApplyReload(b)
	return nil
}

// LevelRange returns the active tone-mapping window.
func (s *State) LevelRange() LevelRange {
	return s.rng
}

// SetLevelRange records the window, swapping inverted endpoints. NaN or
// infinite endpoints fall back to the data-derived default instead of
// poisoning the tone map.
func (s *State) SetLevelRange(lo, hi float64) {
	r := LevelRange{Lo: lo, Hi: hi}
	if !r.Valid() {
		s.rng = DefaultRange(s.Buffer())
		return
	}
	s.rng = r.Normalized()
}

// ResetRange drops back to the buffer's min/max window.
func (s *State) ResetRange() {
	s.rng = DefaultRange(s.Buffer())
}

// Pinned reports whether the user has pinned the level window against
// reload resets.
func (s *State) Pinned() bool {
	return s.pinned
}

// SetPinned sets the pin flag.
func (s *State) SetPinned(p bool) {
	s.pinned = p
}

// Isoline returns the marker value.
func (s *State) Isoline() float64 {
	return s.isoline
}

// SetIsoline records the marker value. The isoline is cosmetic and
// unconstrained, but NaN is ignored so the marker always has a drawable
// position.
func (s *State) SetIsoline(v float64) {
	if math.IsNaN(v) {
		return
	}
	s.isoline = v
}
