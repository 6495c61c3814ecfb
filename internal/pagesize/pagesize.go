// Package pagesize derives how many list items fit on a page from the width
// of the viewport.
package pagesize

import (
	"slices"
	"sync"
)

// Breakpoints in CSS pixels and the page size of each tier.
const (
	WideMinWidth   = 1280
	MediumMinWidth = 1024

	WidePageSize   = 30
	MediumPageSize = 20
	NarrowPageSize = 10

	// DefaultPageSize is used before the viewport width is known so the first
	// render never holds more items than a narrow viewport can show.
	DefaultPageSize = NarrowPageSize
)

// ForWidth maps a viewport width to a page size.
func ForWidth(width int) int {
	switch {
	case width >= WideMinWidth:
		return WidePageSize
	case width >= MediumMinWidth:
		return MediumPageSize
	default:
		return NarrowPageSize
	}
}

// Sizer tracks the current viewport width.
type Sizer struct {
	mu        sync.Mutex
	known     bool
	width     int
	size      int
	listeners []func(size int)
}

// New returns a sizer whose viewport is not yet known.
func New() *Sizer {
	return &Sizer{size: DefaultPageSize}
}

// PageSize returns the current page size.
func (s *Sizer) PageSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

// Width returns the last reported width and whether one was reported.
func (s *Sizer) Width() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.known
}

// OnChange registers fn to run after the page size changes.
func (s *Sizer) OnChange(fn func(size int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Resize records a new viewport width. Listeners are notified only when the
// width crosses into another tier; it reports whether that happened.
func (s *Sizer) Resize(width int) bool {
	s.mu.Lock()
	s.known = true
	s.width = width
	size := ForWidth(width)
	if size == s.size {
		s.mu.Unlock()
		return false
	}
	s.size = size
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(size)
	}
	return true
}
