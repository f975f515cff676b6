package popup

import (
	"errors"
	"sync"
)

// ErrSurfaceBusy is returned by Acquire while another handle is held.
var ErrSurfaceBusy = errors.New("chart surface already acquired")

// ChartSurface is the single reusable chart rendering resource.
type ChartSurface interface {
	Acquire() (ChartHandle, error)
}

// ChartHandle draws on an acquired surface. Release must be called exactly
// once; later calls are no-ops.
type ChartHandle interface {
	Draw(spec *ChartSpec) error
	Release()
}

// SpecSurface is a ChartSurface that keeps the drawn spec so the page can
// fetch and paint it.
type SpecSurface struct {
	mu       sync.Mutex
	held     bool
	current  *ChartSpec
	acquired int
	released int
}

// NewSpecSurface creates an empty surface.
func NewSpecSurface() *SpecSurface {
	return &SpecSurface{}
}

// Acquire hands out the surface.
func (s *SpecSurface) Acquire() (ChartHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.held {
		return nil, ErrSurfaceBusy
	}
	s.held = true
	s.acquired++
	return &specHandle{surface: s}, nil
}

// Current returns the spec drawn on a held surface, or nil.
func (s *SpecSurface) Current() *ChartSpec {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Held reports whether a handle is outstanding.
func (s *SpecSurface) Held() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.held
}

// Counts returns how many handles were acquired and released.
func (s *SpecSurface) Counts() (acquired, released int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acquired, s.released
}

type specHandle struct {
	surface *SpecSurface
	once    sync.Once
	done    bool
}

func (h *specHandle) Draw(spec *ChartSpec) error {
	s := h.surface
	s.mu.Lock()
	defer s.mu.Unlock()
	if h.done {
		return errors.New("chart handle released")
	}
	s.current = spec
	return nil
}

func (h *specHandle) Release() {
	h.once.Do(func() {
		s := h.surface
		s.mu.Lock()
		defer s.mu.Unlock()
		h.done = true
		s.held = false
		s.current = nil
		s.released++
	})
}
