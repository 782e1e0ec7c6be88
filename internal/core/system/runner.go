package system

import (
	"slices"
	"time"
)

// Runner drives one editor frame: every registered system once, lowest
// phase first, registration order inside a phase.
type Runner struct {
	systems []System
	dirty   bool // a Register since the last sort
	ticks   uint64
}

func NewRunner() *Runner {
	return &Runner{systems: make([]System, 0, 24)}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.dirty = true
}

func (r *Runner) Tick(dt time.Duration) {
	if r.dirty {
		slices.SortStableFunc(r.systems, func(a, b System) int {
			return int(a.Phase()) - int(b.Phase())
		})
		r.dirty = false
	}
	for _, s := range r.systems {
		s.Update(dt)
	}
	r.ticks++
}

// Ticks returns the number of completed frames.
func (r *Runner) Ticks() uint64 { return r.ticks }

func (r *Runner) Len() int { return len(r.systems) }
