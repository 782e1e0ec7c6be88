package system

import (
	"time"

	coresys "github.com/webforge/scenecore/internal/core/system"
)

// HistoryEventSystem publishes history-changed when the stack changed, at
// most once per interval. Phase 4 (Output).
type HistoryEventSystem struct {
	deps     *Deps
	interval time.Duration
	elapsed  time.Duration
}

func NewHistoryEventSystem(deps *Deps, interval time.Duration) *HistoryEventSystem {
	// The first change is reported without waiting.
	return &HistoryEventSystem{deps: deps, interval: interval, elapsed: interval}
}

func (s *HistoryEventSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *HistoryEventSystem) Update(dt time.Duration) {
	s.elapsed += dt
	h := s.deps.History
	if !h.Dirty() || s.elapsed < s.interval {
		return
	}
	s.elapsed = 0
	h.MarkClean()
	s.deps.Outbox.Emit(EventHistoryChanged, h.Status())
}

// OutputSystem flushes the tick's events to every sink. It must be the last
// Output system registered. Phase 4 (Output).
type OutputSystem struct {
	deps *Deps
}

func NewOutputSystem(deps *Deps) *OutputSystem {
	return &OutputSystem{deps: deps}
}

func (s *OutputSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *OutputSystem) Update(_ time.Duration) {
	s.deps.Outbox.Flush()
}
