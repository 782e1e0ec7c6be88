package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/webforge/scenecore/internal/command"
	coresys "github.com/webforge/scenecore/internal/core/system"
)

// AutosaveSystem periodically writes the scene to the scene store when it
// changed since the last autosave. It only fires the save request; the
// scene system performs it on the next tick. Phase 5 (Persist).
type AutosaveSystem struct {
	deps      *Deps
	name      string
	log       *zap.Logger
	tickCount int
	interval  int // autosave every N ticks
	saved     uint64
}

func NewAutosaveSystem(deps *Deps, name string, intervalTicks int) *AutosaveSystem {
	return &AutosaveSystem{
		deps:     deps,
		name:     name,
		log:      deps.Log.With(zap.String("system", "autosave")),
		interval: intervalTicks,
		saved:    deps.Scene.Revision(),
	}
}

func (s *AutosaveSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *AutosaveSystem) Update(_ time.Duration) {
	if s.interval <= 0 || s.deps.Store == nil {
		return
	}
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	// Play changes are thrown away on Stop; only edit-time state is saved.
	if !s.deps.editing() {
		return
	}
	rev := s.deps.Scene.Revision()
	if rev == s.saved {
		return
	}
	if err := s.deps.Slot.Enqueue(command.SaveScene{Name: s.name, Store: true, Autosave: true}); err != nil {
		s.log.Warn("autosave request dropped", zap.Error(err))
		return
	}
	s.saved = rev
	s.log.Debug("autosave requested", zap.String("name", s.name), zap.Uint64("revision", rev))
}
