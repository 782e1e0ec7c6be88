package system

import (
	"time"

	coresys "github.com/webforge/scenecore/internal/core/system"
)

// CleanupSystem flushes the deferred entity destruction queue at tick end.
// Its events go out with the next tick's flush. Phase 6 (Cleanup).
type CleanupSystem struct {
	deps *Deps
}

func NewCleanupSystem(deps *Deps) *CleanupSystem {
	return &CleanupSystem{deps: deps}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	d := s.deps
	if removed := d.Scene.FlushDestroyed(); len(removed) > 0 {
		d.Outbox.Emit(EventEntitiesDeleted, EntitiesDeleted{EntityIDs: removed})
	}
	d.pruneSelection()
}
