package system

import (
	"time"

	coresys "github.com/webforge/scenecore/internal/core/system"
)

// SceneGraphSystem refreshes the hierarchy projection and publishes it only
// when it actually changed. Phase 3 (PostUpdate).
type SceneGraphSystem struct {
	deps *Deps
}

func NewSceneGraphSystem(deps *Deps) *SceneGraphSystem {
	return &SceneGraphSystem{deps: deps}
}

func (s *SceneGraphSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *SceneGraphSystem) Update(_ time.Duration) {
	if g, changed := s.deps.Graph.Refresh(s.deps.Scene); changed {
		s.deps.Outbox.Emit(EventSceneGraphUpdate, g)
	}
}
