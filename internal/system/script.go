package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/webforge/scenecore/internal/core/system"
	"github.com/webforge/scenecore/internal/mode"
	"github.com/webforge/scenecore/internal/scripting"
)

// ScriptSystem runs entity scripts while playing. Paused and Edit ticks
// skip it. It is registered after the appliers so scripts see this tick's
// edits. Phase 2 (Update).
type ScriptSystem struct {
	deps   *Deps
	engine *scripting.Engine
	log    *zap.Logger
}

func NewScriptSystem(deps *Deps, engine *scripting.Engine) *ScriptSystem {
	return &ScriptSystem{deps: deps, engine: engine, log: deps.Log.With(zap.String("system", "script"))}
}

func (s *ScriptSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *ScriptSystem) Update(dt time.Duration) {
	d := s.deps
	if s.engine == nil || d.Mode.Mode() != mode.Play {
		return
	}
	res := s.engine.Tick(d.Scene, dt.Seconds())
	for _, id := range res.Spawned {
		if snap, ok := d.Scene.Snapshot(id); ok {
			d.Outbox.Emit(EventEntitySpawned, snap)
		}
	}
	for _, e := range res.Errors {
		d.Outbox.Emit(EventScriptError, e)
	}
	if len(res.Spawned) > 0 || len(res.Destroyed) > 0 {
		s.log.Debug("script tick",
			zap.Int("spawned", len(res.Spawned)),
			zap.Int("destroyed", len(res.Destroyed)),
		)
	}
}
