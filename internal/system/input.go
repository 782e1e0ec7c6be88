package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/webforge/scenecore/internal/command"
	coresys "github.com/webforge/scenecore/internal/core/system"
	"github.com/webforge/scenecore/internal/mode"
	"github.com/webforge/scenecore/internal/scripting"
)

// ModeSystem drains mode requests and is the only caller of the mode
// machine. Phase 0 (Input).
type ModeSystem struct {
	deps    *Deps
	scripts *scripting.Engine // nil when scripting is disabled
	log     *zap.Logger
}

func NewModeSystem(deps *Deps, scripts *scripting.Engine) *ModeSystem {
	return &ModeSystem{
		deps:    deps,
		scripts: scripts,
		log:     deps.Log.With(zap.String("system", "mode")),
	}
}

func (s *ModeSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *ModeSystem) Update(_ time.Duration) {
	for _, req := range s.deps.Queue.Drain(command.DomainMode) {
		r, ok := req.(command.ChangeMode)
		if !ok {
			continue
		}
		s.deps.apply(r.Transition.String(), "", func() error {
			s.transition(r.Transition)
			return nil
		})
	}
}

func (s *ModeSystem) transition(t command.Transition) {
	d := s.deps
	rep := d.Mode.Apply(t, d.Scene, d.Selection)
	if !rep.Changed {
		s.log.Debug("mode request ignored",
			zap.String("request", t.String()),
			zap.String("mode", rep.From.String()),
		)
		return
	}
	s.log.Info("mode changed",
		zap.String("from", rep.From.String()),
		zap.String("to", rep.To.String()),
		zap.Int("despawned", len(rep.Despawned)),
		zap.Int("respawned", len(rep.Respawned)),
	)

	d.Outbox.Emit(EventModeChanged, ModeChanged{
		Mode:      rep.To.String(),
		Previous:  rep.From.String(),
		Despawned: rep.Despawned,
		Respawned: rep.Respawned,
	})

	switch {
	case rep.From == mode.Edit && rep.To == mode.Play:
		if s.scripts != nil {
			s.scripts.Reset()
		}
		d.emitSelection()
	case rep.To == mode.Edit:
		if s.scripts != nil {
			s.scripts.Reset()
		}
		if len(rep.Despawned) > 0 {
			d.Outbox.Emit(EventEntitiesDeleted, EntitiesDeleted{EntityIDs: rep.Despawned})
		}
		for _, id := range d.Scene.Entities() {
			d.emitEntity(id)
		}
		d.emitSettings()
		d.emitSelection()
	}
}
