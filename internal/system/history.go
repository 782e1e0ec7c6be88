package system

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/webforge/scenecore/internal/command"
	coresys "github.com/webforge/scenecore/internal/core/system"
	"github.com/webforge/scenecore/internal/history"
	"github.com/webforge/scenecore/internal/scene"
)

// HistorySystem drains undo/redo requests. It runs before the domain
// appliers so that an undo and a new edit in the same tick apply in that
// order. Phase 1 (PreUpdate).
type HistorySystem struct {
	deps *Deps
	log  *zap.Logger
}

func NewHistorySystem(deps *Deps) *HistorySystem {
	return &HistorySystem{deps: deps, log: deps.Log.With(zap.String("system", "history"))}
}

func (s *HistorySystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *HistorySystem) Update(_ time.Duration) {
	d := s.deps
	for _, req := range d.Queue.Drain(command.DomainHistory) {
		switch req.(type) {
		case command.Undo:
			d.apply("undo", "", func() error { return s.step("undo", d.History.Undo) })
		case command.Redo:
			d.apply("redo", "", func() error { return s.step("redo", d.History.Redo) })
		}
	}
}

func (s *HistorySystem) step(name string, fn func(*scene.Scene) (history.Action, error)) error {
	d := s.deps
	if !d.editing() {
		return errNotInEdit(name, d.Mode.Mode())
	}
	a, err := fn(d.Scene)
	if errors.Is(err, history.ErrNothingToUndo) || errors.Is(err, history.ErrNothingToRedo) {
		// Routine for a UI button; reported without the warning log.
		s.log.Debug("history empty", zap.String("op", name))
		d.Outbox.Emit(EventCommandError, CommandError{Command: name, Error: err.Error()})
		return nil
	}
	if a != nil {
		s.publish(a)
	}
	if err != nil {
		return err
	}
	s.log.Debug("history step", zap.String("op", name), zap.String("action", a.Describe()))
	return nil
}

// publish reports the state of everything the action touched. A partially
// failed action is published too, since part of it may have applied.
func (s *HistorySystem) publish(a history.Action) {
	d := s.deps
	var gone []string
	for _, id := range history.Affected(a) {
		if d.Scene.Exists(id) {
			d.emitEntity(id)
		} else {
			gone = append(gone, id)
		}
	}
	if len(gone) > 0 {
		d.Outbox.Emit(EventEntitiesDeleted, EntitiesDeleted{EntityIDs: gone})
	}
	if history.ChangesSettings(a) {
		d.emitSettings()
	}
	d.pruneSelection()
}
