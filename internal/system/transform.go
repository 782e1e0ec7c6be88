package system

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/webforge/scenecore/internal/command"
	coresys "github.com/webforge/scenecore/internal/core/system"
	"github.com/webforge/scenecore/internal/history"
)

var ErrZeroScale = errors.New("scale components must be non-zero")

// TransformSystem applies partial transform updates. Phase 2 (Update).
type TransformSystem struct {
	deps *Deps
	log  *zap.Logger
}

func NewTransformSystem(deps *Deps) *TransformSystem {
	return &TransformSystem{deps: deps, log: deps.Log.With(zap.String("system", "transform"))}
}

func (s *TransformSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *TransformSystem) Update(_ time.Duration) {
	d := s.deps
	for _, req := range d.Queue.Drain(command.DomainTransform) {
		r, ok := req.(command.UpdateTransform)
		if !ok {
			continue
		}
		d.apply("update_transform", r.ID, func() error { return s.update(r) })
	}
}

func (s *TransformSystem) update(r command.UpdateTransform) error {
	d := s.deps
	before, ok := d.Scene.Transform(r.ID)
	if !ok {
		return notFound(r.ID)
	}
	after := before
	if r.Position != nil {
		after.Position = *r.Position
	}
	if r.Rotation != nil {
		after.Rotation = *r.Rotation
	}
	if r.Scale != nil {
		after.Scale = *r.Scale
	}
	for _, c := range after.Scale {
		if c == 0 {
			return ErrZeroScale
		}
	}
	if after == before {
		return nil
	}
	if err := d.Scene.SetTransform(r.ID, after); err != nil {
		return err
	}
	d.record(&history.TransformChange{ID: r.ID, Name: d.Scene.Name(r.ID), Before: before, After: after})
	d.Outbox.Emit(EventTransformChanged, TransformChanged{EntityID: r.ID, Transform: after})
	return nil
}
