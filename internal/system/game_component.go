package system

import (
	"fmt"
	"maps"
	"time"

	"go.uber.org/zap"

	"github.com/webforge/scenecore/internal/command"
	"github.com/webforge/scenecore/internal/component"
	"github.com/webforge/scenecore/internal/core/ecs"
	coresys "github.com/webforge/scenecore/internal/core/system"
	"github.com/webforge/scenecore/internal/history"
	"github.com/webforge/scenecore/internal/scene"
)

func gameComponentStore(s *scene.Scene) *ecs.PtrComponentStore[component.GameComponents] {
	return s.GameComponents
}

// GameComponentSystem adds and removes entries of an entity's gameplay
// component list. Adding a type the entity already has replaces its props.
// Phase 2 (Update).
type GameComponentSystem struct {
	deps *Deps
	log  *zap.Logger
}

func NewGameComponentSystem(deps *Deps) *GameComponentSystem {
	return &GameComponentSystem{deps: deps, log: deps.Log.With(zap.String("system", "game_component"))}
}

func (s *GameComponentSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *GameComponentSystem) Update(_ time.Duration) {
	d := s.deps
	for _, req := range d.Queue.Drain(command.DomainGameComponent) {
		switch r := req.(type) {
		case command.AddGameComponent:
			d.apply("add_game_component", r.EntityID, func() error {
				return s.change(r.EntityID, "Add "+r.Component.Type, func(gc *component.GameComponents) error {
					item := component.GameComponent{Type: r.Component.Type, Props: maps.Clone(r.Component.Props)}
					if i := gc.Index(item.Type); i >= 0 {
						gc.Items[i] = item
					} else {
						gc.Items = append(gc.Items, item)
					}
					return nil
				})
			})
		case command.RemoveGameComponent:
			d.apply("remove_game_component", r.EntityID, func() error {
				return s.change(r.EntityID, "Remove "+r.Type, func(gc *component.GameComponents) error {
					i := gc.Index(r.Type)
					if i < 0 {
						return fmt.Errorf("%s has no %q component", r.EntityID, r.Type)
					}
					gc.Items = append(gc.Items[:i], gc.Items[i+1:]...)
					return nil
				})
			})
		}
	}
}

// change edits a copy of the entity's list; an emptied list removes the
// capability.
func (s *GameComponentSystem) change(id, label string, edit func(*component.GameComponents) error) error {
	d := s.deps
	if !d.Scene.Exists(id) {
		return notFound(id)
	}
	before := scene.Capability(d.Scene, d.Scene.GameComponents, id)
	next := &component.GameComponents{}
	if before != nil {
		next = before.Clone()
	}
	if err := edit(next); err != nil {
		return err
	}
	if len(next.Items) == 0 {
		next = nil
	}
	if err := scene.SetCapability(d.Scene, d.Scene.GameComponents, id, next); err != nil {
		return err
	}
	after := scene.Capability(d.Scene, d.Scene.GameComponents, id)
	d.record(&history.CapabilityChange[component.GameComponents]{
		Label:  label,
		ID:     id,
		Store:  gameComponentStore,
		Before: before,
		After:  after,
	})
	ev := GameComponentsChanged{EntityID: id, Components: []component.GameComponent{}}
	if after != nil {
		ev.Components = after.Clone().Items
	}
	d.Outbox.Emit(EventGameComponentsChanged, ev)
	return nil
}
