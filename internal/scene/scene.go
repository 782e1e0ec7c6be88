package scene

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/webforge/scenecore/internal/component"
	"github.com/webforge/scenecore/internal/core/ecs"
)

var (
	ErrEntityNotFound = errors.New("entity not found")
	ErrDuplicateID    = errors.New("entity id already in use")
	ErrCycle          = errors.New("reparent would create a cycle")
	ErrSelfParent     = errors.New("entity cannot be its own parent")
)

// Scene is the live entity-component state of the editor.
// Accessed only from the game loop goroutine; no locks.
type Scene struct {
	world *ecs.World

	Identities     *ecs.PtrComponentStore[component.Identity]
	Transforms     *ecs.PtrComponentStore[component.Transform]
	Parents        *ecs.PtrComponentStore[component.Parent]
	Materials      *ecs.PtrComponentStore[component.Material]
	Lights         *ecs.PtrComponentStore[component.Light]
	Physics        *ecs.PtrComponentStore[component.Physics]
	Scripts        *ecs.PtrComponentStore[component.Script]
	Audio          *ecs.PtrComponentStore[component.Audio]
	Particles      *ecs.PtrComponentStore[component.Particle]
	Shaders        *ecs.PtrComponentStore[component.Shader]
	Meshes         *ecs.PtrComponentStore[component.ProceduralMesh]
	Cameras        *ecs.PtrComponentStore[component.Camera]
	GameComponents *ecs.PtrComponentStore[component.GameComponents]
	RuntimeOnly    *ecs.PtrComponentStore[component.RuntimeOnly]
	Undeletable    *ecs.PtrComponentStore[component.Undeletable]

	byID    map[string]ecs.EntityID // EntityId → handle
	handles map[ecs.EntityID]string // handle → EntityId
	order   []ecs.EntityID          // creation order, for stable output

	Settings Settings

	graphDirty bool   // structure changed: spawn/despawn/rename/visibility/reparent
	revision   uint64 // bumped by every mutation
}

func New() *Scene {
	s := &Scene{
		world:          ecs.NewWorld(),
		Identities:     ecs.NewPtrComponentStore[component.Identity](),
		Transforms:     ecs.NewPtrComponentStore[component.Transform](),
		Parents:        ecs.NewPtrComponentStore[component.Parent](),
		Materials:      ecs.NewPtrComponentStore[component.Material](),
		Lights:         ecs.NewPtrComponentStore[component.Light](),
		Physics:        ecs.NewPtrComponentStore[component.Physics](),
		Scripts:        ecs.NewPtrComponentStore[component.Script](),
		Audio:          ecs.NewPtrComponentStore[component.Audio](),
		Particles:      ecs.NewPtrComponentStore[component.Particle](),
		Shaders:        ecs.NewPtrComponentStore[component.Shader](),
		Meshes:         ecs.NewPtrComponentStore[component.ProceduralMesh](),
		Cameras:        ecs.NewPtrComponentStore[component.Camera](),
		GameComponents: ecs.NewPtrComponentStore[component.GameComponents](),
		RuntimeOnly:    ecs.NewPtrComponentStore[component.RuntimeOnly](),
		Undeletable:    ecs.NewPtrComponentStore[component.Undeletable](),
		byID:           make(map[string]ecs.EntityID, 64),
		handles:        make(map[ecs.EntityID]string, 64),
		Settings:       DefaultSettings(),
	}
	reg := s.world.Registry()
	reg.Register(s.Identities)
	reg.Register(s.Transforms)
	reg.Register(s.Parents)
	reg.Register(s.Materials)
	reg.Register(s.Lights)
	reg.Register(s.Physics)
	reg.Register(s.Scripts)
	reg.Register(s.Audio)
	reg.Register(s.Particles)
	reg.Register(s.Shaders)
	reg.Register(s.Meshes)
	reg.Register(s.Cameras)
	reg.Register(s.GameComponents)
	reg.Register(s.RuntimeOnly)
	reg.Register(s.Undeletable)
	return s
}

// World exposes the underlying ECS world.
func (s *Scene) World() *ecs.World { return s.world }

// Spawn creates a visible entity. An empty id gets a fresh UUID.
func (s *Scene) Spawn(id, typ, name string, t component.Transform) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if _, exists := s.byID[id]; exists {
		return "", fmt.Errorf("spawn %s: %w", id, ErrDuplicateID)
	}
	h := s.world.CreateEntity()
	s.Identities.Set(h, &component.Identity{ID: id, Type: typ, Name: name, Visible: true})
	tr := t
	s.Transforms.Set(h, &tr)
	s.byID[id] = h
	s.handles[h] = id
	s.order = append(s.order, h)
	s.markStructure()
	return id, nil
}

// Handle resolves an EntityId to its live ECS handle.
func (s *Scene) Handle(id string) (ecs.EntityID, bool) {
	h, ok := s.byID[id]
	return h, ok
}

// IDOf resolves a live handle to its EntityId.
func (s *Scene) IDOf(h ecs.EntityID) (string, bool) {
	id, ok := s.handles[h]
	return id, ok
}

func (s *Scene) Exists(id string) bool {
	_, ok := s.byID[id]
	return ok
}

func (s *Scene) Len() int { return len(s.order) }

// Entities returns every EntityId in creation order.
func (s *Scene) Entities() []string {
	out := make([]string, 0, len(s.order))
	for _, h := range s.order {
		out = append(out, s.handles[h])
	}
	return out
}

// Identity returns a copy of the entity's identity component.
func (s *Scene) Identity(id string) (component.Identity, bool) {
	h, ok := s.byID[id]
	if !ok {
		return component.Identity{}, false
	}
	ident, ok := s.Identities.Get(h)
	if !ok {
		return component.Identity{}, false
	}
	return *ident, true
}

// Name returns the display name, or "" for unknown entities.
func (s *Scene) Name(id string) string {
	ident, _ := s.Identity(id)
	return ident.Name
}

func (s *Scene) SetName(id, name string) error {
	ident, err := s.identity(id)
	if err != nil {
		return err
	}
	if ident.Name != name {
		ident.Name = name
		s.markStructure()
	}
	return nil
}

func (s *Scene) SetVisible(id string, visible bool) error {
	ident, err := s.identity(id)
	if err != nil {
		return err
	}
	if ident.Visible != visible {
		ident.Visible = visible
		s.markStructure()
	}
	return nil
}

func (s *Scene) Transform(id string) (component.Transform, bool) {
	h, ok := s.byID[id]
	if !ok {
		return component.Transform{}, false
	}
	t, ok := s.Transforms.Get(h)
	if !ok {
		return component.DefaultTransform(), true
	}
	return *t, true
}

func (s *Scene) SetTransform(id string, t component.Transform) error {
	h, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrEntityNotFound)
	}
	tr := t
	s.Transforms.Set(h, &tr)
	s.revision++
	return nil
}

// IsRuntimeOnly reports whether the entity was spawned during Play.
func (s *Scene) IsRuntimeOnly(id string) bool {
	h, ok := s.byID[id]
	return ok && s.RuntimeOnly.Has(h)
}

func (s *Scene) MarkRuntimeOnly(id string) error {
	h, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrEntityNotFound)
	}
	s.RuntimeOnly.Set(h, &component.RuntimeOnly{})
	return nil
}

func (s *Scene) IsUndeletable(id string) bool {
	h, ok := s.byID[id]
	return ok && s.Undeletable.Has(h)
}

func (s *Scene) MarkUndeletable(id string) error {
	h, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrEntityNotFound)
	}
	s.Undeletable.Set(h, &component.Undeletable{})
	return nil
}

// Persistent reports whether the entity belongs in snapshots and documents.
func (s *Scene) Persistent(id string) bool {
	h, ok := s.byID[id]
	return ok && !s.RuntimeOnly.Has(h) && !s.Undeletable.Has(h)
}

// Despawn removes the entity and its subtree immediately. Undeletable
// descendants are detached to the root with their own subtrees instead of
// being removed. The removed ids are returned root first.
func (s *Scene) Despawn(id string) ([]string, error) {
	removed, _, err := s.DespawnKeeping(id, s.IsUndeletable)
	return removed, err
}

// DespawnKeeping removes id and every descendant except those for which keep
// returns true. A kept descendant is detached to the root and takes its own
// subtree with it. keep is never asked about id itself.
func (s *Scene) DespawnKeeping(id string, keep func(string) bool) (removed, kept []string, err error) {
	if _, ok := s.byID[id]; !ok {
		return nil, nil, fmt.Errorf("despawn %s: %w", id, ErrEntityNotFound)
	}
	children := s.childIndex()
	removed = []string{id}
	var walk func(string)
	walk = func(cur string) {
		for _, c := range children[cur] {
			if keep != nil && keep(c) {
				kept = append(kept, c)
				continue
			}
			removed = append(removed, c)
			walk(c)
		}
	}
	walk(id)
	for _, kid := range kept {
		s.Parents.Remove(s.byID[kid])
	}
	for _, rid := range removed {
		h := s.byID[rid]
		s.world.DestroyEntity(h)
		delete(s.byID, rid)
		delete(s.handles, h)
	}
	s.compactOrder()
	s.markStructure()
	return removed, kept, nil
}

// MarkForDestruction defers removal to the cleanup phase. Used from code that
// runs while stores are being iterated (play-mode scripts).
func (s *Scene) MarkForDestruction(id string) error {
	h, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrEntityNotFound)
	}
	s.world.MarkForDestruction(h)
	return nil
}

// FlushDestroyed applies deferred removals and returns the removed ids.
func (s *Scene) FlushDestroyed() []string {
	handles := s.world.FlushDestroyQueue()
	if len(handles) == 0 {
		return nil
	}
	removed := make([]string, 0, len(handles))
	for _, h := range handles {
		id, ok := s.handles[h]
		if !ok {
			continue
		}
		delete(s.byID, id)
		delete(s.handles, h)
		removed = append(removed, id)
	}
	s.compactOrder()
	s.markStructure()
	return removed
}

// Clear despawns every entity and restores default settings.
func (s *Scene) Clear() {
	for _, h := range s.order {
		s.world.DestroyEntity(h)
	}
	clear(s.byID)
	clear(s.handles)
	s.order = s.order[:0]
	s.Settings = DefaultSettings()
	s.markStructure()
}

// GraphDirty reports whether the hierarchy projection is stale.
func (s *Scene) GraphDirty() bool { return s.graphDirty }

// ClearGraphDirty is called by the scene graph cache after a rebuild.
func (s *Scene) ClearGraphDirty() { s.graphDirty = false }

// Revision increases on every mutation; autosave compares it.
func (s *Scene) Revision() uint64 { return s.revision }

// Touch records a mutation that is not tracked by a component store, such as
// a settings change.
func (s *Scene) Touch() { s.revision++ }

func (s *Scene) identity(id string) (*component.Identity, error) {
	h, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrEntityNotFound)
	}
	ident, ok := s.Identities.Get(h)
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrEntityNotFound)
	}
	return ident, nil
}

func (s *Scene) markStructure() {
	s.graphDirty = true
	s.revision++
}

func (s *Scene) compactOrder() {
	s.order = slices.DeleteFunc(s.order, func(h ecs.EntityID) bool {
		_, ok := s.handles[h]
		return !ok
	})
}
