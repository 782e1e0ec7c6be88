package scene

import (
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/webforge/scenecore/internal/component"
	"github.com/webforge/scenecore/internal/core/ecs"
)

// EntitySnapshot is a self-contained copy of one entity. Parent is stored by
// EntityId so a snapshot survives despawn and respawn. Nil capability
// pointers mean the capability is absent.
type EntitySnapshot struct {
	ID        string              `json:"entityId"`
	Type      string              `json:"entityType"`
	Name      string              `json:"name"`
	Visible   bool                `json:"visible"`
	Transform component.Transform `json:"transform"`
	ParentID  string              `json:"parentId,omitempty"`

	Material       *component.Material       `json:"material,omitempty"`
	Light          *component.Light          `json:"light,omitempty"`
	Physics        *component.Physics        `json:"physics,omitempty"`
	Script         *component.Script         `json:"script,omitempty"`
	Audio          *component.Audio          `json:"audio,omitempty"`
	Particle       *component.Particle       `json:"particle,omitempty"`
	Shader         *component.Shader         `json:"shader,omitempty"`
	ProceduralMesh *component.ProceduralMesh `json:"proceduralMesh,omitempty"`
	GameComponents *component.GameComponents `json:"gameComponents,omitempty"`
	Camera         *component.Camera         `json:"camera,omitempty"`
}

// UnmarshalJSON defaults visible to true and the transform to identity when
// the document omits them.
func (e *EntitySnapshot) UnmarshalJSON(data []byte) error {
	type plain EntitySnapshot
	p := plain{Visible: true, Transform: component.DefaultTransform()}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*e = EntitySnapshot(p)
	return nil
}

// Clone deep-copies the snapshot.
func (e EntitySnapshot) Clone() EntitySnapshot {
	cp := e
	cp.Material = clonePtr(e.Material)
	cp.Light = clonePtr(e.Light)
	cp.Physics = clonePtr(e.Physics)
	cp.Script = clonePtr(e.Script)
	cp.Audio = clonePtr(e.Audio)
	cp.Particle = clonePtr(e.Particle)
	cp.Shader = clonePtr(e.Shader)
	cp.ProceduralMesh = clonePtr(e.ProceduralMesh)
	cp.GameComponents = clonePtr(e.GameComponents)
	cp.Camera = clonePtr(e.Camera)
	return cp
}

// Snapshot captures one entity.
func (s *Scene) Snapshot(id string) (EntitySnapshot, bool) {
	h, ok := s.byID[id]
	if !ok {
		return EntitySnapshot{}, false
	}
	ident, _ := s.Identities.Get(h)
	snap := EntitySnapshot{ID: id, Transform: component.DefaultTransform()}
	if ident != nil {
		snap.Type = ident.Type
		snap.Name = ident.Name
		snap.Visible = ident.Visible
	}
	if t, ok := s.Transforms.Get(h); ok {
		snap.Transform = *t
	}
	if p, ok := s.Parents.Get(h); ok {
		snap.ParentID = p.ID
	}
	snap.Material = Capability(s, s.Materials, id)
	snap.Light = Capability(s, s.Lights, id)
	snap.Physics = Capability(s, s.Physics, id)
	snap.Script = Capability(s, s.Scripts, id)
	snap.Audio = Capability(s, s.Audio, id)
	snap.Particle = Capability(s, s.Particles, id)
	snap.Shader = Capability(s, s.Shaders, id)
	snap.ProceduralMesh = Capability(s, s.Meshes, id)
	snap.GameComponents = Capability(s, s.GameComponents, id)
	snap.Camera = Capability(s, s.Cameras, id)
	return snap, true
}

// SnapshotAll captures entities in creation order. With persistentOnly set,
// runtime-only and undeletable entities are skipped.
func (s *Scene) SnapshotAll(persistentOnly bool) []EntitySnapshot {
	out := make([]EntitySnapshot, 0, len(s.order))
	for _, h := range s.order {
		id := s.handles[h]
		if persistentOnly && !s.Persistent(id) {
			continue
		}
		if snap, ok := s.Snapshot(id); ok {
			out = append(out, snap)
		}
	}
	return out
}

// SnapshotSubtree captures id and its descendants, parents before children.
func (s *Scene) SnapshotSubtree(id string) []EntitySnapshot {
	root, ok := s.Snapshot(id)
	if !ok {
		return nil
	}
	out := []EntitySnapshot{root}
	for _, d := range s.Descendants(id) {
		if snap, ok := s.Snapshot(d); ok {
			out = append(out, snap)
		}
	}
	return out
}

// Restore overwrites an existing entity with snap. The parent link is set
// directly; callers restoring a whole scene are responsible for consistency.
func (s *Scene) Restore(snap EntitySnapshot) error {
	h, ok := s.byID[snap.ID]
	if !ok {
		return fmt.Errorf("restore %s: %w", snap.ID, ErrEntityNotFound)
	}
	ident, ok := s.Identities.Get(h)
	if !ok {
		ident = &component.Identity{ID: snap.ID}
		s.Identities.Set(h, ident)
	}
	ident.Type = snap.Type
	ident.Name = snap.Name
	ident.Visible = snap.Visible
	t := snap.Transform
	s.Transforms.Set(h, &t)
	s.setParentLink(h, snap.ParentID)
	s.applyCapabilities(snap)
	s.markStructure()
	return nil
}

// SpawnSnapshot creates an entity from snap without linking its parent.
func (s *Scene) SpawnSnapshot(snap EntitySnapshot) error {
	if _, err := s.Spawn(snap.ID, snap.Type, snap.Name, snap.Transform); err != nil {
		return err
	}
	if !snap.Visible {
		_ = s.SetVisible(snap.ID, false)
	}
	s.applyCapabilities(snap)
	return nil
}

// SpawnSnapshots spawns every snapshot first and links parents in a second
// pass, so children may precede their parents in the input. Failures are
// collected and the remaining snapshots still spawn.
func (s *Scene) SpawnSnapshots(snaps []EntitySnapshot) (spawned []string, err error) {
	var errs []error
	for _, snap := range snaps {
		if e := s.SpawnSnapshot(snap); e != nil {
			errs = append(errs, e)
			continue
		}
		spawned = append(spawned, snap.ID)
	}
	for _, snap := range snaps {
		if snap.ParentID == "" || !s.Exists(snap.ID) {
			continue
		}
		if e := s.Reparent(snap.ID, snap.ParentID); e != nil {
			errs = append(errs, e)
		}
	}
	return spawned, errors.Join(errs...)
}

func (s *Scene) setParentLink(h ecs.EntityID, parentID string) {
	if parentID == "" {
		s.Parents.Remove(h)
		return
	}
	s.Parents.Set(h, &component.Parent{ID: parentID})
}

func (s *Scene) applyCapabilities(snap EntitySnapshot) {
	id := snap.ID
	_ = SetCapability(s, s.Materials, id, snap.Material)
	_ = SetCapability(s, s.Lights, id, snap.Light)
	_ = SetCapability(s, s.Physics, id, snap.Physics)
	_ = SetCapability(s, s.Scripts, id, snap.Script)
	_ = SetCapability(s, s.Audio, id, snap.Audio)
	_ = SetCapability(s, s.Particles, id, snap.Particle)
	_ = SetCapability(s, s.Shaders, id, snap.Shader)
	_ = SetCapability(s, s.Meshes, id, snap.ProceduralMesh)
	_ = SetCapability(s, s.GameComponents, id, snap.GameComponents)
	_ = SetCapability(s, s.Cameras, id, snap.Camera)
}
