package history

import (
	"errors"
	"fmt"

	"github.com/webforge/scenecore/internal/component"
	"github.com/webforge/scenecore/internal/core/ecs"
	"github.com/webforge/scenecore/internal/scene"
)

// Action is a self-contained reversible change. Actions reference entities by
// EntityId only, so they keep working after a despawn and respawn.
type Action interface {
	Describe() string
	Undo(s *scene.Scene) error
	Redo(s *scene.Scene) error
}

type TransformChange struct {
	ID     string
	Name   string
	Before component.Transform
	After  component.Transform
}

func (a *TransformChange) Describe() string          { return "Transform " + a.Name }
func (a *TransformChange) Undo(s *scene.Scene) error { return s.SetTransform(a.ID, a.Before) }
func (a *TransformChange) Redo(s *scene.Scene) error { return s.SetTransform(a.ID, a.After) }

type Rename struct {
	ID     string
	Before string
	After  string
}

func (a *Rename) Describe() string          { return fmt.Sprintf("Rename %s to %s", a.Before, a.After) }
func (a *Rename) Undo(s *scene.Scene) error { return s.SetName(a.ID, a.Before) }
func (a *Rename) Redo(s *scene.Scene) error { return s.SetName(a.ID, a.After) }

type Visibility struct {
	ID     string
	Name   string
	Before bool
	After  bool
}

func (a *Visibility) Describe() string {
	if a.After {
		return "Show " + a.Name
	}
	return "Hide " + a.Name
}
func (a *Visibility) Undo(s *scene.Scene) error { return s.SetVisible(a.ID, a.Before) }
func (a *Visibility) Redo(s *scene.Scene) error { return s.SetVisible(a.ID, a.After) }

type Reparent struct {
	ID     string
	Name   string
	Before string
	After  string
}

func (a *Reparent) Describe() string          { return "Reparent " + a.Name }
func (a *Reparent) Undo(s *scene.Scene) error { return s.Reparent(a.ID, a.Before) }
func (a *Reparent) Redo(s *scene.Scene) error { return s.Reparent(a.ID, a.After) }

// Spawn records created entities. Snapshots hold the spawned root first,
// followed by any descendants created with it.
type Spawn struct {
	Label     string
	Snapshots []scene.EntitySnapshot
}

func (a *Spawn) Describe() string { return a.Label }

func (a *Spawn) Undo(s *scene.Scene) error {
	return despawnRoots(s, a.Snapshots)
}

func (a *Spawn) Redo(s *scene.Scene) error {
	_, err := s.SpawnSnapshots(a.Snapshots)
	return err
}

// Despawn records deleted subtrees so undo can bring them back with the
// same EntityIds.
type Despawn struct {
	Label     string
	Snapshots []scene.EntitySnapshot
}

func (a *Despawn) Describe() string { return a.Label }

func (a *Despawn) Undo(s *scene.Scene) error {
	_, err := s.SpawnSnapshots(a.Snapshots)
	return err
}

func (a *Despawn) Redo(s *scene.Scene) error {
	return despawnRoots(s, a.Snapshots)
}

// CapabilityChange swaps one capability payload. Nil on either side means
// the capability was absent.
type CapabilityChange[T any] struct {
	Label  string
	ID     string
	Store  func(*scene.Scene) *ecs.PtrComponentStore[T]
	Before *T
	After  *T
}

func (a *CapabilityChange[T]) Describe() string { return a.Label }

func (a *CapabilityChange[T]) Undo(s *scene.Scene) error {
	return scene.SetCapability(s, a.Store(s), a.ID, a.Before)
}

func (a *CapabilityChange[T]) Redo(s *scene.Scene) error {
	return scene.SetCapability(s, a.Store(s), a.ID, a.After)
}

// SettingsChange swaps the scene-wide settings block.
type SettingsChange struct {
	Label  string
	Before scene.Settings
	After  scene.Settings
}

func (a *SettingsChange) Describe() string { return a.Label }

func (a *SettingsChange) Undo(s *scene.Scene) error {
	s.Settings = a.Before.Clone()
	s.Touch()
	return nil
}

func (a *SettingsChange) Redo(s *scene.Scene) error {
	s.Settings = a.After.Clone()
	s.Touch()
	return nil
}

// Batch groups actions that undo and redo as one step. Undo runs in reverse.
type Batch struct {
	Label   string
	Actions []Action
}

func (a *Batch) Describe() string { return a.Label }

func (a *Batch) Undo(s *scene.Scene) error {
	var errs []error
	for i := len(a.Actions) - 1; i >= 0; i-- {
		if err := a.Actions[i].Undo(s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *Batch) Redo(s *scene.Scene) error {
	var errs []error
	for _, act := range a.Actions {
		if err := act.Redo(s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// despawnRoots removes every snapshot whose parent is not part of the same
// set; descendants go with their root.
func despawnRoots(s *scene.Scene, snaps []scene.EntitySnapshot) error {
	inSet := make(map[string]bool, len(snaps))
	for _, snap := range snaps {
		inSet[snap.ID] = true
	}
	var errs []error
	for _, snap := range snaps {
		if inSet[snap.ParentID] || !s.Exists(snap.ID) {
			continue
		}
		if _, err := s.Despawn(snap.ID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
