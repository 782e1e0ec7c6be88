package system

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/webforge/scenecore/internal/command"
	"github.com/webforge/scenecore/internal/core/ecs"
	coresys "github.com/webforge/scenecore/internal/core/system"
	"github.com/webforge/scenecore/internal/data"
	"github.com/webforge/scenecore/internal/history"
	"github.com/webforge/scenecore/internal/scene"
)

var (
	ErrUnknownEntityType = errors.New("unknown entity type")
	ErrUndeletable       = errors.New("entity cannot be deleted")
)

func notFound(id string) error {
	return fmt.Errorf("%s: %w", id, scene.ErrEntityNotFound)
}

// SpawnTemplate creates an entity of r.Type with the template's default
// capabilities. Transform fields set in r override the template.
func SpawnTemplate(sc *scene.Scene, templates *data.TemplateTable, r command.SpawnEntity) (string, error) {
	tmpl := templates.Get(r.Type)
	if tmpl == nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownEntityType, r.Type)
	}
	if r.ParentID != "" && !sc.Exists(r.ParentID) {
		return "", fmt.Errorf("parent %w", notFound(r.ParentID))
	}
	t := tmpl.Transform()
	if r.Position != nil {
		t.Position = *r.Position
	}
	if r.Rotation != nil {
		t.Rotation = *r.Rotation
	}
	if r.Scale != nil {
		t.Scale = *r.Scale
	}
	name := r.Name
	if name == "" {
		name = tmpl.Name
	}
	id, err := sc.Spawn(r.EntityID, r.Type, name, t)
	if err != nil {
		return "", err
	}

	m, l, p, c, mesh, pt := tmpl.Components()
	setIf(sc, sc.Materials, id, m)
	setIf(sc, sc.Lights, id, l)
	setIf(sc, sc.Physics, id, p)
	setIf(sc, sc.Cameras, id, c)
	setIf(sc, sc.Meshes, id, mesh)
	setIf(sc, sc.Particles, id, pt)

	if r.ParentID != "" {
		if err := sc.Reparent(id, r.ParentID); err != nil {
			_, _ = sc.Despawn(id)
			return "", err
		}
	}
	if r.RuntimeOnly {
		if err := sc.MarkRuntimeOnly(id); err != nil {
			return "", err
		}
	}
	if tmpl.Undeletable {
		if err := sc.MarkUndeletable(id); err != nil {
			return "", err
		}
	}
	return id, nil
}

func setIf[T any](sc *scene.Scene, store *ecs.PtrComponentStore[T], id string, v *T) {
	if v != nil {
		_ = scene.SetCapability(sc, store, id, v)
	}
}

// EntitySystem applies entity lifecycle and identity requests: spawn,
// delete, duplicate, rename, visibility and reparent. Phase 2 (Update).
type EntitySystem struct {
	deps *Deps
	log  *zap.Logger
}

func NewEntitySystem(deps *Deps) *EntitySystem {
	return &EntitySystem{deps: deps, log: deps.Log.With(zap.String("system", "entity"))}
}

func (s *EntitySystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *EntitySystem) Update(_ time.Duration) {
	d := s.deps
	for _, req := range d.Queue.Drain(command.DomainEntity) {
		switch r := req.(type) {
		case command.SpawnEntity:
			d.apply("spawn_entity", r.EntityID, func() error { return s.spawn(r) })
		case command.DespawnEntities:
			s.despawn(r.IDs)
		case command.DuplicateEntity:
			d.apply("duplicate_entity", r.ID, func() error { return s.duplicate(r.ID) })
		case command.RenameEntity:
			d.apply("rename_entity", r.ID, func() error { return s.rename(r) })
		case command.SetVisibility:
			d.apply("set_visibility", r.ID, func() error { return s.visibility(r) })
		case command.ReparentEntity:
			d.apply("reparent_entity", r.ID, func() error { s.reparent(r); return nil })
		}
	}
}

func (s *EntitySystem) spawn(r command.SpawnEntity) error {
	d := s.deps
	// Anything created during Play goes away on Stop.
	if !d.editing() {
		r.RuntimeOnly = true
	}
	id, err := SpawnTemplate(d.Scene, d.Templates, r)
	if err != nil {
		return err
	}
	snaps := d.Scene.SnapshotSubtree(id)
	d.record(&history.Spawn{Label: "Spawn " + d.Scene.Name(id), Snapshots: snaps})
	d.Outbox.Emit(EventEntitySpawned, snaps[0])
	s.log.Debug("entity spawned", zap.String("entity", id), zap.String("type", r.Type))
	return nil
}

// despawn removes each requested entity with its subtree. Failures are
// reported per entity and the rest of the batch still applies; everything
// that was removed undoes as one step.
func (s *EntitySystem) despawn(ids []string) {
	d := s.deps
	requested := make(map[string]bool, len(ids))
	for _, id := range ids {
		requested[id] = true
	}
	// Entities whose ancestor is also requested go with that ancestor.
	covered := make(map[string]bool)
	for _, id := range ids {
		if s.removedWithAncestor(id, requested) {
			covered[id] = true
		}
	}
	var (
		actions []history.Action
		removed []string
		roots   int
		done    = make(map[string]bool, len(ids))
	)
	for _, id := range ids {
		if done[id] || covered[id] {
			continue
		}
		done[id] = true
		d.apply("delete_entities", id, func() error {
			if !d.Scene.Exists(id) {
				return notFound(id)
			}
			if d.Scene.IsUndeletable(id) {
				return fmt.Errorf("%s: %w", id, ErrUndeletable)
			}
			if !d.editing() && !d.Scene.IsRuntimeOnly(id) {
				return errNotInEdit("deleting scene entities", d.Mode.Mode())
			}
			before := subtreeParents(d.Scene, id)
			snaps := d.Scene.SnapshotSubtree(id)
			gone, kept, err := d.Scene.DespawnKeeping(id, s.keepOnDelete)
			if err != nil {
				return err
			}
			removed = append(removed, gone...)
			for _, kid := range kept {
				if !d.editing() {
					s.restoreParent(kid)
				} else {
					actions = append(actions, &history.Reparent{ID: kid, Name: d.Scene.Name(kid), Before: before[kid]})
				}
				d.emitEntity(kid)
			}
			actions = append(actions, &history.Despawn{Label: "Delete " + snaps[0].Name, Snapshots: only(snaps, gone)})
			roots++
			return nil
		})
	}

	if len(removed) == 0 {
		return
	}
	switch len(actions) {
	case 1:
		d.record(actions[0])
	default:
		label := fmt.Sprintf("Delete %d entities", roots)
		if roots == 1 {
			label = actions[len(actions)-1].Describe()
		}
		d.record(&history.Batch{Label: label, Actions: actions})
	}
	d.Outbox.Emit(EventEntitiesDeleted, EntitiesDeleted{EntityIDs: removed})
	d.pruneSelection()
	s.log.Debug("entities deleted", zap.Int("count", len(removed)))
}

// keepOnDelete names the descendants that survive their ancestor's
// deletion. Outside Edit that includes every persistent entity, which may
// have been moved under a runtime entity during Play.
func (s *EntitySystem) keepOnDelete(id string) bool {
	d := s.deps
	if d.Scene.IsUndeletable(id) {
		return true
	}
	return !d.editing() && !d.Scene.IsRuntimeOnly(id)
}

// restoreParent moves a rescued persistent entity back under its pre-Play
// parent when that parent still exists; otherwise it stays at the root.
func (s *EntitySystem) restoreParent(id string) {
	d := s.deps
	snap := d.Mode.Snapshot()
	if snap == nil {
		return
	}
	parent, ok := snap.ParentOf(id)
	if !ok || parent == "" || !d.Scene.Exists(parent) {
		return
	}
	if err := d.Scene.Reparent(id, parent); err != nil {
		s.log.Debug("rescued entity left at root", zap.String("entity", id), zap.Error(err))
	}
}

func subtreeParents(sc *scene.Scene, id string) map[string]string {
	out := make(map[string]string)
	for _, c := range sc.Descendants(id) {
		out[c] = sc.ParentOf(c)
	}
	return out
}

// only keeps the snapshots whose ids are listed in ids.
func only(snaps []scene.EntitySnapshot, ids []string) []scene.EntitySnapshot {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := make([]scene.EntitySnapshot, 0, len(ids))
	for _, sn := range snaps {
		if want[sn.ID] {
			out = append(out, sn)
		}
	}
	return out
}

// removedWithAncestor reports whether deleting a requested ancestor of id
// already removes id. A kept entity on the way up stops the walk.
func (s *EntitySystem) removedWithAncestor(id string, requested map[string]bool) bool {
	sc := s.deps.Scene
	for cur := id; !s.keepOnDelete(cur); {
		p := sc.ParentOf(cur)
		if p == "" {
			return false
		}
		if requested[p] {
			return true
		}
		cur = p
	}
	return false
}

// duplicate copies id and its subtree under fresh ids. The copy keeps the
// original's parent and becomes the selection.
func (s *EntitySystem) duplicate(id string) error {
	d := s.deps
	snaps := d.Scene.SnapshotSubtree(id)
	if len(snaps) == 0 {
		return notFound(id)
	}
	remap := make(map[string]string, len(snaps))
	for _, sn := range snaps {
		remap[sn.ID] = uuid.NewString()
	}
	copies := make([]scene.EntitySnapshot, len(snaps))
	for i, sn := range snaps {
		cp := sn.Clone()
		cp.ID = remap[sn.ID]
		if p, ok := remap[sn.ParentID]; ok {
			cp.ParentID = p
		}
		copies[i] = cp
	}
	copies[0].Name = snaps[0].Name + " Copy"

	spawned, err := d.Scene.SpawnSnapshots(copies)
	if err != nil {
		s.log.Warn("duplicate incomplete", zap.String("entity", id), zap.Error(err))
	}
	if len(spawned) == 0 {
		return err
	}
	if !d.editing() {
		for _, cid := range spawned {
			_ = d.Scene.MarkRuntimeOnly(cid)
		}
	}
	root := copies[0].ID
	d.record(&history.Spawn{Label: "Duplicate " + snaps[0].Name, Snapshots: d.Scene.SnapshotSubtree(root)})
	for _, cid := range spawned {
		if snap, ok := d.Scene.Snapshot(cid); ok {
			d.Outbox.Emit(EventEntitySpawned, snap)
		}
	}
	if h, ok := d.Scene.Handle(root); ok {
		d.Selection.SelectOne(root, h)
		d.emitSelection()
	}
	return nil
}

func (s *EntitySystem) rename(r command.RenameEntity) error {
	d := s.deps
	if !d.Scene.Exists(r.ID) {
		return notFound(r.ID)
	}
	before := d.Scene.Name(r.ID)
	if before == r.Name {
		return nil
	}
	if err := d.Scene.SetName(r.ID, r.Name); err != nil {
		return err
	}
	d.record(&history.Rename{ID: r.ID, Before: before, After: r.Name})
	d.Outbox.Emit(EventEntityRenamed, EntityRenamed{EntityID: r.ID, Name: r.Name})
	if d.Selection.Primary() == r.ID {
		d.emitSelection()
	}
	return nil
}

func (s *EntitySystem) visibility(r command.SetVisibility) error {
	d := s.deps
	ident, ok := d.Scene.Identity(r.ID)
	if !ok {
		return notFound(r.ID)
	}
	if ident.Visible == r.Visible {
		return nil
	}
	if err := d.Scene.SetVisible(r.ID, r.Visible); err != nil {
		return err
	}
	d.record(&history.Visibility{ID: r.ID, Name: ident.Name, Before: ident.Visible, After: r.Visible})
	d.Outbox.Emit(EventVisibilityChanged, VisibilityChanged{EntityID: r.ID, Visible: r.Visible})
	return nil
}

// reparent reports its outcome through reparent-result; a rejected move
// (cycle, self, missing entity) leaves the hierarchy untouched.
func (s *EntitySystem) reparent(r command.ReparentEntity) {
	d := s.deps
	res := ReparentResult{EntityID: r.ID, ParentID: r.ParentID, OK: true}
	before := d.Scene.ParentOf(r.ID)
	if err := d.Scene.Reparent(r.ID, r.ParentID); err != nil {
		res.OK = false
		res.Error = err.Error()
		s.log.Warn("reparent rejected",
			zap.String("entity", r.ID),
			zap.String("parent", r.ParentID),
			zap.Error(err),
		)
		d.Outbox.Emit(EventReparentResult, res)
		return
	}
	if before != r.ParentID {
		d.record(&history.Reparent{ID: r.ID, Name: d.Scene.Name(r.ID), Before: before, After: r.ParentID})
	}
	d.Outbox.Emit(EventReparentResult, res)
}
