package system

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/webforge/scenecore/internal/command"
	"github.com/webforge/scenecore/internal/component"
	coresys "github.com/webforge/scenecore/internal/core/system"
	"github.com/webforge/scenecore/internal/sceneio"
)

// storeTimeout bounds one background scene store call.
const storeTimeout = 5 * time.Second

var errNoStore = errors.New("no scene store configured")

// SceneSystem drains scene requests: new, save, load and the completions of
// background store calls. Phase 0 (Input).
type SceneSystem struct {
	deps *Deps
	log  *zap.Logger
	bg   errgroup.Group
}

func NewSceneSystem(deps *Deps) *SceneSystem {
	return &SceneSystem{
		deps: deps,
		log:  deps.Log.With(zap.String("system", "scene")),
	}
}

func (s *SceneSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *SceneSystem) Update(_ time.Duration) {
	d := s.deps
	for _, req := range d.Queue.Drain(command.DomainScene) {
		switch r := req.(type) {
		case command.NewScene:
			d.apply("new_scene", "", func() error { return s.newScene(r) })
		case command.SaveScene:
			d.apply("save_scene", "", func() error { return s.save(r) })
		case command.LoadScene:
			d.apply("load_scene", "", func() error { return s.load(r.Data, r.Source) })
		case command.LoadStoredScene:
			d.apply("load_stored_scene", "", func() error { return s.fetch(r.Name) })
		case command.StoreSaved:
			s.stored(r)
		case command.StoreLoaded:
			d.apply("load_stored_scene", "", func() error {
				if r.Err != nil {
					return r.Err
				}
				return s.load(r.Data, "store:"+r.Name)
			})
		}
	}
}

// Wait blocks until every background store call has delivered its result
// to the queue.
func (s *SceneSystem) Wait() {
	_ = s.bg.Wait()
}

func (s *SceneSystem) newScene(r command.NewScene) error {
	d := s.deps
	if !d.editing() {
		return errNotInEdit("new scene", d.Mode.Mode())
	}
	d.Scene.Clear()
	d.Scene.Settings.InputBindings = component.CloneBindings(d.Bindings)
	if r.Name != "" {
		d.Scene.Settings.Name = r.Name
	}
	d.Assets.Clear()
	d.History.Reset()
	d.Selection.Clear()
	fixtures, err := d.SeedFixtures()
	if err != nil {
		s.log.Error("fixtures not seeded", zap.Error(err))
	}

	s.log.Info("scene cleared", zap.String("name", d.Scene.Settings.Name))
	d.Outbox.Emit(EventSceneCleared, SceneCleared{Name: d.Scene.Settings.Name})
	for _, id := range fixtures {
		d.emitEntity(id)
	}
	d.emitSettings()
	d.emitAssets()
	d.emitSelection()
	return nil
}

func (s *SceneSystem) save(r command.SaveScene) error {
	d := s.deps
	if !d.editing() {
		return errNotInEdit("save", d.Mode.Mode())
	}
	if r.Store && d.Store == nil {
		return errNoStore
	}
	doc := sceneio.Capture(d.Scene, d.Assets)
	data, err := sceneio.Marshal(doc)
	if err != nil {
		return err
	}
	name := r.Name
	if name == "" {
		name = doc.Metadata.Name
	}
	if !r.Autosave {
		d.Outbox.Emit(EventSceneSaved, SceneSaved{Name: name, Document: data})
	}
	if r.Store {
		s.storeAsync(name, data)
	}
	s.log.Debug("scene saved",
		zap.String("name", name),
		zap.Int("entities", doc.Metadata.EntityCount),
		zap.Bool("store", r.Store),
	)
	return nil
}

// storeAsync writes data in the background; the outcome comes back to the
// loop as a StoreSaved request.
func (s *SceneSystem) storeAsync(name string, data []byte) {
	store, slot := s.deps.Store, s.deps.Slot
	s.bg.Go(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		err := store.Save(ctx, name, sceneio.FormatVersion, data)
		if qerr := slot.Enqueue(command.StoreSaved{Name: name, Err: err}); qerr != nil {
			s.log.Warn("store result dropped", zap.String("name", name), zap.Error(qerr))
		}
		return nil
	})
}

func (s *SceneSystem) fetch(name string) error {
	d := s.deps
	if !d.editing() {
		return errNotInEdit("load", d.Mode.Mode())
	}
	if d.Store == nil {
		return errNoStore
	}
	store, slot := d.Store, d.Slot
	s.bg.Go(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		res := command.StoreLoaded{Name: name}
		stored, err := store.Load(ctx, name)
		if err != nil {
			res.Err = err
		} else {
			res.Data = stored.Document
		}
		if qerr := slot.Enqueue(res); qerr != nil {
			s.log.Warn("store result dropped", zap.String("name", name), zap.Error(qerr))
		}
		return nil
	})
	return nil
}

func (s *SceneSystem) stored(r command.StoreSaved) {
	ev := SceneStored{Name: r.Name, OK: r.Err == nil}
	if r.Err != nil {
		ev.Error = r.Err.Error()
		s.log.Error("scene store save failed", zap.String("name", r.Name), zap.Error(r.Err))
	} else {
		s.log.Info("scene stored", zap.String("name", r.Name))
	}
	s.deps.Outbox.Emit(EventSceneStored, ev)
}

// load parses data completely before touching the scene, so a bad document
// leaves the current scene as it was.
func (s *SceneSystem) load(data []byte, source string) error {
	d := s.deps
	if !d.editing() {
		return errNotInEdit("load", d.Mode.Mode())
	}
	doc, err := sceneio.Parse(data)
	if err != nil {
		return err
	}
	res := sceneio.Apply(doc, d.Scene, d.Assets)
	d.History.Reset()
	d.Selection.Clear()
	if _, err := d.SeedFixtures(); err != nil {
		s.log.Error("fixtures not seeded", zap.Error(err))
	}

	ev := SceneLoaded{Name: res.Name, Source: source, EntityCount: res.Spawned}
	if res.Warnings != nil {
		ev.Warnings = res.Warnings.Error()
		s.log.Warn("scene loaded with warnings", zap.String("name", res.Name), zap.Error(res.Warnings))
	}
	s.log.Info("scene loaded",
		zap.String("name", res.Name),
		zap.String("source", source),
		zap.Int("entities", res.Spawned),
	)
	d.Outbox.Emit(EventSceneLoaded, ev)
	for _, id := range d.Scene.Entities() {
		d.emitEntity(id)
	}
	d.emitSettings()
	d.emitAssets()
	d.emitSelection()
	return nil
}
