package system

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/webforge/scenecore/internal/asset"
	"github.com/webforge/scenecore/internal/command"
	"github.com/webforge/scenecore/internal/component"
	"github.com/webforge/scenecore/internal/core/event"
	"github.com/webforge/scenecore/internal/data"
	"github.com/webforge/scenecore/internal/history"
	"github.com/webforge/scenecore/internal/mode"
	"github.com/webforge/scenecore/internal/persist"
	"github.com/webforge/scenecore/internal/scene"
	"github.com/webforge/scenecore/internal/scenegraph"
	"github.com/webforge/scenecore/internal/selection"
)

// Deps is the shared state every system works on. All fields except Store
// are required. Everything here is touched only from the game loop
// goroutine; Slot is the one exception and is safe for concurrent use.
type Deps struct {
	Scene     *scene.Scene
	Selection *selection.Selection
	History   *history.Stack
	Mode      *mode.Machine
	Graph     *scenegraph.Cache
	Assets    *asset.Registry
	Templates *data.TemplateTable
	Queue     *command.Queue
	Slot      *command.Slot
	Outbox    *event.Outbox
	Store     persist.SceneStore // nil: no scene store configured
	Log       *zap.Logger

	// Bindings seed the input map of every new scene.
	Bindings []component.InputBinding
	// Fixtures are template types spawned into every new or loaded scene,
	// each under its type name as EntityId.
	Fixtures []string
}

func (d *Deps) editing() bool { return d.Mode.Mode() == mode.Edit }

// record pushes a to history. Changes made during Play are discarded on
// Stop, so they are never recorded.
func (d *Deps) record(a history.Action) {
	if a == nil || !d.editing() {
		return
	}
	d.History.Push(a)
}

// fail reports an apply-time rejection. The request is skipped; the batch
// it belongs to continues.
func (d *Deps) fail(cmd, entityID string, err error) {
	d.Log.Warn("command rejected",
		zap.String("command", cmd),
		zap.String("entity", entityID),
		zap.Error(err),
	)
	d.Outbox.Emit(EventCommandError, CommandError{Command: cmd, EntityID: entityID, Error: err.Error()})
}

// apply runs fn for one request, turning a returned error or a panic into
// a command-error event.
func (d *Deps) apply(cmd, entityID string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			d.Log.Error("command applier panic",
				zap.String("command", cmd),
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
			d.fail(cmd, entityID, fmt.Errorf("internal error: %v", r))
		}
	}()
	if err := fn(); err != nil {
		d.fail(cmd, entityID, err)
	}
}

func (d *Deps) emitSelection() {
	primary := d.Selection.Primary()
	d.Outbox.Emit(EventSelectionChanged, SelectionChanged{
		IDs:         d.Selection.IDs(),
		PrimaryID:   primary,
		PrimaryName: d.Scene.Name(primary),
	})
}

// pruneSelection drops despawned entities from the selection and reports
// the change.
func (d *Deps) pruneSelection() {
	if d.Selection.Prune(d.Scene.Exists) {
		d.emitSelection()
	}
}

// emitEntity sends the full state of id, or nothing if it no longer exists.
func (d *Deps) emitEntity(id string) {
	if snap, ok := d.Scene.Snapshot(id); ok {
		d.Outbox.Emit(EventEntityUpdated, snap)
	}
}

func (d *Deps) emitSettings() {
	st := d.Scene.Settings.Clone()
	d.Outbox.Emit(EventEnvironmentChanged, st.Environment)
	d.Outbox.Emit(EventAmbientLightChanged, st.AmbientLight)
	d.Outbox.Emit(EventPostProcessingChanged, st.PostProcessing)
	d.Outbox.Emit(EventAudioBusesChanged, st.AudioBuses)
	d.Outbox.Emit(EventInputBindingsChanged, st.InputBindings)
}

func (d *Deps) emitAssets() {
	d.Outbox.Emit(EventAssetsChanged, AssetsChanged{Assets: d.Assets.List()})
}

// errNotInEdit is returned for requests that only make sense while editing.
func errNotInEdit(what string, m mode.Mode) error {
	return fmt.Errorf("%s is not available in %s mode", what, m)
}

// SeedFixtures spawns every fixture the scene is missing and returns the
// new ids. Fixtures already present, say from a loaded document, are marked
// undeletable again.
func (d *Deps) SeedFixtures() ([]string, error) {
	var spawned []string
	for _, typ := range d.Fixtures {
		if d.Scene.Exists(typ) {
			if tmpl := d.Templates.Get(typ); tmpl != nil && tmpl.Undeletable {
				if err := d.Scene.MarkUndeletable(typ); err != nil {
					return spawned, fmt.Errorf("fixture %s: %w", typ, err)
				}
			}
			continue
		}
		id, err := SpawnTemplate(d.Scene, d.Templates, command.SpawnEntity{EntityID: typ, Type: typ})
		if err != nil {
			return spawned, fmt.Errorf("fixture %s: %w", typ, err)
		}
		spawned = append(spawned, id)
	}
	return spawned, nil
}
