package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/webforge/scenecore/internal/asset"
	"github.com/webforge/scenecore/internal/command"
	"github.com/webforge/scenecore/internal/component"
	"github.com/webforge/scenecore/internal/core/ecs"
	"github.com/webforge/scenecore/internal/core/event"
	"github.com/webforge/scenecore/internal/data"
	"github.com/webforge/scenecore/internal/history"
	"github.com/webforge/scenecore/internal/mode"
	"github.com/webforge/scenecore/internal/persist"
	"github.com/webforge/scenecore/internal/scene"
	"github.com/webforge/scenecore/internal/scenegraph"
	"github.com/webforge/scenecore/internal/selection"
)

func newDeps(t *testing.T) (*Deps, *event.Recorder) {
	t.Helper()
	templates, err := data.NewTemplateTable([]data.TemplateEntry{
		{Type: "cube", Material: &data.MaterialDef{BaseColor: [4]float64{1, 1, 1, 1}}},
		{Type: "empty"},
	})
	require.NoError(t, err)
	d := &Deps{
		Scene:     scene.New(),
		Selection: selection.New(),
		History:   history.NewStack(0),
		Mode:      mode.NewMachine(),
		Graph:     scenegraph.NewCache(),
		Assets:    asset.NewRegistry(),
		Templates: templates,
		Queue:     command.NewQueue(),
		Slot:      &command.Slot{},
		Outbox:    event.NewOutbox(zap.NewNop()),
		Log:       zap.NewNop(),
	}
	require.NoError(t, d.Slot.Register(d.Queue))
	rec := event.NewRecorder()
	d.Outbox.AddSink(rec)
	return d, rec
}

func spawn(t *testing.T, d *Deps, id, parent string) {
	t.Helper()
	_, err := SpawnTemplate(d.Scene, d.Templates, command.SpawnEntity{EntityID: id, Type: "cube", ParentID: parent})
	require.NoError(t, err)
}

func TestSpawnTemplateAppliesDefaults(t *testing.T) {
	d, _ := newDeps(t)
	pos := component.Vec3{1, 2, 3}
	id, err := SpawnTemplate(d.Scene, d.Templates, command.SpawnEntity{Type: "cube", Position: &pos})
	require.NoError(t, err)
	assert.Len(t, id, 36)
	assert.Equal(t, "Cube", d.Scene.Name(id))
	assert.NotNil(t, scene.Capability(d.Scene, d.Scene.Materials, id))
	tr, _ := d.Scene.Transform(id)
	assert.Equal(t, pos, tr.Position)
	assert.Equal(t, component.IdentityQuat, tr.Rotation)

	_, err = SpawnTemplate(d.Scene, d.Templates, command.SpawnEntity{Type: "dragon"})
	assert.ErrorIs(t, err, ErrUnknownEntityType)
	_, err = SpawnTemplate(d.Scene, d.Templates, command.SpawnEntity{Type: "cube", ParentID: "ghost"})
	assert.ErrorIs(t, err, scene.ErrEntityNotFound)
	assert.Equal(t, 1, d.Scene.Len())
}

func TestDuplicateCopiesSubtreeUnderFreshIDs(t *testing.T) {
	d, rec := newDeps(t)
	spawn(t, d, "p", "")
	spawn(t, d, "a", "p")
	spawn(t, d, "b", "a")
	sys := NewEntitySystem(d)

	d.Queue.Enqueue(command.DuplicateEntity{ID: "a"})
	sys.Update(0)

	require.Equal(t, 5, d.Scene.Len())
	root := d.Selection.Primary()
	require.NotEmpty(t, root)
	assert.NotEqual(t, "a", root)
	assert.Equal(t, "p", d.Scene.ParentOf(root))
	assert.Equal(t, "Cube Copy", d.Scene.Name(root))
	kids := d.Scene.Children(root)
	require.Len(t, kids, 1)
	assert.NotEqual(t, "b", kids[0])
	assert.Len(t, rec.All(), 0, "events wait for the flush")

	d.Outbox.Flush()
	assert.Len(t, rec.Named(EventEntitySpawned), 2)

	_, err := d.History.Undo(d.Scene)
	require.NoError(t, err)
	assert.Equal(t, 3, d.Scene.Len())
}

func TestUndeletableEntitiesSurviveDelete(t *testing.T) {
	d, rec := newDeps(t)
	spawn(t, d, "cam", "")
	require.NoError(t, d.Scene.MarkUndeletable("cam"))

	d.Queue.Enqueue(command.DespawnEntities{IDs: []string{"cam"}})
	NewEntitySystem(d).Update(0)
	d.Outbox.Flush()

	assert.True(t, d.Scene.Exists("cam"))
	require.Len(t, rec.Named(EventCommandError), 1)
	assert.Zero(t, d.History.UndoLen())
}

func TestUndeletableDescendantIsDetachedAndUndoRelinks(t *testing.T) {
	d, rec := newDeps(t)
	spawn(t, d, "rig", "")
	spawn(t, d, "cam", "rig")
	spawn(t, d, "prop", "rig")
	require.NoError(t, d.Scene.MarkUndeletable("cam"))

	d.Queue.Enqueue(command.DespawnEntities{IDs: []string{"rig"}})
	NewEntitySystem(d).Update(0)
	d.Outbox.Flush()

	assert.Equal(t, []string{"cam"}, d.Scene.Entities())
	assert.Equal(t, "", d.Scene.ParentOf("cam"))
	r, ok := rec.Last(EventEntitiesDeleted)
	require.True(t, ok)
	var del EntitiesDeleted
	require.NoError(t, r.Decode(&del))
	assert.Equal(t, []string{"rig", "prop"}, del.EntityIDs)
	require.Equal(t, 1, d.History.UndoLen())

	_, err := d.History.Undo(d.Scene)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"rig", "cam", "prop"}, d.Scene.Entities())
	assert.Equal(t, "rig", d.Scene.ParentOf("cam"))
	assert.Equal(t, "rig", d.Scene.ParentOf("prop"))
}

func TestFixturesAreSeededIntoNewAndLoadedScenes(t *testing.T) {
	d, rec := newDeps(t)
	templates, err := data.NewTemplateTable([]data.TemplateEntry{
		{Type: "cube"},
		{Type: "editor_camera", Name: "Editor Camera", Camera: &data.CameraDef{Fov: 50}, Undeletable: true},
	})
	require.NoError(t, err)
	d.Templates = templates
	d.Fixtures = []string{"editor_camera"}
	sys := NewSceneSystem(d)

	d.Queue.Enqueue(command.NewScene{Name: "level"})
	sys.Update(0)
	d.Outbox.Flush()
	require.True(t, d.Scene.Exists("editor_camera"))
	assert.True(t, d.Scene.IsUndeletable("editor_camera"))
	assert.Equal(t, "Editor Camera", d.Scene.Name("editor_camera"))
	assert.Len(t, rec.Named(EventEntityUpdated), 1)

	// A document without the fixture gets it back; one with it keeps the saved copy.
	d.Queue.Enqueue(command.LoadScene{Data: []byte(`{"formatVersion":2,"metadata":{"name":"bare"},"entities":[]}`)})
	sys.Update(0)
	assert.Equal(t, []string{"editor_camera"}, d.Scene.Entities())

	d.Queue.Enqueue(command.LoadScene{Data: []byte(`{"formatVersion":2,"metadata":{"name":"kept"},"entities":[
		{"entityId":"editor_camera","name":"Renamed","transform":{"position":[0,5,0],"rotation":[0,0,0,1],"scale":[1,1,1]}}]}`)})
	sys.Update(0)
	assert.Equal(t, "Renamed", d.Scene.Name("editor_camera"))
	assert.True(t, d.Scene.IsUndeletable("editor_camera"))
}

func TestAssetRemovalIsBlockedWhileReferenced(t *testing.T) {
	d, rec := newDeps(t)
	spawn(t, d, "box", "")
	sys := NewAssetSystem(d)
	caps := CapabilitySystems(d)

	d.Queue.Enqueue(command.RegisterAsset{ID: "tex", Kind: "texture", Name: "bricks", Source: "bricks.png"})
	sys.Update(0)
	d.Queue.Enqueue(command.SetCapability[component.Material]{
		Dom: command.DomainMaterial, EntityID: "box",
		Value: &component.Material{TextureAssetID: "tex"},
	})
	caps[0].Update(0)
	require.Equal(t, "tex", scene.Capability(d.Scene, d.Scene.Materials, "box").TextureAssetID)

	d.Queue.Enqueue(command.RemoveAsset{ID: "tex"})
	sys.Update(0)
	d.Outbox.Flush()
	_, ok := d.Assets.Get("tex")
	assert.True(t, ok)
	r, ok := rec.Last(EventCommandError)
	require.True(t, ok)
	var ce CommandError
	require.NoError(t, r.Decode(&ce))
	assert.Equal(t, "remove_asset", ce.Command)
	assert.Contains(t, ce.Error, asset.ErrAssetInUse.Error())

	d.Queue.Enqueue(command.SetCapability[component.Material]{Dom: command.DomainMaterial, EntityID: "box"})
	caps[0].Update(0)
	d.Queue.Enqueue(command.RemoveAsset{ID: "tex"})
	sys.Update(0)
	assert.Zero(t, d.Assets.Len())
}

func TestApplierPanicBecomesCommandError(t *testing.T) {
	d, rec := newDeps(t)
	spawn(t, d, "a", "")
	sys := NewCapabilitySystem(d, command.DomainLight,
		func(s *scene.Scene) *ecs.PtrComponentStore[component.Light] { return s.Lights },
		func(*Deps, *component.Light) error { panic("boom") })

	d.Queue.Enqueue(command.SetCapability[component.Light]{Dom: command.DomainLight, EntityID: "a", Value: &component.Light{Kind: "point"}})
	d.Queue.Enqueue(command.SetCapability[component.Light]{Dom: command.DomainLight, EntityID: "a", Value: &component.Light{Kind: "spot"}})
	assert.NotPanics(t, func() { sys.Update(0) })
	d.Outbox.Flush()
	assert.Len(t, rec.Named(EventCommandError), 2)
	assert.Nil(t, scene.Capability(d.Scene, d.Scene.Lights, "a"))
}

func TestHistoryEventIsThrottled(t *testing.T) {
	d, rec := newDeps(t)
	sys := NewHistoryEventSystem(d, 100*time.Millisecond)
	push := func() { d.History.Push(&history.Rename{ID: "x", Before: "a", After: "b"}) }

	push()
	sys.Update(16 * time.Millisecond)
	d.Outbox.Flush()
	require.Len(t, rec.Named(EventHistoryChanged), 1)

	for i := 0; i < 5; i++ {
		push()
		sys.Update(16 * time.Millisecond)
	}
	d.Outbox.Flush()
	assert.Len(t, rec.Named(EventHistoryChanged), 1)

	sys.Update(50 * time.Millisecond)
	d.Outbox.Flush()
	assert.Len(t, rec.Named(EventHistoryChanged), 2)

	// Clean stack: nothing to report however long we wait.
	sys.Update(time.Second)
	d.Outbox.Flush()
	assert.Len(t, rec.Named(EventHistoryChanged), 2)
}

func TestEnvironmentChangesAreUndoable(t *testing.T) {
	d, rec := newDeps(t)
	sys := NewEnvironmentSystem(d)

	d.Queue.Enqueue(command.SetInputBinding{Binding: component.InputBinding{Action: "jump", Keys: []string{"Space"}}})
	d.Queue.Enqueue(command.RemoveInputBinding{Action: "fly"})
	d.Queue.Enqueue(command.SetEnvironment{Value: component.Environment{SkyboxID: "missing"}})
	sys.Update(0)
	d.Outbox.Flush()

	require.Len(t, d.Scene.Settings.InputBindings, 1)
	assert.Len(t, rec.Named(EventInputBindingsChanged), 1)
	assert.Len(t, rec.Named(EventCommandError), 2)
	assert.Equal(t, 1, d.History.UndoLen())

	_, err := d.History.Undo(d.Scene)
	require.NoError(t, err)
	assert.Empty(t, d.Scene.Settings.InputBindings)
}

func TestAutosaveSkipsPlayAndUnchangedScenes(t *testing.T) {
	d, _ := newDeps(t)
	d.Store = persist.NewMemoryStore()
	sys := NewAutosaveSystem(d, "auto", 1)

	sys.Update(0)
	assert.Zero(t, d.Queue.Len(command.DomainScene), "unchanged scene")

	spawn(t, d, "a", "")
	d.Mode.Apply(command.TransitionPlay, d.Scene, d.Selection)
	sys.Update(0)
	assert.Zero(t, d.Queue.Len(command.DomainScene), "playing")

	d.Mode.Apply(command.TransitionStop, d.Scene, d.Selection)
	sys.Update(0)
	reqs := d.Queue.Drain(command.DomainScene)
	require.Len(t, reqs, 1)
	assert.Equal(t, command.SaveScene{Name: "auto", Store: true, Autosave: true}, reqs[0])

	sys.Update(0)
	assert.Zero(t, d.Queue.Len(command.DomainScene), "already saved this revision")
}

func TestCleanupFlushesScriptDestroys(t *testing.T) {
	d, rec := newDeps(t)
	spawn(t, d, "r", "")
	require.NoError(t, d.Scene.MarkRuntimeOnly("r"))
	h, _ := d.Scene.Handle("r")
	d.Selection.SelectOne("r", h)
	require.NoError(t, d.Scene.MarkForDestruction("r"))

	NewCleanupSystem(d).Update(0)
	d.Outbox.Flush()
	assert.False(t, d.Scene.Exists("r"))
	assert.Zero(t, d.Selection.Len())
	assert.Len(t, rec.Named(EventEntitiesDeleted), 1)
	assert.Len(t, rec.Named(EventSelectionChanged), 1)
}
