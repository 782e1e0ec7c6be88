package scene

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webforge/scenecore/internal/component"
)

func spawn(t *testing.T, s *Scene, id string) string {
	t.Helper()
	got, err := s.Spawn(id, "cube", id, component.DefaultTransform())
	require.NoError(t, err)
	return got
}

func TestSpawnAssignsUUIDAndRejectsDuplicates(t *testing.T) {
	s := New()
	id, err := s.Spawn("", "cube", "Cube", component.DefaultTransform())
	require.NoError(t, err)
	assert.Len(t, id, 36)
	assert.True(t, s.GraphDirty())

	_, err = s.Spawn(id, "cube", "Again", component.DefaultTransform())
	assert.ErrorIs(t, err, ErrDuplicateID)
	assert.Equal(t, 1, s.Len())
}

func TestReparentRejectsCycles(t *testing.T) {
	s := New()
	a, b, c := spawn(t, s, "a"), spawn(t, s, "b"), spawn(t, s, "c")
	require.NoError(t, s.Reparent(b, a))
	require.NoError(t, s.Reparent(c, b))

	err := s.Reparent(a, c)
	require.ErrorIs(t, err, ErrCycle)
	assert.Equal(t, "", s.ParentOf(a))
	assert.Equal(t, a, s.ParentOf(b))
	assert.Equal(t, b, s.ParentOf(c))

	assert.ErrorIs(t, s.Reparent(a, a), ErrSelfParent)
	assert.ErrorIs(t, s.Reparent(a, "missing"), ErrEntityNotFound)

	require.NoError(t, s.Reparent(c, ""))
	assert.Equal(t, []string{a, c}, s.Roots())
}

func TestDespawnRemovesSubtree(t *testing.T) {
	s := New()
	a, b, c, d := spawn(t, s, "a"), spawn(t, s, "b"), spawn(t, s, "c"), spawn(t, s, "d")
	require.NoError(t, s.Reparent(b, a))
	require.NoError(t, s.Reparent(c, b))

	removed, err := s.Despawn(a)
	require.NoError(t, err)
	assert.Equal(t, []string{a, b, c}, removed)
	assert.Equal(t, []string{d}, s.Entities())

	_, err = s.Despawn(a)
	assert.ErrorIs(t, err, ErrEntityNotFound)
}

func TestDespawnDetachesUndeletableDescendants(t *testing.T) {
	s := New()
	a, cam, lens, b := spawn(t, s, "a"), spawn(t, s, "cam"), spawn(t, s, "lens"), spawn(t, s, "b")
	require.NoError(t, s.Reparent(cam, a))
	require.NoError(t, s.Reparent(lens, cam))
	require.NoError(t, s.Reparent(b, a))
	require.NoError(t, s.MarkUndeletable(cam))

	removed, err := s.Despawn(a)
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, removed)
	assert.Equal(t, []string{cam, lens}, s.Entities())
	assert.Equal(t, "", s.ParentOf(cam))
	assert.Equal(t, cam, s.ParentOf(lens))
}

func TestDespawnKeepingReportsKeptRoots(t *testing.T) {
	s := New()
	r, p, q := spawn(t, s, "r"), spawn(t, s, "p"), spawn(t, s, "q")
	require.NoError(t, s.Reparent(p, r))
	require.NoError(t, s.Reparent(q, p))

	removed, kept, err := s.DespawnKeeping(r, func(id string) bool { return id == p })
	require.NoError(t, err)
	assert.Equal(t, []string{r}, removed)
	assert.Equal(t, []string{p}, kept)
	assert.Equal(t, []string{p}, s.Roots())
	assert.True(t, s.Exists(q))
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	s := New()
	id := spawn(t, s, "lamp")
	require.NoError(t, SetCapability(s, s.Lights, id, &component.Light{Kind: "point", Intensity: 2}))
	require.NoError(t, SetCapability(s, s.Shaders, id, &component.Shader{Kind: "toon", Params: map[string]float64{"bands": 3}}))

	snap, ok := s.Snapshot(id)
	require.True(t, ok)
	require.NotNil(t, snap.Light)
	assert.Nil(t, snap.Material)

	// Mutating the snapshot must not leak into the scene.
	snap.Shader.Params["bands"] = 9
	assert.Equal(t, 3.0, Capability(s, s.Shaders, id).Params["bands"])
	snap.Shader.Params["bands"] = 3

	require.NoError(t, s.SetName(id, "renamed"))
	require.NoError(t, s.SetVisible(id, false))
	tr := component.DefaultTransform()
	tr.Position = component.Vec3{4, 5, 6}
	require.NoError(t, s.SetTransform(id, tr))
	require.NoError(t, SetCapability[component.Light](s, s.Lights, id, nil))
	require.NoError(t, SetCapability(s, s.Materials, id, &component.Material{Metallic: 1}))

	require.NoError(t, s.Restore(snap))
	after, _ := s.Snapshot(id)
	assert.Equal(t, snap, after)
}

func TestSpawnSnapshotsLinksParentsAfterSpawning(t *testing.T) {
	s := New()
	snaps := []EntitySnapshot{
		{ID: "child", Type: "cube", Name: "Child", Visible: true, Transform: component.DefaultTransform(), ParentID: "root"},
		{ID: "root", Type: "group", Name: "Root", Visible: false, Transform: component.DefaultTransform()},
		{ID: "orphan", Type: "cube", Visible: true, Transform: component.DefaultTransform(), ParentID: "nowhere"},
	}
	spawned, err := s.SpawnSnapshots(snaps)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEntityNotFound)
	assert.Equal(t, []string{"child", "root", "orphan"}, spawned)
	assert.Equal(t, "root", s.ParentOf("child"))
	assert.Equal(t, "", s.ParentOf("orphan"))

	ident, _ := s.Identity("root")
	assert.False(t, ident.Visible)
}

func TestDeferredDestructionFlushesIndexes(t *testing.T) {
	s := New()
	a, b := spawn(t, s, "a"), spawn(t, s, "b")
	require.NoError(t, s.MarkRuntimeOnly(b))
	assert.False(t, s.Persistent(b))
	assert.True(t, s.Persistent(a))

	require.NoError(t, s.MarkForDestruction(b))
	assert.True(t, s.Exists(b))
	assert.Equal(t, []string{b}, s.FlushDestroyed())
	assert.False(t, s.Exists(b))
	assert.Nil(t, s.FlushDestroyed())
	assert.Equal(t, []string{a}, s.Entities())
}

func TestSnapshotAllSkipsTransientEntities(t *testing.T) {
	s := New()
	a, b, c := spawn(t, s, "a"), spawn(t, s, "b"), spawn(t, s, "c")
	require.NoError(t, s.MarkRuntimeOnly(b))
	require.NoError(t, s.MarkUndeletable(c))

	assert.Len(t, s.SnapshotAll(false), 3)
	persistent := s.SnapshotAll(true)
	require.Len(t, persistent, 1)
	assert.Equal(t, a, persistent[0].ID)
}

func TestEntitySnapshotDecodeDefaults(t *testing.T) {
	var snap EntitySnapshot
	require.NoError(t, json.Unmarshal([]byte(`{"entityId":"x","entityType":"cube","name":"X"}`), &snap))
	assert.True(t, snap.Visible)
	assert.Equal(t, component.DefaultTransform(), snap.Transform)
	assert.Nil(t, snap.Material)

	require.NoError(t, json.Unmarshal([]byte(`{"entityId":"y","visible":false}`), &snap))
	assert.False(t, snap.Visible)
}

func TestSettingsBindingsAndBuses(t *testing.T) {
	st := DefaultSettings()
	st.SetInputBinding(component.InputBinding{Action: "jump", Keys: []string{"Space"}})
	st.SetInputBinding(component.InputBinding{Action: "jump", Keys: []string{"KeyW"}})
	require.Len(t, st.InputBindings, 1)
	assert.Equal(t, []string{"KeyW"}, st.InputBindings[0].Keys)

	cp := st.Clone()
	cp.InputBindings[0].Keys[0] = "KeyX"
	assert.Equal(t, "KeyW", st.InputBindings[0].Keys[0])

	assert.True(t, st.RemoveInputBinding("jump"))
	assert.False(t, st.RemoveInputBinding("jump"))

	st.SetAudioBus(component.AudioBus{Name: "music", Volume: 0.1})
	n := len(st.AudioBuses)
	st.SetAudioBus(component.AudioBus{Name: "voice", Volume: 1})
	assert.Len(t, st.AudioBuses, n+1)
}
