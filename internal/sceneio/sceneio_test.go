package sceneio

import (
	"fmt"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webforge/scenecore/internal/asset"
	"github.com/webforge/scenecore/internal/component"
	"github.com/webforge/scenecore/internal/scene"
)

func buildScene(t *testing.T) (*scene.Scene, *asset.Registry) {
	t.Helper()
	sc := scene.New()
	assets := asset.NewRegistry()
	for i, id := range []string{"root", "child", "grandchild", "loose"} {
		tr := component.DefaultTransform()
		tr.Position = component.Vec3{float64(i), 2, 3}
		tr.Scale = component.Vec3{1, float64(i + 1), 1}
		_, err := sc.Spawn(id, "cube", "Name "+id, tr)
		require.NoError(t, err)
	}
	require.NoError(t, sc.Reparent("child", "root"))
	require.NoError(t, sc.Reparent("grandchild", "child"))
	require.NoError(t, sc.SetVisible("loose", false))
	require.NoError(t, scene.SetCapability(sc, sc.Lights, "loose", &component.Light{Kind: "spot", Intensity: 3}))

	_, err := sc.Spawn("cam", "camera", "Editor Camera", component.DefaultTransform())
	require.NoError(t, err)
	require.NoError(t, sc.MarkUndeletable("cam"))
	_, err = sc.Spawn("rt", "sphere", "Runtime", component.DefaultTransform())
	require.NoError(t, err)
	require.NoError(t, sc.MarkRuntimeOnly("rt"))

	_, err = assets.Register(asset.Metadata{ID: "tex", Kind: "texture", Name: "brick.png", Source: "upload"})
	require.NoError(t, err)
	sc.Settings.Name = "Level 1"
	sc.Settings.SetInputBinding(component.InputBinding{Action: "jump", Keys: []string{"Space"}})
	return sc, assets
}

func TestSaveLoadRoundTrip(t *testing.T) {
	sc, assets := buildScene(t)
	data, err := Marshal(Capture(sc, assets))
	require.NoError(t, err)

	doc, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, FormatVersion, doc.FormatVersion)
	assert.Equal(t, 4, doc.Metadata.EntityCount)

	loaded := scene.New()
	loadedAssets := asset.NewRegistry()
	res := Apply(doc, loaded, loadedAssets)
	require.NoError(t, res.Warnings)
	assert.Equal(t, 4, res.Spawned)
	assert.Equal(t, "Level 1", loaded.Settings.Name)

	// Roots are spawned first, so creation order may differ.
	assert.ElementsMatch(t, sc.SnapshotAll(true), loaded.SnapshotAll(true))
	assert.False(t, loaded.Exists("cam"))
	assert.False(t, loaded.Exists("rt"))
	assert.Equal(t, "child", loaded.ParentOf("grandchild"))
	assert.Equal(t, assets.List(), loadedAssets.List())
	assert.Equal(t, sc.Settings.InputBindings, loaded.Settings.InputBindings)
}

func TestVersionGate(t *testing.T) {
	for _, v := range []int{0, 4, 99} {
		_, err := Parse([]byte(fmt.Sprintf(`{"formatVersion":%d,"entities":[]}`, v)))
		assert.ErrorIs(t, err, ErrUnsupportedVersion, "version %d", v)
	}
	_, err := Parse([]byte(`{"entities":[]}`))
	assert.ErrorIs(t, err, ErrUnsupportedVersion)

	for _, v := range []int{1, 2, 3} {
		_, err := Parse([]byte(fmt.Sprintf(`{"formatVersion":%d,"entities":[]}`, v)))
		assert.NoError(t, err, "version %d", v)
	}
}

func TestVersionOneKeepsDefaults(t *testing.T) {
	doc, err := Parse([]byte(`{"formatVersion":1,"metadata":{"name":"old"},"entities":[{"entityId":"x","entityType":"cube","name":"X"}]}`))
	require.NoError(t, err)
	def := scene.DefaultSettings()
	assert.Equal(t, def.PostProcessing, doc.PostProcessing)
	assert.Equal(t, def.AudioBuses, doc.AudioBuses)
	require.Len(t, doc.Entities, 1)
	assert.True(t, doc.Entities[0].Visible)
}

func TestInvalidDocuments(t *testing.T) {
	cases := map[string]string{
		"not json":     `{`,
		"missing id":   `{"formatVersion":2,"entities":[{"name":"x"}]}`,
		"duplicate id": `{"formatVersion":2,"entities":[{"entityId":"a"},{"entityId":"a"}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(body))
			assert.ErrorIs(t, err, ErrInvalidDocument)
		})
	}
}

func TestApplySpawnsChildrenListedBeforeParents(t *testing.T) {
	doc := &Document{
		FormatVersion: 2,
		Entities: []scene.EntitySnapshot{
			{ID: "c", Visible: true, Transform: component.DefaultTransform(), ParentID: "p"},
			{ID: "p", Visible: true, Transform: component.DefaultTransform()},
			{ID: "d", Visible: true, Transform: component.DefaultTransform(), ParentID: "missing"},
		},
	}
	sc := scene.New()
	_, err := sc.Spawn("stale", "cube", "stale", component.DefaultTransform())
	require.NoError(t, err)

	res := Apply(doc, sc, asset.NewRegistry())
	assert.Equal(t, 3, res.Spawned)
	assert.ErrorIs(t, res.Warnings, scene.ErrEntityNotFound)
	assert.False(t, sc.Exists("stale"))
	assert.Equal(t, "p", sc.ParentOf("c"))
	assert.Equal(t, "", sc.ParentOf("d"))
	assert.Equal(t, scene.DefaultSettings().Name, sc.Settings.Name)
}

func TestWrittenDocumentShape(t *testing.T) {
	sc, assets := buildScene(t)
	data, err := Marshal(Capture(sc, assets))
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"formatVersion", "metadata", "environment", "ambientLight", "inputBindings", "assets", "postProcessing", "audioBuses", "entities"} {
		assert.Contains(t, raw, key)
	}
	assert.EqualValues(t, 2, raw["formatVersion"])

	table, ok := raw["assets"].(map[string]any)
	require.True(t, ok, "assets is an object keyed by asset id")
	tex, ok := table["tex"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "brick.png", tex["name"])
}

func TestParseReadsAssetTable(t *testing.T) {
	doc, err := Parse([]byte(`{"formatVersion":2,"assets":{
		"b-mesh":{"kind":"model","name":"ship.glb","source":"upload"},
		"a-tex":{"assetId":"stale","kind":"texture","name":"grass.png","source":"upload"}},
		"entities":[]}`))
	require.NoError(t, err)
	require.Len(t, doc.Assets, 2)

	assets := asset.NewRegistry()
	Apply(doc, scene.New(), assets)
	list := assets.List()
	require.Len(t, list, 2)
	assert.Equal(t, "a-tex", list[0].ID)
	assert.Equal(t, "b-mesh", list[1].ID)
	m, ok := assets.Get("a-tex")
	require.True(t, ok)
	assert.Equal(t, "grass.png", m.Name)

	_, err = Parse([]byte(`{"formatVersion":2,"assets":{"":{"kind":"texture"}},"entities":[]}`))
	assert.ErrorIs(t, err, ErrInvalidDocument)
	_, err = Parse([]byte(`{"formatVersion":2,"assets":[{"assetId":"x"}],"entities":[]}`))
	assert.ErrorIs(t, err, ErrInvalidDocument)
}
