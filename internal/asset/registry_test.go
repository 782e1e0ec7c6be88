package asset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webforge/scenecore/internal/component"
	"github.com/webforge/scenecore/internal/scene"
)

func TestRegisterAndRemove(t *testing.T) {
	r := NewRegistry()
	m, err := r.Register(Metadata{Kind: "texture", Name: "brick.png", Size: 2048, Source: "upload"})
	require.NoError(t, err)
	assert.NotEmpty(t, m.ID)

	_, err = r.Register(Metadata{Kind: "spreadsheet", Name: "x"})
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = r.Register(Metadata{ID: "snd", Kind: "audio", Name: "a.ogg"})
	require.NoError(t, err)
	_, err = r.Register(Metadata{ID: "snd", Kind: "audio", Name: "b.ogg"})
	require.NoError(t, err)

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, m.ID, list[0].ID)
	assert.Equal(t, "b.ogg", list[1].Name)

	require.NoError(t, r.Remove("snd"))
	assert.ErrorIs(t, r.Remove("snd"), ErrAssetNotFound)
	assert.Equal(t, 1, r.Len())
}

func TestReplace(t *testing.T) {
	r := NewRegistry()
	_, _ = r.Register(Metadata{ID: "old", Kind: "model", Name: "old.glb"})
	r.Replace([]Metadata{{ID: "n1", Kind: "font"}, {ID: "n2", Kind: "hdri"}})
	_, ok := r.Get("old")
	assert.False(t, ok)
	assert.Equal(t, []string{"n1", "n2"}, []string{r.List()[0].ID, r.List()[1].ID})
}

func TestReferences(t *testing.T) {
	sc := scene.New()
	_, err := sc.Spawn("e1", "cube", "E1", component.DefaultTransform())
	require.NoError(t, err)
	_, err = sc.Spawn("e2", "speaker", "E2", component.DefaultTransform())
	require.NoError(t, err)
	require.NoError(t, scene.SetCapability(sc, sc.Materials, "e1", &component.Material{TextureAssetID: "tex"}))
	require.NoError(t, scene.SetCapability(sc, sc.Audio, "e2", &component.Audio{AssetID: "snd"}))

	assert.Equal(t, []string{"e1"}, References(sc, "tex"))
	assert.True(t, InUse(sc, "snd"))
	assert.False(t, InUse(sc, "sky"))
	sc.Settings.Environment.SkyboxID = "sky"
	assert.True(t, InUse(sc, "sky"))
}
