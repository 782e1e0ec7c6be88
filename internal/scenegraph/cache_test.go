package scenegraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webforge/scenecore/internal/component"
	"github.com/webforge/scenecore/internal/scene"
)

func TestRefreshOnlyWhenDirty(t *testing.T) {
	sc := scene.New()
	c := NewCache()

	g, changed := c.Refresh(sc)
	assert.True(t, changed, "first build always reports")
	assert.Empty(t, g.Nodes)

	_, changed = c.Refresh(sc)
	assert.False(t, changed)

	_, err := sc.Spawn("a", "group", "A", component.DefaultTransform())
	require.NoError(t, err)
	_, err = sc.Spawn("b", "cube", "B", component.DefaultTransform())
	require.NoError(t, err)
	require.NoError(t, sc.Reparent("b", "a"))

	g, changed = c.Refresh(sc)
	require.True(t, changed)
	assert.False(t, sc.GraphDirty())
	assert.Equal(t, []string{"a"}, g.RootIDs)
	require.Len(t, g.Nodes, 2)
	assert.Equal(t, []string{"b"}, g.Nodes[0].Children)
	assert.Equal(t, "a", g.Nodes[1].ParentID)
	assert.Equal(t, []string{}, g.Nodes[1].Children)
}

func TestTransformOnlyChangeDoesNotRebuild(t *testing.T) {
	sc := scene.New()
	_, err := sc.Spawn("a", "cube", "A", component.DefaultTransform())
	require.NoError(t, err)
	c := NewCache()
	c.Refresh(sc)
	fp := c.Fingerprint()

	tr := component.DefaultTransform()
	tr.Position = component.Vec3{1, 1, 1}
	require.NoError(t, sc.SetTransform("a", tr))
	_, changed := c.Refresh(sc)
	assert.False(t, changed)
	assert.Equal(t, fp, c.Fingerprint())
}

func TestRenameBackAndForthReportsNoChange(t *testing.T) {
	sc := scene.New()
	_, err := sc.Spawn("a", "cube", "A", component.DefaultTransform())
	require.NoError(t, err)
	c := NewCache()
	c.Refresh(sc)

	require.NoError(t, sc.SetName("a", "tmp"))
	require.NoError(t, sc.SetName("a", "A"))
	_, changed := c.Refresh(sc)
	assert.False(t, changed)

	require.NoError(t, sc.SetVisible("a", false))
	g, changed := c.Refresh(sc)
	assert.True(t, changed)
	assert.False(t, g.Nodes[0].Visible)

	c.Invalidate()
	_, changed = c.Refresh(sc)
	assert.True(t, changed)
}
