package data

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShippedTemplatesLoad(t *testing.T) {
	table, err := LoadTemplateTable(filepath.Join("..", "..", "data", "yaml", "entity_templates.yaml"))
	require.NoError(t, err)
	assert.Greater(t, table.Count(), 5)

	cube := table.Get("cube")
	require.NotNil(t, cube)
	assert.Equal(t, "Cube", cube.Name)
	m, l, p, c, mesh, pt := cube.Components()
	require.NotNil(t, m)
	require.NotNil(t, mesh)
	assert.Equal(t, "box", mesh.Generator)
	assert.Nil(t, l)
	assert.Nil(t, p)
	assert.Nil(t, c)
	assert.Nil(t, pt)

	assert.Equal(t, "Physics Cube", table.Get("rigid_cube").Name)
	assert.Equal(t, "Point Light", table.Get("point_light").Name)
	assert.Nil(t, table.Get("dragon"))

	plane := table.Get("plane")
	assert.Equal(t, 10.0, plane.Transform().Scale[0])

	cam := table.Get("editor_camera")
	require.NotNil(t, cam)
	assert.True(t, cam.Undeletable)
	assert.False(t, table.Get("camera").Undeletable)
}

func TestTemplateTableRejectsBadEntries(t *testing.T) {
	_, err := ParseTemplateTable([]byte("- type: a\n- type: a\n"))
	assert.Error(t, err)
	_, err = ParseTemplateTable([]byte("- name: nameless\n"))
	assert.Error(t, err)
	_, err = ParseTemplateTable([]byte("{not a list"))
	assert.Error(t, err)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Directional Light", DisplayName("directional_light"))
	assert.Equal(t, "Rigid Body", DisplayName("rigid-body"))
}

func TestShippedInputBindingsLoad(t *testing.T) {
	bindings, err := LoadInputBindings(filepath.Join("..", "..", "data", "yaml", "input_bindings.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, bindings)
	assert.Equal(t, "move_forward", bindings[0].Action)
	assert.Equal(t, []string{"KeyW", "ArrowUp"}, bindings[0].Keys)
}
