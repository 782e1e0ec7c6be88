package dispatch

import (
	"errors"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/webforge/scenecore/internal/command"
	"github.com/webforge/scenecore/internal/component"
)

func newDispatcher(t *testing.T) (*Dispatcher, *command.Queue) {
	t.Helper()
	var slot command.Slot
	q := command.NewQueue()
	require.NoError(t, slot.Register(q))
	d, err := NewDefault(&slot, zap.NewNop())
	require.NoError(t, err)
	return d, q
}

func TestUnknownCommand(t *testing.T) {
	d, q := newDispatcher(t)
	err := d.Dispatch("explode", nil)
	assert.ErrorIs(t, err, ErrUnknownCommand)
	assert.Zero(t, q.Total())
}

func TestQueueNotInitialized(t *testing.T) {
	var slot command.Slot
	d, err := NewDefault(&slot, zap.NewNop())
	require.NoError(t, err)
	assert.ErrorIs(t, d.Dispatch("undo", nil), command.ErrNotInitialized)
}

func TestDuplicateCommandRejectedAtBuild(t *testing.T) {
	a := NewRouter("a")
	a.Handle("same", constant(command.Undo{}))
	b := NewRouter("b")
	b.Handle("same", constant(command.Redo{}))
	_, err := New(&command.Slot{}, zap.NewNop(), a, b)
	assert.ErrorIs(t, err, ErrDuplicateCommand)
}

func TestFirstRouterWins(t *testing.T) {
	d, _ := newDispatcher(t)
	cmds := d.Commands()
	assert.Equal(t, "play", cmds[0])
	seen := make(map[string]bool, len(cmds))
	for _, c := range cmds {
		assert.False(t, seen[c], "duplicate %s", c)
		seen[c] = true
	}
	for _, c := range []string{"update_material", "remove_camera", "update_procedural_mesh", "load_stored_scene", "set_audio_bus"} {
		assert.True(t, seen[c], c)
	}
}

func TestUpdateTransformShapeValidation(t *testing.T) {
	d, q := newDispatcher(t)

	cases := map[string]string{
		"missing id":    `{"position":[1,2,3]}`,
		"no fields":     `{"entityId":"a"}`,
		"zero rotation": `{"entityId":"a","rotation":[0,0,0,0]}`,
		"bad shape":     `{"entityId":"a","position":"up"}`,
		"not an object": `[1,2]`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			err := d.Dispatch("update_transform", []byte(body))
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, "update_transform", ve.Command)
		})
	}
	assert.Zero(t, q.Total(), "rejected payloads are never queued")

	// Shape-valid request for an entity that does not exist is accepted;
	// existence is checked when the request is applied.
	require.NoError(t, d.Dispatch("update_transform", []byte(`{"entityId":"ghost","rotation":[0,0,0,2]}`)))
	reqs := q.Drain(command.DomainTransform)
	require.Len(t, reqs, 1)
	ut := reqs[0].(command.UpdateTransform)
	assert.Equal(t, "ghost", ut.ID)
	assert.Equal(t, component.Quat{0, 0, 0, 1}, *ut.Rotation)
	assert.Nil(t, ut.Position)
}

func TestCapabilityCommands(t *testing.T) {
	d, q := newDispatcher(t)
	require.NoError(t, d.Dispatch("update_light", []byte(`{"entityId":"e","light":{"kind":"spot","intensity":2}}`)))
	require.NoError(t, d.Dispatch("remove_light", []byte(`{"entityId":"e"}`)))

	err := d.Dispatch("update_light", []byte(`{"entityId":"e","light":{"kind":"laser"}}`))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "light.kind", ve.Field)

	err = d.Dispatch("update_camera", []byte(`{"entityId":"e"}`))
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "camera", ve.Field)

	reqs := q.Drain(command.DomainLight)
	require.Len(t, reqs, 2)
	set := reqs[0].(command.SetCapability[component.Light])
	assert.Equal(t, "spot", set.Value.Kind)
	assert.Nil(t, reqs[1].(command.SetCapability[component.Light]).Value)

	require.NoError(t, d.Dispatch("update_procedural_mesh", []byte(`{"entityId":"e","proceduralMesh":{"generator":"terrain","seed":7}}`)))
	assert.Equal(t, 1, q.Len(command.DomainMesh))
}

func TestSelectionAndEntityCommands(t *testing.T) {
	d, q := newDispatcher(t)
	require.NoError(t, d.Dispatch("select_entity", []byte(`{"entityId":"a","mode":"toggle"}`)))
	require.NoError(t, d.Dispatch("select_entities", []byte(`{"entityIds":["b","c"]}`)))
	assert.Error(t, d.Dispatch("select_entity", []byte(`{"entityId":"a","mode":"xor"}`)))

	sel := q.Drain(command.DomainSelection)
	require.Len(t, sel, 2)
	assert.Equal(t, command.Select{IDs: []string{"a"}, Op: command.SelectToggle}, sel[0])

	require.NoError(t, d.Dispatch("reparent_entity", []byte(`{"entityId":"a","parentId":null}`)))
	require.NoError(t, d.Dispatch("rename_entity", []byte(`{"entityId":"a","name":"Box"}`)))
	assert.Error(t, d.Dispatch("rename_entity", []byte(`{"entityId":"a","name":"  "}`)))
	assert.Error(t, d.Dispatch("set_visibility", []byte(`{"entityId":"a"}`)))
	assert.Error(t, d.Dispatch("delete_entities", []byte(`{"entityIds":[]}`)))
	assert.Error(t, d.Dispatch("spawn_entity", []byte(`{"name":"x"}`)))

	ent := q.Drain(command.DomainEntity)
	require.Len(t, ent, 2)
	assert.Equal(t, command.ReparentEntity{ID: "a"}, ent[0])
}

func TestLoadSceneCopiesDocument(t *testing.T) {
	d, q := newDispatcher(t)
	payload := []byte(`{"document":{"formatVersion":2,"entities":[]}}`)
	require.NoError(t, d.Dispatch("load_scene", payload))
	assert.Error(t, d.Dispatch("load_scene", []byte(`{}`)))

	reqs := q.Drain(command.DomainScene)
	require.Len(t, reqs, 1)
	ls := reqs[0].(command.LoadScene)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(ls.Data, &doc))
	assert.EqualValues(t, 2, doc["formatVersion"])
}

func TestParserPanicIsRecovered(t *testing.T) {
	r := NewRouter("bad")
	r.Handle("boom", func(json.RawMessage) (command.Request, error) { panic("bad parser") })
	var slot command.Slot
	require.NoError(t, slot.Register(command.NewQueue()))
	d, err := New(&slot, zap.NewNop(), r)
	require.NoError(t, err)
	err = d.Dispatch("boom", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad parser")
}
