package event

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOutboxDeliversInEmissionOrder(t *testing.T) {
	o := NewOutbox(zap.NewNop())
	rec := NewRecorder()
	o.AddSink(rec)

	o.Emit("mode-changed", map[string]string{"mode": "play"})
	o.Emit("selection-changed", map[string]any{"selectedIds": []string{}})
	require.Equal(t, 2, o.Pending())
	assert.Empty(t, rec.All(), "nothing is delivered before flush")

	o.Flush()

	all := rec.All()
	require.Len(t, all, 2)
	assert.Equal(t, "mode-changed", all[0].Name)
	assert.JSONEq(t, `{"mode":"play"}`, string(all[0].Payload))
	assert.Equal(t, "selection-changed", all[1].Name)
	assert.Equal(t, 0, o.Pending())
	assert.Equal(t, uint64(2), o.Emitted())
}

func TestOutboxSkipsUnencodablePayload(t *testing.T) {
	o := NewOutbox(zap.NewNop())
	rec := NewRecorder()
	o.AddSink(rec)

	o.Emit("bad", failingPayload{})
	o.Emit("good", 1)
	o.Flush()

	all := rec.All()
	require.Len(t, all, 1)
	assert.Equal(t, "good", all[0].Name)
}

func TestOutboxRemoveSink(t *testing.T) {
	o := NewOutbox(zap.NewNop())
	count := 0
	var sink Sink = &countingSink{n: &count}
	o.AddSink(sink)
	o.Emit("x", 1)
	o.Flush()
	o.RemoveSink(sink)
	o.Emit("x", 2)
	o.Flush()
	assert.Equal(t, 1, count)
}

type failingPayload struct{}

func (failingPayload) MarshalJSON() ([]byte, error) { return nil, errors.New("boom") }

type countingSink struct{ n *int }

func (c *countingSink) Deliver(string, []byte) { *c.n++ }

func TestRecorderDecode(t *testing.T) {
	rec := NewRecorder()
	rec.Deliver("history-changed", []byte(`{"canUndo":true}`))

	last, ok := rec.Last("history-changed")
	require.True(t, ok)
	var v struct {
		CanUndo bool `json:"canUndo"`
	}
	require.NoError(t, last.Decode(&v))
	assert.True(t, v.CanUndo)

	_, ok = rec.Last("missing")
	assert.False(t, ok)
}
