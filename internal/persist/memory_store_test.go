package persist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ SceneStore = (*MemoryStore)(nil)
	_ SceneStore = (*SceneRepo)(nil)
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	_, err := m.Load(ctx, "level")
	assert.ErrorIs(t, err, ErrSceneNotFound)

	doc := []byte(`{"formatVersion":2}`)
	require.NoError(t, m.Save(ctx, "level", 2, doc))
	doc[0] = 'x'

	got, err := m.Load(ctx, "level")
	require.NoError(t, err)
	assert.Equal(t, `{"formatVersion":2}`, string(got.Document))
	assert.Equal(t, 2, got.FormatVersion)

	list, err := m.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, len(`{"formatVersion":2}`), list[0].Size)

	require.NoError(t, m.Delete(ctx, "level"))
	assert.ErrorIs(t, m.Delete(ctx, "level"), ErrSceneNotFound)
}

func TestMemoryStoreHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, NewMemoryStore().Save(ctx, "x", 2, nil), context.Canceled)
}
