package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityPoolRecyclesWithNewGeneration(t *testing.T) {
	p := NewEntityPool()

	a := p.Create()
	require.False(t, a.IsZero())
	require.True(t, p.Alive(a))
	require.Equal(t, 1, p.Count())

	require.True(t, p.Destroy(a))
	require.False(t, p.Alive(a))
	require.False(t, p.Destroy(a), "stale handle must be ignored")

	b := p.Create()
	assert.Equal(t, a.Index(), b.Index())
	assert.NotEqual(t, a.Generation(), b.Generation())
	assert.False(t, p.Alive(a))
	assert.True(t, p.Alive(b))
}

func TestZeroHandleNeverAlive(t *testing.T) {
	p := NewEntityPool()
	p.Create()
	assert.False(t, p.Alive(0))
}

func TestWorldDestroyRemovesComponents(t *testing.T) {
	w := NewWorld()
	names := NewPtrComponentStore[string]()
	w.Registry().Register(names)

	id := w.CreateEntity()
	n := "cube"
	names.Set(id, &n)

	require.True(t, w.DestroyEntity(id))
	assert.False(t, names.Has(id))
	assert.False(t, w.Alive(id))
}

func TestWorldDeferredDestruction(t *testing.T) {
	w := NewWorld()
	names := NewPtrComponentStore[string]()
	w.Registry().Register(names)

	id := w.CreateEntity()
	n := "bullet"
	names.Set(id, &n)

	w.MarkForDestruction(id)
	require.True(t, w.PendingDestruction())
	assert.True(t, names.Has(id), "components survive until flush")

	destroyed := w.FlushDestroyQueue()
	assert.Equal(t, []EntityID{id}, destroyed)
	assert.False(t, names.Has(id))
	assert.False(t, w.PendingDestruction())
	assert.Nil(t, w.FlushDestroyQueue())
}

func TestRegistryForgetReachesEveryStore(t *testing.T) {
	r := NewRegistry()
	a := NewPtrComponentStore[int]()
	b := NewPtrComponentStore[float64]()
	r.Register(a)
	r.Register(b)
	one, two := 1, 2.0
	a.Set(1, &one)
	b.Set(1, &two)
	a.Set(2, &one)

	r.Forget(1)
	assert.False(t, a.Has(1))
	assert.False(t, b.Has(1))
	assert.Equal(t, 1, a.Len())
	assert.Equal(t, 2, r.Len())
}
