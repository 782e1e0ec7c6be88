package scene

import (
	"fmt"

	"github.com/webforge/scenecore/internal/core/ecs"
)

type cloner[T any] interface {
	Clone() *T
}

// clonePtr deep-copies v when the payload carries reference fields.
func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	if c, ok := any(v).(cloner[T]); ok {
		return c.Clone()
	}
	cp := *v
	return &cp
}

// Capability returns a copy of the entity's payload from store, or nil when
// the entity lacks it.
func Capability[T any](s *Scene, store *ecs.PtrComponentStore[T], id string) *T {
	h, ok := s.byID[id]
	if !ok {
		return nil
	}
	v, ok := store.Get(h)
	if !ok {
		return nil
	}
	return clonePtr(v)
}

// SetCapability stores a copy of v on the entity. A nil v removes the
// capability.
func SetCapability[T any](s *Scene, store *ecs.PtrComponentStore[T], id string, v *T) error {
	h, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrEntityNotFound)
	}
	if v == nil {
		store.Remove(h)
	} else {
		store.Set(h, clonePtr(v))
	}
	s.revision++
	return nil
}
