package ecs

// Store is the untyped view of a component store that the Registry needs to
// drop a destroyed entity's data.
type Store interface {
	Remove(id EntityID)
}

// PtrComponentStore holds at most one *T per entity handle. Values are
// shared, not copied: callers that keep a pointer see later edits.
type PtrComponentStore[T any] struct {
	byHandle map[EntityID]*T
}

func NewPtrComponentStore[T any]() *PtrComponentStore[T] {
	return &PtrComponentStore[T]{byHandle: make(map[EntityID]*T, 64)}
}

// Set attaches c to id, replacing any previous value. A nil c is stored as
// is; use Remove to detach.
func (s *PtrComponentStore[T]) Set(id EntityID, c *T) { s.byHandle[id] = c }

func (s *PtrComponentStore[T]) Get(id EntityID) (*T, bool) {
	c, ok := s.byHandle[id]
	return c, ok
}

func (s *PtrComponentStore[T]) Has(id EntityID) bool {
	_, ok := s.byHandle[id]
	return ok
}

func (s *PtrComponentStore[T]) Remove(id EntityID) { delete(s.byHandle, id) }

func (s *PtrComponentStore[T]) Len() int { return len(s.byHandle) }
