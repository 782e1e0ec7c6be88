package scene

import (
	"fmt"

	"github.com/webforge/scenecore/internal/component"
)

// ParentOf returns the parent EntityId, or "" for roots and unknown entities.
func (s *Scene) ParentOf(id string) string {
	h, ok := s.byID[id]
	if !ok {
		return ""
	}
	p, ok := s.Parents.Get(h)
	if !ok {
		return ""
	}
	return p.ID
}

// Children returns the direct children of id in creation order.
func (s *Scene) Children(id string) []string {
	var out []string
	for _, h := range s.order {
		if p, ok := s.Parents.Get(h); ok && p.ID == id {
			out = append(out, s.handles[h])
		}
	}
	return out
}

// Roots returns entities without a live parent in creation order.
func (s *Scene) Roots() []string {
	var out []string
	for _, h := range s.order {
		p, ok := s.Parents.Get(h)
		if !ok || !s.Exists(p.ID) {
			out = append(out, s.handles[h])
		}
	}
	return out
}

// Descendants returns the subtree below id in depth-first pre-order,
// excluding id itself.
func (s *Scene) Descendants(id string) []string {
	children := s.childIndex()
	var out []string
	var walk func(string)
	walk = func(cur string) {
		for _, c := range children[cur] {
			out = append(out, c)
			walk(c)
		}
	}
	walk(id)
	return out
}

// IsAncestor reports whether ancestor appears on the parent chain of id.
func (s *Scene) IsAncestor(ancestor, id string) bool {
	cur := s.ParentOf(id)
	for steps := 0; cur != "" && steps <= len(s.order); steps++ {
		if cur == ancestor {
			return true
		}
		cur = s.ParentOf(cur)
	}
	return false
}

// Reparent moves id under parentID, or to the root when parentID is empty.
// The hierarchy is left untouched when the move would create a cycle.
func (s *Scene) Reparent(id, parentID string) error {
	h, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("reparent %s: %w", id, ErrEntityNotFound)
	}
	if parentID == "" {
		if s.Parents.Has(h) {
			s.Parents.Remove(h)
			s.markStructure()
		}
		return nil
	}
	if parentID == id {
		return fmt.Errorf("reparent %s: %w", id, ErrSelfParent)
	}
	if !s.Exists(parentID) {
		return fmt.Errorf("reparent %s: parent %s: %w", id, parentID, ErrEntityNotFound)
	}
	if s.IsAncestor(id, parentID) {
		return fmt.Errorf("reparent %s under %s: %w", id, parentID, ErrCycle)
	}
	if cur, ok := s.Parents.Get(h); ok && cur.ID == parentID {
		return nil
	}
	s.Parents.Set(h, &component.Parent{ID: parentID})
	s.markStructure()
	return nil
}

func (s *Scene) childIndex() map[string][]string {
	idx := make(map[string][]string, len(s.order))
	for _, h := range s.order {
		if p, ok := s.Parents.Get(h); ok {
			idx[p.ID] = append(idx[p.ID], s.handles[h])
		}
	}
	return idx
}
