package selection

import (
	"slices"

	"github.com/webforge/scenecore/internal/core/ecs"
)

type member struct {
	handle ecs.EntityID
	seq    uint64
}

// Selection is the editor's multi-select set. Members are kept by EntityId
// and mirrored by ECS handle. The primary is always a member, or empty when
// the set is empty.
type Selection struct {
	members map[string]member
	byHand  map[ecs.EntityID]string
	primary string
	seq     uint64
}

func New() *Selection {
	return &Selection{
		members: make(map[string]member, 8),
		byHand:  make(map[ecs.EntityID]string, 8),
	}
}

// SelectOne replaces the selection with a single entity.
func (s *Selection) SelectOne(id string, h ecs.EntityID) {
	s.Clear()
	s.Add(id, h)
}

// Add inserts id and makes it primary.
func (s *Selection) Add(id string, h ecs.EntityID) {
	if old, ok := s.members[id]; ok {
		delete(s.byHand, old.handle)
	}
	s.seq++
	s.members[id] = member{handle: h, seq: s.seq}
	s.byHand[h] = id
	s.primary = id
}

// Remove drops id. Removing the primary promotes the most recently added
// remaining member.
func (s *Selection) Remove(id string) bool {
	m, ok := s.members[id]
	if !ok {
		return false
	}
	delete(s.members, id)
	delete(s.byHand, m.handle)
	if s.primary == id {
		s.primary = s.latest()
	}
	return true
}

// Toggle adds id when absent and removes it when present.
func (s *Selection) Toggle(id string, h ecs.EntityID) {
	if s.Contains(id) {
		s.Remove(id)
		return
	}
	s.Add(id, h)
}

func (s *Selection) Clear() {
	clear(s.members)
	clear(s.byHand)
	s.primary = ""
}

func (s *Selection) Contains(id string) bool {
	_, ok := s.members[id]
	return ok
}

// ContainsHandle checks membership by ECS handle.
func (s *Selection) ContainsHandle(h ecs.EntityID) bool {
	_, ok := s.byHand[h]
	return ok
}

func (s *Selection) Len() int { return len(s.members) }

func (s *Selection) Primary() string { return s.primary }

// IDs returns members in the order they were added.
func (s *Selection) IDs() []string {
	out := make([]string, 0, len(s.members))
	for id := range s.members {
		out = append(out, id)
	}
	slices.SortFunc(out, func(a, b string) int {
		return int(s.members[a].seq) - int(s.members[b].seq)
	})
	return out
}

// Prune removes members for which alive returns false and reports whether
// anything changed.
func (s *Selection) Prune(alive func(id string) bool) bool {
	changed := false
	for id := range s.members {
		if !alive(id) {
			s.Remove(id)
			changed = true
		}
	}
	return changed
}

// Restore replaces the selection with ids, resolving handles through
// resolve. Ids that no longer resolve are skipped. primary is honoured when
// it survived.
func (s *Selection) Restore(ids []string, primary string, resolve func(string) (ecs.EntityID, bool)) {
	s.Clear()
	for _, id := range ids {
		if h, ok := resolve(id); ok {
			s.Add(id, h)
		}
	}
	if s.Contains(primary) {
		s.primary = primary
	}
}

func (s *Selection) latest() string {
	best, bestSeq := "", uint64(0)
	for id, m := range s.members {
		if m.seq > bestSeq {
			best, bestSeq = id, m.seq
		}
	}
	return best
}
