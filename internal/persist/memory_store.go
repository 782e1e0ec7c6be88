package persist

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

// MemoryStore is a process-local SceneStore used when no database is
// configured. Contents are lost on exit.
type MemoryStore struct {
	mu     sync.RWMutex
	scenes map[string]StoredScene
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{scenes: make(map[string]StoredScene)}
}

func (m *MemoryStore) Save(ctx context.Context, name string, formatVersion int, document []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	m.scenes[name] = StoredScene{
		Name:          name,
		FormatVersion: formatVersion,
		Document:      slices.Clone(document),
		UpdatedAt:     time.Now(),
	}
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Load(ctx context.Context, name string) (*StoredScene, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	s, ok := m.scenes[name]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrSceneNotFound)
	}
	s.Document = slices.Clone(s.Document)
	return &s, nil
}

func (m *MemoryStore) List(ctx context.Context) ([]SceneInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	out := make([]SceneInfo, 0, len(m.scenes))
	for _, s := range m.scenes {
		out = append(out, SceneInfo{Name: s.Name, FormatVersion: s.FormatVersion, Size: len(s.Document), UpdatedAt: s.UpdatedAt})
	}
	m.mu.RUnlock()
	slices.SortFunc(out, func(a, b SceneInfo) int { return b.UpdatedAt.Compare(a.UpdatedAt) })
	return out, nil
}

func (m *MemoryStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.scenes[name]; !ok {
		return fmt.Errorf("%s: %w", name, ErrSceneNotFound)
	}
	delete(m.scenes, name)
	return nil
}
