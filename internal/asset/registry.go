package asset

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/webforge/scenecore/internal/scene"
)

var (
	ErrAssetNotFound = errors.New("asset not found")
	ErrUnknownKind   = errors.New("unknown asset kind")
	ErrAssetInUse    = errors.New("asset referenced by entities")
)

// Kinds accepted by Register. Decoding is done by external pipelines; the
// registry only records metadata.
var Kinds = []string{"texture", "model", "audio", "hdri", "font", "script"}

type Metadata struct {
	ID     string `json:"assetId"`
	Kind   string `json:"kind"`
	Name   string `json:"name"`
	Size   int64  `json:"size,omitempty"`
	Source string `json:"source"`
}

// Registry maps asset ids to metadata, preserving registration order.
type Registry struct {
	items map[string]Metadata
	order []string
}

func NewRegistry() *Registry {
	return &Registry{items: make(map[string]Metadata, 16)}
}

// Register adds or replaces m. An empty ID gets a fresh UUID.
func (r *Registry) Register(m Metadata) (Metadata, error) {
	if !slices.Contains(Kinds, m.Kind) {
		return Metadata{}, fmt.Errorf("register %q: %w: %s", m.Name, ErrUnknownKind, m.Kind)
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if _, exists := r.items[m.ID]; !exists {
		r.order = append(r.order, m.ID)
	}
	r.items[m.ID] = m
	return m, nil
}

func (r *Registry) Remove(id string) error {
	if _, ok := r.items[id]; !ok {
		return fmt.Errorf("remove %s: %w", id, ErrAssetNotFound)
	}
	delete(r.items, id)
	r.order = slices.DeleteFunc(r.order, func(s string) bool { return s == id })
	return nil
}

func (r *Registry) Get(id string) (Metadata, bool) {
	m, ok := r.items[id]
	return m, ok
}

func (r *Registry) Len() int { return len(r.items) }

// List returns every asset in registration order.
func (r *Registry) List() []Metadata {
	out := make([]Metadata, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.items[id])
	}
	return out
}

// Replace swaps the registry contents for list. Used by scene load.
func (r *Registry) Replace(list []Metadata) {
	r.Clear()
	for _, m := range list {
		if _, exists := r.items[m.ID]; !exists {
			r.order = append(r.order, m.ID)
		}
		r.items[m.ID] = m
	}
}

func (r *Registry) Clear() {
	clear(r.items)
	r.order = r.order[:0]
}

// References lists the entities whose capabilities point at asset id.
func References(sc *scene.Scene, id string) []string {
	var out []string
	for _, eid := range sc.Entities() {
		if m := scene.Capability(sc, sc.Materials, eid); m != nil && m.TextureAssetID == id {
			out = append(out, eid)
			continue
		}
		if a := scene.Capability(sc, sc.Audio, eid); a != nil && a.AssetID == id {
			out = append(out, eid)
		}
	}
	return out
}

// InUse reports whether id is referenced by an entity or the environment.
func InUse(sc *scene.Scene, id string) bool {
	return sc.Settings.Environment.SkyboxID == id || len(References(sc, id)) > 0
}
