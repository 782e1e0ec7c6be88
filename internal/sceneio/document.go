package sceneio

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	json "github.com/goccy/go-json"
	"github.com/webforge/scenecore/internal/asset"
	"github.com/webforge/scenecore/internal/component"
	"github.com/webforge/scenecore/internal/scene"
)

const (
	// FormatVersion is what Marshal writes.
	FormatVersion = 2
	// MinFormatVersion and MaxFormatVersion bound what Parse accepts.
	MinFormatVersion = 1
	MaxFormatVersion = 3
)

var (
	ErrUnsupportedVersion = errors.New("unsupported scene format version")
	ErrInvalidDocument    = errors.New("invalid scene document")
)

type Metadata struct {
	Name        string `json:"name"`
	Editor      string `json:"editor,omitempty"`
	EntityCount int    `json:"entityCount"`
}

// Document is the on-disk scene file.
type Document struct {
	FormatVersion  int                       `json:"formatVersion"`
	Metadata       Metadata                  `json:"metadata"`
	Environment    component.Environment     `json:"environment"`
	AmbientLight   component.AmbientLight    `json:"ambientLight"`
	InputBindings  []component.InputBinding  `json:"inputBindings"`
	Assets         map[string]asset.Metadata `json:"assets"` // keyed by asset id
	PostProcessing component.PostProcessing  `json:"postProcessing"`
	AudioBuses     []component.AudioBus      `json:"audioBuses"`
	Entities       []scene.EntitySnapshot    `json:"entities"`
}

// Capture builds a document from the persistent part of the scene.
func Capture(sc *scene.Scene, assets *asset.Registry) Document {
	st := sc.Settings.Clone()
	entities := sc.SnapshotAll(true)
	return Document{
		FormatVersion:  FormatVersion,
		Metadata:       Metadata{Name: st.Name, Editor: "scenecore", EntityCount: len(entities)},
		Environment:    st.Environment,
		AmbientLight:   st.AmbientLight,
		InputBindings:  nonNil(st.InputBindings),
		Assets:         assetTable(assets.List()),
		PostProcessing: st.PostProcessing,
		AudioBuses:     nonNil(st.AudioBuses),
		Entities:       entities,
	}
}

func Marshal(doc Document) ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal scene: %w", err)
	}
	return data, nil
}

// Parse decodes and validates a document without touching any scene.
// Fields missing from older versions keep their defaults.
func Parse(data []byte) (*Document, error) {
	var head struct {
		FormatVersion *int `json:"formatVersion"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if head.FormatVersion == nil {
		return nil, fmt.Errorf("%w: missing formatVersion", ErrUnsupportedVersion)
	}
	if v := *head.FormatVersion; v < MinFormatVersion || v > MaxFormatVersion {
		return nil, fmt.Errorf("%w: %d (supported %d..%d)", ErrUnsupportedVersion, v, MinFormatVersion, MaxFormatVersion)
	}

	def := scene.DefaultSettings()
	doc := &Document{
		Environment:    def.Environment,
		AmbientLight:   def.AmbientLight,
		PostProcessing: def.PostProcessing,
		AudioBuses:     def.AudioBuses,
	}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := validate(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func validate(doc *Document) error {
	seen := make(map[string]bool, len(doc.Entities))
	for i, e := range doc.Entities {
		if e.ID == "" {
			return fmt.Errorf("%w: entity %d has no entityId", ErrInvalidDocument, i)
		}
		if seen[e.ID] {
			return fmt.Errorf("%w: duplicate entityId %s", ErrInvalidDocument, e.ID)
		}
		if !e.Transform.Position.Finite() || !e.Transform.Rotation.Finite() || !e.Transform.Scale.Finite() {
			return fmt.Errorf("%w: entity %s has a non-finite transform", ErrInvalidDocument, e.ID)
		}
		seen[e.ID] = true
	}
	for id := range doc.Assets {
		if id == "" {
			return fmt.Errorf("%w: asset with an empty id", ErrInvalidDocument)
		}
	}
	return nil
}

func assetTable(list []asset.Metadata) map[string]asset.Metadata {
	out := make(map[string]asset.Metadata, len(list))
	for _, m := range list {
		out[m.ID] = m
	}
	return out
}

// assetList orders the table by id. The key wins over a stale or missing
// assetId inside the entry.
func assetList(table map[string]asset.Metadata) []asset.Metadata {
	out := make([]asset.Metadata, 0, len(table))
	for _, id := range slices.Sorted(maps.Keys(table)) {
		m := table[id]
		m.ID = id
		out = append(out, m)
	}
	return out
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
