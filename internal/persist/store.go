package persist

import (
	"context"
	"errors"
	"time"
)

var ErrSceneNotFound = errors.New("scene not found")

// StoredScene is a scene document as kept by a SceneStore. Document is the
// verbatim JSON written by the serializer.
type StoredScene struct {
	Name          string
	FormatVersion int
	Document      []byte
	UpdatedAt     time.Time
}

// SceneInfo is the listing entry for a stored scene.
type SceneInfo struct {
	Name          string    `json:"name"`
	FormatVersion int       `json:"formatVersion"`
	Size          int       `json:"size"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// SceneStore persists scene documents by name. Implementations are called
// from background goroutines, never from the game loop.
type SceneStore interface {
	Save(ctx context.Context, name string, formatVersion int, document []byte) error
	Load(ctx context.Context, name string) (*StoredScene, error)
	List(ctx context.Context) ([]SceneInfo, error)
	Delete(ctx context.Context, name string) error
}
