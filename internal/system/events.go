package system

import (
	"github.com/goccy/go-json"

	"github.com/webforge/scenecore/internal/asset"
	"github.com/webforge/scenecore/internal/component"
	"github.com/webforge/scenecore/internal/scene"
)

// Outbound event names.
const (
	EventModeChanged           = "mode-changed"
	EventSelectionChanged      = "selection-changed"
	EventSceneGraphUpdate      = "scene-graph-update"
	EventHistoryChanged        = "history-changed"
	EventTransformChanged      = "transform-changed"
	EventEntitySpawned         = "entity-spawned"
	EventEntitiesDeleted       = "entities-deleted"
	EventEntityRenamed         = "entity-renamed"
	EventEntityUpdated         = "entity-updated"
	EventVisibilityChanged     = "visibility-changed"
	EventReparentResult        = "reparent-result"
	EventGameComponentsChanged = "game-components-changed"
	EventEnvironmentChanged    = "environment-changed"
	EventAmbientLightChanged   = "ambient-light-changed"
	EventPostProcessingChanged = "post-processing-changed"
	EventAudioBusesChanged     = "audio-buses-changed"
	EventInputBindingsChanged  = "input-bindings-changed"
	EventAssetsChanged         = "assets-changed"
	EventSceneSaved            = "scene-saved"
	EventSceneLoaded           = "scene-loaded"
	EventSceneStored           = "scene-stored"
	EventSceneCleared          = "scene-cleared"
	EventScriptError           = "script-error"
	EventCommandError          = "command-error"
)

type ModeChanged struct {
	Mode      string   `json:"mode"`
	Previous  string   `json:"previous"`
	Despawned []string `json:"despawned,omitempty"`
	Respawned []string `json:"respawned,omitempty"`
}

type SelectionChanged struct {
	IDs         []string `json:"ids"`
	PrimaryID   string   `json:"primaryId"`
	PrimaryName string   `json:"primaryName"`
}

type TransformChanged struct {
	EntityID  string              `json:"entityId"`
	Transform component.Transform `json:"transform"`
}

type EntitiesDeleted struct {
	EntityIDs []string `json:"entityIds"`
}

type EntityRenamed struct {
	EntityID string `json:"entityId"`
	Name     string `json:"name"`
}

type VisibilityChanged struct {
	EntityID string `json:"entityId"`
	Visible  bool   `json:"visible"`
}

type ReparentResult struct {
	EntityID string `json:"entityId"`
	ParentID string `json:"parentId"`
	OK       bool   `json:"ok"`
	Error    string `json:"error,omitempty"`
}

// CapabilityChanged is sent as "<capability>-changed". A nil Value means
// the capability was removed.
type CapabilityChanged[T any] struct {
	EntityID string `json:"entityId"`
	Value    *T     `json:"value"`
}

type GameComponentsChanged struct {
	EntityID   string                    `json:"entityId"`
	Components []component.GameComponent `json:"components"`
}

type AssetsChanged struct {
	Assets []asset.Metadata `json:"assets"`
}

type SceneSaved struct {
	Name     string          `json:"name"`
	Document json.RawMessage `json:"document"`
}

type SceneLoaded struct {
	Name        string `json:"name"`
	Source      string `json:"source"`
	EntityCount int    `json:"entityCount"`
	Warnings    string `json:"warnings,omitempty"`
}

type SceneStored struct {
	Name  string `json:"name"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type SceneCleared struct {
	Name string `json:"name"`
}

type CommandError struct {
	Command  string `json:"command"`
	EntityID string `json:"entityId,omitempty"`
	Error    string `json:"error"`
}

// EntityUpdated carries the full state of one entity after undo, redo or a
// Play/Stop restore.
type EntityUpdated = scene.EntitySnapshot
