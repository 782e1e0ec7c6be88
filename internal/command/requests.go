package command

import "github.com/webforge/scenecore/internal/component"

// ---------- mode ----------

// Transition is an externally requested engine mode change.
type Transition uint8

const (
	TransitionPlay Transition = iota
	TransitionStop
	TransitionPause
	TransitionResume
)

func (t Transition) String() string {
	switch t {
	case TransitionPlay:
		return "play"
	case TransitionStop:
		return "stop"
	case TransitionPause:
		return "pause"
	case TransitionResume:
		return "resume"
	}
	return "unknown"
}

type ChangeMode struct {
	Transition Transition
}

func (ChangeMode) Domain() Domain { return DomainMode }

// ---------- scene ----------

type NewScene struct {
	Name string
}

// SaveScene serializes the scene. With Store set the document is also written
// to the scene store in the background. Autosave requests skip the
// scene-saved event.
type SaveScene struct {
	Name     string
	Store    bool
	Autosave bool
}

// LoadScene replaces the scene with a JSON document.
type LoadScene struct {
	Data   []byte
	Source string
}

// LoadStoredScene starts a background read from the scene store. Its result
// comes back as StoreLoaded.
type LoadStoredScene struct {
	Name string
}

// StoreSaved is enqueued by the background writer once a store save finishes.
type StoreSaved struct {
	Name string
	Err  error
}

// StoreLoaded is enqueued by the background reader once a store load finishes.
type StoreLoaded struct {
	Name string
	Data []byte
	Err  error
}

func (NewScene) Domain() Domain        { return DomainScene }
func (SaveScene) Domain() Domain       { return DomainScene }
func (LoadScene) Domain() Domain       { return DomainScene }
func (LoadStoredScene) Domain() Domain { return DomainScene }
func (StoreSaved) Domain() Domain      { return DomainScene }
func (StoreLoaded) Domain() Domain     { return DomainScene }

// ---------- history ----------

type Undo struct{}
type Redo struct{}

func (Undo) Domain() Domain { return DomainHistory }
func (Redo) Domain() Domain { return DomainHistory }

// ---------- entity ----------

// SpawnEntity creates an entity from the template for Type. Nil transform
// fields keep the template defaults.
type SpawnEntity struct {
	EntityID    string
	Type        string
	Name        string
	ParentID    string
	Position    *component.Vec3
	Rotation    *component.Quat
	Scale       *component.Vec3
	RuntimeOnly bool
}

type DespawnEntities struct {
	IDs []string
}

type DuplicateEntity struct {
	ID string
}

type RenameEntity struct {
	ID   string
	Name string
}

type SetVisibility struct {
	ID      string
	Visible bool
}

// ReparentEntity moves ID under ParentID; an empty ParentID makes it a root.
type ReparentEntity struct {
	ID       string
	ParentID string
}

func (SpawnEntity) Domain() Domain     { return DomainEntity }
func (DespawnEntities) Domain() Domain { return DomainEntity }
func (DuplicateEntity) Domain() Domain { return DomainEntity }
func (RenameEntity) Domain() Domain    { return DomainEntity }
func (SetVisibility) Domain() Domain   { return DomainEntity }
func (ReparentEntity) Domain() Domain  { return DomainEntity }

// ---------- transform ----------

// UpdateTransform carries a partial transform; nil fields are unchanged.
type UpdateTransform struct {
	ID       string
	Position *component.Vec3
	Rotation *component.Quat
	Scale    *component.Vec3
}

func (UpdateTransform) Domain() Domain { return DomainTransform }

// ---------- selection ----------

type SelectOp uint8

const (
	SelectReplace SelectOp = iota
	SelectAdd
	SelectRemove
	SelectToggle
)

type Select struct {
	IDs []string
	Op  SelectOp
}

type ClearSelection struct{}

func (Select) Domain() Domain         { return DomainSelection }
func (ClearSelection) Domain() Domain { return DomainSelection }

// ---------- capabilities ----------

// SetCapability replaces one capability payload on an entity. A nil Value
// removes the capability. Dom selects the capability's queue list.
type SetCapability[T any] struct {
	Dom      Domain
	EntityID string
	Value    *T
}

func (r SetCapability[T]) Domain() Domain { return r.Dom }

type AddGameComponent struct {
	EntityID  string
	Component component.GameComponent
}

type RemoveGameComponent struct {
	EntityID string
	Type     string
}

func (AddGameComponent) Domain() Domain    { return DomainGameComponent }
func (RemoveGameComponent) Domain() Domain { return DomainGameComponent }

// ---------- environment ----------

type SetEnvironment struct{ Value component.Environment }
type SetAmbientLight struct{ Value component.AmbientLight }
type SetPostProcessing struct{ Value component.PostProcessing }
type SetAudioBus struct{ Bus component.AudioBus }
type SetInputBinding struct{ Binding component.InputBinding }
type RemoveInputBinding struct{ Action string }

func (SetEnvironment) Domain() Domain     { return DomainEnvironment }
func (SetAmbientLight) Domain() Domain    { return DomainEnvironment }
func (SetPostProcessing) Domain() Domain  { return DomainEnvironment }
func (SetAudioBus) Domain() Domain        { return DomainEnvironment }
func (SetInputBinding) Domain() Domain    { return DomainEnvironment }
func (RemoveInputBinding) Domain() Domain { return DomainEnvironment }

// ---------- asset ----------

// RegisterAsset records asset metadata. An empty ID gets a fresh UUID at
// apply time.
type RegisterAsset struct {
	ID     string
	Kind   string
	Name   string
	Size   int64
	Source string
}

type RemoveAsset struct {
	ID string
}

func (RegisterAsset) Domain() Domain { return DomainAsset }
func (RemoveAsset) Domain() Domain   { return DomainAsset }
