package component

// Identity is attached to every addressable scene object.
// ID is immutable for the entity's lifetime and survives save/load and
// despawn/respawn cycles; the ECS handle does not.
type Identity struct {
	ID      string
	Type    string
	Name    string
	Visible bool
}

// Parent links a child to its parent by EntityId. Children are derived by
// scanning this store; nothing stores a child list authoritatively.
type Parent struct {
	ID string
}

// RuntimeOnly marks entities spawned during Play. They are never snapshotted
// and are despawned on Stop.
type RuntimeOnly struct{}

// Undeletable marks editor-owned entities (default camera, gizmo anchors)
// that are neither deletable nor saved.
type Undeletable struct{}
