package mode

import (
	"github.com/webforge/scenecore/internal/command"
	"github.com/webforge/scenecore/internal/scene"
	"github.com/webforge/scenecore/internal/selection"
)

type Mode uint8

const (
	Edit Mode = iota
	Play
	Paused
)

func (m Mode) String() string {
	switch m {
	case Edit:
		return "edit"
	case Play:
		return "play"
	case Paused:
		return "paused"
	}
	return "unknown"
}

// SceneSnapshot is the pre-Play copy of the scene. It exists only between
// Play and Stop and is applied as a whole.
type SceneSnapshot struct {
	Entities []scene.EntitySnapshot
	Settings scene.Settings
	Selected []string
	Primary  string
}

// ParentOf returns the pre-Play parent of id. ok is false when id was not
// part of the snapshot.
func (s *SceneSnapshot) ParentOf(id string) (parent string, ok bool) {
	for _, es := range s.Entities {
		if es.ID == id {
			return es.ParentID, true
		}
	}
	return "", false
}

// Report describes the outcome of one transition request.
type Report struct {
	From      Mode
	To        Mode
	Changed   bool
	Despawned []string // runtime entities removed on Stop
	Respawned []string // snapshot entities destroyed during Play and recreated on Stop
}

// Machine owns the engine mode and the Play snapshot. Only the mode system
// calls Apply.
type Machine struct {
	mode     Mode
	snapshot *SceneSnapshot
}

func NewMachine() *Machine {
	return &Machine{mode: Edit}
}

func (m *Machine) Mode() Mode { return m.mode }

// Snapshot returns the captured pre-Play state, or nil in Edit mode.
func (m *Machine) Snapshot() *SceneSnapshot { return m.snapshot }

// Apply performs transition t. Requests that are not valid from the current
// mode leave everything unchanged and report Changed=false.
func (m *Machine) Apply(t command.Transition, sc *scene.Scene, sel *selection.Selection) Report {
	r := Report{From: m.mode, To: m.mode}
	switch {
	case t == command.TransitionPlay && m.mode == Edit:
		m.snapshot = capture(sc, sel)
		sel.Clear()
		m.mode = Play
	case t == command.TransitionStop && (m.mode == Play || m.mode == Paused):
		r.Despawned, r.Respawned = restore(sc, sel, m.snapshot)
		m.snapshot = nil
		m.mode = Edit
	case t == command.TransitionPause && m.mode == Play:
		m.mode = Paused
	case t == command.TransitionResume && m.mode == Paused:
		m.mode = Play
	default:
		return r
	}
	r.To = m.mode
	r.Changed = true
	return r
}

func capture(sc *scene.Scene, sel *selection.Selection) *SceneSnapshot {
	snap := &SceneSnapshot{
		Settings: sc.Settings.Clone(),
		Selected: sel.IDs(),
		Primary:  sel.Primary(),
	}
	for _, id := range sc.Entities() {
		if sc.IsRuntimeOnly(id) {
			continue
		}
		if es, ok := sc.Snapshot(id); ok {
			snap.Entities = append(snap.Entities, es)
		}
	}
	return snap
}

// restore rolls sc back to snap. Surviving entities are restored first so
// that none of them stays parented under an entity about to be removed.
// Snapshot entities destroyed during Play are spawned again last.
func restore(sc *scene.Scene, sel *selection.Selection, snap *SceneSnapshot) (despawned, respawned []string) {
	if snap == nil {
		return nil, nil
	}
	keep := make(map[string]bool, len(snap.Entities))
	var missing []scene.EntitySnapshot
	for _, es := range snap.Entities {
		keep[es.ID] = true
		if !sc.Exists(es.ID) {
			missing = append(missing, es)
			continue
		}
		_ = sc.Restore(es)
	}
	for _, id := range sc.Entities() {
		if keep[id] || !sc.Exists(id) {
			continue
		}
		removed, err := sc.Despawn(id)
		if err == nil {
			despawned = append(despawned, removed...)
		}
	}
	sc.FlushDestroyed()
	if len(missing) > 0 {
		respawned, _ = sc.SpawnSnapshots(missing)
	}
	sc.Settings = snap.Settings.Clone()
	sc.Touch()
	sel.Restore(snap.Selected, snap.Primary, sc.Handle)
	return despawned, respawned
}
