package system

import (
	"time"

	"github.com/webforge/scenecore/internal/command"
	coresys "github.com/webforge/scenecore/internal/core/system"
)

// SelectionSystem is the only writer of the selection model. Each request
// is followed by one selection-changed event. Phase 2 (Update).
type SelectionSystem struct {
	deps *Deps
}

func NewSelectionSystem(deps *Deps) *SelectionSystem {
	return &SelectionSystem{deps: deps}
}

func (s *SelectionSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *SelectionSystem) Update(_ time.Duration) {
	d := s.deps
	for _, req := range d.Queue.Drain(command.DomainSelection) {
		switch r := req.(type) {
		case command.Select:
			s.selectIDs(r)
			d.emitSelection()
		case command.ClearSelection:
			d.Selection.Clear()
			d.emitSelection()
		}
	}
}

// selectIDs applies op to every id. Unknown ids are reported and skipped.
func (s *SelectionSystem) selectIDs(r command.Select) {
	d := s.deps
	if r.Op == command.SelectReplace {
		d.Selection.Clear()
	}
	for _, id := range r.IDs {
		d.apply("select_entities", id, func() error {
			if r.Op == command.SelectRemove {
				d.Selection.Remove(id)
				return nil
			}
			h, ok := d.Scene.Handle(id)
			if !ok {
				return notFound(id)
			}
			switch r.Op {
			case command.SelectToggle:
				d.Selection.Toggle(id, h)
			default:
				d.Selection.Add(id, h)
			}
			return nil
		})
	}
}
