package history

import (
	"errors"
	"fmt"

	"github.com/webforge/scenecore/internal/scene"
)

var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// DefaultCapacity bounds the undo stack when config does not override it.
const DefaultCapacity = 100

// Status is the payload of the history-changed event.
type Status struct {
	CanUndo         bool   `json:"canUndo"`
	CanRedo         bool   `json:"canRedo"`
	UndoDescription string `json:"undoDescription,omitempty"`
	RedoDescription string `json:"redoDescription,omitempty"`
}

// Stack is the bounded undo/redo log. Single writer: the history system and
// the appliers that push, all on the game loop goroutine.
type Stack struct {
	undo     []Action
	redo     []Action
	capacity int
	dirty    bool
}

func NewStack(capacity int) *Stack {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Stack{
		undo:     make([]Action, 0, capacity),
		capacity: capacity,
	}
}

// Push records a completed action, clears redo and drops the oldest entry
// when the stack is full.
func (s *Stack) Push(a Action) {
	if len(s.undo) == s.capacity {
		copy(s.undo, s.undo[1:])
		s.undo[len(s.undo)-1] = nil
		s.undo = s.undo[:len(s.undo)-1]
	}
	s.undo = append(s.undo, a)
	clear(s.redo)
	s.redo = s.redo[:0]
	s.dirty = true
}

// Undo reverts the most recent action. An action that fails to revert is
// discarded and its error returned.
func (s *Stack) Undo(sc *scene.Scene) (Action, error) {
	n := len(s.undo)
	if n == 0 {
		return nil, ErrNothingToUndo
	}
	a := s.undo[n-1]
	s.undo[n-1] = nil
	s.undo = s.undo[:n-1]
	s.dirty = true
	if err := a.Undo(sc); err != nil {
		return a, fmt.Errorf("undo %q: %w", a.Describe(), err)
	}
	s.redo = append(s.redo, a)
	return a, nil
}

// Redo re-applies the most recently undone action.
func (s *Stack) Redo(sc *scene.Scene) (Action, error) {
	n := len(s.redo)
	if n == 0 {
		return nil, ErrNothingToRedo
	}
	a := s.redo[n-1]
	s.redo[n-1] = nil
	s.redo = s.redo[:n-1]
	s.dirty = true
	if err := a.Redo(sc); err != nil {
		return a, fmt.Errorf("redo %q: %w", a.Describe(), err)
	}
	s.undo = append(s.undo, a)
	return a, nil
}

func (s *Stack) Status() Status {
	st := Status{CanUndo: len(s.undo) > 0, CanRedo: len(s.redo) > 0}
	if st.CanUndo {
		st.UndoDescription = s.undo[len(s.undo)-1].Describe()
	}
	if st.CanRedo {
		st.RedoDescription = s.redo[len(s.redo)-1].Describe()
	}
	return st
}

func (s *Stack) UndoLen() int  { return len(s.undo) }
func (s *Stack) RedoLen() int  { return len(s.redo) }
func (s *Stack) Capacity() int { return s.capacity }

// Dirty reports whether the stack changed since the last MarkClean.
func (s *Stack) Dirty() bool { return s.dirty }
func (s *Stack) MarkClean()  { s.dirty = false }

// Reset empties both stacks. Used on new and load scene.
func (s *Stack) Reset() {
	clear(s.undo)
	clear(s.redo)
	s.undo = s.undo[:0]
	s.redo = s.redo[:0]
	s.dirty = true
}
