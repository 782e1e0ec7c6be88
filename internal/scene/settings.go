package scene

import (
	"slices"

	"github.com/webforge/scenecore/internal/component"
)

// Settings holds the scene-wide state that travels with the document but is
// not attached to any entity.
type Settings struct {
	Name           string
	Environment    component.Environment
	AmbientLight   component.AmbientLight
	InputBindings  []component.InputBinding
	PostProcessing component.PostProcessing
	AudioBuses     []component.AudioBus
}

func DefaultSettings() Settings {
	return Settings{
		Name:           "Untitled",
		Environment:    component.DefaultEnvironment(),
		AmbientLight:   component.DefaultAmbientLight(),
		PostProcessing: component.DefaultPostProcessing(),
		AudioBuses:     component.DefaultAudioBuses(),
	}
}

func (s Settings) Clone() Settings {
	cp := s
	cp.InputBindings = component.CloneBindings(s.InputBindings)
	cp.AudioBuses = slices.Clone(s.AudioBuses)
	return cp
}

// SetInputBinding replaces the binding for action, or appends it.
func (s *Settings) SetInputBinding(b component.InputBinding) {
	b.Keys = slices.Clone(b.Keys)
	for i := range s.InputBindings {
		if s.InputBindings[i].Action == b.Action {
			s.InputBindings[i] = b
			return
		}
	}
	s.InputBindings = append(s.InputBindings, b)
}

// RemoveInputBinding reports whether a binding for action existed.
func (s *Settings) RemoveInputBinding(action string) bool {
	n := len(s.InputBindings)
	s.InputBindings = slices.DeleteFunc(s.InputBindings, func(b component.InputBinding) bool {
		return b.Action == action
	})
	return len(s.InputBindings) != n
}

// SetAudioBus replaces the bus with the same name, or appends it.
func (s *Settings) SetAudioBus(bus component.AudioBus) {
	for i := range s.AudioBuses {
		if s.AudioBuses[i].Name == bus.Name {
			s.AudioBuses[i] = bus
			return
		}
	}
	s.AudioBuses = append(s.AudioBuses, bus)
}
