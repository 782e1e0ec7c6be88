package system

import (
	"fmt"
	"time"

	"github.com/webforge/scenecore/internal/command"
	coresys "github.com/webforge/scenecore/internal/core/system"
	"github.com/webforge/scenecore/internal/history"
	"github.com/webforge/scenecore/internal/scene"
)

// EnvironmentSystem applies scene-wide settings changes. Each change is one
// history entry holding the settings block before and after.
// Phase 2 (Update).
type EnvironmentSystem struct {
	deps *Deps
}

func NewEnvironmentSystem(deps *Deps) *EnvironmentSystem {
	return &EnvironmentSystem{deps: deps}
}

func (s *EnvironmentSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *EnvironmentSystem) Update(_ time.Duration) {
	d := s.deps
	for _, req := range d.Queue.Drain(command.DomainEnvironment) {
		switch r := req.(type) {
		case command.SetEnvironment:
			d.apply("set_environment", "", func() error {
				if err := requireAsset(d, r.Value.SkyboxID, "hdri", "texture"); err != nil {
					return err
				}
				return s.change("Edit environment", func(st *scene.Settings) error {
					st.Environment = r.Value
					return nil
				}, func(st scene.Settings) { d.Outbox.Emit(EventEnvironmentChanged, st.Environment) })
			})
		case command.SetAmbientLight:
			d.apply("set_ambient_light", "", func() error {
				return s.change("Edit ambient light", func(st *scene.Settings) error {
					st.AmbientLight = r.Value
					return nil
				}, func(st scene.Settings) { d.Outbox.Emit(EventAmbientLightChanged, st.AmbientLight) })
			})
		case command.SetPostProcessing:
			d.apply("set_post_processing", "", func() error {
				return s.change("Edit post-processing", func(st *scene.Settings) error {
					st.PostProcessing = r.Value
					return nil
				}, func(st scene.Settings) { d.Outbox.Emit(EventPostProcessingChanged, st.PostProcessing) })
			})
		case command.SetAudioBus:
			d.apply("set_audio_bus", "", func() error {
				return s.change("Edit audio bus "+r.Bus.Name, func(st *scene.Settings) error {
					st.SetAudioBus(r.Bus)
					return nil
				}, func(st scene.Settings) { d.Outbox.Emit(EventAudioBusesChanged, st.AudioBuses) })
			})
		case command.SetInputBinding:
			d.apply("set_input_binding", "", func() error {
				return s.change("Bind "+r.Binding.Action, func(st *scene.Settings) error {
					st.SetInputBinding(r.Binding)
					return nil
				}, func(st scene.Settings) { d.Outbox.Emit(EventInputBindingsChanged, st.InputBindings) })
			})
		case command.RemoveInputBinding:
			d.apply("remove_input_binding", "", func() error {
				return s.change("Unbind "+r.Action, func(st *scene.Settings) error {
					if !st.RemoveInputBinding(r.Action) {
						return fmt.Errorf("no binding for action %q", r.Action)
					}
					return nil
				}, func(st scene.Settings) { d.Outbox.Emit(EventInputBindingsChanged, st.InputBindings) })
			})
		}
	}
}

// change applies edit to a copy of the settings and commits it only when
// edit succeeds. notify receives a private copy of the result.
func (s *EnvironmentSystem) change(label string, edit func(*scene.Settings) error, notify func(scene.Settings)) error {
	d := s.deps
	before := d.Scene.Settings.Clone()
	next := d.Scene.Settings.Clone()
	if err := edit(&next); err != nil {
		return err
	}
	d.Scene.Settings = next
	d.Scene.Touch()
	d.record(&history.SettingsChange{Label: label, Before: before, After: next.Clone()})
	notify(next.Clone())
	return nil
}
