// Package editor assembles the scene editor core: scene state, command
// queue, dispatcher and the per-tick systems.
package editor

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/webforge/scenecore/internal/asset"
	"github.com/webforge/scenecore/internal/command"
	"github.com/webforge/scenecore/internal/component"
	"github.com/webforge/scenecore/internal/config"
	"github.com/webforge/scenecore/internal/core/event"
	coresys "github.com/webforge/scenecore/internal/core/system"
	"github.com/webforge/scenecore/internal/data"
	"github.com/webforge/scenecore/internal/dispatch"
	"github.com/webforge/scenecore/internal/history"
	"github.com/webforge/scenecore/internal/mode"
	"github.com/webforge/scenecore/internal/persist"
	"github.com/webforge/scenecore/internal/scene"
	"github.com/webforge/scenecore/internal/scenegraph"
	"github.com/webforge/scenecore/internal/sceneio"
	"github.com/webforge/scenecore/internal/scripting"
	"github.com/webforge/scenecore/internal/selection"
	"github.com/webforge/scenecore/internal/system"
)

type Options struct {
	Editor    config.EditorConfig
	Scripting config.ScriptingConfig
	Templates *data.TemplateTable
	Bindings  []component.InputBinding
	Store     persist.SceneStore // optional
}

// Editor owns one scene and everything that mutates it. Tick must be
// called from a single goroutine; Dispatch may be called from any.
type Editor struct {
	deps    *system.Deps
	runner  *coresys.Runner
	disp    *dispatch.Dispatcher
	scenes  *system.SceneSystem
	scripts *scripting.Engine
	log     *zap.Logger
}

func New(opts Options, log *zap.Logger) (*Editor, error) {
	if opts.Templates == nil {
		return nil, fmt.Errorf("editor: template table is required")
	}
	sc := scene.New()
	sc.Settings.InputBindings = component.CloneBindings(opts.Bindings)

	deps := &system.Deps{
		Scene:     sc,
		Selection: selection.New(),
		History:   history.NewStack(opts.Editor.HistoryCapacity),
		Mode:      mode.NewMachine(),
		Graph:     scenegraph.NewCache(),
		Assets:    asset.NewRegistry(),
		Templates: opts.Templates,
		Queue:     command.NewQueue(),
		Slot:      &command.Slot{},
		Outbox:    event.NewOutbox(log),
		Store:     opts.Store,
		Log:       log,
		Bindings:  component.CloneBindings(opts.Bindings),
		Fixtures:  slices.Clone(opts.Editor.Fixtures),
	}
	for _, typ := range deps.Fixtures {
		if opts.Templates.Get(typ) == nil {
			return nil, fmt.Errorf("editor: fixture %q has no entity template", typ)
		}
	}
	if _, err := deps.SeedFixtures(); err != nil {
		return nil, fmt.Errorf("editor: %w", err)
	}
	if err := deps.Slot.Register(deps.Queue); err != nil {
		return nil, fmt.Errorf("editor: %w", err)
	}
	disp, err := dispatch.NewDefault(deps.Slot, log.With(zap.String("component", "dispatch")))
	if err != nil {
		return nil, fmt.Errorf("editor: %w", err)
	}

	e := &Editor{deps: deps, disp: disp, log: log}
	if opts.Scripting.Enabled {
		e.scripts, err = scripting.NewEngine(opts.Scripting.LibDir, e.spawnRuntime, log.With(zap.String("component", "scripting")))
		if err != nil {
			return nil, fmt.Errorf("editor: %w", err)
		}
		e.scripts.SetBudget(opts.Scripting.Budget)
	}

	e.scenes = system.NewSceneSystem(deps)
	r := coresys.NewRunner()
	// Input
	r.Register(system.NewModeSystem(deps, e.scripts))
	r.Register(e.scenes)
	// PreUpdate
	r.Register(system.NewHistorySystem(deps))
	// Update: appliers first, scripts last
	r.Register(system.NewEntitySystem(deps))
	r.Register(system.NewTransformSystem(deps))
	for _, s := range system.CapabilitySystems(deps) {
		r.Register(s)
	}
	r.Register(system.NewGameComponentSystem(deps))
	r.Register(system.NewSelectionSystem(deps))
	r.Register(system.NewEnvironmentSystem(deps))
	r.Register(system.NewAssetSystem(deps))
	r.Register(system.NewScriptSystem(deps, e.scripts))
	// PostUpdate
	r.Register(system.NewSceneGraphSystem(deps))
	// Output
	r.Register(system.NewHistoryEventSystem(deps, opts.Editor.HistoryEventInterval))
	r.Register(system.NewOutputSystem(deps))
	// Persist
	r.Register(system.NewAutosaveSystem(deps, opts.Editor.AutosaveName, opts.Editor.AutosaveIntervalTicks))
	// Cleanup
	r.Register(system.NewCleanupSystem(deps))
	e.runner = r

	log.Info("editor ready",
		zap.Int("systems", r.Len()),
		zap.Int("commands", len(disp.Commands())),
		zap.Int("templates", opts.Templates.Count()),
		zap.Bool("scripting", e.scripts != nil),
		zap.Bool("store", opts.Store != nil),
	)
	return e, nil
}

// spawnRuntime backs scene.spawn in entity scripts.
func (e *Editor) spawnRuntime(sc *scene.Scene, typ string, pos component.Vec3) (string, error) {
	return system.SpawnTemplate(sc, e.deps.Templates, command.SpawnEntity{
		Type:        typ,
		Position:    &pos,
		RuntimeOnly: true,
	})
}

// Dispatch validates and queues one external command.
func (e *Editor) Dispatch(cmd string, payload []byte) error {
	return e.disp.Dispatch(cmd, payload)
}

// Tick runs every system once.
func (e *Editor) Tick(dt time.Duration) {
	e.runner.Tick(dt)
}

// AddSink registers a receiver for outbound events.
func (e *Editor) AddSink(s event.Sink) { e.deps.Outbox.AddSink(s) }

func (e *Editor) Commands() []string { return e.disp.Commands() }

// SaveToStore writes the current edit-time scene under name synchronously.
// Call it only when the loop is not ticking, e.g. at shutdown. While playing
// the pre-Play snapshot is what gets saved.
func (e *Editor) SaveToStore(ctx context.Context, name string) error {
	if e.deps.Store == nil {
		return nil
	}
	sc := e.deps.Scene
	if snap := e.deps.Mode.Snapshot(); snap != nil {
		sc = scene.New()
		sc.Settings = snap.Settings.Clone()
		if _, err := sc.SpawnSnapshots(snap.Entities); err != nil {
			e.log.Warn("shutdown save: snapshot incomplete", zap.Error(err))
		}
	}
	doc, err := sceneio.Marshal(sceneio.Capture(sc, e.deps.Assets))
	if err != nil {
		return err
	}
	if err := e.deps.Store.Save(ctx, name, sceneio.FormatVersion, doc); err != nil {
		return fmt.Errorf("save %q: %w", name, err)
	}
	e.log.Info("scene saved to store", zap.String("name", name), zap.Int("bytes", len(doc)))
	return nil
}

// Close waits for background store calls and releases the queue handle.
// Requests arriving after Close fail with command.ErrNotInitialized.
func (e *Editor) Close() {
	e.scenes.Wait()
	e.deps.Slot.Unregister()
	if e.scripts != nil {
		e.scripts.Close()
	}
}

// Accessors used by tooling and tests. Loop goroutine only.

func (e *Editor) Scene() *scene.Scene             { return e.deps.Scene }
func (e *Editor) Selection() *selection.Selection { return e.deps.Selection }
func (e *Editor) History() *history.Stack         { return e.deps.History }
func (e *Editor) Mode() mode.Mode                 { return e.deps.Mode.Mode() }
func (e *Editor) Assets() *asset.Registry         { return e.deps.Assets }
func (e *Editor) Graph() scenegraph.Graph         { return e.deps.Graph.Graph() }
func (e *Editor) PendingCommands() int            { return e.deps.Queue.Total() }
func (e *Editor) Templates() *data.TemplateTable  { return e.deps.Templates }
func (e *Editor) Ticks() uint64                   { return e.runner.Ticks() }
