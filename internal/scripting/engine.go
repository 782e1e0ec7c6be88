package scripting

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
	"go.uber.org/zap"

	"github.com/webforge/scenecore/internal/component"
	"github.com/webforge/scenecore/internal/scene"
)

// DefaultBudget bounds a single script call when SetBudget is not used.
const DefaultBudget = 8 * time.Millisecond

// SpawnFunc creates a runtime-only entity for scene.spawn.
type SpawnFunc func(sc *scene.Scene, typ string, pos component.Vec3) (string, error)

// ScriptError is reported when an entity's script fails. The script stays
// disabled until the engine is stopped.
type ScriptError struct {
	EntityID string `json:"entityId"`
	Message  string `json:"message"`
}

// TickResult lists what scripts did during one tick.
type TickResult struct {
	Spawned   []string
	Destroyed []string
	Errors    []ScriptError
}

type instance struct {
	key      uint64 // source digest; a change forces recompilation
	env      *lua.LTable
	started  bool
	disabled bool
}

// Engine runs entity behaviour scripts during Play on a single gopher-lua VM.
// Single-goroutine access only (game loop).
type Engine struct {
	vm        *lua.LState
	log       *zap.Logger
	spawn     SpawnFunc
	budget    time.Duration
	protos    map[uint64]*lua.FunctionProto
	instances map[string]*instance

	// valid only inside Tick
	cur    *scene.Scene
	result *TickResult
	self   string
}

// NewEngine creates a sandboxed VM and loads the shared library scripts
// from libDir. A missing libDir is not an error.
func NewEngine(libDir string, spawn SpawnFunc, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		vm.Push(vm.NewFunction(lib.open))
		vm.Push(lua.LString(lib.name))
		vm.Call(1, 0)
	}
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		vm.SetGlobal(name, lua.LNil)
	}
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{
		vm:        vm,
		log:       log,
		spawn:     spawn,
		budget:    DefaultBudget,
		protos:    make(map[uint64]*lua.FunctionProto),
		instances: make(map[string]*instance),
	}
	e.registerHostModule()

	if libDir != "" {
		if err := e.loadDir(libDir); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load script library: %w", err)
		}
	}
	return e, nil
}

func (e *Engine) Close() {
	e.vm.Close()
}

// SetBudget bounds the wall time of each entity's script per tick. A
// script that overruns is disabled; the rest of the tick goes on.
func (e *Engine) SetBudget(d time.Duration) {
	if d > 0 {
		e.budget = d
	}
}

// call runs fn on the VM under a fresh deadline.
func (e *Engine) call(fn func() error) error {
	ctx, cancel := context.WithTimeout(context.Background(), e.budget)
	defer cancel()
	e.vm.SetContext(ctx)
	defer e.vm.RemoveContext()
	return fn()
}

// loadDir runs every .lua file in dir against the global table.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if err := e.vm.DoString(string(src)); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// Reset drops every compiled instance. Called on Play and Stop so each
// session starts with fresh script state and no disabled entities.
func (e *Engine) Reset() {
	clear(e.instances)
}

// Active reports how many entities currently have a live script instance.
func (e *Engine) Active() int { return len(e.instances) }

// Tick runs on_start (first tick only) and on_update for every entity with
// an enabled script, in scene creation order.
func (e *Engine) Tick(sc *scene.Scene, dt float64) TickResult {
	var res TickResult
	e.cur, e.result = sc, &res
	defer func() { e.cur, e.result, e.self = nil, nil, "" }()

	live := make(map[string]bool, len(e.instances))
	for _, id := range sc.Entities() {
		script := scene.Capability(sc, sc.Scripts, id)
		if script == nil || !script.Enabled || strings.TrimSpace(script.Source) == "" {
			continue
		}
		live[id] = true
		inst, err := e.instance(id, script.Source)
		if err != nil {
			res.Errors = append(res.Errors, ScriptError{EntityID: id, Message: err.Error()})
			continue
		}
		if inst.disabled {
			continue
		}
		if err := e.call(func() error { return e.run(sc, id, inst, dt) }); err != nil {
			inst.disabled = true
			res.Errors = append(res.Errors, ScriptError{EntityID: id, Message: err.Error()})
			e.log.Warn("script disabled", zap.String("entity", id), zap.Error(err))
		}
	}
	for id := range e.instances {
		if !live[id] {
			delete(e.instances, id)
		}
	}
	return res
}

// instance returns the compiled environment for id, compiling when the
// source changed. A compile failure leaves a disabled instance behind so it
// is reported once.
func (e *Engine) instance(id, source string) (*instance, error) {
	key := xxhash.Sum64String(source)
	if inst, ok := e.instances[id]; ok && inst.key == key {
		return inst, nil
	}
	inst := &instance{key: key}
	e.instances[id] = inst

	proto, err := e.compile(key, id, source)
	if err != nil {
		inst.disabled = true
		return nil, err
	}
	env := e.vm.NewTable()
	meta := e.vm.NewTable()
	meta.RawSetString("__index", e.vm.G.Global)
	e.vm.SetMetatable(env, meta)

	fn := e.vm.NewFunctionFromProto(proto)
	fn.Env = env
	if err := e.call(func() error {
		return e.vm.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true})
	}); err != nil {
		inst.disabled = true
		return nil, fmt.Errorf("load script: %w", err)
	}
	inst.env = env
	return inst, nil
}

// compile caches prototypes by source digest; entities sharing a script
// share the bytecode but not the environment.
func (e *Engine) compile(key uint64, id, source string) (*lua.FunctionProto, error) {
	if proto, ok := e.protos[key]; ok {
		return proto, nil
	}
	chunk, err := parse.Parse(strings.NewReader(source), id)
	if err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	proto, err := lua.Compile(chunk, id)
	if err != nil {
		return nil, fmt.Errorf("compile script: %w", err)
	}
	e.protos[key] = proto
	return proto, nil
}

func (e *Engine) run(sc *scene.Scene, id string, inst *instance, dt float64) error {
	self := e.selfTable(sc, id)
	e.self = id
	if !inst.started {
		inst.started = true
		if fn := inst.env.RawGetString("on_start"); fn != lua.LNil {
			if err := e.vm.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, self); err != nil {
				return fmt.Errorf("on_start: %w", err)
			}
		}
	}
	if fn := inst.env.RawGetString("on_update"); fn != lua.LNil {
		if err := e.vm.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, self, lua.LNumber(dt)); err != nil {
			return fmt.Errorf("on_update: %w", err)
		}
	}
	if !sc.Exists(id) {
		return nil
	}
	return e.writeBack(sc, id, self)
}

func (e *Engine) selfTable(sc *scene.Scene, id string) *lua.LTable {
	ident, _ := sc.Identity(id)
	tr, _ := sc.Transform(id)
	t := e.vm.NewTable()
	t.RawSetString("id", lua.LString(id))
	t.RawSetString("type", lua.LString(ident.Type))
	t.RawSetString("name", lua.LString(ident.Name))
	t.RawSetString("visible", lua.LBool(ident.Visible))
	t.RawSetString("position", e.vecTable(tr.Position[:], "x", "y", "z"))
	t.RawSetString("rotation", e.vecTable(tr.Rotation[:], "x", "y", "z", "w"))
	t.RawSetString("scale", e.vecTable(tr.Scale[:], "x", "y", "z"))
	return t
}

func (e *Engine) vecTable(v []float64, keys ...string) *lua.LTable {
	t := e.vm.NewTable()
	for i, k := range keys {
		t.RawSetString(k, lua.LNumber(v[i]))
	}
	return t
}

func readVec(t *lua.LTable, field string, out []float64, keys ...string) error {
	sub, ok := t.RawGetString(field).(*lua.LTable)
	if !ok {
		return fmt.Errorf("self.%s must be a table", field)
	}
	for i, k := range keys {
		n, ok := sub.RawGetString(k).(lua.LNumber)
		if !ok {
			return fmt.Errorf("self.%s.%s must be a number", field, k)
		}
		out[i] = float64(n)
	}
	return nil
}

// writeBack copies script changes on self into the scene.
func (e *Engine) writeBack(sc *scene.Scene, id string, self *lua.LTable) error {
	tr, _ := sc.Transform(id)
	next := tr
	if err := readVec(self, "position", next.Position[:], "x", "y", "z"); err != nil {
		return err
	}
	if err := readVec(self, "rotation", next.Rotation[:], "x", "y", "z", "w"); err != nil {
		return err
	}
	if err := readVec(self, "scale", next.Scale[:], "x", "y", "z"); err != nil {
		return err
	}
	if !next.Position.Finite() || !next.Rotation.Finite() || !next.Scale.Finite() {
		return fmt.Errorf("script produced a non-finite transform")
	}
	next.Rotation = next.Rotation.Normalized()
	if next != tr {
		if err := sc.SetTransform(id, next); err != nil {
			return err
		}
	}
	if name, ok := self.RawGetString("name").(lua.LString); ok {
		if err := sc.SetName(id, string(name)); err != nil {
			return err
		}
	}
	return sc.SetVisible(id, lua.LVAsBool(self.RawGetString("visible")))
}
