package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/webforge/scenecore/internal/component"
)

// registerHostModule installs the global `scene` table. Its functions act on
// the scene passed to the current Tick.
func (e *Engine) registerHostModule() {
	mod := e.vm.SetFuncs(e.vm.NewTable(), map[string]lua.LGFunction{
		"spawn":   e.luaSpawn,
		"destroy": e.luaDestroy,
		"find":    e.luaFind,
		"log":     e.luaLog,
	})
	e.vm.SetGlobal("scene", mod)
}

// scene.spawn(type, x, y, z) -> id | nil, err
func (e *Engine) luaSpawn(L *lua.LState) int {
	typ := L.CheckString(1)
	pos := component.Vec3{
		float64(L.OptNumber(2, 0)),
		float64(L.OptNumber(3, 0)),
		float64(L.OptNumber(4, 0)),
	}
	if e.cur == nil || e.spawn == nil {
		L.Push(lua.LNil)
		L.Push(lua.LString("spawn unavailable"))
		return 2
	}
	id, err := e.spawn(e.cur, typ, pos)
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	e.result.Spawned = append(e.result.Spawned, id)
	L.Push(lua.LString(id))
	return 1
}

// scene.destroy(id) -> bool. Only runtime-only entities can be destroyed;
// removal happens in the cleanup phase.
func (e *Engine) luaDestroy(L *lua.LState) int {
	id := L.CheckString(1)
	if e.cur == nil || !e.cur.IsRuntimeOnly(id) {
		L.Push(lua.LFalse)
		return 1
	}
	if err := e.cur.MarkForDestruction(id); err != nil {
		L.Push(lua.LFalse)
		return 1
	}
	e.result.Destroyed = append(e.result.Destroyed, id)
	L.Push(lua.LTrue)
	return 1
}

// scene.find(name) -> id | nil. Returns the first entity with that name.
func (e *Engine) luaFind(L *lua.LState) int {
	name := L.CheckString(1)
	if e.cur != nil {
		for _, id := range e.cur.Entities() {
			if e.cur.Name(id) == name {
				L.Push(lua.LString(id))
				return 1
			}
		}
	}
	L.Push(lua.LNil)
	return 1
}

// scene.log(msg)
func (e *Engine) luaLog(L *lua.LState) int {
	e.log.Info("script", zap.String("entity", e.self), zap.String("msg", L.CheckString(1)))
	return 0
}
