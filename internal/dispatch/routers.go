package dispatch

import (
	"math"

	json "github.com/goccy/go-json"

	"github.com/webforge/scenecore/internal/command"
	"github.com/webforge/scenecore/internal/component"
)

// Routers returns the standard router set in dispatch order.
func Routers() []*Router {
	return []*Router{
		ModeRouter(),
		HistoryRouter(),
		SelectionRouter(),
		EntityRouter(),
		TransformRouter(),
		CapabilityRouter(),
		GameComponentRouter(),
		EnvironmentRouter(),
		AssetRouter(),
		SceneRouter(),
	}
}

func constant(req command.Request) ParseFunc {
	return func(json.RawMessage) (command.Request, error) { return req, nil }
}

func ModeRouter() *Router {
	r := NewRouter("mode")
	r.Handle("play", constant(command.ChangeMode{Transition: command.TransitionPlay}))
	r.Handle("stop", constant(command.ChangeMode{Transition: command.TransitionStop}))
	r.Handle("pause", constant(command.ChangeMode{Transition: command.TransitionPause}))
	r.Handle("resume", constant(command.ChangeMode{Transition: command.TransitionResume}))
	return r
}

func HistoryRouter() *Router {
	r := NewRouter("history")
	r.Handle("undo", constant(command.Undo{}))
	r.Handle("redo", constant(command.Redo{}))
	return r
}

func parseSelectOp(cmd, mode string) (command.SelectOp, error) {
	switch mode {
	case "", "replace":
		return command.SelectReplace, nil
	case "add":
		return command.SelectAdd, nil
	case "remove":
		return command.SelectRemove, nil
	case "toggle":
		return command.SelectToggle, nil
	}
	return 0, invalid(cmd, "mode", "must be one of replace, add, remove, toggle")
}

func SelectionRouter() *Router {
	r := NewRouter("selection")
	r.Handle("select_entity", func(p json.RawMessage) (command.Request, error) {
		const cmd = "select_entity"
		var body struct {
			EntityID string `json:"entityId"`
			Mode     string `json:"mode"`
		}
		if err := decode(cmd, p, &body); err != nil {
			return nil, err
		}
		if err := requireID(cmd, "entityId", body.EntityID); err != nil {
			return nil, err
		}
		op, err := parseSelectOp(cmd, body.Mode)
		if err != nil {
			return nil, err
		}
		return command.Select{IDs: []string{body.EntityID}, Op: op}, nil
	})
	r.Handle("select_entities", func(p json.RawMessage) (command.Request, error) {
		const cmd = "select_entities"
		var body struct {
			EntityIDs []string `json:"entityIds"`
			Mode      string   `json:"mode"`
		}
		if err := decode(cmd, p, &body); err != nil {
			return nil, err
		}
		if body.EntityIDs == nil {
			return nil, invalid(cmd, "entityIds", "required")
		}
		for _, id := range body.EntityIDs {
			if err := requireID(cmd, "entityIds", id); err != nil {
				return nil, err
			}
		}
		op, err := parseSelectOp(cmd, body.Mode)
		if err != nil {
			return nil, err
		}
		return command.Select{IDs: body.EntityIDs, Op: op}, nil
	})
	r.Handle("clear_selection", constant(command.ClearSelection{}))
	return r
}

func EntityRouter() *Router {
	r := NewRouter("entity")
	r.Handle("spawn_entity", func(p json.RawMessage) (command.Request, error) {
		const cmd = "spawn_entity"
		var body struct {
			EntityType string          `json:"entityType"`
			Name       string          `json:"name"`
			ParentID   string          `json:"parentId"`
			EntityID   string          `json:"entityId"`
			Position   *component.Vec3 `json:"position"`
			Rotation   *component.Quat `json:"rotation"`
			Scale      *component.Vec3 `json:"scale"`
		}
		if err := decode(cmd, p, &body); err != nil {
			return nil, err
		}
		if err := requireID(cmd, "entityType", body.EntityType); err != nil {
			return nil, err
		}
		if err := checkTransform(cmd, body.Position, body.Rotation, body.Scale); err != nil {
			return nil, err
		}
		return command.SpawnEntity{
			EntityID: body.EntityID,
			Type:     body.EntityType,
			Name:     body.Name,
			ParentID: body.ParentID,
			Position: body.Position,
			Rotation: body.Rotation,
			Scale:    body.Scale,
		}, nil
	})
	r.Handle("delete_entities", func(p json.RawMessage) (command.Request, error) {
		const cmd = "delete_entities"
		var body struct {
			EntityIDs []string `json:"entityIds"`
		}
		if err := decode(cmd, p, &body); err != nil {
			return nil, err
		}
		if err := requireIDs(cmd, "entityIds", body.EntityIDs); err != nil {
			return nil, err
		}
		return command.DespawnEntities{IDs: body.EntityIDs}, nil
	})
	r.Handle("duplicate_entity", func(p json.RawMessage) (command.Request, error) {
		const cmd = "duplicate_entity"
		id, err := entityID(cmd, p)
		if err != nil {
			return nil, err
		}
		return command.DuplicateEntity{ID: id}, nil
	})
	r.Handle("rename_entity", func(p json.RawMessage) (command.Request, error) {
		const cmd = "rename_entity"
		var body struct {
			EntityID string  `json:"entityId"`
			Name     *string `json:"name"`
		}
		if err := decode(cmd, p, &body); err != nil {
			return nil, err
		}
		if err := requireID(cmd, "entityId", body.EntityID); err != nil {
			return nil, err
		}
		if body.Name == nil {
			return nil, invalid(cmd, "name", "required")
		}
		if err := requireID(cmd, "name", *body.Name); err != nil {
			return nil, invalid(cmd, "name", "must not be blank")
		}
		return command.RenameEntity{ID: body.EntityID, Name: *body.Name}, nil
	})
	r.Handle("set_visibility", func(p json.RawMessage) (command.Request, error) {
		const cmd = "set_visibility"
		var body struct {
			EntityID string `json:"entityId"`
			Visible  *bool  `json:"visible"`
		}
		if err := decode(cmd, p, &body); err != nil {
			return nil, err
		}
		if err := requireID(cmd, "entityId", body.EntityID); err != nil {
			return nil, err
		}
		if body.Visible == nil {
			return nil, invalid(cmd, "visible", "required")
		}
		return command.SetVisibility{ID: body.EntityID, Visible: *body.Visible}, nil
	})
	r.Handle("reparent_entity", func(p json.RawMessage) (command.Request, error) {
		const cmd = "reparent_entity"
		var body struct {
			EntityID string  `json:"entityId"`
			ParentID *string `json:"parentId"`
		}
		if err := decode(cmd, p, &body); err != nil {
			return nil, err
		}
		if err := requireID(cmd, "entityId", body.EntityID); err != nil {
			return nil, err
		}
		req := command.ReparentEntity{ID: body.EntityID}
		if body.ParentID != nil {
			req.ParentID = *body.ParentID
		}
		if req.ParentID == req.ID {
			return nil, invalid(cmd, "parentId", "entity cannot be its own parent")
		}
		return req, nil
	})
	return r
}

func TransformRouter() *Router {
	r := NewRouter("transform")
	r.Handle("update_transform", func(p json.RawMessage) (command.Request, error) {
		const cmd = "update_transform"
		var body struct {
			EntityID string          `json:"entityId"`
			Position *component.Vec3 `json:"position"`
			Rotation *component.Quat `json:"rotation"`
			Scale    *component.Vec3 `json:"scale"`
		}
		if err := decode(cmd, p, &body); err != nil {
			return nil, err
		}
		if err := requireID(cmd, "entityId", body.EntityID); err != nil {
			return nil, err
		}
		if body.Position == nil && body.Rotation == nil && body.Scale == nil {
			return nil, invalid(cmd, "", "one of position, rotation, scale is required")
		}
		if err := checkTransform(cmd, body.Position, body.Rotation, body.Scale); err != nil {
			return nil, err
		}
		return command.UpdateTransform{
			ID:       body.EntityID,
			Position: body.Position,
			Rotation: body.Rotation,
			Scale:    body.Scale,
		}, nil
	})
	return r
}

func checkTransform(cmd string, pos *component.Vec3, rot *component.Quat, scale *component.Vec3) error {
	if err := checkVec3(cmd, "position", pos); err != nil {
		return err
	}
	if err := checkQuat(cmd, "rotation", rot); err != nil {
		return err
	}
	return checkVec3(cmd, "scale", scale)
}

func entityID(cmd string, p json.RawMessage) (string, error) {
	var body struct {
		EntityID string `json:"entityId"`
	}
	if err := decode(cmd, p, &body); err != nil {
		return "", err
	}
	if err := requireID(cmd, "entityId", body.EntityID); err != nil {
		return "", err
	}
	return body.EntityID, nil
}

// capability registers update_<name> and remove_<name> for one capability
// payload carried under field.
func capability[T any](r *Router, name, field string, dom command.Domain, check func(cmd string, v *T) error) {
	update := "update_" + name
	r.Handle(update, func(p json.RawMessage) (command.Request, error) {
		var body map[string]json.RawMessage
		if err := decode(update, p, &body); err != nil {
			return nil, err
		}
		var id string
		if raw, ok := body["entityId"]; ok {
			if err := decode(update, raw, &id); err != nil {
				return nil, err
			}
		}
		if err := requireID(update, "entityId", id); err != nil {
			return nil, err
		}
		raw, ok := body[field]
		if !ok || string(raw) == "null" {
			return nil, invalid(update, field, "required")
		}
		v := new(T)
		if err := decode(update, raw, v); err != nil {
			return nil, err
		}
		if check != nil {
			if err := check(update, v); err != nil {
				return nil, err
			}
		}
		return command.SetCapability[T]{Dom: dom, EntityID: id, Value: v}, nil
	})
	remove := "remove_" + name
	r.Handle(remove, func(p json.RawMessage) (command.Request, error) {
		id, err := entityID(remove, p)
		if err != nil {
			return nil, err
		}
		return command.SetCapability[T]{Dom: dom, EntityID: id}, nil
	})
}

func CapabilityRouter() *Router {
	r := NewRouter("capability")
	capability(r, "material", "material", command.DomainMaterial, func(cmd string, m *component.Material) error {
		if err := checkRange(cmd, "material.metallic", m.Metallic, 0, 1); err != nil {
			return err
		}
		return checkRange(cmd, "material.roughness", m.Roughness, 0, 1)
	})
	capability(r, "light", "light", command.DomainLight, func(cmd string, l *component.Light) error {
		if err := checkOneOf(cmd, "light.kind", l.Kind, "point", "directional", "spot"); err != nil {
			return err
		}
		return checkRange(cmd, "light.intensity", l.Intensity, 0, math.MaxFloat64)
	})
	capability(r, "physics", "physics", command.DomainPhysics, func(cmd string, ph *component.Physics) error {
		if err := checkOneOf(cmd, "physics.bodyType", ph.BodyType, "dynamic", "fixed", "kinematic"); err != nil {
			return err
		}
		if err := checkOneOf(cmd, "physics.colliderShape", ph.ColliderShape, "cuboid", "ball", "capsule", "cylinder", "mesh"); err != nil {
			return err
		}
		return checkRange(cmd, "physics.mass", ph.Mass, 0, math.MaxFloat64)
	})
	capability[component.Script](r, "script", "script", command.DomainScript, nil)
	capability(r, "audio", "audio", command.DomainAudio, func(cmd string, a *component.Audio) error {
		if err := requireID(cmd, "audio.assetId", a.AssetID); err != nil {
			return err
		}
		return checkRange(cmd, "audio.volume", a.Volume, 0, 10)
	})
	capability(r, "particle", "particle", command.DomainParticle, func(cmd string, pt *component.Particle) error {
		if err := checkRange(cmd, "particle.rate", pt.Rate, 0, math.MaxFloat64); err != nil {
			return err
		}
		return checkRange(cmd, "particle.lifetime", pt.Lifetime, 0, math.MaxFloat64)
	})
	capability(r, "shader", "shader", command.DomainShader, func(cmd string, s *component.Shader) error {
		return requireID(cmd, "shader.kind", s.Kind)
	})
	capability(r, "procedural_mesh", "proceduralMesh", command.DomainMesh, func(cmd string, m *component.ProceduralMesh) error {
		return requireID(cmd, "proceduralMesh.generator", m.Generator)
	})
	capability(r, "camera", "camera", command.DomainCamera, func(cmd string, c *component.Camera) error {
		if err := checkRange(cmd, "camera.fov", c.Fov, 1, 179); err != nil {
			return err
		}
		if c.Near <= 0 || c.Far <= c.Near {
			return invalid(cmd, "camera.far", "requires 0 < near < far")
		}
		return nil
	})
	return r
}

func GameComponentRouter() *Router {
	r := NewRouter("game_component")
	r.Handle("add_game_component", func(p json.RawMessage) (command.Request, error) {
		const cmd = "add_game_component"
		var body struct {
			EntityID  string                   `json:"entityId"`
			Component *component.GameComponent `json:"component"`
		}
		if err := decode(cmd, p, &body); err != nil {
			return nil, err
		}
		if err := requireID(cmd, "entityId", body.EntityID); err != nil {
			return nil, err
		}
		if body.Component == nil {
			return nil, invalid(cmd, "component", "required")
		}
		if err := requireID(cmd, "component.type", body.Component.Type); err != nil {
			return nil, err
		}
		return command.AddGameComponent{EntityID: body.EntityID, Component: *body.Component}, nil
	})
	r.Handle("remove_game_component", func(p json.RawMessage) (command.Request, error) {
		const cmd = "remove_game_component"
		var body struct {
			EntityID      string `json:"entityId"`
			ComponentType string `json:"componentType"`
		}
		if err := decode(cmd, p, &body); err != nil {
			return nil, err
		}
		if err := requireID(cmd, "entityId", body.EntityID); err != nil {
			return nil, err
		}
		if err := requireID(cmd, "componentType", body.ComponentType); err != nil {
			return nil, err
		}
		return command.RemoveGameComponent{EntityID: body.EntityID, Type: body.ComponentType}, nil
	})
	return r
}

func EnvironmentRouter() *Router {
	r := NewRouter("environment")
	r.Handle("set_environment", func(p json.RawMessage) (command.Request, error) {
		const cmd = "set_environment"
		env := component.DefaultEnvironment()
		if err := decode(cmd, p, &env); err != nil {
			return nil, err
		}
		if err := checkRange(cmd, "fogDensity", env.FogDensity, 0, 1); err != nil {
			return nil, err
		}
		if err := checkVec3(cmd, "gravity", &env.Gravity); err != nil {
			return nil, err
		}
		return command.SetEnvironment{Value: env}, nil
	})
	r.Handle("set_ambient_light", func(p json.RawMessage) (command.Request, error) {
		const cmd = "set_ambient_light"
		al := component.DefaultAmbientLight()
		if err := decode(cmd, p, &al); err != nil {
			return nil, err
		}
		if err := checkRange(cmd, "brightness", al.Brightness, 0, 10); err != nil {
			return nil, err
		}
		return command.SetAmbientLight{Value: al}, nil
	})
	r.Handle("set_post_processing", func(p json.RawMessage) (command.Request, error) {
		const cmd = "set_post_processing"
		pp := component.DefaultPostProcessing()
		if err := decode(cmd, p, &pp); err != nil {
			return nil, err
		}
		if err := checkRange(cmd, "exposure", pp.Exposure, 0, 16); err != nil {
			return nil, err
		}
		return command.SetPostProcessing{Value: pp}, nil
	})
	r.Handle("set_audio_bus", func(p json.RawMessage) (command.Request, error) {
		const cmd = "set_audio_bus"
		bus := component.AudioBus{Volume: 1}
		if err := decode(cmd, p, &bus); err != nil {
			return nil, err
		}
		if err := requireID(cmd, "name", bus.Name); err != nil {
			return nil, err
		}
		if err := checkRange(cmd, "volume", bus.Volume, 0, 2); err != nil {
			return nil, err
		}
		return command.SetAudioBus{Bus: bus}, nil
	})
	r.Handle("set_input_binding", func(p json.RawMessage) (command.Request, error) {
		const cmd = "set_input_binding"
		var b component.InputBinding
		if err := decode(cmd, p, &b); err != nil {
			return nil, err
		}
		if err := requireID(cmd, "action", b.Action); err != nil {
			return nil, err
		}
		if err := requireIDs(cmd, "keys", b.Keys); err != nil {
			return nil, err
		}
		return command.SetInputBinding{Binding: b}, nil
	})
	r.Handle("remove_input_binding", func(p json.RawMessage) (command.Request, error) {
		const cmd = "remove_input_binding"
		var body struct {
			Action string `json:"action"`
		}
		if err := decode(cmd, p, &body); err != nil {
			return nil, err
		}
		if err := requireID(cmd, "action", body.Action); err != nil {
			return nil, err
		}
		return command.RemoveInputBinding{Action: body.Action}, nil
	})
	return r
}

func AssetRouter() *Router {
	r := NewRouter("asset")
	r.Handle("register_asset", func(p json.RawMessage) (command.Request, error) {
		const cmd = "register_asset"
		var body struct {
			AssetID string `json:"assetId"`
			Kind    string `json:"kind"`
			Name    string `json:"name"`
			Size    int64  `json:"size"`
			Source  string `json:"source"`
		}
		if err := decode(cmd, p, &body); err != nil {
			return nil, err
		}
		if err := requireID(cmd, "kind", body.Kind); err != nil {
			return nil, err
		}
		if err := requireID(cmd, "name", body.Name); err != nil {
			return nil, err
		}
		if body.Size < 0 {
			return nil, invalid(cmd, "size", "must not be negative")
		}
		return command.RegisterAsset{ID: body.AssetID, Kind: body.Kind, Name: body.Name, Size: body.Size, Source: body.Source}, nil
	})
	r.Handle("remove_asset", func(p json.RawMessage) (command.Request, error) {
		const cmd = "remove_asset"
		var body struct {
			AssetID string `json:"assetId"`
		}
		if err := decode(cmd, p, &body); err != nil {
			return nil, err
		}
		if err := requireID(cmd, "assetId", body.AssetID); err != nil {
			return nil, err
		}
		return command.RemoveAsset{ID: body.AssetID}, nil
	})
	return r
}

func SceneRouter() *Router {
	r := NewRouter("scene")
	r.Handle("new_scene", func(p json.RawMessage) (command.Request, error) {
		var body struct {
			Name string `json:"name"`
		}
		if err := decode("new_scene", p, &body); err != nil {
			return nil, err
		}
		return command.NewScene{Name: body.Name}, nil
	})
	r.Handle("save_scene", func(p json.RawMessage) (command.Request, error) {
		var body struct {
			Name  string `json:"name"`
			Store bool   `json:"store"`
		}
		if err := decode("save_scene", p, &body); err != nil {
			return nil, err
		}
		return command.SaveScene{Name: body.Name, Store: body.Store}, nil
	})
	r.Handle("load_scene", func(p json.RawMessage) (command.Request, error) {
		const cmd = "load_scene"
		var body struct {
			Document json.RawMessage `json:"document"`
		}
		if err := decode(cmd, p, &body); err != nil {
			return nil, err
		}
		if len(body.Document) == 0 || string(body.Document) == "null" {
			return nil, invalid(cmd, "document", "required")
		}
		data := make([]byte, len(body.Document))
		copy(data, body.Document)
		return command.LoadScene{Data: data, Source: "client"}, nil
	})
	r.Handle("load_stored_scene", func(p json.RawMessage) (command.Request, error) {
		const cmd = "load_stored_scene"
		var body struct {
			Name string `json:"name"`
		}
		if err := decode(cmd, p, &body); err != nil {
			return nil, err
		}
		if err := requireID(cmd, "name", body.Name); err != nil {
			return nil, err
		}
		return command.LoadStoredScene{Name: body.Name}, nil
	})
	return r
}
