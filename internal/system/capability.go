package system

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/webforge/scenecore/internal/asset"
	"github.com/webforge/scenecore/internal/command"
	"github.com/webforge/scenecore/internal/component"
	"github.com/webforge/scenecore/internal/core/ecs"
	coresys "github.com/webforge/scenecore/internal/core/system"
	"github.com/webforge/scenecore/internal/data"
	"github.com/webforge/scenecore/internal/history"
	"github.com/webforge/scenecore/internal/scene"
)

// CapabilitySystem applies SetCapability[T] requests for one capability
// domain. Phase 2 (Update).
type CapabilitySystem[T any] struct {
	deps  *Deps
	dom   command.Domain
	store func(*scene.Scene) *ecs.PtrComponentStore[T]
	check func(*Deps, *T) error // apply-time rules; may be nil
	event string
	label string
	log   *zap.Logger
}

func NewCapabilitySystem[T any](deps *Deps, dom command.Domain, store func(*scene.Scene) *ecs.PtrComponentStore[T], check func(*Deps, *T) error) *CapabilitySystem[T] {
	return &CapabilitySystem[T]{
		deps:  deps,
		dom:   dom,
		store: store,
		check: check,
		event: strings.ReplaceAll(dom.String(), "_", "-") + "-changed",
		label: data.DisplayName(dom.String()),
		log:   deps.Log.With(zap.String("system", dom.String())),
	}
}

func (s *CapabilitySystem[T]) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *CapabilitySystem[T]) Update(_ time.Duration) {
	d := s.deps
	for _, req := range d.Queue.Drain(s.dom) {
		r, ok := req.(command.SetCapability[T])
		if !ok {
			s.log.Error("unexpected request type", zap.String("type", fmt.Sprintf("%T", req)))
			continue
		}
		cmd := "update_" + s.dom.String()
		if r.Value == nil {
			cmd = "remove_" + s.dom.String()
		}
		d.apply(cmd, r.EntityID, func() error { return s.set(r) })
	}
}

func (s *CapabilitySystem[T]) set(r command.SetCapability[T]) error {
	d := s.deps
	if !d.Scene.Exists(r.EntityID) {
		return notFound(r.EntityID)
	}
	before := scene.Capability(d.Scene, s.store(d.Scene), r.EntityID)
	if r.Value == nil && before == nil {
		return fmt.Errorf("%s has no %s", r.EntityID, s.dom)
	}
	if r.Value != nil && s.check != nil {
		if err := s.check(d, r.Value); err != nil {
			return err
		}
	}
	if err := scene.SetCapability(d.Scene, s.store(d.Scene), r.EntityID, r.Value); err != nil {
		return err
	}
	after := scene.Capability(d.Scene, s.store(d.Scene), r.EntityID)

	verb := "Update "
	if after == nil {
		verb = "Remove "
	}
	d.record(&history.CapabilityChange[T]{
		Label:  verb + s.label,
		ID:     r.EntityID,
		Store:  s.store,
		Before: before,
		After:  after,
	})
	d.Outbox.Emit(s.event, CapabilityChanged[T]{EntityID: r.EntityID, Value: after})
	return nil
}

// requireAsset checks that id names a registered asset of one of kinds.
// An empty id means no asset and always passes.
func requireAsset(d *Deps, id string, kinds ...string) error {
	if id == "" {
		return nil
	}
	m, ok := d.Assets.Get(id)
	if !ok {
		return fmt.Errorf("%s: %w", id, asset.ErrAssetNotFound)
	}
	for _, k := range kinds {
		if m.Kind == k {
			return nil
		}
	}
	return fmt.Errorf("asset %s is a %s, want %s", id, m.Kind, strings.Join(kinds, " or "))
}

// CapabilitySystems builds one applier per capability domain.
func CapabilitySystems(deps *Deps) []coresys.System {
	return []coresys.System{
		NewCapabilitySystem(deps, command.DomainMaterial,
			func(s *scene.Scene) *ecs.PtrComponentStore[component.Material] { return s.Materials },
			func(d *Deps, v *component.Material) error { return requireAsset(d, v.TextureAssetID, "texture") }),
		NewCapabilitySystem[component.Light](deps, command.DomainLight,
			func(s *scene.Scene) *ecs.PtrComponentStore[component.Light] { return s.Lights }, nil),
		NewCapabilitySystem[component.Physics](deps, command.DomainPhysics,
			func(s *scene.Scene) *ecs.PtrComponentStore[component.Physics] { return s.Physics }, nil),
		NewCapabilitySystem[component.Script](deps, command.DomainScript,
			func(s *scene.Scene) *ecs.PtrComponentStore[component.Script] { return s.Scripts }, nil),
		NewCapabilitySystem(deps, command.DomainAudio,
			func(s *scene.Scene) *ecs.PtrComponentStore[component.Audio] { return s.Audio },
			func(d *Deps, v *component.Audio) error { return requireAsset(d, v.AssetID, "audio") }),
		NewCapabilitySystem[component.Particle](deps, command.DomainParticle,
			func(s *scene.Scene) *ecs.PtrComponentStore[component.Particle] { return s.Particles }, nil),
		NewCapabilitySystem[component.Shader](deps, command.DomainShader,
			func(s *scene.Scene) *ecs.PtrComponentStore[component.Shader] { return s.Shaders }, nil),
		NewCapabilitySystem[component.ProceduralMesh](deps, command.DomainMesh,
			func(s *scene.Scene) *ecs.PtrComponentStore[component.ProceduralMesh] { return s.Meshes }, nil),
		NewCapabilitySystem[component.Camera](deps, command.DomainCamera,
			func(s *scene.Scene) *ecs.PtrComponentStore[component.Camera] { return s.Cameras }, nil),
	}
}
