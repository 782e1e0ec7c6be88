package data

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/webforge/scenecore/internal/component"
)

// TemplateEntry describes the defaults applied when an entity of Type is
// spawned from the editor palette.
type TemplateEntry struct {
	Type     string       `yaml:"type"`
	Name     string       `yaml:"name"`     // default display name; derived from type when empty
	Category string       `yaml:"category"` // primitive, light, camera, audio, effect, group
	Scale    *[3]float64  `yaml:"scale"`
	Material *MaterialDef `yaml:"material"`
	Light    *LightDef    `yaml:"light"`
	Physics  *PhysicsDef  `yaml:"physics"`
	Camera   *CameraDef   `yaml:"camera"`
	Mesh     *MeshDef     `yaml:"mesh"`
	Particle *ParticleDef `yaml:"particle"`

	// Undeletable entities belong to the editor itself: they cannot be
	// deleted and are left out of saved documents.
	Undeletable bool `yaml:"undeletable"`
}

type MaterialDef struct {
	BaseColor [4]float64 `yaml:"base_color"`
	Metallic  float64    `yaml:"metallic"`
	Roughness float64    `yaml:"roughness"`
}

type LightDef struct {
	Kind      string     `yaml:"kind"`
	Color     [3]float64 `yaml:"color"`
	Intensity float64    `yaml:"intensity"`
	Range     float64    `yaml:"range"`
	SpotAngle float64    `yaml:"spot_angle"`
	Shadows   bool       `yaml:"shadows"`
}

type PhysicsDef struct {
	BodyType      string  `yaml:"body_type"`
	ColliderShape string  `yaml:"collider_shape"`
	Mass          float64 `yaml:"mass"`
	Friction      float64 `yaml:"friction"`
	Restitution   float64 `yaml:"restitution"`
}

type CameraDef struct {
	Fov  float64 `yaml:"fov"`
	Near float64 `yaml:"near"`
	Far  float64 `yaml:"far"`
}

type MeshDef struct {
	Generator string             `yaml:"generator"`
	Params    map[string]float64 `yaml:"params"`
}

type ParticleDef struct {
	Preset   string  `yaml:"preset"`
	Rate     float64 `yaml:"rate"`
	Lifetime float64 `yaml:"lifetime"`
}

// TemplateTable maps entity types to spawn templates.
type TemplateTable struct {
	templates map[string]*TemplateEntry
}

// LoadTemplateTable loads entity_templates.yaml.
func LoadTemplateTable(path string) (*TemplateTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read entity templates: %w", err)
	}
	return ParseTemplateTable(raw)
}

func ParseTemplateTable(raw []byte) (*TemplateTable, error) {
	var entries []TemplateEntry
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse entity templates: %w", err)
	}
	return NewTemplateTable(entries)
}

func NewTemplateTable(entries []TemplateEntry) (*TemplateTable, error) {
	t := &TemplateTable{templates: make(map[string]*TemplateEntry, len(entries))}
	for i := range entries {
		e := &entries[i]
		if e.Type == "" {
			return nil, fmt.Errorf("entity template %d: missing type", i)
		}
		if _, dup := t.templates[e.Type]; dup {
			return nil, fmt.Errorf("entity template %s: duplicate type", e.Type)
		}
		if e.Name == "" {
			e.Name = DisplayName(e.Type)
		}
		t.templates[e.Type] = e
	}
	return t, nil
}

// Get returns the template for typ, or nil if unknown.
func (t *TemplateTable) Get(typ string) *TemplateEntry {
	return t.templates[typ]
}

// Count returns the number of templates loaded.
func (t *TemplateTable) Count() int {
	return len(t.templates)
}

// Types returns every known entity type, sorted.
func (t *TemplateTable) Types() []string {
	out := make([]string, 0, len(t.templates))
	for typ := range t.templates {
		out = append(out, typ)
	}
	sort.Strings(out)
	return out
}

var titleCaser = cases.Title(language.English)

// DisplayName turns an entity type tag like "point_light" into "Point Light".
func DisplayName(typ string) string {
	return titleCaser.String(strings.NewReplacer("_", " ", "-", " ").Replace(typ))
}

// Transform returns the template's default transform.
func (e *TemplateEntry) Transform() component.Transform {
	t := component.DefaultTransform()
	if e.Scale != nil {
		t.Scale = component.Vec3(*e.Scale)
	}
	return t
}

// Components converts the template's capability defaults into a snapshot
// fragment. Capabilities the template does not define stay nil.
func (e *TemplateEntry) Components() (m *component.Material, l *component.Light, p *component.Physics, c *component.Camera, mesh *component.ProceduralMesh, pt *component.Particle) {
	if e.Material != nil {
		m = &component.Material{BaseColor: e.Material.BaseColor, Metallic: e.Material.Metallic, Roughness: e.Material.Roughness}
	}
	if e.Light != nil {
		l = &component.Light{
			Kind:           e.Light.Kind,
			Color:          e.Light.Color,
			Intensity:      e.Light.Intensity,
			Range:          e.Light.Range,
			SpotAngle:      e.Light.SpotAngle,
			ShadowsEnabled: e.Light.Shadows,
		}
	}
	if e.Physics != nil {
		p = &component.Physics{
			BodyType:      e.Physics.BodyType,
			ColliderShape: e.Physics.ColliderShape,
			Mass:          e.Physics.Mass,
			Friction:      e.Physics.Friction,
			Restitution:   e.Physics.Restitution,
			GravityScale:  1,
			Enabled:       true,
		}
	}
	if e.Camera != nil {
		c = &component.Camera{Fov: e.Camera.Fov, Near: e.Camera.Near, Far: e.Camera.Far}
	}
	if e.Mesh != nil {
		mesh = (&component.ProceduralMesh{Generator: e.Mesh.Generator, Params: e.Mesh.Params}).Clone()
	}
	if e.Particle != nil {
		pt = &component.Particle{Preset: e.Particle.Preset, Rate: e.Particle.Rate, Lifetime: e.Particle.Lifetime, Color: [4]float64{1, 1, 1, 1}, Enabled: true}
	}
	return m, l, p, c, mesh, pt
}
