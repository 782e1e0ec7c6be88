package component

import "maps"

// Capability payloads are pure data. Entities carry zero or one of each; an
// absent capability is a missing store entry (nil in snapshots), never a
// zero-valued struct.

type Material struct {
	BaseColor      [4]float64 `json:"baseColor"`
	Metallic       float64    `json:"metallic"`
	Roughness      float64    `json:"roughness"`
	Emissive       [3]float64 `json:"emissive"`
	TextureAssetID string     `json:"textureAssetId,omitempty"`
	Unlit          bool       `json:"unlit,omitempty"`
	DoubleSided    bool       `json:"doubleSided,omitempty"`
}

type Light struct {
	Kind           string     `json:"kind"` // point, directional, spot
	Color          [3]float64 `json:"color"`
	Intensity      float64    `json:"intensity"`
	Range          float64    `json:"range,omitempty"`
	SpotAngle      float64    `json:"spotAngle,omitempty"`
	ShadowsEnabled bool       `json:"shadowsEnabled"`
}

type Physics struct {
	BodyType      string  `json:"bodyType"` // dynamic, fixed, kinematic
	ColliderShape string  `json:"colliderShape"`
	Mass          float64 `json:"mass"`
	Friction      float64 `json:"friction"`
	Restitution   float64 `json:"restitution"`
	GravityScale  float64 `json:"gravityScale"`
	Enabled       bool    `json:"enabled"`
}

type Script struct {
	Source  string `json:"source"`
	Enabled bool   `json:"enabled"`
}

type Audio struct {
	AssetID  string  `json:"assetId"`
	Volume   float64 `json:"volume"`
	Pitch    float64 `json:"pitch"`
	Loop     bool    `json:"loop"`
	Spatial  bool    `json:"spatial"`
	Bus      string  `json:"bus,omitempty"`
	Autoplay bool    `json:"autoplay"`
}

type Particle struct {
	Preset   string     `json:"preset"`
	Rate     float64    `json:"rate"`
	Lifetime float64    `json:"lifetime"`
	Color    [4]float64 `json:"color"`
	Enabled  bool       `json:"enabled"`
}

type Shader struct {
	Kind   string             `json:"kind"`
	Params map[string]float64 `json:"params,omitempty"`
}

func (s *Shader) Clone() *Shader {
	cp := *s
	cp.Params = maps.Clone(s.Params)
	return &cp
}

// ProceduralMesh records the generator inputs only; geometry is produced by
// the external mesh pipeline.
type ProceduralMesh struct {
	Generator string             `json:"generator"` // csg, terrain, extrude, ...
	Params    map[string]float64 `json:"params,omitempty"`
	Seed      int64              `json:"seed,omitempty"`
}

func (m *ProceduralMesh) Clone() *ProceduralMesh {
	cp := *m
	cp.Params = maps.Clone(m.Params)
	return &cp
}

type Camera struct {
	Fov     float64 `json:"fov"`
	Near    float64 `json:"near"`
	Far     float64 `json:"far"`
	Primary bool    `json:"primary"`
}

// GameComponent is one entry of the gameplay component list (health,
// collectible, spawner, ...). Props are free-form per type.
type GameComponent struct {
	Type  string         `json:"type"`
	Props map[string]any `json:"props,omitempty"`
}

type GameComponents struct {
	Items []GameComponent `json:"items"`
}

func (g *GameComponents) Clone() *GameComponents {
	cp := &GameComponents{Items: make([]GameComponent, len(g.Items))}
	for i, it := range g.Items {
		cp.Items[i] = GameComponent{Type: it.Type, Props: maps.Clone(it.Props)}
	}
	return cp
}

// Index returns the position of the component with the given type, or -1.
func (g *GameComponents) Index(typ string) int {
	for i, it := range g.Items {
		if it.Type == typ {
			return i
		}
	}
	return -1
}
