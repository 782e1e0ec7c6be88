package component

import "slices"

// Scene-wide settings. They are not attached to entities but travel with the
// scene document.

type Environment struct {
	SkyColor   [3]float64 `json:"skyColor"`
	FogEnabled bool       `json:"fogEnabled"`
	FogColor   [3]float64 `json:"fogColor"`
	FogDensity float64    `json:"fogDensity"`
	Gravity    Vec3       `json:"gravity"`
	SkyboxID   string     `json:"skyboxAssetId,omitempty"`
}

type AmbientLight struct {
	Color      [3]float64 `json:"color"`
	Brightness float64    `json:"brightness"`
}

type InputBinding struct {
	Action string   `json:"action" yaml:"action"`
	Keys   []string `json:"keys" yaml:"keys"`
}

type PostProcessing struct {
	BloomEnabled     bool    `json:"bloomEnabled"`
	BloomIntensity   float64 `json:"bloomIntensity"`
	Exposure         float64 `json:"exposure"`
	Tonemapping      string  `json:"tonemapping"`
	VignetteStrength float64 `json:"vignetteStrength"`
	AntiAliasing     string  `json:"antiAliasing"`
}

type AudioBus struct {
	Name   string  `json:"name"`
	Volume float64 `json:"volume"`
	Muted  bool    `json:"muted"`
}

func DefaultEnvironment() Environment {
	return Environment{
		SkyColor:   [3]float64{0.53, 0.81, 0.92},
		FogColor:   [3]float64{0.8, 0.8, 0.8},
		FogDensity: 0.02,
		Gravity:    Vec3{0, -9.81, 0},
	}
}

func DefaultAmbientLight() AmbientLight {
	return AmbientLight{Color: [3]float64{1, 1, 1}, Brightness: 0.3}
}

func DefaultPostProcessing() PostProcessing {
	return PostProcessing{
		BloomIntensity: 0.15,
		Exposure:       1,
		Tonemapping:    "aces",
		AntiAliasing:   "fxaa",
	}
}

func DefaultAudioBuses() []AudioBus {
	return []AudioBus{
		{Name: "master", Volume: 1},
		{Name: "music", Volume: 0.8},
		{Name: "sfx", Volume: 1},
	}
}

// CloneBindings deep-copies a binding list.
func CloneBindings(in []InputBinding) []InputBinding {
	out := make([]InputBinding, len(in))
	for i, b := range in {
		out[i] = InputBinding{Action: b.Action, Keys: slices.Clone(b.Keys)}
	}
	return out
}
