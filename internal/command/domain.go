package command

// Domain names the queue list a request belongs to. Each domain has exactly
// one draining system.
type Domain uint8

const (
	DomainMode Domain = iota
	DomainScene
	DomainHistory
	DomainEntity
	DomainTransform
	DomainSelection
	DomainMaterial
	DomainLight
	DomainPhysics
	DomainScript
	DomainAudio
	DomainParticle
	DomainShader
	DomainMesh
	DomainCamera
	DomainGameComponent
	DomainEnvironment
	DomainAsset

	domainCount
)

var domainNames = [domainCount]string{
	DomainMode:          "mode",
	DomainScene:         "scene",
	DomainHistory:       "history",
	DomainEntity:        "entity",
	DomainTransform:     "transform",
	DomainSelection:     "selection",
	DomainMaterial:      "material",
	DomainLight:         "light",
	DomainPhysics:       "physics",
	DomainScript:        "script",
	DomainAudio:         "audio",
	DomainParticle:      "particle",
	DomainShader:        "shader",
	DomainMesh:          "procedural_mesh",
	DomainCamera:        "camera",
	DomainGameComponent: "game_component",
	DomainEnvironment:   "environment",
	DomainAsset:         "asset",
}

func (d Domain) String() string {
	if d < domainCount {
		return domainNames[d]
	}
	return "unknown"
}

// Domains lists every domain in declaration order.
func Domains() []Domain {
	out := make([]Domain, domainCount)
	for i := range out {
		out[i] = Domain(i)
	}
	return out
}

// Request is one pending mutation. Concrete types live in requests.go.
type Request interface {
	Domain() Domain
}
