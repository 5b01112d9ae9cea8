package world

import (
	"github.com/san-kum/acoustid/internal/acoustic"
	"github.com/san-kum/acoustid/internal/cache"
	"github.com/san-kum/acoustid/internal/geom"
)

// Directivity models how a source's output gain varies with emission
// angle. A nil Directivity is treated as an
// omnidirectional source (constant unity gain).
type Directivity interface {
	// Gain returns a per-band attenuation for sound leaving the source at
	// localDir, a unit vector expressed in the source's own orientation
	// frame (forward = local +Z).
	Gain(localDir geom.Vec3) acoustic.Response
}

// OmniDirectivity is the trivial Directivity: unity gain in every
// direction.
type OmniDirectivity struct{}

// Gain implements Directivity.
func (OmniDirectivity) Gain(geom.Vec3) acoustic.Response { return acoustic.Unity() }

// CardioidDirectivity blends between omnidirectional and a forward-facing
// cardioid lobe by Pattern in [0,1] (0 = omni, 1 = full cardioid),
// the standard on/off-axis blend.
type CardioidDirectivity struct {
	Pattern float64
}

// Gain implements Directivity.
func (c CardioidDirectivity) Gain(localDir geom.Vec3) acoustic.Response {
	forward := geom.Vec3{X: 0, Y: 0, Z: 1}
	cosAngle := forward.Dot(localDir)
	cardioid := (1 + cosAngle) / 2
	gain := 1*(1-c.Pattern) + cardioid*c.Pattern
	if gain < 0 {
		gain = 0
	}
	return acoustic.Constant(gain)
}

// DistanceAttenuation is a simple polynomial distance-attenuation curve:
// gain(d) = max(0, A + B*d + C*d^2). Sources carry two independent
// curves, one for direct/early-reflection paths and one feeding reverb
// gain.
type DistanceAttenuation struct {
	A, B, C float64
}

// Gain evaluates the polynomial at distance d, clamped to be non-negative.
func (p DistanceAttenuation) Gain(d float64) float64 {
	g := p.A + p.B*d + p.C*d*d
	if g < 0 {
		return 0
	}
	return g
}

// UnitDistanceAttenuation is the trivial curve: constant unity gain
// regardless of distance.
var UnitDistanceAttenuation = DistanceAttenuation{A: 1}

// Source is a sound emitter placed in the scene. Carries its own
// ProbedTriangleCache, used during reverb estimation to
// find triangles both the source and the listener have probed recently.
type Source struct {
	ID                int
	Transform         geom.Transform
	Velocity          geom.Vec3
	Power             acoustic.Response
	Directivity       Directivity
	Radius            float64
	Enabled           bool
	DirectAttenuation DistanceAttenuation
	ReverbAttenuation DistanceAttenuation
	Triangles         *cache.ProbedTriangleCache
}

// NewSource places an omnidirectional source of the given per-band power
// at the origin.
func NewSource(id int, power acoustic.Response) *Source {
	return &Source{
		ID:                id,
		Transform:         geom.IdentityTransform(),
		Power:             power,
		Directivity:       OmniDirectivity{},
		Enabled:           true,
		DirectAttenuation: UnitDistanceAttenuation,
		ReverbAttenuation: UnitDistanceAttenuation,
		Triangles:         cache.NewProbedTriangleCache(64),
	}
}

// EmittedGain returns the per-band gain leaving the source toward
// worldDir (a unit vector in world space), combining Power and
// Directivity.
func (s *Source) EmittedGain(worldDir geom.Vec3) acoustic.Response {
	localDir := s.Transform.Orientation.WorldToLocal(worldDir)
	dir := s.Directivity
	if dir == nil {
		dir = OmniDirectivity{}
	}
	return s.Power.Mul(dir.Gain(localDir))
}

// Listener is the single receiver point in the scene. Carries the probe-path cache,
// probed-triangle cache, and ray-distribution cache driving listener-side
// probe shooting.
type Listener struct {
	Transform  geom.Transform
	Velocity   geom.Vec3
	Paths      *cache.ProbePathCache
	Triangles  *cache.ProbedTriangleCache
	Directions *cache.RayDistributionCache
}

// NewListener places a listener at the identity transform with freshly
// allocated caches.
func NewListener() *Listener {
	return &Listener{
		Transform:  geom.IdentityTransform(),
		Paths:      cache.NewProbePathCache(64),
		Triangles:  cache.NewProbedTriangleCache(256),
		Directions: cache.NewRayDistributionCache(cache.DefaultNumDiv, cache.DefaultMinAffinity, cache.DefaultMaxAffinity),
	}
}

// Position is a convenience accessor for the listener's world position.
func (l *Listener) Position() geom.Vec3 { return l.Transform.Position }

// Position is a convenience accessor for the source's world position.
func (s *Source) Position() geom.Vec3 { return s.Transform.Position }
