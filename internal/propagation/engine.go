package propagation

import (
	"math/rand"

	"github.com/san-kum/acoustid/internal/acoustic"
	"github.com/san-kum/acoustid/internal/cache"
	"github.com/san-kum/acoustid/internal/geom"
	"github.com/san-kum/acoustid/internal/raytrace"
	"github.com/san-kum/acoustid/internal/world"
)

// Config holds the engine's independently-settable feature flags and
// tunables.
type Config struct {
	DirectEnabled       bool
	TransmissionEnabled bool
	ReflectionEnabled   bool
	DiffractionEnabled  bool
	ReverbEnabled       bool

	RayEpsilon        float64
	MaxReverbCacheAge uint32
}

// DefaultConfig enables every path type, with
// rayEpsilon = 1e-4, maxReverbCacheAge = 10 frames.
func DefaultConfig() Config {
	return Config{
		DirectEnabled:       true,
		TransmissionEnabled: true,
		ReflectionEnabled:   true,
		DiffractionEnabled:  true,
		ReverbEnabled:       true,
		RayEpsilon:          1e-4,
		MaxReverbCacheAge:   10,
	}
}

// GetParams/SetParam give the engine the same map-based tuning surface
// as the adaptive controller and materials, letting the TUI and grid-search
// tuner adjust engine behavior uniformly.
func (c Config) GetParams() map[string]float64 {
	return map[string]float64{
		"rayEpsilon":        c.RayEpsilon,
		"maxReverbCacheAge": float64(c.MaxReverbCacheAge),
	}
}

func (c *Config) SetParam(name string, value float64) bool {
	switch name {
	case "rayEpsilon":
		c.RayEpsilon = value
	case "maxReverbCacheAge":
		c.MaxReverbCacheAge = uint32(value)
	default:
		return false
	}
	return true
}

// Engine is the Propagation Engine: one
// call per simulation tick enumerates direct, transmitted, reflected and
// diffracted paths from every source to the listener and estimates a
// per-source reverb response.
type Engine struct {
	Config  Config
	Backend raytrace.Backend
	rng     *rand.Rand
	frame   uint32
}

// NewEngine builds an engine against backend, seeded for reproducible
// probe-ray sequences.
func NewEngine(backend raytrace.Backend, seed int64) *Engine {
	if backend == nil {
		backend = raytrace.GetBackend()
	}
	return &Engine{
		Config:  DefaultConfig(),
		Backend: backend,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// Propagate runs one simulation tick of the full pipeline,
// writing results into outBuffer.
func (e *Engine) Propagate(
	scene *geom.Scene,
	listener *world.Listener,
	sources []*world.Source,
	maxListenerDepth, numListenerRays int,
	maxSourceDepth, numSourceRays int,
	outBuffer *Buffer,
) {
	// 1. Prepare buffer.
	outBuffer.Reset(len(sources))
	for i, src := range sources {
		outBuffer.Sources[i].SourceID = src.ID
	}

	// 2. Re-validate cached probe paths.
	e.revalidateCachedPaths(scene, listener, sources, outBuffer)

	// 3. Direct/transmitted paths.
	for i, src := range sources {
		if !src.Enabled {
			continue
		}
		e.directAndTransmitted(scene, listener, src, &outBuffer.Sources[i])
	}

	// 4. Listener-side probe shooting.
	if maxListenerDepth > 0 && numListenerRays > 0 {
		e.shootListenerProbes(scene, listener, sources, maxListenerDepth, numListenerRays, outBuffer)
	}

	// 5. Source-side probe shooting (reverb estimation).
	if e.Config.ReverbEnabled && maxSourceDepth > 0 && numSourceRays > 0 {
		for i, src := range sources {
			if !src.Enabled {
				continue
			}
			outBuffer.Sources[i].Reverb = e.estimateReverb(scene, listener, src, maxSourceDepth, numSourceRays)
		}
	}

	// Collapse duplicate discoveries: the same interaction sequence can be
	// found by many probe rays (and again by cache revalidation) within
	// one tick; only one path per identity may reach the renderer.
	for i := range outBuffer.Sources {
		outBuffer.Sources[i].Paths = dedupePaths(outBuffer.Sources[i].Paths)
	}

	// 6. Age out caches; advance frame.
	listener.Triangles.AgeOut(e.frame, e.Config.MaxReverbCacheAge)
	listener.Paths.AgeOut(e.frame, e.Config.MaxReverbCacheAge)
	for _, src := range sources {
		src.Triangles.AgeOut(e.frame, e.Config.MaxReverbCacheAge)
	}
	e.frame++
	outBuffer.Frame = e.frame
}

// revalidateCachedPaths re-runs reflection (and last-bounce diffraction)
// validation for every ProbePath retained from prior frames with
// foundPaths=true. Listener-image positions are recomputed
// from the current listener position each call rather than cached
// in the probe entry.
func (e *Engine) revalidateCachedPaths(scene *geom.Scene, listener *world.Listener, sources []*world.Source, outBuffer *Buffer) {
	var stale []cache.ProbePath
	listener.Paths.Each(func(p cache.ProbePath, age uint32) {
		if !p.FoundPaths {
			return
		}
		found := false
		for i, src := range sources {
			if !src.Enabled || !e.Config.ReflectionEnabled {
				continue
			}
			if path, ok := e.validateReflection(scene, listener, src, p.Sequence); ok {
				outBuffer.Sources[i].Paths = append(outBuffer.Sources[i].Paths, path)
				found = true
				src.Triangles.Touch(p.Sequence[len(p.Sequence)-1], e.frame)
			}
		}
		if !found {
			stale = append(stale, p)
		}
	})
	for _, p := range stale {
		np := p
		np.FoundPaths = false
		listener.Paths.Add(np, e.frame)
	}
}

// directAndTransmitted emits the direct path when the source is visible,
// or a transmitted path through the blocking geometry when it is not.
func (e *Engine) directAndTransmitted(scene *geom.Scene, listener *world.Listener, src *world.Source, out *SourcePathBuffer) {
	lp := listener.Position()
	sp := src.Position()
	toSource := sp.Sub(lp)
	dist := toSource.Length()
	if dist <= src.Radius {
		return
	}
	dir := toSource.Scale(1 / dist)
	clearDistance := dist - src.Radius

	occluded := e.Backend.Occluded(scene, lp, dir, e.Config.RayEpsilon, clearDistance-e.Config.RayEpsilon)
	if !occluded {
		if e.Config.DirectEnabled {
			out.Paths = append(out.Paths, e.buildDirectPath(scene, listener, src, dir, dist))
		}
		return
	}
	if e.Config.TransmissionEnabled {
		if path, ok := e.transmissionPath(scene, listener, src, dir, dist); ok {
			out.Paths = append(out.Paths, path)
		}
	}
}

func (e *Engine) buildDirectPath(scene *geom.Scene, listener *world.Listener, src *world.Source, dir geom.Vec3, dist float64) world.Path {
	return e.finalizePath(scene, listener, src, dir, dir, dist, world.NewDescription([]world.PathPoint{
		{Tag: world.TagListener},
		{Tag: world.TagSource, SourceID: src.ID},
	}), acoustic.Unity())
}

// finalizePath converts a validated geometric path (direction of the
// first segment leaving the listener, direction of the last segment
// arriving at the source, total distance, raw non-directivity
// attenuation) into a world.Path, folding in source directivity
// and the source/listener closing speed projected onto the
// path's end segments.
func (e *Engine) finalizePath(scene *geom.Scene, listener *world.Listener, src *world.Source, dirFromListener, dirAtSource geom.Vec3, dist float64, desc world.Description, attenuation acoustic.Response) world.Path {
	localDir := listener.Transform.Orientation.WorldToLocal(dirFromListener)
	emitted := src.EmittedGain(dirAtSource.Neg())
	total := attenuation.Mul(emitted).Mul(acoustic.Constant(src.DirectAttenuation.Gain(dist)))

	// Rate of change of total path length: positive when the path is
	// lengthening (delay growing).
	relSpeed := src.Velocity.Dot(dirAtSource) - listener.Velocity.Dot(dirFromListener)
	c := scene.SpeedOfSound

	return world.Path{
		Direction:     [3]float64{localDir.X, localDir.Y, localDir.Z},
		Distance:      dist,
		RelativeSpeed: relSpeed,
		SpeedOfSound:  c,
		Attenuation:   total,
		ID:            world.NewID(desc),
	}
}

func dedupePaths(paths []world.Path) []world.Path {
	if len(paths) < 2 {
		return paths
	}
	seen := make(map[uint64]bool, len(paths))
	out := paths[:0]
	for _, p := range paths {
		h := p.ID.Hash()
		if seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, p)
	}
	return out
}

func avg(a, b float64) float64 { return (a + b) / 2 }

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
