// Package scenario wires a config.Config into a runnable instance: the
// built geom.Scene/world.Source/world.Listener, a propagation.Engine
// over the scene's chosen raytrace backend, an adaptive.Controller
// tracking a frame budget, and a render.Renderer ready to receive
// UpdatePaths/FillBuffer calls. Presets resolve through a name-keyed
// factory the same way config presets do.
package scenario

import (
	"fmt"
	"time"

	"github.com/san-kum/acoustid/internal/acoustic"
	"github.com/san-kum/acoustid/internal/adaptive"
	"github.com/san-kum/acoustid/internal/config"
	"github.com/san-kum/acoustid/internal/geom"
	"github.com/san-kum/acoustid/internal/propagation"
	"github.com/san-kum/acoustid/internal/raytrace"
	"github.com/san-kum/acoustid/internal/render"
	"github.com/san-kum/acoustid/internal/world"
)

// Instance bundles everything one call to Propagate+UpdatePaths+FillBuffer
// touches.
type Instance struct {
	Config     *config.Config
	Scene      *geom.Scene
	Sources    []*world.Source
	Listener   *world.Listener
	Engine     *propagation.Engine
	Controller *adaptive.Controller
	Renderer   *render.Renderer
	Buffer     *propagation.Buffer
}

// Build constructs a full Instance from a scene config: builds the
// geometry/sources/listener, an engine against the auto-selected
// raytrace backend, an adaptive controller targeting a 16ms frame budget
//, and a
// renderer sized per cfg.Render.
func Build(cfg *config.Config, seed int64) (*Instance, error) {
	scene, sources, listener, err := config.BuildScene(cfg)
	if err != nil {
		return nil, fmt.Errorf("scenario: building scene %q: %w", cfg.Name, err)
	}

	engine := propagation.NewEngine(raytrace.GetBackend(), seed)
	engine.Config = cfg.Engine.Build()

	controller := adaptive.NewController(engine, 16*time.Millisecond)
	if cfg.Engine.RayCount > 0 {
		controller.NumListenerRays = float64(cfg.Engine.RayCount)
		controller.NumSourceRays = controller.SourceRatio * controller.NumListenerRays
	}

	speakers := render.Stereo()
	if cfg.Render.Speakers == "mono" {
		speakers = render.Mono()
	}
	sampleRate := cfg.Render.SampleRate
	if sampleRate <= 0 {
		sampleRate = config.DefaultSampleRate
	}
	renderer := render.NewRenderer(sampleRate, speakers, acoustic.NewPartition(acoustic.DefaultSplits))
	if cfg.Render.MaxPaths > 0 {
		renderer.SetMaxPaths(cfg.Render.MaxPaths)
	}
	renderer.SetReverbEnabled(cfg.Engine.ReverbEnabled)

	return &Instance{
		Config:     cfg,
		Scene:      scene,
		Sources:    sources,
		Listener:   listener,
		Engine:     engine,
		Controller: controller,
		Renderer:   renderer,
		Buffer:     propagation.NewBuffer(len(sources)),
	}, nil
}

// Step runs one simulation tick: the adaptive controller's Propagate
// call followed by handing the resulting buffer to the renderer under
// its render mutex.
func (in *Instance) Step() {
	in.Controller.Tick(in.Scene, in.Listener, in.Sources, in.Buffer)
	in.Renderer.UpdatePaths(in.Buffer, in.Sources, in.Scene.SpeedOfSound)
}

// Load resolves a scenario by preset name, falling back to loading name
// as a YAML file path if it isn't a known preset.
func Load(name string, seed int64) (*Instance, error) {
	cfg := config.GetPreset(name)
	if cfg == nil {
		loaded, err := config.Load(name)
		if err != nil {
			return nil, fmt.Errorf("scenario: %q is neither a known preset nor a loadable config file: %w", name, err)
		}
		cfg = loaded
	}
	return Build(cfg, seed)
}

// List returns every known preset name, for CLI help text and the TUI's
// scenario picker.
func List() []string {
	return config.ListPresets()
}
