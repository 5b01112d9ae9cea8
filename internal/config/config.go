// Package config loads and saves scene configuration: the room geometry
// (as a box or a loaded mesh file), materials, sources, and listener
// pose, plus the propagation engine's and renderer's tunables. Scenes
// are authored as YAML (gopkg.in/yaml.v3), with a box-primitive geometry
// shorthand for rooms that don't need a mesh file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/acoustid/internal/acoustic"
	"github.com/san-kum/acoustid/internal/geom"
	"github.com/san-kum/acoustid/internal/meshio"
	"github.com/san-kum/acoustid/internal/propagation"
	"github.com/san-kum/acoustid/internal/world"
)

const (
	DefaultSampleRate   = 44100.0
	DefaultSpeedOfSound = geom.DefaultSpeedOfSound
	DefaultMaxPaths     = 256
	DefaultRayCount     = 512
)

// MaterialConfig names a Material and its three per-band-averaged
// scalars, the same Configurable shape acoustic.Material exposes via
// GetParams/SetParam.
type MaterialConfig struct {
	Name         string  `yaml:"name"`
	Reflection   float64 `yaml:"reflection"`
	Absorption   float64 `yaml:"absorption"`
	Transmission float64 `yaml:"transmission"`
}

func (m MaterialConfig) Build() acoustic.Material {
	return acoustic.NewMaterial(m.Name, m.Reflection, m.Absorption, m.Transmission)
}

// BoxConfig is a shoebox-room geometry shorthand: a closed rectangular
// box whose faces all share one material index, in MeshFile's absence.
type BoxConfig struct {
	Width    float64 `yaml:"width"`
	Height   float64 `yaml:"height"`
	Depth    float64 `yaml:"depth"`
	Material int     `yaml:"material"`
}

// SourceConfig places one sound source.
type SourceConfig struct {
	ID       int        `yaml:"id"`
	Position [3]float64 `yaml:"position"`
	Power    float64    `yaml:"power"`
	Cardioid float64    `yaml:"cardioid"`
}

func (s SourceConfig) Build() *world.Source {
	src := world.NewSource(s.ID, acoustic.Constant(s.Power))
	src.Transform.Position = geom.Vec3{X: s.Position[0], Y: s.Position[1], Z: s.Position[2]}
	if s.Cardioid > 0 {
		src.Directivity = world.CardioidDirectivity{Pattern: s.Cardioid}
	}
	return src
}

// ListenerConfig places the single listener.
type ListenerConfig struct {
	Position [3]float64 `yaml:"position"`
}

func (l ListenerConfig) Build() *world.Listener {
	lis := world.NewListener()
	lis.Transform.Position = geom.Vec3{X: l.Position[0], Y: l.Position[1], Z: l.Position[2]}
	return lis
}

// EngineConfig mirrors propagation.Config's feature flags and tunables so
// they round-trip through YAML.
type EngineConfig struct {
	DirectEnabled       bool    `yaml:"direct_enabled"`
	TransmissionEnabled bool    `yaml:"transmission_enabled"`
	ReflectionEnabled   bool    `yaml:"reflection_enabled"`
	DiffractionEnabled  bool    `yaml:"diffraction_enabled"`
	ReverbEnabled       bool    `yaml:"reverb_enabled"`
	RayEpsilon          float64 `yaml:"ray_epsilon"`
	RayCount            int     `yaml:"ray_count"`
}

func (e EngineConfig) Build() propagation.Config {
	cfg := propagation.DefaultConfig()
	cfg.DirectEnabled = e.DirectEnabled
	cfg.TransmissionEnabled = e.TransmissionEnabled
	cfg.ReflectionEnabled = e.ReflectionEnabled
	cfg.DiffractionEnabled = e.DiffractionEnabled
	cfg.ReverbEnabled = e.ReverbEnabled
	if e.RayEpsilon > 0 {
		cfg.RayEpsilon = e.RayEpsilon
	}
	return cfg
}

// RenderConfig mirrors the render.Renderer settings that make sense to
// author statically (sample rate, speaker layout, culling limits); reverb
// on/off lives on EngineConfig since it gates both engine estimation and
// renderer mixing.
type RenderConfig struct {
	SampleRate float64 `yaml:"sample_rate"`
	Speakers   string  `yaml:"speakers"` // "mono" | "stereo"
	MaxPaths   int     `yaml:"max_paths"`
}

// Config is a complete scene description: either a box room or a
// reference to a mesh file, its materials, sources, listener, and the
// engine/render tunables, a single flat struct loaded wholesale from
// YAML.
type Config struct {
	Name         string           `yaml:"name"`
	MeshFile     string           `yaml:"mesh_file"`
	Box          *BoxConfig       `yaml:"box"`
	SpeedOfSound float64          `yaml:"speed_of_sound"`
	Materials    []MaterialConfig `yaml:"materials"`
	Sources      []SourceConfig   `yaml:"sources"`
	Listener     ListenerConfig   `yaml:"listener"`
	Engine       EngineConfig     `yaml:"engine"`
	Render       RenderConfig     `yaml:"render"`
}

// DefaultConfig returns a single-source shoebox room with
// scenario defaults: unity distance attenuation, reverb and every path
// type enabled, 44.1kHz stereo output.
func DefaultConfig() *Config {
	return &Config{
		Name:         "default",
		SpeedOfSound: DefaultSpeedOfSound,
		Box:          &BoxConfig{Width: 10, Height: 3, Depth: 8, Material: 0},
		Materials: []MaterialConfig{
			{Name: "concrete", Reflection: 0.95, Absorption: 0.02, Transmission: 0.001},
		},
		Sources: []SourceConfig{
			{ID: 0, Position: [3]float64{2, 1.5, 2}, Power: 1.0},
		},
		Listener: ListenerConfig{Position: [3]float64{5, 1.5, 4}},
		Engine: EngineConfig{
			DirectEnabled: true, TransmissionEnabled: true, ReflectionEnabled: true,
			DiffractionEnabled: true, ReverbEnabled: true, RayEpsilon: 1e-4, RayCount: DefaultRayCount,
		},
		Render: RenderConfig{SampleRate: DefaultSampleRate, Speakers: "stereo", MaxPaths: DefaultMaxPaths},
	}
}

// Load reads a YAML scene file, starting from DefaultConfig so omitted
// fields keep sane defaults rather than zero values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path as YAML.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// boxMesh builds a closed rectangular room mesh from a BoxConfig: 12
// triangles (2 per face), all sharing the single given material index.
func boxMesh(b BoxConfig, materials []acoustic.Material) (*geom.Mesh, error) {
	w, h, d := b.Width/2, b.Height/2, b.Depth/2
	verts := []geom.Vec3{
		{X: -w, Y: -h, Z: -d}, {X: w, Y: -h, Z: -d}, {X: w, Y: h, Z: -d}, {X: -w, Y: h, Z: -d},
		{X: -w, Y: -h, Z: d}, {X: w, Y: -h, Z: d}, {X: w, Y: h, Z: d}, {X: -w, Y: h, Z: d},
	}
	m := b.Material
	faces := [][4]int{
		{0, 1, 2, m}, {0, 2, 3, m}, // front
		{5, 4, 7, m}, {5, 7, 6, m}, // back
		{4, 0, 3, m}, {4, 3, 7, m}, // left
		{1, 5, 6, m}, {1, 6, 2, m}, // right
		{4, 5, 1, m}, {4, 1, 0, m}, // floor
		{3, 2, 6, m}, {3, 6, 7, m}, // ceiling
	}
	return geom.NewMesh(verts, faces, materials)
}

// BuildScene constructs the geom.Scene, world.Source list, and
// world.Listener described by cfg. When MeshFile is set it takes
// precedence over Box; one of the two must be present.
func BuildScene(cfg *Config) (*geom.Scene, []*world.Source, *world.Listener, error) {
	materials := make([]acoustic.Material, len(cfg.Materials))
	for i, mc := range cfg.Materials {
		materials[i] = mc.Build()
	}
	if len(materials) == 0 {
		materials = []acoustic.Material{acoustic.NewMaterial("default", 0.8, 0.1, 0.01)}
	}

	var mesh *geom.Mesh
	var err error
	switch {
	case cfg.MeshFile != "":
		data, rerr := os.ReadFile(cfg.MeshFile)
		if rerr != nil {
			return nil, nil, nil, fmt.Errorf("config: reading mesh file: %w", rerr)
		}
		mesh, err = meshio.Read(data)
	case cfg.Box != nil:
		mesh, err = boxMesh(*cfg.Box, materials)
	default:
		return nil, nil, nil, fmt.Errorf("config: scene %q has neither mesh_file nor box", cfg.Name)
	}
	if err != nil {
		return nil, nil, nil, err
	}

	scene := geom.NewScene()
	if cfg.SpeedOfSound > 0 {
		scene.SpeedOfSound = cfg.SpeedOfSound
	}
	scene.AddObject(geom.NewObject(0, mesh))
	scene.Rebuild()

	sources := make([]*world.Source, len(cfg.Sources))
	for i, sc := range cfg.Sources {
		sources[i] = sc.Build()
	}
	listener := cfg.Listener.Build()
	return scene, sources, listener, nil
}
