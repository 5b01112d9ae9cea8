package config

// Presets are named, ready-to-run scene configs, keyed by a flat scene
// name.
var Presets = map[string]*Config{
	"small-room": {
		Name:         "small-room",
		SpeedOfSound: DefaultSpeedOfSound,
		Box:          &BoxConfig{Width: 4, Height: 2.5, Depth: 4, Material: 0},
		Materials: []MaterialConfig{
			{Name: "drywall", Reflection: 0.7, Absorption: 0.2, Transmission: 0.02},
		},
		Sources:  []SourceConfig{{ID: 0, Position: [3]float64{1, 1.2, 1}, Power: 1.0}},
		Listener: ListenerConfig{Position: [3]float64{2.5, 1.2, 2.5}},
		Engine: EngineConfig{
			DirectEnabled: true, TransmissionEnabled: true, ReflectionEnabled: true,
			DiffractionEnabled: true, ReverbEnabled: true, RayEpsilon: 1e-4, RayCount: 256,
		},
		Render: RenderConfig{SampleRate: DefaultSampleRate, Speakers: "stereo", MaxPaths: 128},
	},
	"concert-hall": {
		Name:         "concert-hall",
		SpeedOfSound: DefaultSpeedOfSound,
		Box:          &BoxConfig{Width: 30, Height: 12, Depth: 45, Material: 0},
		Materials: []MaterialConfig{
			{Name: "wood-paneling", Reflection: 0.85, Absorption: 0.08, Transmission: 0.001},
		},
		Sources:  []SourceConfig{{ID: 0, Position: [3]float64{15, 3, 5}, Power: 4.0, Cardioid: 0.6}},
		Listener: ListenerConfig{Position: [3]float64{15, 1.6, 30}},
		Engine: EngineConfig{
			DirectEnabled: true, TransmissionEnabled: false, ReflectionEnabled: true,
			DiffractionEnabled: true, ReverbEnabled: true, RayEpsilon: 1e-4, RayCount: 1024,
		},
		Render: RenderConfig{SampleRate: DefaultSampleRate, Speakers: "stereo", MaxPaths: 512},
	},
	"outdoor": {
		Name:         "outdoor",
		SpeedOfSound: DefaultSpeedOfSound,
		Box:          &BoxConfig{Width: 200, Height: 60, Depth: 200, Material: 0},
		Materials: []MaterialConfig{
			{Name: "open-air", Reflection: 0.05, Absorption: 0.95, Transmission: 0.5},
		},
		Sources:  []SourceConfig{{ID: 0, Position: [3]float64{100, 1.7, 50}, Power: 1.0}},
		Listener: ListenerConfig{Position: [3]float64{100, 1.7, 80}},
		Engine: EngineConfig{
			DirectEnabled: true, TransmissionEnabled: false, ReflectionEnabled: false,
			DiffractionEnabled: false, ReverbEnabled: false, RayEpsilon: 1e-3, RayCount: 64,
		},
		Render: RenderConfig{SampleRate: DefaultSampleRate, Speakers: "mono", MaxPaths: 32},
	},
	"corridor": {
		Name:         "corridor",
		SpeedOfSound: DefaultSpeedOfSound,
		Box:          &BoxConfig{Width: 2.2, Height: 2.6, Depth: 20, Material: 0},
		Materials: []MaterialConfig{
			{Name: "tile", Reflection: 0.9, Absorption: 0.03, Transmission: 0.005},
		},
		Sources:  []SourceConfig{{ID: 0, Position: [3]float64{1.1, 1.2, 1}, Power: 1.0}},
		Listener: ListenerConfig{Position: [3]float64{1.1, 1.2, 18}},
		Engine: EngineConfig{
			DirectEnabled: true, TransmissionEnabled: true, ReflectionEnabled: true,
			DiffractionEnabled: true, ReverbEnabled: true, RayEpsilon: 1e-4, RayCount: 512,
		},
		Render: RenderConfig{SampleRate: DefaultSampleRate, Speakers: "stereo", MaxPaths: 256},
	},
}

// GetPreset returns a deep-enough copy of a named preset (safe for the
// caller to mutate Sources/Listener without affecting the registry), or
// nil if name is unknown.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cp := *p
	cp.Materials = append([]MaterialConfig(nil), p.Materials...)
	cp.Sources = append([]SourceConfig(nil), p.Sources...)
	if p.Box != nil {
		box := *p.Box
		cp.Box = &box
	}
	return &cp
}

// ListPresets returns every registered preset name.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
