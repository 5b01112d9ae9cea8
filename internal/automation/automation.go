// Package automation runs scripted multi-step propagation scenarios
// from YAML: each step moves sources or the listener, toggles features,
// then runs the engine for a fixed number of frames and reports path
// count and reverb statistics. Used for regression runs where a scene
// must behave consistently across scripted changes.
package automation

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/acoustid/internal/acoustic"
	"github.com/san-kum/acoustid/internal/analysis"
	"github.com/san-kum/acoustid/internal/geom"
	"github.com/san-kum/acoustid/internal/scenario"
	"github.com/san-kum/acoustid/internal/world"
)

// Scenario defines a scripted propagation sequence over one preset.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Preset      string `yaml:"preset"`
	Seed        int64  `yaml:"seed"`
	Steps       []Step `yaml:"steps"`
}

// Step is a single step in a scenario: optional scene mutations applied
// before running the engine for Frames ticks.
type Step struct {
	Name             string             `yaml:"name"`
	Frames           int                `yaml:"frames"`
	SourceID         int                `yaml:"source_id"`
	SourcePosition   *[3]float64        `yaml:"source_position"`
	SourceVelocity   *[3]float64        `yaml:"source_velocity"`
	SourceEnabled    *bool              `yaml:"source_enabled"`
	ListenerPosition *[3]float64        `yaml:"listener_position"`
	EngineParams     map[string]float64 `yaml:"engine_params"`
}

// StepResult summarizes one executed step.
type StepResult struct {
	Name      string
	Frames    int
	MeanPaths float64
	Stability float64
	DecayMid  float64 // T60 at the 1 kHz band after the step's last frame
}

// LoadScenario reads a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("automation: scenario %q has no steps", sc.Name)
	}
	return &sc, nil
}

// RunScenario builds the scenario's preset once and executes every step
// against the same live instance, so caches and renderer state carry
// across steps the way they would in a real session.
func RunScenario(ctx context.Context, sc *Scenario) ([]StepResult, error) {
	inst, err := scenario.Load(sc.Preset, sc.Seed)
	if err != nil {
		return nil, fmt.Errorf("automation: %w", err)
	}

	results := make([]StepResult, 0, len(sc.Steps))
	for i, step := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		if err := applyStep(inst, step); err != nil {
			return results, fmt.Errorf("automation: step %d (%s): %w", i+1, step.Name, err)
		}

		frames := step.Frames
		if frames <= 0 {
			frames = 1
		}
		stability := analysis.NewPathCountStability()
		totalPaths := 0
		for f := 0; f < frames; f++ {
			if err := ctx.Err(); err != nil {
				return results, err
			}
			inst.Step()
			n := inst.Buffer.TotalPaths()
			stability.Observe(n)
			totalPaths += n
		}

		decayMid := 0.0
		if len(inst.Buffer.Sources) > 0 {
			decay := inst.Buffer.Sources[0].Reverb.DecayTime60(inst.Scene.SpeedOfSound)
			decayMid = decay[midBand()]
		}
		results = append(results, StepResult{
			Name:      step.Name,
			Frames:    frames,
			MeanPaths: float64(totalPaths) / float64(frames),
			Stability: stability.Value(),
			DecayMid:  decayMid,
		})
	}
	return results, nil
}

func applyStep(inst *scenario.Instance, step Step) error {
	if step.SourcePosition != nil || step.SourceVelocity != nil || step.SourceEnabled != nil {
		src := findSource(inst, step.SourceID)
		if src == nil {
			return fmt.Errorf("no source with id %d", step.SourceID)
		}
		if p := step.SourcePosition; p != nil {
			src.Transform.Position = geom.Vec3{X: p[0], Y: p[1], Z: p[2]}
		}
		if v := step.SourceVelocity; v != nil {
			src.Velocity = geom.Vec3{X: v[0], Y: v[1], Z: v[2]}
		}
		if e := step.SourceEnabled; e != nil {
			src.Enabled = *e
		}
	}
	if p := step.ListenerPosition; p != nil {
		inst.Listener.Transform.Position = geom.Vec3{X: p[0], Y: p[1], Z: p[2]}
	}
	for name, value := range step.EngineParams {
		inst.Engine.Config.SetParam(name, value)
	}
	return nil
}

func findSource(inst *scenario.Instance, id int) *world.Source {
	for _, s := range inst.Sources {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// midBand returns the band index containing 1 kHz on the default split.
func midBand() int {
	p := acoustic.NewPartition(acoustic.DefaultSplits)
	return p.BandIndex(1000)
}
