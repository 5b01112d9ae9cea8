// Package adaptive implements the adaptive ray-budget controller: it
// wraps the propagation engine and adjusts ray counts frame to frame to
// track a target frame budget, exposing the same GetParams/SetParam
// shape the rest of the codebase uses for live tuning.
package adaptive

import (
	"time"

	"github.com/san-kum/acoustid/internal/geom"
	"github.com/san-kum/acoustid/internal/propagation"
	"github.com/san-kum/acoustid/internal/world"
)

// Controller wraps a propagation.Engine, measuring the wall-clock time
// of the previous Propagate call and adjusting listener/source ray
// counts to track MaxFrameTime.
type Controller struct {
	Engine *propagation.Engine

	MaxFrameTime time.Duration

	MaxListenerDepth int
	MaxSourceDepth   int

	NumListenerRays float64
	NumSourceRays   float64

	MinListenerRays float64
	MinSourceRays   float64

	// RayIncrement is the per-frame additive increase to NumListenerRays
	// when under budget (default 1).
	RayIncrement float64
	// SourceRatio derives NumSourceRays = SourceRatio * NumListenerRays
	// when under budget (default 0.1).
	SourceRatio float64

	lastFrameTime time.Duration
}

// NewController builds a controller with the stock defaults:
// +1 listener ray/frame, source ratio 0.1, minima 50/10.
func NewController(engine *propagation.Engine, maxFrameTime time.Duration) *Controller {
	return &Controller{
		Engine:           engine,
		MaxFrameTime:     maxFrameTime,
		MaxListenerDepth: 4,
		MaxSourceDepth:   4,
		NumListenerRays:  200,
		NumSourceRays:    20,
		MinListenerRays:  50,
		MinSourceRays:    10,
		RayIncrement:     1,
		SourceRatio:      0.1,
	}
}

// Tick measures the wall-clock cost of one propagation.Propagate call
// and adjusts ray counts for the next tick: below
// budget, additively increase; above budget, multiply down by the ratio
// maxFrameTime/lastFrameTime, clamped by the per-count minima. No
// hysteresis: one frame's overshoot is tolerated before correcting.
func (c *Controller) Tick(scene *geom.Scene, listener *world.Listener, sources []*world.Source, outBuffer *propagation.Buffer) {
	start := time.Now()
	c.Engine.Propagate(
		scene, listener, sources,
		c.MaxListenerDepth, int(c.NumListenerRays),
		c.MaxSourceDepth, int(c.NumSourceRays),
		outBuffer,
	)
	c.lastFrameTime = time.Since(start)

	if c.MaxFrameTime <= 0 {
		return
	}

	if c.lastFrameTime <= c.MaxFrameTime {
		c.NumListenerRays += c.RayIncrement
		c.NumSourceRays = c.SourceRatio * c.NumListenerRays
	} else {
		ratio := float64(c.MaxFrameTime) / float64(c.lastFrameTime)
		c.NumListenerRays *= ratio
		c.NumSourceRays *= ratio
	}

	if c.NumListenerRays < c.MinListenerRays {
		c.NumListenerRays = c.MinListenerRays
	}
	if c.NumSourceRays < c.MinSourceRays {
		c.NumSourceRays = c.MinSourceRays
	}
}

// LastFrameTime returns the wall-clock duration of the most recent Tick's
// Propagate call.
func (c *Controller) LastFrameTime() time.Duration { return c.lastFrameTime }

// GetParams exposes tunable parameters for live adjustment, in the map
// shape shared with the engine config and materials.
func (c *Controller) GetParams() map[string]float64 {
	return map[string]float64{
		"numListenerRays": c.NumListenerRays,
		"numSourceRays":   c.NumSourceRays,
		"rayIncrement":    c.RayIncrement,
		"sourceRatio":     c.SourceRatio,
		"minListenerRays": c.MinListenerRays,
		"minSourceRays":   c.MinSourceRays,
	}
}

// SetParam adjusts a controller parameter by name, the counterpart of
// GetParams.
func (c *Controller) SetParam(name string, value float64) {
	switch name {
	case "numListenerRays":
		c.NumListenerRays = value
	case "numSourceRays":
		c.NumSourceRays = value
	case "rayIncrement":
		c.RayIncrement = value
	case "sourceRatio":
		c.SourceRatio = value
	case "minListenerRays":
		c.MinListenerRays = value
	case "minSourceRays":
		c.MinSourceRays = value
	}
}
