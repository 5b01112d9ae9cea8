package adaptive

import (
	"testing"
	"time"

	"github.com/san-kum/acoustid/internal/geom"
	"github.com/san-kum/acoustid/internal/propagation"
	"github.com/san-kum/acoustid/internal/raytrace"
	"github.com/san-kum/acoustid/internal/world"
)

func tickOnce(t *testing.T, c *Controller) {
	t.Helper()
	scene := geom.NewScene()
	scene.Rebuild()
	listener := world.NewListener()
	buf := propagation.NewBuffer(0)
	c.Tick(scene, listener, nil, buf)
}

func TestRayCountGrowsUnderBudget(t *testing.T) {
	engine := propagation.NewEngine(raytrace.NewCPUBackend(), 1)
	c := NewController(engine, time.Hour)
	start := c.NumListenerRays

	for i := 0; i < 5; i++ {
		tickOnce(t, c)
	}
	if c.NumListenerRays != start+5*c.RayIncrement {
		t.Errorf("listener rays = %v, want %v", c.NumListenerRays, start+5*c.RayIncrement)
	}
	if c.NumSourceRays != c.SourceRatio*c.NumListenerRays {
		t.Errorf("source rays = %v, want ratio-derived %v", c.NumSourceRays, c.SourceRatio*c.NumListenerRays)
	}
}

func TestRayCountNeverFallsBelowMinima(t *testing.T) {
	engine := propagation.NewEngine(raytrace.NewCPUBackend(), 1)
	c := NewController(engine, time.Nanosecond)

	for i := 0; i < 50; i++ {
		tickOnce(t, c)
	}
	if c.NumListenerRays < c.MinListenerRays {
		t.Errorf("listener rays %v fell below minimum %v", c.NumListenerRays, c.MinListenerRays)
	}
	if c.NumSourceRays < c.MinSourceRays {
		t.Errorf("source rays %v fell below minimum %v", c.NumSourceRays, c.MinSourceRays)
	}
}

func TestZeroBudgetDisablesAdaptation(t *testing.T) {
	engine := propagation.NewEngine(raytrace.NewCPUBackend(), 1)
	c := NewController(engine, 0)
	start := c.NumListenerRays
	tickOnce(t, c)
	if c.NumListenerRays != start {
		t.Errorf("rays changed with no frame budget: %v -> %v", start, c.NumListenerRays)
	}
}
