package tui

import (
	"strings"
	"testing"
)

func TestCanvasSetLightsProjectedDot(t *testing.T) {
	c := NewCanvas(10, 10, 0, 0, 10, 10)
	empty := c.String()
	c.Set(5, 5)
	if c.String() == empty {
		t.Error("expected a lit dot after Set")
	}
}

func TestCanvasClearResets(t *testing.T) {
	c := NewCanvas(4, 4, 0, 0, 1, 1)
	c.Line(0, 0, 1, 1)
	c.Clear()
	want := strings.Repeat(strings.Repeat("⠀", 4)+"\n", 4)
	if c.String() != want {
		t.Error("canvas not empty after Clear")
	}
}

func TestCanvasOutOfWindowIsIgnored(t *testing.T) {
	c := NewCanvas(4, 4, 0, 0, 1, 1)
	c.Set(-5, -5)
	c.Set(50, 50)
	want := strings.Repeat(strings.Repeat("⠀", 4)+"\n", 4)
	if c.String() != want {
		t.Error("out-of-window points should not light dots")
	}
}
