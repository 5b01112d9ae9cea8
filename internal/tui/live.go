// Package tui is the live terminal dashboard: a braille top-down view
// of the scene with the current frame's paths, a path-count history
// graph, per-band decay times, and live tuning of the adaptive
// controller's parameters.
package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/acoustid/internal/acoustic"
	"github.com/san-kum/acoustid/internal/geom"
	"github.com/san-kum/acoustid/internal/scenario"
)

const (
	canvasWidth     = 60
	canvasHeight    = 20
	historyCapacity = 600
)

var (
	canvasStyle      = lipgloss.NewStyle().Padding(1, 2)
	statsStyle       = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(48)
	headerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	activeParamStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	graphStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
)

// TickMsg drives the simulation loop.
type TickMsg time.Time

// Model is the bubbletea model wrapping a live scenario instance.
type Model struct {
	inst   *scenario.Instance
	canvas *Canvas

	running     bool
	showHelp    bool
	pathHistory []float64

	paramKeys []string
	selected  int
}

// NewModel builds a dashboard over a built scenario instance. The
// canvas window is sized from the scene's first object's bounds with a
// margin so sources outside the room stay visible.
func NewModel(inst *scenario.Instance) Model {
	minX, minZ, maxX, maxZ := -10.0, -10.0, 10.0, 10.0
	if len(inst.Scene.Objects) > 0 {
		b := inst.Scene.Objects[0].WorldAABB()
		margin := 0.15 * (b.Max.X - b.Min.X)
		if margin < 1 {
			margin = 1
		}
		minX, maxX = b.Min.X-margin, b.Max.X+margin
		minZ, maxZ = b.Min.Z-margin, b.Max.Z+margin
	}

	params := inst.Controller.GetParams()
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return Model{
		inst:        inst,
		canvas:      NewCanvas(canvasWidth, canvasHeight, minX, minZ, maxX, maxZ),
		running:     true,
		pathHistory: make([]float64, 0, historyCapacity),
		paramKeys:   keys,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles input and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "tab":
			if len(m.paramKeys) > 0 {
				m.selected = (m.selected + 1) % len(m.paramKeys)
			}
		case "up", "k":
			m.adjustParam(1.05)
		case "down", "j":
			m.adjustParam(0.95)
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.inst.Step()
			m.pathHistory = append(m.pathHistory, float64(m.inst.Buffer.TotalPaths()))
			if len(m.pathHistory) > historyCapacity {
				m.pathHistory = m.pathHistory[1:]
			}
		}
		return m, tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

func (m *Model) adjustParam(factor float64) {
	if len(m.paramKeys) == 0 {
		return
	}
	key := m.paramKeys[m.selected]
	val := m.inst.Controller.GetParams()[key]
	if val == 0 {
		val = 1
	}
	m.inst.Controller.SetParam(key, val*factor)
}

// draw repaints the top-down scene view: triangle wireframes in the XZ
// plane, a marker per source and for the listener, and a whisker per
// path showing its arrival direction at the listener.
func (m *Model) draw() {
	m.canvas.Clear()
	for _, obj := range m.inst.Scene.Objects {
		for i := range obj.Mesh.Triangles {
			wt := obj.WorldTriangle(i)
			m.canvas.Line(wt.A.X, wt.A.Z, wt.B.X, wt.B.Z)
			m.canvas.Line(wt.B.X, wt.B.Z, wt.C.X, wt.C.Z)
			m.canvas.Line(wt.C.X, wt.C.Z, wt.A.X, wt.A.Z)
		}
	}

	lp := m.inst.Listener.Position()
	m.canvas.Marker(lp.X, lp.Z)
	for _, src := range m.inst.Sources {
		sp := src.Position()
		m.canvas.Marker(sp.X, sp.Z)
	}

	orient := m.inst.Listener.Transform.Orientation
	for _, sb := range m.inst.Buffer.Sources {
		for _, p := range sb.Paths {
			world := orient.LocalToWorld(vec3(p.Direction))
			whisker := 1.5
			if p.Distance < whisker {
				whisker = p.Distance
			}
			m.canvas.Line(lp.X, lp.Z, lp.X+world.X*whisker, lp.Z+world.Z*whisker)
		}
	}
}

// View renders the dashboard.
func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.inst.Config.Name)) + "\n")
	status := "RUNNING"
	if !m.running {
		status = "PAUSED"
	}
	s.WriteString(status + "\n\n")

	if len(m.pathHistory) > 1 {
		chart := asciigraph.Plot(m.pathHistory, asciigraph.Height(4), asciigraph.Width(32), asciigraph.Caption("Paths"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	ctl := m.inst.Controller
	s.WriteString(labelStyle.Render("Frame time") + valueStyle.Render(fmt.Sprintf("%.2fms", float64(ctl.LastFrameTime().Microseconds())/1000)) + "\n")
	s.WriteString(labelStyle.Render("Paths") + valueStyle.Render(fmt.Sprintf("%d", m.inst.Buffer.TotalPaths())) + "\n")
	s.WriteString(labelStyle.Render("Listener rays") + valueStyle.Render(fmt.Sprintf("%.0f", ctl.NumListenerRays)) + "\n")
	s.WriteString(labelStyle.Render("Source rays") + valueStyle.Render(fmt.Sprintf("%.0f", ctl.NumSourceRays)) + "\n")

	if len(m.inst.Buffer.Sources) > 0 {
		decay := m.inst.Buffer.Sources[0].Reverb.DecayTime60(m.inst.Scene.SpeedOfSound)
		s.WriteString(labelStyle.Render("T60 bands") + valueStyle.Render(formatBands(decay)) + "\n")
	}

	s.WriteString("\nCONTROLLER\n")
	params := ctl.GetParams()
	for i, k := range m.paramKeys {
		line := fmt.Sprintf("%-16s %.2f", k, params[k])
		if i == m.selected {
			s.WriteString(activeParamStyle.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + labelStyle.Render(line) + "\n")
		}
	}

	s.WriteString(helpStyle.Render("\n─────────────────────\nSP:Pause Q:Quit Tab:Param ↑↓:Tune ?:Help"))
	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)

	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  Q        - Quit                     ║
║  Tab      - Cycle controller params  ║
║  Up/K     - Increase parameter (+5%) ║
║  Down/J   - Decrease parameter (-5%) ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

func vec3(d [3]float64) geom.Vec3 {
	return geom.Vec3{X: d[0], Y: d[1], Z: d[2]}
}

func formatBands(r acoustic.Response) string {
	var b strings.Builder
	for i, v := range r {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(fmt.Sprintf("%.1f", v))
	}
	return b.String()
}
