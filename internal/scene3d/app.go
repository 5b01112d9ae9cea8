// Package scene3d is an optional raylib debug viewer: the scene's
// triangles as wireframe, sources and the listener as spheres, and the
// current frame's propagation paths as direction whiskers at the
// listener. It is a development aid outside the engine/renderer core.
package scene3d

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/acoustid/internal/geom"
	"github.com/san-kum/acoustid/internal/scenario"
	"github.com/san-kum/acoustid/internal/world"
)

var (
	colBg       = rl.NewColor(10, 10, 10, 255)
	colWire     = rl.NewColor(60, 60, 60, 255)
	colListener = rl.NewColor(0, 204, 255, 255)
	colSource   = rl.NewColor(255, 136, 0, 255)
	colDirect   = rl.NewColor(0, 255, 136, 255)
	colReflect  = rl.NewColor(200, 200, 200, 255)
	colDiffract = rl.NewColor(255, 0, 255, 255)
	colText     = rl.NewColor(140, 140, 140, 255)
)

// App drives the viewer's window and camera over a live scenario.
type App struct {
	inst    *scenario.Instance
	camera  rl.Camera3D
	running bool
}

// NewApp builds a viewer over inst with an orbit camera looking at the
// listener.
func NewApp(inst *scenario.Instance) *App {
	lp := inst.Listener.Position()
	return &App{
		inst: inst,
		camera: rl.NewCamera3D(
			rl.NewVector3(float32(lp.X), float32(lp.Y+8), float32(lp.Z+14)),
			rl.NewVector3(float32(lp.X), float32(lp.Y), float32(lp.Z)),
			rl.NewVector3(0, 1, 0),
			45.0,
			rl.CameraPerspective,
		),
		running: true,
	}
}

// Run opens the window and loops until closed, stepping the simulation
// each frame while not paused.
func (a *App) Run() {
	rl.InitWindow(1280, 720, "acoustid")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)
	rl.SetExitKey(0)

	for !rl.WindowShouldClose() {
		if a.handleInput() {
			break
		}
		if a.running {
			a.inst.Step()
		}
		a.drawFrame()
	}
}

// handleInput reports whether the user asked to quit.
func (a *App) handleInput() bool {
	if rl.IsKeyPressed(rl.KeySpace) {
		a.running = !a.running
	}
	if rl.IsKeyPressed(rl.KeyQ) || rl.IsKeyPressed(rl.KeyEscape) {
		return true
	}
	rl.UpdateCamera(&a.camera, rl.CameraOrbital)
	return false
}

func (a *App) drawFrame() {
	rl.BeginDrawing()
	rl.ClearBackground(colBg)
	rl.BeginMode3D(a.camera)

	for _, obj := range a.inst.Scene.Objects {
		for i := range obj.Mesh.Triangles {
			wt := obj.WorldTriangle(i)
			rl.DrawLine3D(rlVec(wt.A), rlVec(wt.B), colWire)
			rl.DrawLine3D(rlVec(wt.B), rlVec(wt.C), colWire)
			rl.DrawLine3D(rlVec(wt.C), rlVec(wt.A), colWire)
		}
	}

	lp := a.inst.Listener.Position()
	rl.DrawSphere(rlVec(lp), 0.15, colListener)
	for _, src := range a.inst.Sources {
		rl.DrawSphere(rlVec(src.Position()), 0.15, colSource)
	}

	orient := a.inst.Listener.Transform.Orientation
	for _, sb := range a.inst.Buffer.Sources {
		for _, p := range sb.Paths {
			dir := orient.LocalToWorld(geom.Vec3{X: p.Direction[0], Y: p.Direction[1], Z: p.Direction[2]})
			whisker := 0.25 * p.Distance
			end := lp.Add(dir.Scale(whisker))
			rl.DrawLine3D(rlVec(lp), rlVec(end), pathColor(p))
		}
	}

	rl.EndMode3D()

	ctl := a.inst.Controller
	hud := fmt.Sprintf("paths %d   frame %.2fms   rays %.0f/%.0f",
		a.inst.Buffer.TotalPaths(),
		float64(ctl.LastFrameTime().Microseconds())/1000,
		ctl.NumListenerRays, ctl.NumSourceRays)
	rl.DrawText(hud, 16, 16, 18, colText)
	if !a.running {
		rl.DrawText("PAUSED", 16, 40, 18, colText)
	}
	rl.EndDrawing()
}

func pathColor(p world.Path) rl.Color {
	if p.ID.Description.Depth() == 0 {
		return colDirect
	}
	for _, pt := range p.ID.Description.Points {
		if pt.Tag == world.TagEdgeDiffraction {
			return colDiffract
		}
	}
	return colReflect
}

func rlVec(v geom.Vec3) rl.Vector3 {
	return rl.NewVector3(float32(v.X), float32(v.Y), float32(v.Z))
}
