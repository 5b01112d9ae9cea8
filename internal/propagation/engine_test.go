package propagation

import (
	"math"
	"testing"

	"github.com/san-kum/acoustid/internal/acoustic"
	"github.com/san-kum/acoustid/internal/geom"
	"github.com/san-kum/acoustid/internal/raytrace"
	"github.com/san-kum/acoustid/internal/world"
)

func emptyScene() *geom.Scene {
	s := geom.NewScene()
	s.SpeedOfSound = 343
	s.Rebuild()
	return s
}

// TestFreeFieldDirect: a
// listener and a single unobstructed source emit exactly one direct
// path with the expected distance and delay.
func TestFreeFieldDirect(t *testing.T) {
	scene := emptyScene()
	listener := world.NewListener()
	listener.Transform.Position = geom.Vec3{X: 0, Y: 1.5, Z: 0}

	src := world.NewSource(0, acoustic.Unity())
	src.Transform.Position = geom.Vec3{X: 0, Y: 1.5, Z: 5}
	src.DirectAttenuation = world.DistanceAttenuation{A: 1}

	engine := NewEngine(raytrace.NewCPUBackend(), 1)
	buf := NewBuffer(1)
	engine.Propagate(scene, listener, []*world.Source{src}, 0, 0, 0, 0, buf)

	if len(buf.Sources[0].Paths) != 1 {
		t.Fatalf("expected exactly one path, got %d", len(buf.Sources[0].Paths))
	}
	p := buf.Sources[0].Paths[0]
	if math.Abs(p.Distance-5.0) > 1e-9 {
		t.Errorf("distance = %v, want 5.0", p.Distance)
	}
	wantDelay := 5.0 / 343.0
	if math.Abs(p.Delay()-wantDelay) > 1e-6 {
		t.Errorf("delay = %v, want %v", p.Delay(), wantDelay)
	}
	if p.Depth() != 0 {
		t.Errorf("depth = %d, want 0 for a direct path", p.Depth())
	}
}

// TestThinWallTransmission: a single
// triangle wall between source and listener attenuates the direct path
// by ((1-R)*A)^2 per band.
func TestThinWallTransmission(t *testing.T) {
	verts := []geom.Vec3{
		{X: -5, Y: -5, Z: 2},
		{X: 5, Y: -5, Z: 2},
		{X: 5, Y: 5, Z: 2},
		{X: -5, Y: 5, Z: 2},
	}
	tris := [][4]int{{0, 1, 2, 0}, {0, 2, 3, 0}}
	mat := acoustic.NewMaterial("wall", 0.5, 0.5, 0.5)
	mesh, err := geom.NewMesh(verts, tris, []acoustic.Material{mat})
	if err != nil {
		t.Fatal(err)
	}
	scene := geom.NewScene()
	scene.SpeedOfSound = 343
	scene.AddObject(geom.NewObject(0, mesh))
	scene.Rebuild()

	listener := world.NewListener()
	listener.Transform.Position = geom.Vec3{X: 0, Y: 1, Z: 0}
	src := world.NewSource(0, acoustic.Unity())
	src.Transform.Position = geom.Vec3{X: 0, Y: 1, Z: 5}
	src.DirectAttenuation = world.DistanceAttenuation{A: 1}

	engine := NewEngine(raytrace.NewCPUBackend(), 1)
	buf := NewBuffer(1)
	engine.Propagate(scene, listener, []*world.Source{src}, 0, 0, 0, 0, buf)

	if len(buf.Sources[0].Paths) != 1 {
		t.Fatalf("expected one transmitted path, got %d", len(buf.Sources[0].Paths))
	}
	want := 0.0625 // ((1-0.5)*0.5)^2
	got := buf.Sources[0].Paths[0].Attenuation.AverageGain(0, acoustic.NumBands-1)
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("transmitted attenuation = %v, want %v", got, want)
	}
}

func TestNoGeometryOnlyDirectPaths(t *testing.T) {
	scene := emptyScene()
	listener := world.NewListener()
	src := world.NewSource(0, acoustic.Unity())
	src.Transform.Position = geom.Vec3{X: 3, Y: 0, Z: 4}
	src.DirectAttenuation = world.DistanceAttenuation{A: 1}

	engine := NewEngine(raytrace.NewCPUBackend(), 1)
	buf := NewBuffer(1)
	engine.Propagate(scene, listener, []*world.Source{src}, 4, 200, 4, 20, buf)

	for _, p := range buf.Sources[0].Paths {
		if p.Depth() != 0 {
			t.Errorf("expected only direct paths with no geometry, got a path of depth %d", p.Depth())
		}
	}
}

// boxScene builds a closed w x h x d shoebox centered on the origin in X/Z
// with its floor at y=0, all faces sharing one material.
func boxScene(t *testing.T, w, h, d float64, mat acoustic.Material) *geom.Scene {
	t.Helper()
	hw, hd := w/2, d/2
	verts := []geom.Vec3{
		{X: -hw, Y: 0, Z: -hd}, {X: hw, Y: 0, Z: -hd}, {X: hw, Y: h, Z: -hd}, {X: -hw, Y: h, Z: -hd},
		{X: -hw, Y: 0, Z: hd}, {X: hw, Y: 0, Z: hd}, {X: hw, Y: h, Z: hd}, {X: -hw, Y: h, Z: hd},
	}
	tris := [][4]int{
		{0, 1, 2, 0}, {0, 2, 3, 0},
		{5, 4, 7, 0}, {5, 7, 6, 0},
		{4, 0, 3, 0}, {4, 3, 7, 0},
		{1, 5, 6, 0}, {1, 6, 2, 0},
		{4, 5, 1, 0}, {4, 1, 0, 0},
		{3, 2, 6, 0}, {3, 6, 7, 0},
	}
	mesh, err := geom.NewMesh(verts, tris, []acoustic.Material{mat})
	if err != nil {
		t.Fatal(err)
	}
	scene := geom.NewScene()
	scene.SpeedOfSound = 343
	scene.AddObject(geom.NewObject(0, mesh))
	scene.Rebuild()
	return scene
}

// TestBoxFirstOrderReflections: inside a 4x3x8 box, the listener hears
// the direct path plus first-order mirror reflections whose lengths
// equal the listener-to-image distances.
func TestBoxFirstOrderReflections(t *testing.T) {
	mat := acoustic.NewMaterial("wall", 0.9, 0.05, 0.001)
	scene := boxScene(t, 4, 3, 8, mat)

	listener := world.NewListener()
	listener.Transform.Position = geom.Vec3{X: 0, Y: 1.5, Z: 0}
	src := world.NewSource(0, acoustic.Unity())
	src.Transform.Position = geom.Vec3{X: 0, Y: 1.5, Z: -3}
	src.DirectAttenuation = world.DistanceAttenuation{A: 1}

	engine := NewEngine(raytrace.NewCPUBackend(), 7)
	buf := NewBuffer(1)
	for frame := 0; frame < 4; frame++ {
		engine.Propagate(scene, listener, []*world.Source{src}, 4, 2000, 0, 0, buf)
	}

	var sawDirect, sawFloorMirror, sawSideMirror bool
	// Image distances: floor/ceiling mirror sqrt(3^2+3^2), side walls
	// sqrt(4^2+3^2).
	floorDist := math.Sqrt(9 + 9)
	sideDist := 5.0
	for _, p := range buf.Sources[0].Paths {
		switch {
		case p.Depth() == 0 && math.Abs(p.Distance-3) < 1e-6:
			sawDirect = true
		case p.Depth() == 1 && math.Abs(p.Distance-floorDist) < 1e-6:
			sawFloorMirror = true
		case p.Depth() == 1 && math.Abs(p.Distance-sideDist) < 1e-6:
			sawSideMirror = true
		}
	}
	hashes := make(map[uint64]bool)
	for _, p := range buf.Sources[0].Paths {
		if hashes[p.ID.Hash()] {
			t.Errorf("duplicate path identity %x in one frame's buffer", p.ID.Hash())
		}
		hashes[p.ID.Hash()] = true
	}
	if !sawDirect {
		t.Error("missing direct path at distance 3")
	}
	if !sawFloorMirror {
		t.Errorf("missing floor/ceiling mirror reflection at distance %v", floorDist)
	}
	if !sawSideMirror {
		t.Errorf("missing side-wall mirror reflection at distance %v", sideDist)
	}
}

// TestEdgeDiffractionAroundWall: a thin wall blocks the direct path; a
// single edge-diffraction path bends around its free vertical edge.
func TestEdgeDiffractionAroundWall(t *testing.T) {
	verts := []geom.Vec3{
		{X: 0, Y: 0, Z: -2},
		{X: 0, Y: 0, Z: 0},
		{X: 0, Y: 3, Z: 0},
		{X: 0, Y: 3, Z: -2},
	}
	tris := [][4]int{{0, 1, 2, 0}, {0, 2, 3, 0}}
	mat := acoustic.NewMaterial("wall", 0.9, 0.05, 0)
	mesh, err := geom.NewMesh(verts, tris, []acoustic.Material{mat})
	if err != nil {
		t.Fatal(err)
	}
	scene := geom.NewScene()
	scene.SpeedOfSound = 343
	scene.AddObject(geom.NewObject(0, mesh))
	scene.Rebuild()

	listener := world.NewListener()
	listener.Transform.Position = geom.Vec3{X: -3, Y: 1.5, Z: -1}
	src := world.NewSource(0, acoustic.Unity())
	src.Transform.Position = geom.Vec3{X: 3, Y: 1.5, Z: -1}
	src.DirectAttenuation = world.DistanceAttenuation{A: 1}

	engine := NewEngine(raytrace.NewCPUBackend(), 3)
	engine.Config.TransmissionEnabled = false
	buf := NewBuffer(1)
	for frame := 0; frame < 4; frame++ {
		engine.Propagate(scene, listener, []*world.Source{src}, 2, 3000, 0, 0, buf)
	}

	var diffracted *world.Path
	for i, p := range buf.Sources[0].Paths {
		if p.Depth() == 0 {
			t.Fatalf("direct path should be blocked, got one at distance %v", p.Distance)
		}
		points := p.ID.Description.Points
		if p.Depth() == 1 && points[len(points)-2].Tag == world.TagEdgeDiffraction {
			diffracted = &buf.Sources[0].Paths[i]
		}
	}
	if diffracted == nil {
		t.Fatal("expected an edge-diffraction path around the wall")
	}
	gain := diffracted.Attenuation.AverageGain(0, acoustic.NumBands-1)
	if gain < 0 || gain >= 1 {
		t.Errorf("diffraction gain = %v, want within [0, 1) below the shadow-boundary value", gain)
	}
	// The bend point sits on the free edge at z=0, so the path is longer
	// than the straight-line separation.
	if diffracted.Distance <= 6 {
		t.Errorf("diffracted distance = %v, want > straight-line 6", diffracted.Distance)
	}
}

// TestReverbEstimateClosedBox: a 4x4x4 box has surface area 96 and
// volume 64; the stochastic estimate should land near both.
func TestReverbEstimateClosedBox(t *testing.T) {
	mat := acoustic.NewMaterial("wall", 0.8, 0.1, 0)
	scene := boxScene(t, 4, 4, 4, mat)

	listener := world.NewListener()
	listener.Transform.Position = geom.Vec3{X: 1, Y: 2, Z: 1}
	src := world.NewSource(0, acoustic.Unity())
	src.Transform.Position = geom.Vec3{X: -1, Y: 2, Z: -1}

	engine := NewEngine(raytrace.NewCPUBackend(), 11)
	buf := NewBuffer(1)
	for frame := 0; frame < 3; frame++ {
		engine.Propagate(scene, listener, []*world.Source{src}, 4, 500, 8, 2000, buf)
	}

	rv := buf.Sources[0].Reverb
	if math.Abs(rv.SurfaceArea-96) > 1e-6 {
		t.Errorf("surface area = %v, want 96", rv.SurfaceArea)
	}
	if rv.Volume < 64*0.85 || rv.Volume > 64*1.15 {
		t.Errorf("volume estimate = %v, want within 15%% of 64", rv.Volume)
	}
	decay := rv.DecayTime60(343)
	band := acoustic.NewPartition(acoustic.DefaultSplits).BandIndex(1000)
	// Eyring with V=64, S=96, alpha=0.8 reflection.
	want := (-4 * math.Log(1e-3) * 4 / 343) * 64 / (96 * -math.Log(0.8))
	if math.Abs(decay[band]-want)/want > 0.15 {
		t.Errorf("T60 at 1kHz = %v, want within 15%% of %v", decay[band], want)
	}
}

// TestDopplerMovingSource: a source receding along the line of sight
// reports its radial speed and the matching delay growth rate.
func TestDopplerMovingSource(t *testing.T) {
	scene := emptyScene()
	listener := world.NewListener()
	listener.Transform.Position = geom.Vec3{X: 0, Y: 1.5, Z: 0}

	src := world.NewSource(0, acoustic.Unity())
	src.Transform.Position = geom.Vec3{X: 0, Y: 1.5, Z: 5}
	src.Velocity = geom.Vec3{X: 0, Y: 0, Z: 10}
	src.DirectAttenuation = world.DistanceAttenuation{A: 1}

	engine := NewEngine(raytrace.NewCPUBackend(), 1)
	buf := NewBuffer(1)
	engine.Propagate(scene, listener, []*world.Source{src}, 0, 0, 0, 0, buf)

	if len(buf.Sources[0].Paths) != 1 {
		t.Fatalf("expected one direct path, got %d", len(buf.Sources[0].Paths))
	}
	p := buf.Sources[0].Paths[0]
	if math.Abs(p.RelativeSpeed-10) > 1e-9 {
		t.Errorf("relative speed = %v, want +10", p.RelativeSpeed)
	}
	want := 10.0 / 343.0
	if math.Abs(p.DelayChangePerSecond()-want) > 1e-9 {
		t.Errorf("delay change rate = %v, want %v", p.DelayChangePerSecond(), want)
	}
}
