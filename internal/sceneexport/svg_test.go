package sceneexport

import (
	"strings"
	"testing"

	"github.com/san-kum/acoustid/internal/acoustic"
	"github.com/san-kum/acoustid/internal/geom"
	"github.com/san-kum/acoustid/internal/propagation"
	"github.com/san-kum/acoustid/internal/world"
)

func TestToSVGContainsGeometryAndMarkers(t *testing.T) {
	verts := []geom.Vec3{{X: -1, Y: 0, Z: -1}, {X: 1, Y: 0, Z: -1}, {X: 0, Y: 0, Z: 1}}
	mesh, err := geom.NewMesh(verts, [][4]int{{0, 1, 2, 0}}, []acoustic.Material{acoustic.NewMaterial("m", 0.5, 0.5, 0)})
	if err != nil {
		t.Fatal(err)
	}
	scene := geom.NewScene()
	scene.AddObject(geom.NewObject(0, mesh))
	scene.Rebuild()

	src := world.NewSource(0, acoustic.Unity())
	src.Transform.Position = geom.Vec3{X: 2, Y: 0, Z: 2}
	listener := world.NewListener()

	buf := propagation.NewBuffer(1)
	buf.Sources[0].Paths = []world.Path{{
		Direction:    [3]float64{0, 0, 1},
		Distance:     3,
		SpeedOfSound: 343,
		ID:           world.NewID(world.NewDescription([]world.PathPoint{{Tag: world.TagListener}, {Tag: world.TagSource}})),
	}}

	svg := ToSVG(scene, []*world.Source{src}, listener, buf, 400, 400)
	for _, want := range []string{"<svg", "</svg>", "<path", "<circle", "<line"} {
		if !strings.Contains(svg, want) {
			t.Errorf("SVG missing %q", want)
		}
	}
}
