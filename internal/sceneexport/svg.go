// Package sceneexport renders a scene and one frame's propagation paths
// to SVG: a top-down XZ-plane wireframe of every object's triangles, a
// marker per source and for the listener, and a whisker per path showing
// its arrival direction.
package sceneexport

import (
	"fmt"
	"strings"

	"github.com/san-kum/acoustid/internal/geom"
	"github.com/san-kum/acoustid/internal/propagation"
	"github.com/san-kum/acoustid/internal/world"
)

type projector struct {
	minX, minZ, spanX, spanZ float64
	width, height            float64
}

func (p projector) point(v geom.Vec3) (float64, float64) {
	x := (v.X - p.minX) / p.spanX * p.width
	y := p.height - (v.Z-p.minZ)/p.spanZ*p.height
	return x, y
}

// ToSVG renders a width x height pixel top-down view of the scene plus
// buf's paths. Bounds are taken from the objects' world AABBs expanded
// to include every source and the listener, with a 10% margin.
func ToSVG(scene *geom.Scene, sources []*world.Source, listener *world.Listener, buf *propagation.Buffer, width, height int) string {
	bounds := geom.EmptyAABB()
	for _, obj := range scene.Objects {
		bounds = bounds.Union(obj.WorldAABB())
	}
	for _, src := range sources {
		bounds = bounds.ExpandPoint(src.Position())
	}
	bounds = bounds.ExpandPoint(listener.Position())

	spanX := bounds.Max.X - bounds.Min.X
	spanZ := bounds.Max.Z - bounds.Min.Z
	if spanX <= 0 {
		spanX = 1
	}
	if spanZ <= 0 {
		spanZ = 1
	}
	proj := projector{
		minX:  bounds.Min.X - spanX*0.1,
		minZ:  bounds.Min.Z - spanZ*0.1,
		spanX: spanX * 1.2,
		spanZ: spanZ * 1.2,
		width: float64(width), height: float64(height),
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	sb.WriteString(`<g stroke="#444466" stroke-width="1" fill="none">` + "\n")
	for _, obj := range scene.Objects {
		for i := range obj.Mesh.Triangles {
			wt := obj.WorldTriangle(i)
			ax, ay := proj.point(wt.A)
			bx, by := proj.point(wt.B)
			cx, cy := proj.point(wt.C)
			sb.WriteString(fmt.Sprintf(`<path d="M%.1f,%.1f L%.1f,%.1f L%.1f,%.1f Z"/>`+"\n", ax, ay, bx, by, cx, cy))
		}
	}
	sb.WriteString("</g>\n")

	if buf != nil {
		lp := listener.Position()
		orient := listener.Transform.Orientation
		sb.WriteString(`<g stroke-width="1">` + "\n")
		for _, sb2 := range buf.Sources {
			for _, p := range sb2.Paths {
				dir := orient.LocalToWorld(geom.Vec3{X: p.Direction[0], Y: p.Direction[1], Z: p.Direction[2]})
				whisker := 0.2 * p.Distance
				end := lp.Add(dir.Scale(whisker))
				x0, y0 := proj.point(lp)
				x1, y1 := proj.point(end)
				sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s"/>`+"\n",
					x0, y0, x1, y1, pathColor(p)))
			}
		}
		sb.WriteString("</g>\n")
	}

	sb.WriteString(`<g>` + "\n")
	lx, ly := proj.point(listener.Position())
	sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="4" fill="#00ccff"/>`+"\n", lx, ly))
	for _, src := range sources {
		sx, sy := proj.point(src.Position())
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="4" fill="#ff8800"/>`+"\n", sx, sy))
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// pathColor distinguishes path kinds: green for direct/transmitted
// (depth 0), white for pure reflections, magenta when the path ends in
// an edge diffraction.
func pathColor(p world.Path) string {
	depth := p.ID.Description.Depth()
	if depth == 0 {
		return "#00ff88"
	}
	for _, pt := range p.ID.Description.Points {
		if pt.Tag == world.TagEdgeDiffraction {
			return "#ff00ff"
		}
	}
	return "#cccccc"
}
