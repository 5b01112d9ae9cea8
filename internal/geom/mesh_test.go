package geom

import (
	"testing"

	"github.com/san-kum/acoustid/internal/acoustic"
)

func unitQuad() (*Mesh, error) {
	verts := []Vec3{
		{X: -1, Y: 0, Z: -1},
		{X: 1, Y: 0, Z: -1},
		{X: 1, Y: 0, Z: 1},
		{X: -1, Y: 0, Z: 1},
	}
	tris := [][4]int{
		{0, 1, 2, 0},
		{0, 2, 3, 0},
	}
	mat := acoustic.NewMaterial("floor", 0.9, 0.1, 0.01)
	return NewMesh(verts, tris, []acoustic.Material{mat})
}

func TestNewMeshLinksSharedEdgeAsNeighbors(t *testing.T) {
	m, err := unitQuad()
	if err != nil {
		t.Fatal(err)
	}
	// triangle 0 is (0,1,2) and triangle 1 is (0,2,3); they share edge
	// (0,2), which is triangle 0's edge 2 and triangle 1's edge 0.
	found := false
	for e := 0; e < 3; e++ {
		if m.Triangles[0].Neighbor[e] == 1 {
			found = true
			other := m.Triangles[1].Neighbor
			if other[0] != 0 && other[1] != 0 && other[2] != 0 {
				t.Error("neighbor link is not symmetric")
			}
		}
	}
	if !found {
		t.Fatal("expected triangle 0 and 1 to share a neighbor edge")
	}
}

func TestNewMeshBoundaryEdgesAreDiffracting(t *testing.T) {
	m, err := unitQuad()
	if err != nil {
		t.Fatal(err)
	}
	sawBoundary := false
	for _, tri := range m.Triangles {
		for e := 0; e < 3; e++ {
			if tri.Neighbor[e] == NoNeighbor {
				sawBoundary = true
				if tri.EdgeFlag[e] != Diffracting {
					t.Error("boundary edge with no neighbor must be Diffracting")
				}
			}
		}
	}
	if !sawBoundary {
		t.Fatal("expected at least one boundary edge in a two-triangle quad")
	}
}

func TestNewMeshRejectsOutOfRangeVertex(t *testing.T) {
	mat := acoustic.NewMaterial("x", 0.5, 0.5, 0.5)
	_, err := NewMesh([]Vec3{{}}, [][4]int{{0, 1, 2, 0}}, []acoustic.Material{mat})
	if err == nil {
		t.Fatal("expected error for out-of-range vertex index")
	}
}

func TestVisitTrianglesFindsRayThroughMesh(t *testing.T) {
	m, err := unitQuad()
	if err != nil {
		t.Fatal(err)
	}
	hitCount := 0
	m.VisitTriangles(Vec3{X: 0, Y: 5, Z: 0}, Vec3{X: 0, Y: -1, Z: 0}, 0, 100, func(i int) {
		hitCount++
	})
	if hitCount == 0 {
		t.Fatal("expected BVH traversal to visit at least one candidate triangle")
	}
}
