package meshio

import (
	"math"
	"testing"

	"github.com/san-kum/acoustid/internal/acoustic"
	"github.com/san-kum/acoustid/internal/geom"
)

func cubeMesh(t *testing.T) *geom.Mesh {
	t.Helper()
	verts := []geom.Vec3{
		{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0},
		{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: 0, Y: 1, Z: 1},
	}
	tris := [][4]int{
		{0, 1, 2, 0}, {0, 2, 3, 0},
		{4, 6, 5, 1}, {4, 7, 6, 1},
		{0, 4, 5, 0}, {0, 5, 1, 0},
	}
	materials := []acoustic.Material{
		acoustic.NewMaterial("floor", 0.8, 0.1, 0.01),
		acoustic.NewMaterial("ceiling", 0.9, 0.05, 0.01),
	}
	mesh, err := geom.NewMesh(verts, tris, materials)
	if err != nil {
		t.Fatalf("NewMesh: %v", err)
	}
	return mesh
}

func TestWriteRejectsWrongBandCenterCount(t *testing.T) {
	mesh := cubeMesh(t)
	if _, err := Write(mesh, acoustic.NewPartition(acoustic.DefaultSplits).Splits()); err == nil {
		t.Fatalf("expected error: bandCenters must have NumBands entries, got NumBands-1 splits")
	}
}

func TestWriteReadRoundTripSameBandCount(t *testing.T) {
	mesh := cubeMesh(t)
	centers := make([]float64, acoustic.NumBands)
	p := acoustic.NewPartition(acoustic.DefaultSplits)
	for i := range centers {
		centers[i] = p.BandCenter(i)
	}
	data, err := Write(mesh, centers)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := Read(data)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if len(got.Vertices) != len(mesh.Vertices) {
		t.Fatalf("vertex count = %d, want %d", len(got.Vertices), len(mesh.Vertices))
	}
	for i, v := range mesh.Vertices {
		gv := got.Vertices[i]
		if math.Abs(gv.X-v.X) > 1e-5 || math.Abs(gv.Y-v.Y) > 1e-5 || math.Abs(gv.Z-v.Z) > 1e-5 {
			t.Errorf("vertex %d = %+v, want %+v", i, gv, v)
		}
	}
	if len(got.Triangles) != len(mesh.Triangles) {
		t.Fatalf("triangle count = %d, want %d", len(got.Triangles), len(mesh.Triangles))
	}
	for i, tri := range mesh.Triangles {
		gt := got.Triangles[i]
		if gt.V != tri.V {
			t.Errorf("triangle %d vertex indices = %v, want %v", i, gt.V, tri.V)
		}
		if gt.Material != tri.Material {
			t.Errorf("triangle %d material = %d, want %d", i, gt.Material, tri.Material)
		}
		if gt.Neighbor != tri.Neighbor {
			t.Errorf("triangle %d neighbors = %v, want %v (recomputed by NewMesh, not trusted from file)", i, gt.Neighbor, tri.Neighbor)
		}
		if gt.EdgeFlag != tri.EdgeFlag {
			t.Errorf("triangle %d edge flags = %v, want %v", i, gt.EdgeFlag, tri.EdgeFlag)
		}
	}
	if len(got.Materials) != len(mesh.Materials) {
		t.Fatalf("material count = %d, want %d", len(got.Materials), len(mesh.Materials))
	}
	for i, m := range mesh.Materials {
		gm := got.Materials[i]
		for b := 0; b < acoustic.NumBands; b++ {
			if math.Abs(gm.Reflection[b]-m.Reflection[b]) > 1e-4 {
				t.Errorf("material %d band %d reflection = %v, want %v", i, b, gm.Reflection[b], m.Reflection[b])
			}
			if math.Abs(gm.Absorption[b]-m.Absorption[b]) > 1e-4 {
				t.Errorf("material %d band %d absorption = %v, want %v", i, b, gm.Absorption[b], m.Absorption[b])
			}
			if math.Abs(gm.Transmission[b]-m.Transmission[b]) > 1e-4 {
				t.Errorf("material %d band %d transmission = %v, want %v", i, b, gm.Transmission[b], m.Transmission[b])
			}
		}
	}
}

func TestReadRejectsCorruptedBandCount(t *testing.T) {
	mesh := cubeMesh(t)
	p := acoustic.NewPartition(acoustic.DefaultSplits)
	centers := make([]float64, acoustic.NumBands)
	for i := range centers {
		centers[i] = p.BandCenter(i)
	}
	data, err := Write(mesh, centers)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	// Corrupt the stored numBands field to simulate a file authored by a
	// writer with a different fixed band count, then verify Read rejects
	// it with ErrNoMesh (a real cross-numBands file would also differ in
	// block lengths; this only exercises the checksum-failure path of a
	// mismatched header, confirming Read fails closed rather than
	// building a partial Mesh).
	corrupted := append([]byte(nil), data...)
	corrupted[headerSize] ^= 0xFF
	if _, err := Read(corrupted); err != ErrNoMesh {
		t.Fatalf("expected ErrNoMesh for corrupted band count, got %v", err)
	}
}

func TestReadRejectsBadMagic(t *testing.T) {
	data := []byte("NOTSOUNDMESH0000")
	if _, err := Read(data); err != ErrNoMesh {
		t.Fatalf("expected ErrNoMesh for bad magic, got %v", err)
	}
}

func TestReadRejectsTruncatedFile(t *testing.T) {
	mesh := cubeMesh(t)
	p := acoustic.NewPartition(acoustic.DefaultSplits)
	centers := make([]float64, acoustic.NumBands)
	for i := range centers {
		centers[i] = p.BandCenter(i)
	}
	data, err := Write(mesh, centers)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := Read(data[:len(data)/2]); err != ErrNoMesh {
		t.Fatalf("expected ErrNoMesh for truncated file, got %v", err)
	}
}
