// Package meshio implements the versioned SOUNDMESH binary mesh format:
// a file header, a material block, a vertex block, a triangle block, and
// a bounding sphere. Built on encoding/binary; the format is a
// fixed-layout blob rather than a record store.
package meshio

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/san-kum/acoustid/internal/acoustic"
	"github.com/san-kum/acoustid/internal/geom"
)

const (
	magic         = "SOUNDMESH"
	formatVersion = 1

	endianLittle = 0
	endianBig    = 1

	headerSize = 16
)

// Header is the 16-byte file header.
type Header struct {
	Version  uint8
	BigEndian bool
	Checksum uint32
}

// ErrNoMesh is the sentinel returned by Read on any I/O or format
// failure; callers get no partially constructed mesh.
var ErrNoMesh = fmt.Errorf("meshio: no mesh")

// Write serializes mesh into the SOUNDMESH binary format. bandCenters
// must have the same length as mesh.Materials' band count
// (acoustic.NumBands in this implementation, since Mesh materials are
// always built on the fixed grid); it is the band-center axis a future
// reader with a different NumBands resamples against.
func Write(mesh *geom.Mesh, bandCenters []float64) ([]byte, error) {
	if mesh == nil {
		return nil, fmt.Errorf("meshio: nil mesh")
	}
	if len(bandCenters) != acoustic.NumBands {
		return nil, fmt.Errorf("meshio: bandCenters must have %d entries, got %d", acoustic.NumBands, len(bandCenters))
	}

	var body bytes.Buffer
	writeMaterialBlock(&body, mesh.Materials, bandCenters)
	writeVertexBlock(&body, mesh.Vertices)
	writeTriangleBlock(&body, mesh.Triangles)
	writeBoundingSphere(&body, mesh.Bounds)

	payload := body.Bytes()
	checksum := uint32(0)
	for _, b := range payload {
		checksum += uint32(b)
	}

	var out bytes.Buffer
	out.WriteString(magic)
	out.WriteByte(formatVersion)
	out.WriteByte(endianLittle)
	out.WriteByte(0)
	var cs [4]byte
	binary.LittleEndian.PutUint32(cs[:], checksum)
	out.Write(cs[:])
	out.Write(payload)
	return out.Bytes(), nil
}

func writeMaterialBlock(w *bytes.Buffer, materials []acoustic.Material, bandCenters []float64) {
	writeU32(w, uint32(len(bandCenters)))
	for _, f := range bandCenters {
		writeF32(w, f)
	}
	writeU32(w, uint32(len(materials)))
	for _, m := range materials {
		for b := 0; b < acoustic.NumBands; b++ {
			writeF32(w, m.Reflection[b])
		}
		for b := 0; b < acoustic.NumBands; b++ {
			writeF32(w, m.Absorption[b])
		}
		for b := 0; b < acoustic.NumBands; b++ {
			writeF32(w, m.Transmission[b])
		}
	}
}

func writeVertexBlock(w *bytes.Buffer, verts []geom.Vec3) {
	writeU32(w, uint32(len(verts)))
	for _, v := range verts {
		writeF32(w, v.X)
		writeF32(w, v.Y)
		writeF32(w, v.Z)
	}
}

func writeTriangleBlock(w *bytes.Buffer, tris []geom.Triangle) {
	writeU32(w, uint32(len(tris)))
	for i, t := range tris {
		for _, v := range t.V {
			writeU32(w, uint32(v))
		}
		for _, n := range t.Neighbor {
			if n == geom.NoNeighbor {
				writeU32(w, uint32(i))
			} else {
				writeU32(w, uint32(n))
			}
		}
		for _, f := range t.EdgeFlag {
			if f == geom.Diffracting {
				w.WriteByte(1)
			} else {
				w.WriteByte(0)
			}
		}
		w.WriteByte(0) // padding
		writeU32(w, uint32(t.Material))
	}
}

func writeBoundingSphere(w *bytes.Buffer, b geom.BoundingSphere) {
	writeF32(w, b.Center.X)
	writeF32(w, b.Center.Y)
	writeF32(w, b.Center.Z)
	writeF32(w, b.Radius)
}

func writeU32(w *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.Write(b[:])
}

func writeF32(w *bytes.Buffer, v float64) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], float32bits(v))
	w.Write(b[:])
}
