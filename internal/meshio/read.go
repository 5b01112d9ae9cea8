package meshio

import (
	"encoding/binary"

	"github.com/san-kum/acoustid/internal/acoustic"
	"github.com/san-kum/acoustid/internal/geom"
)

// Read parses the SOUNDMESH binary format and builds a geom.Mesh. If the
// file's band count differs from acoustic.NumBands, each material's
// responses are resampled onto the fixed grid by piecewise-linear
// interpolation on the band-center axis.
//
// Any structural failure (short read, bad magic/version, out-of-range
// index) returns ErrNoMesh with no partial Mesh. Neighbor links and
// edge-diffraction flags stored in the file are read but not trusted
// directly: geom.NewMesh recomputes them from triangle topology and
// plane geometry, so neighbor symmetry holds even against a malformed
// or hand-edited file.
func Read(data []byte) (*geom.Mesh, error) {
	r := &reader{data: data}
	hdr, ok := r.header()
	if !ok {
		return nil, ErrNoMesh
	}

	payload := data[headerSize:]
	sum := uint32(0)
	for _, b := range payload {
		sum += uint32(b)
	}
	if sum != hdr.Checksum {
		return nil, ErrNoMesh
	}

	materials, ok := r.materialBlock()
	if !ok {
		return nil, ErrNoMesh
	}
	verts, ok := r.vertexBlock()
	if !ok {
		return nil, ErrNoMesh
	}
	rawTris, ok := r.triangleBlock()
	if !ok {
		return nil, ErrNoMesh
	}
	if !r.boundingSphere() {
		return nil, ErrNoMesh
	}
	if r.err {
		return nil, ErrNoMesh
	}

	mesh, err := geom.NewMesh(verts, rawTris, materials)
	if err != nil {
		return nil, ErrNoMesh
	}
	return mesh, nil
}

type reader struct {
	data  []byte
	pos   int
	err   bool
	order binary.ByteOrder
}

func (r *reader) need(n int) bool {
	if r.err || r.pos+n > len(r.data) {
		r.err = true
		return false
	}
	return true
}

func (r *reader) u32() uint32 {
	if !r.need(4) {
		return 0
	}
	v := r.order.Uint32(r.data[r.pos:])
	r.pos += 4
	return v
}

func (r *reader) u8() uint8 {
	if !r.need(1) {
		return 0
	}
	v := r.data[r.pos]
	r.pos++
	return v
}

func (r *reader) f32() float64 {
	return float32from(r.u32())
}

func (r *reader) header() (Header, bool) {
	if len(r.data) < headerSize {
		return Header{}, false
	}
	if string(r.data[0:9]) != magic {
		return Header{}, false
	}
	version := r.data[9]
	endian := r.data[10]
	r.order = binary.LittleEndian
	if endian == endianBig {
		r.order = binary.BigEndian
	}
	checksum := r.order.Uint32(r.data[12:16])
	r.pos = headerSize
	if version != formatVersion {
		return Header{}, false
	}
	return Header{Version: version, BigEndian: endian == endianBig, Checksum: checksum}, true
}

func (r *reader) materialBlock() ([]acoustic.Material, bool) {
	numBands := int(r.u32())
	if numBands <= 0 || r.err {
		return nil, false
	}
	centers := make([]float64, numBands)
	for i := range centers {
		centers[i] = r.f32()
	}
	numMaterials := int(r.u32())
	if r.err || numMaterials < 0 {
		return nil, false
	}

	var partition *acoustic.Partition
	if numBands != acoustic.NumBands {
		partition = acoustic.NewPartition(centers)
	}

	materials := make([]acoustic.Material, numMaterials)
	for i := range materials {
		reflection := make([]float64, numBands)
		for b := range reflection {
			reflection[b] = r.f32()
		}
		absorption := make([]float64, numBands)
		for b := range absorption {
			absorption[b] = r.f32()
		}
		transmission := make([]float64, numBands)
		for b := range transmission {
			transmission[b] = r.f32()
		}
		if r.err {
			return nil, false
		}
		if numBands == acoustic.NumBands {
			var refl, abso, trans acoustic.Response
			copy(refl[:], reflection)
			copy(abso[:], absorption)
			copy(trans[:], transmission)
			materials[i] = acoustic.Material{Reflection: refl, Absorption: abso, Transmission: trans}
		} else {
			materials[i] = acoustic.Material{
				Reflection:   partition.ResampleFromCenters(centers, reflection),
				Absorption:   partition.ResampleFromCenters(centers, absorption),
				Transmission: partition.ResampleFromCenters(centers, transmission),
			}
		}
	}
	return materials, true
}

func (r *reader) vertexBlock() ([]geom.Vec3, bool) {
	n := int(r.u32())
	if r.err || n < 0 {
		return nil, false
	}
	verts := make([]geom.Vec3, n)
	for i := range verts {
		verts[i] = geom.Vec3{X: r.f32(), Y: r.f32(), Z: r.f32()}
	}
	return verts, !r.err
}

func (r *reader) triangleBlock() ([][4]int, bool) {
	n := int(r.u32())
	if r.err || n < 0 {
		return nil, false
	}
	tris := make([][4]int, n)
	for i := range tris {
		v0, v1, v2 := int(r.u32()), int(r.u32()), int(r.u32())
		_, _, _ = r.u32(), r.u32(), r.u32() // neighbor indices, recomputed by geom.NewMesh
		_, _, _ = r.u8(), r.u8(), r.u8()    // edge-diffraction flags, recomputed by geom.NewMesh
		r.u8()                              // padding
		mat := int(r.u32())
		tris[i] = [4]int{v0, v1, v2, mat}
	}
	return tris, !r.err
}

func (r *reader) boundingSphere() bool {
	r.f32()
	r.f32()
	r.f32()
	r.f32()
	return !r.err
}
