// Package stl serializes meshes as binary STL and estimates export
// sizes without building geometry.
package stl

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/terrain3d/backend/internal/mesh"
)

const (
	headerSize   = 80
	triangleSize = 50
)

var headerText = "Terrain3D binary STL"

// Encode serializes the mesh as binary STL: an 80-byte header, a
// little-endian uint32 triangle count, then 50 bytes per triangle
// (zero normal, three float32 vertices, zero attribute count).
// Slicers compute normals from winding, so none are emitted.
func Encode(m *mesh.Mesh) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("refusing to serialize invalid mesh: %w", err)
	}

	buf := make([]byte, headerSize+4+m.TriangleCount()*triangleSize)
	copy(buf, headerText)
	binary.LittleEndian.PutUint32(buf[headerSize:], uint32(m.TriangleCount()))

	off := headerSize + 4
	for _, f := range m.Faces {
		off += 12 // normal stays zero
		for _, vi := range f {
			v := m.Vertices[vi]
			binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(float32(v.X)))
			binary.LittleEndian.PutUint32(buf[off+4:], math.Float32bits(float32(v.Y)))
			binary.LittleEndian.PutUint32(buf[off+8:], math.Float32bits(float32(v.Z)))
			off += 12
		}
		off += 2 // attribute byte count stays zero
	}

	return buf, nil
}

// Decode parses binary STL into a triangle soup: three vertices per
// face, no sharing. Used for round-trip verification.
func Decode(data []byte) (*mesh.Mesh, error) {
	if len(data) < headerSize+4 {
		return nil, fmt.Errorf("stl data truncated: %d bytes", len(data))
	}

	count := binary.LittleEndian.Uint32(data[headerSize:])
	want := headerSize + 4 + int(count)*triangleSize
	if len(data) != want {
		return nil, fmt.Errorf("stl data is %d bytes, expected %d for %d triangles", len(data), want, count)
	}

	m := &mesh.Mesh{
		Vertices: make([]mesh.Vertex, 0, count*3),
		Faces:    make([][3]uint32, 0, count),
	}

	off := headerSize + 4
	for t := uint32(0); t < count; t++ {
		off += 12
		var face [3]uint32
		for k := 0; k < 3; k++ {
			face[k] = uint32(len(m.Vertices))
			m.Vertices = append(m.Vertices, mesh.Vertex{
				X: float64(math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))),
				Y: float64(math.Float32frombits(binary.LittleEndian.Uint32(data[off+4:]))),
				Z: float64(math.Float32frombits(binary.LittleEndian.Uint32(data[off+8:]))),
			})
			off += 12
		}
		m.Faces = append(m.Faces, face)
		off += 2
	}

	return m, nil
}
