// Package mesh builds printable triangle meshes from heightmaps.
package mesh

import "fmt"

// Vertex is a point in model space, in millimeters.
type Vertex struct {
	X, Y, Z float64
}

// Mesh is an indexed triangle mesh. Faces wind counter-clockwise
// seen from outside the solid.
type Mesh struct {
	Vertices []Vertex
	Faces    [][3]uint32
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int { return len(m.Vertices) }

// TriangleCount returns the number of faces.
func (m *Mesh) TriangleCount() int { return len(m.Faces) }

// Validate checks that every face references existing vertices.
func (m *Mesh) Validate() error {
	n := uint32(len(m.Vertices))
	for fi, f := range m.Faces {
		for _, v := range f {
			if v >= n {
				return fmt.Errorf("face %d references vertex %d of %d", fi, v, n)
			}
		}
	}
	return nil
}

// CheckClosedManifold verifies the mesh is a closed 2-manifold: every
// undirected edge is shared by exactly two faces with opposite
// orientation.
func (m *Mesh) CheckClosedManifold() error {
	type edge struct{ a, b uint32 }
	directed := make(map[edge]int, len(m.Faces)*3)

	for _, f := range m.Faces {
		for k := 0; k < 3; k++ {
			directed[edge{f[k], f[(k+1)%3]}]++
		}
	}

	for e, n := range directed {
		if n != 1 {
			return fmt.Errorf("edge %d-%d used %d times in the same direction", e.a, e.b, n)
		}
		if directed[edge{e.b, e.a}] != 1 {
			return fmt.Errorf("edge %d-%d has no opposing face", e.a, e.b)
		}
	}
	return nil
}
