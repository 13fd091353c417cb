package mesh

import (
	"fmt"

	"github.com/terrain3d/backend/internal/heightmap"
)

// ModelSizeMM is the edge length of the printed model at scale 1.
const ModelSizeMM = 100.0

// maxReliefFraction caps the relief height relative to the model
// footprint so prints stay stable.
const maxReliefFraction = 0.3

// BuildOptions control the mesh geometry.
type BuildOptions struct {
	// ScaleXY multiplies the model footprint.
	ScaleXY float64
	// ScaleZ multiplies the relief height.
	ScaleZ float64
	// AddBase closes the surface into a watertight solid with a flat
	// bottom and four walls. Without it the mesh is the bare surface
	// and not print-safe.
	AddBase bool
	// BaseThickness is the slab height below z=0, in millimeters.
	BaseThickness float64
}

// Build converts a heightmap into a triangle mesh. Heights are
// normalized over the grid's own range, so the relief always spans
// the full z extent; a flat grid produces a flat surface at z=0.
func Build(g *heightmap.Grid, opts BuildOptions) (*Mesh, error) {
	rows, cols := g.Rows(), g.Cols()
	if rows < 2 || cols < 2 {
		return nil, fmt.Errorf("grid %dx%d too small to mesh", rows, cols)
	}

	min, max := g.Min(), g.Max()
	heightRange := max - min
	if heightRange == 0 {
		heightRange = 1.0
	}

	zMax := opts.ScaleZ * maxReliefFraction * ModelSizeMM
	xScale := ModelSizeMM * opts.ScaleXY / float64(cols)
	yScale := ModelSizeMM * opts.ScaleXY / float64(rows)

	vertexCount := rows * cols
	if opts.AddBase {
		vertexCount *= 2
	}

	m := &Mesh{Vertices: make([]Vertex, 0, vertexCount)}

	// top sheet: row 0 is the northern edge, placed at max y
	for i := 0; i < rows; i++ {
		y := float64(rows-1-i) * yScale
		for j := 0; j < cols; j++ {
			z := (g.At(i, j) - min) / heightRange * zMax
			m.Vertices = append(m.Vertices, Vertex{X: float64(j) * xScale, Y: y, Z: z})
		}
	}

	topFaces := 2 * (rows - 1) * (cols - 1)
	faceCount := topFaces
	if opts.AddBase {
		faceCount = 2*topFaces + 4*(rows-1) + 4*(cols-1)
	}
	m.Faces = make([][3]uint32, 0, faceCount)

	// top surface, facing +z
	for i := 0; i < rows-1; i++ {
		for j := 0; j < cols-1; j++ {
			v0 := uint32(i*cols + j)
			v1 := v0 + 1
			v2 := v0 + uint32(cols)
			v3 := v2 + 1
			m.Faces = append(m.Faces, [3]uint32{v0, v2, v1}, [3]uint32{v1, v2, v3})
		}
	}

	if !opts.AddBase {
		return m, nil
	}

	// bottom sheet shares the top's xy footprint at -baseThickness
	offset := uint32(rows * cols)
	for i := 0; i < rows; i++ {
		y := float64(rows-1-i) * yScale
		for j := 0; j < cols; j++ {
			m.Vertices = append(m.Vertices, Vertex{X: float64(j) * xScale, Y: y, Z: -opts.BaseThickness})
		}
	}

	// bottom surface, reversed winding to face -z
	for i := 0; i < rows-1; i++ {
		for j := 0; j < cols-1; j++ {
			v0 := offset + uint32(i*cols+j)
			v1 := v0 + 1
			v2 := v0 + uint32(cols)
			v3 := v2 + 1
			m.Faces = append(m.Faces, [3]uint32{v0, v1, v2}, [3]uint32{v1, v3, v2})
		}
	}

	// walls stitch the existing boundary vertices of both sheets, so
	// every edge ends up shared by exactly two faces
	wall := func(aTop, bTop uint32) {
		aBot := aTop + offset
		bBot := bTop + offset
		m.Faces = append(m.Faces,
			[3]uint32{aTop, bTop, bBot},
			[3]uint32{aTop, bBot, aBot},
		)
	}

	top := func(i, j int) uint32 { return uint32(i*cols + j) }

	for j := 0; j < cols-1; j++ {
		wall(top(0, j), top(0, j+1))           // north, facing +y
		wall(top(rows-1, j+1), top(rows-1, j)) // south, facing -y
	}
	for i := 0; i < rows-1; i++ {
		wall(top(i+1, 0), top(i, 0))           // west, facing -x
		wall(top(i, cols-1), top(i+1, cols-1)) // east, facing +x
	}

	return m, nil
}
