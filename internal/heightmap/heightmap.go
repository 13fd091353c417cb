package heightmap

import (
	"fmt"
	"math"
)

// Grid is a row-major elevation grid. Row 0 is the northern edge,
// column 0 the western edge. The backing slice is contiguous and
// never jagged.
type Grid struct {
	rows int
	cols int
	data []float64
}

// New creates a zero-filled grid.
func New(rows, cols int) (*Grid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("invalid grid dimensions %dx%d", rows, cols)
	}
	return &Grid{
		rows: rows,
		cols: cols,
		data: make([]float64, rows*cols),
	}, nil
}

// FromValues wraps an existing row-major slice. The slice is owned by
// the grid after this call.
func FromValues(rows, cols int, data []float64) (*Grid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("invalid grid dimensions %dx%d", rows, cols)
	}
	if len(data) != rows*cols {
		return nil, fmt.Errorf("data length %d does not match %dx%d grid", len(data), rows, cols)
	}
	return &Grid{rows: rows, cols: cols, data: data}, nil
}

// Rows returns the number of rows.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of columns.
func (g *Grid) Cols() int { return g.cols }

// At returns the value at row i, column j.
func (g *Grid) At(i, j int) float64 { return g.data[i*g.cols+j] }

// Set stores a value at row i, column j.
func (g *Grid) Set(i, j int, v float64) { g.data[i*g.cols+j] = v }

// Values returns the backing row-major slice. Callers must not
// resize it.
func (g *Grid) Values() []float64 { return g.data }

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	data := make([]float64, len(g.data))
	copy(data, g.data)
	return &Grid{rows: g.rows, cols: g.cols, data: data}
}

// Matrix returns the grid as nested rows for JSON responses.
func (g *Grid) Matrix() [][]float64 {
	out := make([][]float64, g.rows)
	for i := 0; i < g.rows; i++ {
		row := make([]float64, g.cols)
		copy(row, g.data[i*g.cols:(i+1)*g.cols])
		out[i] = row
	}
	return out
}

// Min returns the smallest cell value.
func (g *Grid) Min() float64 {
	min := math.Inf(1)
	for _, v := range g.data {
		if v < min {
			min = v
		}
	}
	return min
}

// Max returns the largest cell value.
func (g *Grid) Max() float64 {
	max := math.Inf(-1)
	for _, v := range g.data {
		if v > max {
			max = v
		}
	}
	return max
}

// Mean returns the average cell value.
func (g *Grid) Mean() float64 {
	var sum float64
	for _, v := range g.data {
		sum += v
	}
	return sum / float64(len(g.data))
}

// Exaggerate scales relief around the grid minimum: each cell becomes
// min + (h-min)*factor. A factor of 1 leaves the grid unchanged.
func (g *Grid) Exaggerate(factor float64) {
	if factor == 1 {
		return
	}
	min := g.Min()
	for i, v := range g.data {
		g.data[i] = min + (v-min)*factor
	}
}
