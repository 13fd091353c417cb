// Package resample rescales heightmaps between the acquisition
// resolution and the requested model resolution.
package resample

import (
	"math"

	"github.com/terrain3d/backend/internal/heightmap"
)

// Smoothing strengths, found empirically: a strong blur before and
// after the bicubic fit hides the coarse acquisition grid, a light
// touch-up is enough when no rescale happens.
const (
	fitSigma   = 1.0
	touchSigma = 0.6
)

// Resample returns a target x target grid. Equal resolutions get one
// light smoothing pass; otherwise the source is pre-blurred, fitted
// with an interpolating bicubic surface, and post-blurred.
func Resample(g *heightmap.Grid, target int) *heightmap.Grid {
	if g.Rows() == target && g.Cols() == target {
		return Smooth(g, touchSigma)
	}

	pre := Smooth(g, fitSigma)
	up := bicubic(pre, target, target)
	return Smooth(up, fitSigma)
}

// Smooth applies a separable Gaussian blur and returns a new grid.
// Borders renormalize against the truncated kernel instead of
// extending the edge.
func Smooth(g *heightmap.Grid, sigma float64) *heightmap.Grid {
	kernel := gaussKernel(sigma)
	radius := len(kernel) / 2
	rows, cols := g.Rows(), g.Cols()

	horizontal, _ := heightmap.New(rows, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			var sum, weight float64
			for k := -radius; k <= radius; k++ {
				jj := j + k
				if jj < 0 || jj >= cols {
					continue
				}
				w := kernel[k+radius]
				sum += w * g.At(i, jj)
				weight += w
			}
			horizontal.Set(i, j, sum/weight)
		}
	}

	out, _ := heightmap.New(rows, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			var sum, weight float64
			for k := -radius; k <= radius; k++ {
				ii := i + k
				if ii < 0 || ii >= rows {
					continue
				}
				w := kernel[k+radius]
				sum += w * horizontal.At(ii, j)
				weight += w
			}
			out.Set(i, j, sum/weight)
		}
	}

	return out
}

func gaussKernel(sigma float64) []float64 {
	radius := int(math.Ceil(3 * sigma))
	if radius < 1 {
		radius = 1
	}
	kernel := make([]float64, 2*radius+1)
	var total float64
	for k := -radius; k <= radius; k++ {
		w := math.Exp(-float64(k*k) / (2 * sigma * sigma))
		kernel[k+radius] = w
		total += w
	}
	for i := range kernel {
		kernel[i] /= total
	}
	return kernel
}

// bicubic evaluates a Catmull-Rom surface through the source samples
// on the unit square. The surface interpolates: evaluating at a
// source sample position reproduces its value exactly.
func bicubic(g *heightmap.Grid, rows, cols int) *heightmap.Grid {
	srcRows, srcCols := g.Rows(), g.Cols()
	out, _ := heightmap.New(rows, cols)

	for i := 0; i < rows; i++ {
		// map [0, rows-1] onto [0, srcRows-1]
		sy := float64(i) / float64(rows-1) * float64(srcRows-1)
		iy := int(math.Floor(sy))
		if iy > srcRows-2 {
			iy = srcRows - 2
		}
		ty := sy - float64(iy)

		for j := 0; j < cols; j++ {
			sx := float64(j) / float64(cols-1) * float64(srcCols-1)
			ix := int(math.Floor(sx))
			if ix > srcCols-2 {
				ix = srcCols - 2
			}
			tx := sx - float64(ix)

			var col [4]float64
			for m := -1; m <= 2; m++ {
				row := clampIndex(iy+m, srcRows)
				col[m+1] = catmullRom(
					g.At(row, clampIndex(ix-1, srcCols)),
					g.At(row, clampIndex(ix, srcCols)),
					g.At(row, clampIndex(ix+1, srcCols)),
					g.At(row, clampIndex(ix+2, srcCols)),
					tx,
				)
			}
			out.Set(i, j, catmullRom(col[0], col[1], col[2], col[3], ty))
		}
	}

	return out
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// catmullRom interpolates between p1 and p2 at parameter t.
func catmullRom(p0, p1, p2, p3, t float64) float64 {
	return p1 + 0.5*t*(p2-p0+t*(2*p0-5*p1+4*p2-p3+t*(3*(p1-p2)+p3-p0)))
}
