package resample

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terrain3d/backend/internal/heightmap"
)

func constantGrid(t *testing.T, n int, v float64) *heightmap.Grid {
	t.Helper()
	data := make([]float64, n*n)
	for i := range data {
		data[i] = v
	}
	g, err := heightmap.FromValues(n, n, data)
	require.NoError(t, err)
	return g
}

func rampGrid(t *testing.T, n int) *heightmap.Grid {
	t.Helper()
	g, err := heightmap.New(n, n)
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			g.Set(i, j, float64(i+j))
		}
	}
	return g
}

func TestResample_UpscaleDimensions(t *testing.T) {
	g := rampGrid(t, 16)
	out := Resample(g, 64)
	assert.Equal(t, 64, out.Rows())
	assert.Equal(t, 64, out.Cols())
}

func TestResample_DownscaleDimensions(t *testing.T) {
	g := rampGrid(t, 64)
	out := Resample(g, 32)
	assert.Equal(t, 32, out.Rows())
	assert.Equal(t, 32, out.Cols())
}

func TestResample_EqualResolutionIsLightPass(t *testing.T) {
	g := rampGrid(t, 32)
	out := Resample(g, 32)
	require.Equal(t, 32, out.Rows())

	// a linear ramp is invariant under Gaussian smoothing away from
	// the borders
	assert.InDelta(t, g.At(16, 16), out.At(16, 16), 1e-9)
}

func TestResample_ConstantStaysConstant(t *testing.T) {
	g := constantGrid(t, 16, 250.0)
	out := Resample(g, 64)
	for _, v := range out.Values() {
		assert.InDelta(t, 250.0, v, 1e-9)
	}
}

func TestResample_PreservesValueRangeApproximately(t *testing.T) {
	g := rampGrid(t, 16)
	out := Resample(g, 64)
	assert.InDelta(t, g.Min(), out.Min(), 2.5)
	assert.InDelta(t, g.Max(), out.Max(), 2.5)
}

func TestSmooth_ReducesVariance(t *testing.T) {
	g, err := heightmap.New(32, 32)
	require.NoError(t, err)
	for i := 0; i < 32; i++ {
		for j := 0; j < 32; j++ {
			if (i+j)%2 == 0 {
				g.Set(i, j, 100)
			}
		}
	}

	out := Smooth(g, 1.0)
	spreadBefore := g.Max() - g.Min()
	spreadAfter := out.Max() - out.Min()
	assert.Less(t, spreadAfter, spreadBefore)

	// smoothing must roughly preserve the mean
	assert.InDelta(t, g.Mean(), out.Mean(), 1.0)
}

func TestSmooth_DoesNotMutateInput(t *testing.T) {
	g := rampGrid(t, 8)
	before := g.Clone()
	_ = Smooth(g, 1.0)
	assert.Equal(t, before.Values(), g.Values())
}

func TestCatmullRom_InterpolatesEndpoints(t *testing.T) {
	assert.Equal(t, 5.0, catmullRom(1, 5, 9, 13, 0))
	assert.Equal(t, 9.0, catmullRom(1, 5, 9, 13, 1))
	// uniform spacing: halfway through a linear segment is linear
	assert.InDelta(t, 7.0, catmullRom(1, 5, 9, 13, 0.5), 1e-12)
}

func TestBicubic_ReproducesSourceSamples(t *testing.T) {
	g := rampGrid(t, 9)
	// 9 -> 17 puts every source sample on an output sample
	out := bicubic(g, 17, 17)
	for i := 0; i < 9; i++ {
		for j := 0; j < 9; j++ {
			assert.InDelta(t, g.At(i, j), out.At(2*i, 2*j), 1e-9, "at %d,%d", i, j)
		}
	}
}
