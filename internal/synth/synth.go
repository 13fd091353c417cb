// Package synth generates deterministic synthetic terrain for a
// bounding box. It is the fallback when elevation acquisition fails:
// the same box and resolution always produce bit-identical output.
package synth

import (
	"math"
	"math/rand"

	"github.com/terrain3d/backend/internal/geo"
	"github.com/terrain3d/backend/internal/heightmap"
)

// band maps a geographic predicate to a plausible elevation profile.
// The list is ordered; the first match wins.
type band struct {
	name    string
	matches func(lat, lon float64) bool
	base    float64
	span    float64
}

var elevationBands = []band{
	{"alps", func(lat, lon float64) bool { return 44.5 < lat && lat < 46.5 && 5.5 < lon && lon < 8.0 }, 1500, 2500},
	{"pyrenees", func(lat, lon float64) bool { return 42.5 < lat && lat < 43.5 && -2.0 < lon && lon < 3.0 }, 800, 2000},
	{"massif-central", func(lat, lon float64) bool { return 44.5 < lat && lat < 46.0 && 2.0 < lon && lon < 4.0 }, 600, 1000},
	{"corsica", func(lat, lon float64) bool { return 41.3 < lat && lat < 43.0 && 8.5 < lon && lon < 9.6 }, 400, 2000},
	{"vosges", func(lat, lon float64) bool { return 47.5 < lat && lat < 48.5 && 6.5 < lon && lon < 7.5 }, 400, 1000},
	{"jura", func(lat, lon float64) bool { return 46.0 < lat && lat < 47.5 && 5.5 < lon && lon < 7.0 }, 500, 1200},
	{"brittany-coast", func(lat, lon float64) bool { return 47.5 < lat && lat < 49.0 && -5.0 < lon && lon < -1.0 }, 0, 100},
	{"atlantic-coast", func(lat, lon float64) bool { return lon < -1.0 }, 0, 150},
	{"mediterranean-coast", func(lat, lon float64) bool { return lat < 44.0 && lon > 3.0 }, 50, 500},
	{"plains", func(lat, lon float64) bool { return true }, 100, 300},
}

// ElevationProfile returns the band name, base elevation, and
// elevation span used for a point.
func ElevationProfile(lat, lon float64) (name string, base, span float64) {
	for _, b := range elevationBands {
		if b.matches(lat, lon) {
			return b.name, b.base, b.span
		}
	}
	// unreachable: the default band matches everything
	last := elevationBands[len(elevationBands)-1]
	return last.name, last.base, last.span
}

// noiseField is sine-combination noise: four waves at rotated angles
// with seeded random phases and frequency jitter. Output is in
// roughly [-1, 1].
type noiseField struct {
	phases [8]float64
}

func newNoiseField(seed int64) *noiseField {
	rng := rand.New(rand.NewSource(seed))
	var n noiseField
	for i := range n.phases {
		n.phases[i] = rng.Float64() * 2 * math.Pi
	}
	return &n
}

func (n *noiseField) at(x, y float64) float64 {
	var v float64
	for i := 0; i < 4; i++ {
		angle := float64(i)*math.Pi/4 + n.phases[i]
		freq := 1 + n.phases[i+4]*0.5
		v += math.Sin(freq*(x*math.Cos(angle)+y*math.Sin(angle)) + n.phases[i])
	}
	return v / 4
}

type octave struct {
	freq float64
	amp  float64
	seed int64
}

// Four octaves: large features down to fine detail. Seeds are fixed
// so synthesis is reproducible.
var octaves = []octave{
	{1.0, 0.5, 42},
	{2.0, 0.25, 123},
	{4.0, 0.15, 456},
	{8.0, 0.1, 789},
}

const valleySeed = 999

// Generate produces a resolution x resolution heightmap for the box.
// The elevation profile is picked from the box center; the noise
// itself depends only on the resolution, so nearby boxes in the same
// band get identical relief.
func Generate(b geo.BBox, resolution int) *heightmap.Grid {
	lat, lon := b.Center()
	_, base, span := ElevationProfile(lat, lon)

	grid, err := heightmap.New(resolution, resolution)
	if err != nil {
		// resolution is validated upstream; a bad value here is a bug
		panic(err)
	}
	values := grid.Values()

	// sample coordinates on [0, 4] in both axes
	step := 4.0 / float64(resolution-1)

	for _, oct := range octaves {
		n := newNoiseField(oct.seed)
		idx := 0
		for i := 0; i < resolution; i++ {
			y := float64(i) * step * oct.freq
			for j := 0; j < resolution; j++ {
				x := float64(j) * step * oct.freq
				values[idx] += oct.amp * n.at(x, y)
				idx++
			}
		}
	}

	// normalize to [0, 1], then scale to the band's elevation profile
	min, max := values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	rangeV := max - min
	if rangeV == 0 {
		rangeV = 1
	}
	for i, v := range values {
		values[i] = base + (v-min)/rangeV*span
	}

	// carve valleys where low-frequency noise dips
	valley := newNoiseField(valleySeed)
	idx := 0
	for i := 0; i < resolution; i++ {
		y := float64(i) * step * 0.5
		for j := 0; j < resolution; j++ {
			x := float64(j) * step * 0.5
			if valley.at(x, y) < -0.3 {
				values[idx] *= 0.7
			}
			idx++
		}
	}

	return grid
}
