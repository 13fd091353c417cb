package elevation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/terrain3d/backend/internal/geo"
	"github.com/terrain3d/backend/internal/heightmap"
)

const (
	// optimalFetchResolution caps what we pull from the provider; the
	// resampler upscales to the target afterwards.
	optimalFetchResolution = 64
	minFetchResolution     = 32

	// nativeSampleSpacing is the SRTM 1-arcsecond grid spacing in
	// degrees.
	nativeSampleSpacing = 0.00028

	// noDataThreshold marks provider no-data sentinels. Anything below
	// it is treated as missing; real land below -1000 m does not exist.
	noDataThreshold = -1000.0
)

// ErrNoData is returned when the provider answers but every cell is a
// no-data sentinel.
var ErrNoData = errors.New("no valid elevation data in response")

// FetchResolution picks the grid edge length to request for a box:
// the target, capped at the optimum, and never more than the data's
// native density supports (floored at the minimum).
func FetchResolution(b geo.BBox, target int) int {
	native := int(b.MaxSpan() / nativeSampleSpacing)
	if native < minFetchResolution {
		native = minFetchResolution
	}

	res := target
	if res > optimalFetchResolution {
		res = optimalFetchResolution
	}
	if res > native {
		res = native
	}
	return res
}

// Acquirer turns a bounding box into an elevation grid via the
// batched provider client. It never substitutes synthetic data; on
// failure the caller decides what to do.
type Acquirer struct {
	client *Client
	logger zerolog.Logger
}

// NewAcquirer creates an acquirer around the given client.
func NewAcquirer(client *Client, log zerolog.Logger) *Acquirer {
	return &Acquirer{client: client, logger: log}
}

// Acquire fetches a fetch-resolution grid covering the box. Row 0 is
// the northern edge. No-data cells are replaced with the mean of the
// valid cells.
func (a *Acquirer) Acquire(ctx context.Context, b geo.BBox, target int) (*heightmap.Grid, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	res := FetchResolution(b, target)

	points := make([]Location, 0, res*res)
	latStep := (b.LatMax - b.LatMin) / float64(res-1)
	lonStep := (b.LonMax - b.LonMin) / float64(res-1)
	for i := 0; i < res; i++ {
		lat := b.LatMax - float64(i)*latStep
		for j := 0; j < res; j++ {
			points = append(points, Location{
				Latitude:  lat,
				Longitude: b.LonMin + float64(j)*lonStep,
			})
		}
	}

	start := time.Now()
	elevations, err := a.client.Lookup(ctx, points)
	if err != nil {
		return nil, fmt.Errorf("acquiring %dx%d grid: %w", res, res, err)
	}

	if err := fillNoData(elevations); err != nil {
		return nil, err
	}

	grid, err := heightmap.FromValues(res, res, elevations)
	if err != nil {
		return nil, err
	}

	a.logger.Info().
		Int("resolution", res).
		Dur("duration", time.Since(start)).
		Float64("min", grid.Min()).
		Float64("max", grid.Max()).
		Msg("Acquired elevation grid")

	return grid, nil
}

// fillNoData replaces sentinel cells with the mean of valid cells.
func fillNoData(values []float64) error {
	var sum float64
	var valid int
	for _, v := range values {
		if v >= noDataThreshold {
			sum += v
			valid++
		}
	}
	if valid == 0 {
		return ErrNoData
	}
	if valid == len(values) {
		return nil
	}

	mean := sum / float64(valid)
	for i, v := range values {
		if v < noDataThreshold {
			values[i] = mean
		}
	}
	return nil
}
