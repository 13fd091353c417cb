// Package pipeline drives a terrain generation end to end: acquire or
// synthesize a heightmap, resample it to the requested resolution,
// apply height exaggeration, and cache the result for export.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"gorm.io/datatypes"

	"github.com/terrain3d/backend/internal/cache"
	"github.com/terrain3d/backend/internal/database"
	"github.com/terrain3d/backend/internal/geo"
	"github.com/terrain3d/backend/internal/heightmap"
	"github.com/terrain3d/backend/internal/influx"
	"github.com/terrain3d/backend/internal/mesh"
	"github.com/terrain3d/backend/internal/model"
	"github.com/terrain3d/backend/internal/resample"
	"github.com/terrain3d/backend/internal/stl"
	"github.com/terrain3d/backend/internal/synth"
)

// Data source labels recorded per generation.
const (
	SourceOpenElevation = "open-elevation"
	SourceSynthetic     = "synthetic"
)

// Parameter bounds, checked before any computation starts.
const (
	MinResolution = 64
	MaxResolution = 512

	DefaultResolution   = 256
	DefaultExaggeration = 1.5

	minExaggeration = 0.5
	maxExaggeration = 5.0

	minScaleXY = 0.1
	maxScaleXY = 10.0
	minScaleZ  = 0.5
	maxScaleZ  = 5.0

	minBaseThickness = 1.0
	maxBaseThickness = 20.0
)

var (
	// ErrInvalidRequest marks parameter validation failures, distinct
	// from generation failures.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrRegionNotFound is returned for an unknown region id.
	ErrRegionNotFound = errors.New("region not found")

	// ErrTerrainNotFound is returned when an export references an id
	// that is no longer cached.
	ErrTerrainNotFound = errors.New("terrain not found")
)

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}

// Source produces a real elevation grid or fails, in which case the
// pipeline synthesizes one. It never substitutes on its own.
type Source interface {
	Acquire(ctx context.Context, b geo.BBox, target int) (*heightmap.Grid, error)
}

// Dependencies are the injected collaborators of the Service. DB and
// Influx may be nil; the pipeline then skips history and metrics.
type Dependencies struct {
	Source Source
	Cache  *cache.TerrainCache
	DB     *database.Manager
	Influx *influx.Manager
	Logger zerolog.Logger
}

// Service runs generation and export requests.
type Service struct {
	deps Dependencies

	// OTEL metrics
	generations metric.Int64Counter
	fallbacks   metric.Int64Counter
	exports     metric.Int64Counter
}

// NewService creates a Service.
// Uses the global OTel meter for metrics (no-op if not configured).
func NewService(deps Dependencies) (*Service, error) {
	s := &Service{deps: deps}

	m := meter()

	var err error

	s.generations, err = m.Int64Counter(
		"terrain.generations",
		metric.WithDescription("Total terrain generations completed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating generations counter: %w", err)
	}

	s.fallbacks, err = m.Int64Counter(
		"terrain.fallbacks",
		metric.WithDescription("Total generations that fell back to synthetic terrain"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating fallbacks counter: %w", err)
	}

	s.exports, err = m.Int64Counter(
		"terrain.exports",
		metric.WithDescription("Total STL exports served"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating exports counter: %w", err)
	}

	return s, nil
}

// GenerateRequest selects either a named region or explicit bounds.
type GenerateRequest struct {
	Region             string    `json:"region,omitempty"`
	Bounds             *geo.BBox `json:"bounds,omitempty"`
	Resolution         int       `json:"resolution,omitempty"`
	HeightExaggeration float64   `json:"height_exaggeration,omitempty"`
}

// resolve applies defaults and validates the request, returning the
// effective bounds, region id, resolution and exaggeration.
func (r GenerateRequest) resolve() (geo.BBox, string, int, float64, error) {
	var bounds geo.BBox
	regionID := ""
	resolution := r.Resolution

	switch {
	case r.Region != "":
		region, ok := geo.RegionByID(r.Region)
		if !ok {
			return geo.BBox{}, "", 0, 0, fmt.Errorf("%w: %q", ErrRegionNotFound, r.Region)
		}
		bounds = region.Bounds
		regionID = region.ID
		if resolution == 0 {
			resolution = region.DefaultResolution
		}
	case r.Bounds != nil:
		bounds = *r.Bounds
		if err := bounds.Validate(); err != nil {
			return geo.BBox{}, "", 0, 0, fmt.Errorf("%w: %s", ErrInvalidRequest, err)
		}
	default:
		return geo.BBox{}, "", 0, 0, invalidf("either region or bounds is required")
	}

	if resolution == 0 {
		resolution = DefaultResolution
	}
	if resolution < MinResolution || resolution > MaxResolution {
		return geo.BBox{}, "", 0, 0, invalidf("resolution %d out of range [%d, %d]",
			resolution, MinResolution, MaxResolution)
	}

	exaggeration := r.HeightExaggeration
	if exaggeration == 0 {
		exaggeration = DefaultExaggeration
	}
	if exaggeration < minExaggeration || exaggeration > maxExaggeration {
		return geo.BBox{}, "", 0, 0, invalidf("height_exaggeration %g out of range [%g, %g]",
			exaggeration, minExaggeration, maxExaggeration)
	}

	return bounds, regionID, resolution, exaggeration, nil
}

// Generate runs the full pipeline and caches the result under a fresh
// id. Acquisition failure is an expected path handled by synthesis,
// never surfaced to the caller.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (cache.Terrain, error) {
	bounds, regionID, resolution, exaggeration, err := req.resolve()
	if err != nil {
		return cache.Terrain{}, err
	}

	start := time.Now()

	grid, source := s.acquireOrSynthesize(ctx, bounds, resolution)
	grid = resample.Resample(grid, resolution)
	grid.Exaggerate(exaggeration)

	centerLat, centerLon := bounds.Center()
	terrain := cache.Terrain{
		ID:     uuid.NewString(),
		Grid:   grid,
		Bounds: bounds,
		Region: regionID,
		Metadata: model.TerrainMetadata{
			CenterLat:     centerLat,
			CenterLon:     centerLon,
			MinElevation:  grid.Min(),
			MaxElevation:  grid.Max(),
			MeanElevation: grid.Mean(),
			Resolution:    resolution,
			DataSource:    source,
			GeneratedAt:   time.Now().UTC(),
		},
	}
	s.deps.Cache.Put(terrain)

	duration := time.Since(start)
	s.deps.Logger.Info().
		Str("terrainId", terrain.ID).
		Str("region", regionID).
		Str("source", source).
		Int("resolution", resolution).
		Dur("duration", duration).
		Msg("Terrain generated")

	s.recordHistory(req, terrain, duration)
	s.writeGenerationPoint(ctx, terrain, duration)
	s.generations.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source)))

	return terrain, nil
}

// acquireOrSynthesize tries the elevation source at the target
// resolution and synthesizes the whole grid on any failure, so no
// partial real data ever leaks into the result.
func (s *Service) acquireOrSynthesize(ctx context.Context, b geo.BBox, resolution int) (*heightmap.Grid, string) {
	if s.deps.Source != nil {
		grid, err := s.deps.Source.Acquire(ctx, b, resolution)
		if err == nil {
			return grid, SourceOpenElevation
		}
		s.deps.Logger.Warn().Err(err).Msg("Elevation acquisition failed, synthesizing terrain")
		s.fallbacks.Add(ctx, 1)
	}
	return synth.Generate(b, resolution), SourceSynthetic
}

func (s *Service) recordHistory(req GenerateRequest, t cache.Terrain, duration time.Duration) {
	if s.deps.DB == nil || !s.deps.DB.IsValid {
		return
	}

	record := model.GenerationRecord{
		TerrainID:    t.ID,
		Region:       t.Region,
		LatMin:       t.Bounds.LatMin,
		LatMax:       t.Bounds.LatMax,
		LonMin:       t.Bounds.LonMin,
		LonMax:       t.Bounds.LonMax,
		Resolution:   t.Metadata.Resolution,
		DataSource:   t.Metadata.DataSource,
		MinElevation: t.Metadata.MinElevation,
		MaxElevation: t.Metadata.MaxElevation,
		DurationMs:   duration.Milliseconds(),
	}

	if center, err := t.Bounds.Centroid3857(); err == nil {
		record.Center = center
	}
	if params, err := json.Marshal(req); err == nil {
		record.Parameters = datatypes.JSON(params)
	}

	if err := s.deps.DB.DB.Create(&record).Error; err != nil {
		s.deps.Logger.Error().Err(err).Str("terrainId", t.ID).
			Msg("Error writing generation record")
	}
}

func (s *Service) writeGenerationPoint(ctx context.Context, t cache.Terrain, duration time.Duration) {
	if s.deps.Influx == nil {
		return
	}

	point := influxdb2_write.NewPointWithMeasurement("generation").
		AddTag("region", t.Region).
		AddTag("source", t.Metadata.DataSource).
		AddField("duration_ms", duration.Milliseconds()).
		AddField("resolution", t.Metadata.Resolution).
		SetTime(time.Now())

	if err := s.deps.Influx.WritePoint(ctx, influx.BucketTerrainGeneration, point); err != nil {
		s.deps.Logger.Error().Err(err).Msg("Error writing generation metric")
	}
}

// ExportRequest describes an STL export of a cached terrain.
type ExportRequest struct {
	TerrainID     string  `json:"terrain_id"`
	Resolution    int     `json:"resolution,omitempty"`
	ScaleXY       float64 `json:"scale_xy,omitempty"`
	ScaleZ        float64 `json:"scale_z,omitempty"`
	AddBase       *bool   `json:"add_base,omitempty"`
	BaseThickness float64 `json:"base_thickness,omitempty"`
}

func (r ExportRequest) options() (mesh.BuildOptions, error) {
	opts := mesh.BuildOptions{
		ScaleXY:       r.ScaleXY,
		ScaleZ:        r.ScaleZ,
		AddBase:       true,
		BaseThickness: r.BaseThickness,
	}
	if opts.ScaleXY == 0 {
		opts.ScaleXY = 1.0
	}
	if opts.ScaleZ == 0 {
		opts.ScaleZ = 1.0
	}
	if opts.BaseThickness == 0 {
		opts.BaseThickness = 2.0
	}
	if r.AddBase != nil {
		opts.AddBase = *r.AddBase
	}

	if opts.ScaleXY < minScaleXY || opts.ScaleXY > maxScaleXY {
		return mesh.BuildOptions{}, invalidf("scale_xy %g out of range [%g, %g]",
			opts.ScaleXY, minScaleXY, maxScaleXY)
	}
	if opts.ScaleZ < minScaleZ || opts.ScaleZ > maxScaleZ {
		return mesh.BuildOptions{}, invalidf("scale_z %g out of range [%g, %g]",
			opts.ScaleZ, minScaleZ, maxScaleZ)
	}
	if opts.AddBase && (opts.BaseThickness < minBaseThickness || opts.BaseThickness > maxBaseThickness) {
		return mesh.BuildOptions{}, invalidf("base_thickness %g out of range [%g, %g]",
			opts.BaseThickness, minBaseThickness, maxBaseThickness)
	}
	return opts, nil
}

// Export builds and serializes the mesh for a cached terrain. The
// returned filename follows the terrain id.
func (s *Service) Export(ctx context.Context, req ExportRequest) (filename string, data []byte, err error) {
	if req.TerrainID == "" {
		return "", nil, invalidf("terrain_id is required")
	}

	opts, err := req.options()
	if err != nil {
		return "", nil, err
	}

	resolution := req.Resolution
	if resolution != 0 && (resolution < MinResolution || resolution > MaxResolution) {
		return "", nil, invalidf("resolution %d out of range [%d, %d]",
			resolution, MinResolution, MaxResolution)
	}

	terrain, ok := s.deps.Cache.Get(req.TerrainID)
	if !ok {
		return "", nil, fmt.Errorf("%w: %q", ErrTerrainNotFound, req.TerrainID)
	}

	grid := terrain.Grid
	if resolution != 0 && resolution != grid.Rows() {
		grid = resample.Resample(grid, resolution)
	}

	m, err := mesh.Build(grid, opts)
	if err != nil {
		return "", nil, fmt.Errorf("building mesh: %w", err)
	}

	data, err = stl.Encode(m)
	if err != nil {
		return "", nil, fmt.Errorf("encoding STL: %w", err)
	}

	s.exports.Add(ctx, 1)
	s.deps.Logger.Info().
		Str("terrainId", terrain.ID).
		Int("triangles", m.TriangleCount()).
		Int("bytes", len(data)).
		Msg("Terrain exported")

	return fmt.Sprintf("terrain_%s.stl", terrain.ID), data, nil
}
