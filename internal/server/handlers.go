package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/terrain3d/backend/internal/geo"
	"github.com/terrain3d/backend/internal/model"
	"github.com/terrain3d/backend/internal/pipeline"
	"github.com/terrain3d/backend/internal/stl"
)

// TerrainResponse carries a generated heightmap and its metadata.
type TerrainResponse struct {
	ID        string                `json:"id"`
	Heightmap [][]float64           `json:"heightmap"`
	Bounds    geo.BBox              `json:"bounds"`
	Region    string                `json:"region,omitempty"`
	Metadata  model.TerrainMetadata `json:"metadata"`
}

// ListLocationsHandler returns the curated region catalog.
func ListLocationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("Cache-Control", "public, max-age=3600")
		return c.JSON(fiber.Map{"locations": geo.FranceRegions})
	}
}

// GenerateTerrainHandler runs the generation pipeline for a region or
// explicit bounds.
func GenerateTerrainHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req pipeline.GenerateRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "malformed request body: "+err.Error())
		}

		terrain, err := deps.Pipeline.Generate(c.Context(), req)
		switch {
		case errors.Is(err, pipeline.ErrRegionNotFound):
			return errNotFound(c, err.Error())
		case errors.Is(err, pipeline.ErrInvalidRequest):
			return errBadRequest(c, err.Error())
		case err != nil:
			return errInternal(c, err.Error())
		}

		return c.JSON(TerrainResponse{
			ID:        terrain.ID,
			Heightmap: terrain.Grid.Matrix(),
			Bounds:    terrain.Bounds,
			Region:    terrain.Region,
			Metadata:  terrain.Metadata,
		})
	}
}

// GetTerrainHandler returns a cached terrain by id.
func GetTerrainHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		terrain, ok := deps.Cache.Get(id)
		if !ok {
			return errNotFound(c, "terrain not found: "+id)
		}

		return c.JSON(TerrainResponse{
			ID:        terrain.ID,
			Heightmap: terrain.Grid.Matrix(),
			Bounds:    terrain.Bounds,
			Region:    terrain.Region,
			Metadata:  terrain.Metadata,
		})
	}
}

// ExportSTLHandler builds the mesh for a cached terrain and streams it
// back as a binary STL attachment.
func ExportSTLHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req pipeline.ExportRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "malformed request body: "+err.Error())
		}

		filename, data, err := deps.Pipeline.Export(c.Context(), req)
		switch {
		case errors.Is(err, pipeline.ErrTerrainNotFound):
			return errNotFound(c, err.Error())
		case errors.Is(err, pipeline.ErrInvalidRequest):
			return errBadRequest(c, err.Error())
		case err != nil:
			return errInternal(c, err.Error())
		}

		c.Set(fiber.HeaderContentType, "application/octet-stream")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
		return c.Send(data)
	}
}

// EstimateHandler returns size and print-time predictions without
// building any geometry.
func EstimateHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		resolution := c.QueryInt("resolution", pipeline.DefaultResolution)
		addBase := c.QueryBool("add_base", true)
		scale := c.QueryFloat("scale", 1.0)

		if resolution < pipeline.MinResolution || resolution > pipeline.MaxResolution {
			return errBadRequest(c, "resolution out of range")
		}
		if scale <= 0 {
			return errBadRequest(c, "scale must be positive")
		}

		return c.JSON(stl.ComputeEstimate(resolution, addBase, scale))
	}
}

// HealthHandler reports service liveness and collaborator status.
func HealthHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbUp := deps.DB != nil && deps.DB.IsValid
		influxUp := deps.Influx != nil && deps.Influx.IsValid
		return c.JSON(fiber.Map{
			"status":          "healthy",
			"cached_terrains": deps.Cache.Len(),
			"database":        dbUp,
			"influx":          influxUp,
		})
	}
}
