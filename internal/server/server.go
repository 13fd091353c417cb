// Package server exposes the terrain pipeline over HTTP.
package server

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/spf13/viper"

	"github.com/terrain3d/backend/internal/influx"
)

// New builds the Fiber app with all routes registered.
func New(deps *Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "terrain3d",
		DisableStartupMessage: true,
	})

	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: viper.GetString("server.corsOrigins"),
		AllowMethods: "GET,POST,OPTIONS",
	}))
	app.Use(timingMiddleware(deps))

	api := app.Group("/api")
	api.Get("/list-locations", ListLocationsHandler(deps))
	api.Post("/terrain", GenerateTerrainHandler(deps))
	api.Get("/terrain/:id", GetTerrainHandler(deps))
	api.Post("/export-stl", ExportSTLHandler(deps))
	api.Get("/estimate", EstimateHandler(deps))
	api.Get("/health", HealthHandler(deps))

	return app
}

// timingMiddleware records per-request duration to InfluxDB.
func timingMiddleware(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		if deps.Influx != nil {
			point := influxdb2_write.NewPointWithMeasurement("request").
				AddTag("method", c.Method()).
				AddTag("path", c.Route().Path).
				AddTag("status", strconv.Itoa(c.Response().StatusCode())).
				AddField("duration_ms", time.Since(start).Milliseconds()).
				SetTime(time.Now())
			if werr := deps.Influx.WritePoint(c.Context(), influx.BucketAPIPerformance, point); werr != nil {
				deps.Logger.Error().Err(werr).Msg("Error writing request metric")
			}
		}

		return err
	}
}
