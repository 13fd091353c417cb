package server

import (
	"github.com/rs/zerolog"

	"github.com/terrain3d/backend/internal/cache"
	"github.com/terrain3d/backend/internal/database"
	"github.com/terrain3d/backend/internal/influx"
	"github.com/terrain3d/backend/internal/pipeline"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Pipeline *pipeline.Service
	Cache    *cache.TerrainCache
	DB       *database.Manager
	Influx   *influx.Manager
	Logger   zerolog.Logger
}
