// Package model holds the persisted records and shared value types
// of the terrain pipeline.
package model

import (
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DatabaseModels lists every table to migrate.
var DatabaseModels = []interface{}{
	&GenerationRecord{},
}

// TerrainMetadata describes a generated heightmap in API responses.
type TerrainMetadata struct {
	CenterLat     float64   `json:"center_lat"`
	CenterLon     float64   `json:"center_lon"`
	MinElevation  float64   `json:"min_elevation"`
	MaxElevation  float64   `json:"max_elevation"`
	MeanElevation float64   `json:"mean_elevation"`
	Resolution    int       `json:"resolution"`
	DataSource    string    `json:"data_source"`
	GeneratedAt   time.Time `json:"generated_at"`
}

// GenerationRecord is the history row written for every generation.
// The center point is stored in EPSG:3857 as WKB, which survives
// SQLite migrations through the geometry Scan/Value round trip.
type GenerationRecord struct {
	gorm.Model
	TerrainID    string `gorm:"size:36;index"`
	Region       string `gorm:"size:64"`
	LatMin       float64
	LatMax       float64
	LonMin       float64
	LonMax       float64
	Center       geom.Point
	Resolution   int
	DataSource   string `gorm:"size:16"`
	MinElevation float64
	MaxElevation float64
	DurationMs   int64
	Parameters   datatypes.JSON
}
