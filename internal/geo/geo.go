package geo

import (
	"errors"
	"fmt"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"
)

// Coordinates are WGS84 (EPSG:4326) everywhere in the public API.
// Web Mercator (EPSG:3857) values are derived only for response
// metadata and stored points, because SQLite has no spatial awareness
// and geometry survives migrations via the WKB Scan/Value round trip.

// ErrInvalidBounds is returned when a bounding box is not ordered
// min < max on both axes.
var ErrInvalidBounds = errors.New("invalid bounds: min must be less than max")

// BBox is a geographic bounding box in decimal degrees.
type BBox struct {
	LatMin float64 `json:"lat_min"`
	LatMax float64 `json:"lat_max"`
	LonMin float64 `json:"lon_min"`
	LonMax float64 `json:"lon_max"`
}

// Validate checks axis ordering and coordinate ranges.
func (b BBox) Validate() error {
	if b.LatMin >= b.LatMax || b.LonMin >= b.LonMax {
		return ErrInvalidBounds
	}
	if b.LatMin < -90 || b.LatMax > 90 || b.LonMin < -180 || b.LonMax > 180 {
		return fmt.Errorf("%w: coordinates out of range", ErrInvalidBounds)
	}
	return nil
}

// Center returns the midpoint of the box.
func (b BBox) Center() (lat, lon float64) {
	return (b.LatMin + b.LatMax) / 2, (b.LonMin + b.LonMax) / 2
}

// Span returns the angular extent in degrees.
func (b BBox) Span() (dLat, dLon float64) {
	return b.LatMax - b.LatMin, b.LonMax - b.LonMin
}

// MaxSpan returns the larger of the two angular extents.
func (b BBox) MaxSpan() float64 {
	dLat, dLon := b.Span()
	if dLat > dLon {
		return dLat
	}
	return dLon
}

// Centroid3857 returns the box center as a Web Mercator point.
func (b BBox) Centroid3857() (geom.Point, error) {
	lat, lon := b.Center()
	return Coords3857From4326(lon, lat)
}

// MetricExtent returns the approximate width and height of the box in
// meters, measured in Web Mercator.
func (b BBox) MetricExtent() (width, height float64, err error) {
	f := wgs84.EPSG().Transform(4326, 3857)
	x0, y0, _ := f(b.LonMin, b.LatMin, 0)
	x1, y1, _ := f(b.LonMax, b.LatMax, 0)
	return x1 - x0, y1 - y0, nil
}

// Coords3857From4326 creates a Web Mercator point from a longitude
// and latitude.
func Coords3857From4326(longitude, latitude float64) (geom.Point, error) {
	f := wgs84.EPSG().Transform(4326, 3857)
	x, y, _ := f(longitude, latitude, 0)
	point := geom.NewPoint(
		geom.Coordinates{
			XY: geom.XY{X: x, Y: y},
			Z:  0,
		},
	)
	return point, nil
}
