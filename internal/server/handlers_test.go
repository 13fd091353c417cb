package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terrain3d/backend/internal/cache"
	"github.com/terrain3d/backend/internal/geo"
	"github.com/terrain3d/backend/internal/heightmap"
	"github.com/terrain3d/backend/internal/pipeline"
	"github.com/terrain3d/backend/internal/server"
	"github.com/terrain3d/backend/internal/stl"
)

type failingSource struct{}

func (failingSource) Acquire(ctx context.Context, b geo.BBox, target int) (*heightmap.Grid, error) {
	return nil, errors.New("provider unreachable")
}

func newTestApp(t *testing.T) (*fiber.App, *server.Dependencies) {
	t.Helper()

	terrains := cache.NewTerrainCache(10)
	svc, err := pipeline.NewService(pipeline.Dependencies{
		Source: failingSource{},
		Cache:  terrains,
		Logger: zerolog.Nop(),
	})
	require.NoError(t, err)

	deps := &server.Dependencies{
		Pipeline: svc,
		Cache:    terrains,
		Logger:   zerolog.Nop(),
	}
	return server.New(deps), deps
}

func postJSON(t *testing.T, app *fiber.App, path, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func getPath(t *testing.T, app *fiber.App, path string) *http.Response {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", path, nil), -1)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestListLocationsHandler(t *testing.T) {
	app, _ := newTestApp(t)

	resp := getPath(t, app, "/api/list-locations")
	require.Equal(t, 200, resp.StatusCode)

	var body struct {
		Locations []geo.Region `json:"locations"`
	}
	decodeJSON(t, resp, &body)
	require.Len(t, body.Locations, len(geo.FranceRegions))
	assert.Equal(t, "mont-blanc", body.Locations[0].ID)
}

func TestGenerateTerrainHandler(t *testing.T) {
	app, deps := newTestApp(t)

	resp := postJSON(t, app, "/api/terrain",
		`{"region": "mont-blanc", "resolution": 64}`)
	require.Equal(t, 200, resp.StatusCode)

	var body server.TerrainResponse
	decodeJSON(t, resp, &body)

	assert.NotEmpty(t, body.ID)
	assert.Equal(t, "mont-blanc", body.Region)
	assert.Len(t, body.Heightmap, 64)
	assert.Len(t, body.Heightmap[0], 64)
	assert.Equal(t, "synthetic", body.Metadata.DataSource)

	_, ok := deps.Cache.Get(body.ID)
	assert.True(t, ok)
}

func TestGenerateTerrainHandler_CustomBounds(t *testing.T) {
	app, _ := newTestApp(t)

	resp := postJSON(t, app, "/api/terrain",
		`{"bounds": {"lat_min": 45.0, "lat_max": 45.5, "lon_min": 6.0, "lon_max": 6.5}, "resolution": 64}`)
	require.Equal(t, 200, resp.StatusCode)

	var body server.TerrainResponse
	decodeJSON(t, resp, &body)
	assert.Empty(t, body.Region)
	assert.Equal(t, 45.25, body.Metadata.CenterLat)
}

func TestGenerateTerrainHandler_Errors(t *testing.T) {
	app, _ := newTestApp(t)

	cases := []struct {
		name   string
		body   string
		status int
	}{
		{"unknown region", `{"region": "atlantis"}`, 404},
		{"missing region and bounds", `{}`, 400},
		{"resolution out of range", `{"region": "mont-blanc", "resolution": 16}`, 400},
		{"inverted bounds", `{"bounds": {"lat_min": 46, "lat_max": 45, "lon_min": 6, "lon_max": 7}}`, 400},
		{"malformed body", `{"region": `, 400},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postJSON(t, app, "/api/terrain", tc.body)
			assert.Equal(t, tc.status, resp.StatusCode)

			var apiErr server.APIError
			decodeJSON(t, resp, &apiErr)
			assert.Equal(t, tc.status, apiErr.Status)
			assert.NotEmpty(t, apiErr.Message)
		})
	}
}

func TestGetTerrainHandler(t *testing.T) {
	app, _ := newTestApp(t)

	resp := postJSON(t, app, "/api/terrain", `{"region": "pyrenees", "resolution": 64}`)
	require.Equal(t, 200, resp.StatusCode)
	var created server.TerrainResponse
	decodeJSON(t, resp, &created)

	resp = getPath(t, app, "/api/terrain/"+created.ID)
	require.Equal(t, 200, resp.StatusCode)
	var fetched server.TerrainResponse
	decodeJSON(t, resp, &fetched)
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, created.Metadata.Resolution, fetched.Metadata.Resolution)

	resp = getPath(t, app, "/api/terrain/no-such-id")
	assert.Equal(t, 404, resp.StatusCode)
}

func TestExportSTLHandler(t *testing.T) {
	app, _ := newTestApp(t)

	resp := postJSON(t, app, "/api/terrain", `{"region": "mont-blanc", "resolution": 64}`)
	require.Equal(t, 200, resp.StatusCode)
	var created server.TerrainResponse
	decodeJSON(t, resp, &created)

	resp = postJSON(t, app, "/api/export-stl",
		`{"terrain_id": "`+created.ID+`"}`)
	require.Equal(t, 200, resp.StatusCode)

	assert.Equal(t, "application/octet-stream", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "terrain_"+created.ID+".stl")

	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Len(t, data, stl.FileSize(64, true))
}

func TestExportSTLHandler_Errors(t *testing.T) {
	app, _ := newTestApp(t)

	resp := postJSON(t, app, "/api/export-stl", `{"terrain_id": "no-such-id"}`)
	assert.Equal(t, 404, resp.StatusCode)

	resp = postJSON(t, app, "/api/export-stl", `{}`)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestEstimateHandler(t *testing.T) {
	app, _ := newTestApp(t)

	resp := getPath(t, app, "/api/estimate?resolution=64&add_base=true&scale=1")
	require.Equal(t, 200, resp.StatusCode)

	var est stl.Estimate
	decodeJSON(t, resp, &est)
	assert.Equal(t, 819084, est.FileSizeBytes)
	assert.Equal(t, "30 minutes", est.EstimatedPrintTime)

	resp = getPath(t, app, "/api/estimate?resolution=7")
	assert.Equal(t, 400, resp.StatusCode)
}

func TestHealthHandler(t *testing.T) {
	app, _ := newTestApp(t)

	resp := getPath(t, app, "/api/health")
	require.Equal(t, 200, resp.StatusCode)

	var body map[string]interface{}
	decodeJSON(t, resp, &body)
	assert.Equal(t, "healthy", body["status"])
}
