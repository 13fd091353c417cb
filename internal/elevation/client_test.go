package elevation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestProvider spins up a provider that returns elevation = latitude
// for every point, so order preservation is easy to check.
func newTestProvider(t *testing.T, batchCalls *atomic.Int32, failOnCall int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := batchCalls.Add(1)
		if failOnCall > 0 && call == failOnCall {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		var req lookupRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		resp := lookupResponse{Results: make([]lookupResult, len(req.Locations))}
		for i, loc := range req.Locations {
			resp.Results[i] = lookupResult{
				Latitude:  loc.Latitude,
				Longitude: loc.Longitude,
				Elevation: loc.Latitude,
			}
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func configureProvider(t *testing.T, url string, batchSize int) {
	t.Helper()
	t.Cleanup(viper.Reset)
	viper.Set("provider.url", url)
	viper.Set("provider.batchSize", batchSize)
	viper.Set("provider.batchDelayMs", 1)
	viper.Set("provider.timeoutSec", 5)
}

func TestClient_Lookup_PreservesOrder(t *testing.T) {
	var calls atomic.Int32
	srv := newTestProvider(t, &calls, 0)
	configureProvider(t, srv.URL, 500)

	c := NewClient(zerolog.Nop())
	points := []Location{
		{Latitude: 45.0, Longitude: 6.0},
		{Latitude: 45.5, Longitude: 6.1},
		{Latitude: 46.0, Longitude: 6.2},
	}

	got, err := c.Lookup(context.Background(), points)
	require.NoError(t, err)
	assert.Equal(t, []float64{45.0, 45.5, 46.0}, got)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_Lookup_SplitsIntoBatches(t *testing.T) {
	var calls atomic.Int32
	srv := newTestProvider(t, &calls, 0)
	configureProvider(t, srv.URL, 100)

	c := NewClient(zerolog.Nop())
	points := make([]Location, 250)
	for i := range points {
		points[i] = Location{Latitude: float64(i), Longitude: 0}
	}

	got, err := c.Lookup(context.Background(), points)
	require.NoError(t, err)
	require.Len(t, got, 250)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, 0.0, got[0])
	assert.Equal(t, 249.0, got[249])
}

func TestClient_Lookup_AbortsOnBatchFailure(t *testing.T) {
	var calls atomic.Int32
	srv := newTestProvider(t, &calls, 2)
	configureProvider(t, srv.URL, 100)

	c := NewClient(zerolog.Nop())
	points := make([]Location, 300)

	_, err := c.Lookup(context.Background(), points)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch 2")
	// the third batch is never attempted
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_Lookup_ResultCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(lookupResponse{Results: []lookupResult{{Elevation: 1}}})
	}))
	t.Cleanup(srv.Close)
	configureProvider(t, srv.URL, 100)

	c := NewClient(zerolog.Nop())
	_, err := c.Lookup(context.Background(), []Location{{}, {}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 results for 2 points")
}

func TestClient_Lookup_ContextCancelled(t *testing.T) {
	var calls atomic.Int32
	srv := newTestProvider(t, &calls, 0)
	configureProvider(t, srv.URL, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(zerolog.Nop())
	_, err := c.Lookup(ctx, []Location{{}, {}})
	require.Error(t, err)
}
