package elevation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/terrain3d/backend/internal/config"
)

// Location is a single query point in WGS84 degrees.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type lookupRequest struct {
	Locations []Location `json:"locations"`
}

type lookupResult struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Elevation float64 `json:"elevation"`
}

type lookupResponse struct {
	Results []lookupResult `json:"results"`
}

// Client queries the point-elevation provider in fixed-size batches.
// Batches are sent strictly sequentially with a fixed delay between
// them; the provider rate-limits aggressive callers.
type Client struct {
	baseURL    string
	batchSize  int
	batchDelay time.Duration
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a client from provider config.
func NewClient(log zerolog.Logger) *Client {
	cfg := config.GetProviderConfig()
	return &Client{
		baseURL:    cfg.URL,
		batchSize:  cfg.BatchSize,
		batchDelay: cfg.BatchDelay,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     log,
	}
}

// Lookup resolves elevations for all points, preserving input order.
// Any batch failure aborts the whole lookup; partial results are
// never returned.
func (c *Client) Lookup(ctx context.Context, points []Location) ([]float64, error) {
	elevations := make([]float64, 0, len(points))

	for start := 0; start < len(points); start += c.batchSize {
		if start > 0 {
			select {
			case <-time.After(c.batchDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		end := start + c.batchSize
		if end > len(points) {
			end = len(points)
		}

		batch, err := c.lookupBatch(ctx, points[start:end])
		if err != nil {
			return nil, fmt.Errorf("batch %d failed: %w", start/c.batchSize+1, err)
		}
		elevations = append(elevations, batch...)
	}

	return elevations, nil
}

func (c *Client) lookupBatch(ctx context.Context, points []Location) ([]float64, error) {
	body, err := json.Marshal(lookupRequest{Locations: points})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("elevation provider returned status %d", resp.StatusCode)
	}

	var decoded lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if len(decoded.Results) != len(points) {
		return nil, fmt.Errorf("provider returned %d results for %d points", len(decoded.Results), len(points))
	}

	c.logger.Debug().
		Int("points", len(points)).
		Dur("duration", time.Since(start)).
		Msg("Elevation batch resolved")

	out := make([]float64, len(decoded.Results))
	for i, r := range decoded.Results {
		out[i] = r.Elevation
	}
	return out, nil
}
