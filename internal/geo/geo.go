package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"nutriscan/internal/config"
	"nutriscan/internal/logging"
)

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Enricher resolves the device's approximate position from an IP geolocation
// provider. Resolution is strictly best-effort: any failure, timeout, or
// disabled provider yields the configured fallback coordinates, never an
// error. Scan submission must not block or fail on location.
type Enricher struct {
	enabled     bool
	providerURL string
	timeout     time.Duration
	fallback    Coordinates
	httpClient  *http.Client
	logger      *slog.Logger
}

// Option customizes the Enricher.
type Option func(*Enricher)

// WithHTTPClient overrides the HTTP client used for provider requests.
func WithHTTPClient(client *http.Client) Option {
	return func(e *Enricher) {
		if client != nil {
			e.httpClient = client
		}
	}
}

// NewEnricher builds an Enricher from configuration.
func NewEnricher(cfg *config.Config, logger *slog.Logger, opts ...Option) *Enricher {
	timeout := time.Duration(cfg.Geolocation.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	e := &Enricher{
		enabled:     cfg.Geolocation.Enabled,
		providerURL: cfg.Geolocation.ProviderURL,
		timeout:     timeout,
		fallback: Coordinates{
			Latitude:  cfg.Geolocation.FallbackLatitude,
			Longitude: cfg.Geolocation.FallbackLongitude,
		},
		httpClient: &http.Client{Timeout: timeout},
		logger:     logging.NewComponentLogger(logger, "geo"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Locate returns the device's coordinates. The provider is consulted only
// when geolocation is enabled and a provider URL is configured; otherwise,
// and on any provider failure, the fallback coordinates are returned.
func (e *Enricher) Locate(ctx context.Context) Coordinates {
	if !e.enabled || e.providerURL == "" {
		return e.fallback
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	coords, err := e.query(ctx)
	if err != nil {
		e.logger.Warn("geolocation provider unavailable",
			logging.Error(err),
			logging.String(logging.FieldImpact, "scan will use fallback coordinates"))
		return e.fallback
	}
	return coords
}

// providerResponse accepts both ip-api style (lat/lon) and long-form
// (latitude/longitude) field names.
type providerResponse struct {
	Lat       *float64 `json:"lat"`
	Lon       *float64 `json:"lon"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (e *Enricher) query(ctx context.Context) (Coordinates, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.providerURL, nil)
	if err != nil {
		return Coordinates{}, fmt.Errorf("build provider request: %w", err)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return Coordinates{}, fmt.Errorf("query provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Coordinates{}, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return Coordinates{}, fmt.Errorf("read provider response: %w", err)
	}

	var parsed providerResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Coordinates{}, fmt.Errorf("parse provider response: %w", err)
	}

	lat := parsed.Lat
	if lat == nil {
		lat = parsed.Latitude
	}
	lon := parsed.Lon
	if lon == nil {
		lon = parsed.Longitude
	}
	if lat == nil || lon == nil {
		return Coordinates{}, fmt.Errorf("provider response missing coordinates")
	}
	return Coordinates{Latitude: *lat, Longitude: *lon}, nil
}
