package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nutriscan/internal/logging"
	"nutriscan/internal/testsupport"
)

func TestLocateUsesProvider(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"lat": 40.71, "lon": -74.0}`))
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t)
	cfg.Geolocation.Enabled = true
	cfg.Geolocation.ProviderURL = server.URL

	coords := NewEnricher(cfg, logging.NewNop()).Locate(context.Background())
	if coords.Latitude != 40.71 || coords.Longitude != -74.0 {
		t.Fatalf("unexpected coordinates %+v", coords)
	}
}

func TestLocateAcceptsLongFieldNames(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"latitude": 51.5, "longitude": -0.12}`))
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t)
	cfg.Geolocation.Enabled = true
	cfg.Geolocation.ProviderURL = server.URL

	coords := NewEnricher(cfg, logging.NewNop()).Locate(context.Background())
	if coords.Latitude != 51.5 || coords.Longitude != -0.12 {
		t.Fatalf("unexpected coordinates %+v", coords)
	}
}

func TestLocateFallsBackWhenDisabled(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Geolocation.Enabled = false

	coords := NewEnricher(cfg, logging.NewNop()).Locate(context.Background())
	if coords.Latitude != cfg.Geolocation.FallbackLatitude ||
		coords.Longitude != cfg.Geolocation.FallbackLongitude {
		t.Fatalf("expected fallback coordinates, got %+v", coords)
	}
}

func TestLocateFallsBackOnProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t)
	cfg.Geolocation.Enabled = true
	cfg.Geolocation.ProviderURL = server.URL

	coords := NewEnricher(cfg, logging.NewNop()).Locate(context.Background())
	if coords.Latitude != cfg.Geolocation.FallbackLatitude {
		t.Fatalf("expected fallback on provider error, got %+v", coords)
	}
}

func TestLocateFallsBackOnMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"city": "somewhere"}`))
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t)
	cfg.Geolocation.Enabled = true
	cfg.Geolocation.ProviderURL = server.URL

	coords := NewEnricher(cfg, logging.NewNop()).Locate(context.Background())
	if coords.Latitude != cfg.Geolocation.FallbackLatitude {
		t.Fatalf("expected fallback on malformed response, got %+v", coords)
	}
}

func TestLocateHonorsTimeout(t *testing.T) {
	started := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t)
	cfg.Geolocation.Enabled = true
	cfg.Geolocation.ProviderURL = server.URL
	cfg.Geolocation.TimeoutSeconds = 1

	done := make(chan Coordinates, 1)
	go func() {
		done <- NewEnricher(cfg, logging.NewNop()).Locate(context.Background())
	}()

	select {
	case coords := <-done:
		if coords.Latitude != cfg.Geolocation.FallbackLatitude {
			t.Fatalf("expected fallback on timeout, got %+v", coords)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Locate did not return within timeout window")
	}
	<-started
}
