package capture

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"nutriscan/internal/backend"
	"nutriscan/internal/camera"
	"nutriscan/internal/geo"
	"nutriscan/internal/logging"
	"nutriscan/internal/testsupport"
)

type fakeFrames struct {
	frame *camera.Frame
	err   error
}

func (f *fakeFrames) Snapshot(ctx context.Context) (*camera.Frame, error) {
	return f.frame, f.err
}

type fakeLocator struct {
	coords geo.Coordinates
}

func (f *fakeLocator) Locate(ctx context.Context) geo.Coordinates {
	return f.coords
}

type fakeAnalyzer struct {
	mu       sync.Mutex
	calls    int64
	payload  map[string]any
	err      error
	block    chan struct{}
	requests []backend.ScanRequest
}

func (f *fakeAnalyzer) analyze(ctx context.Context, req backend.ScanRequest) (map[string]any, error) {
	atomic.AddInt64(&f.calls, 1)
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.block != nil {
		<-f.block
	}
	return f.payload, f.err
}

func (f *fakeAnalyzer) Scan(ctx context.Context, req backend.ScanRequest) (map[string]any, error) {
	return f.analyze(ctx, req)
}

func (f *fakeAnalyzer) ScanFresh(ctx context.Context, req backend.ScanRequest) (map[string]any, error) {
	return f.analyze(ctx, req)
}

func newTestController(t *testing.T, analyzer *fakeAnalyzer) *Controller {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	frames := &fakeFrames{frame: &camera.Frame{Data: []byte{0xff, 0xd8}, Width: 640, Height: 480}}
	locator := &fakeLocator{coords: geo.Coordinates{Latitude: 28.61, Longitude: 77.20}}
	return NewController(cfg, frames, locator, analyzer, logging.NewNop())
}

func TestCaptureStillProducesRecord(t *testing.T) {
	analyzer := &fakeAnalyzer{payload: map[string]any{
		"scan_result": map[string]any{"food_name": "Apple"},
		"nutrition":   map[string]any{"Calories": float64(95)},
	}}
	ctrl := newTestController(t, analyzer)

	result, err := ctrl.CaptureStill(context.Background(), ModeStill)
	if err != nil {
		t.Fatalf("CaptureStill failed: %v", err)
	}
	if result.Record.Name != "Apple" || result.Record.Calories != 95 {
		t.Fatalf("unexpected record %+v", result.Record)
	}
	if result.ImageURI == "" {
		t.Fatal("expected image URI on still capture")
	}
	if result.CaptureID == "" {
		t.Fatal("expected a capture id")
	}
	if ctrl.State() != StateIdle {
		t.Fatalf("expected idle after success, got %s", ctrl.State())
	}
}

func TestSubmitBarcodeSendsCoordinatesAndPersona(t *testing.T) {
	analyzer := &fakeAnalyzer{payload: map[string]any{}}
	ctrl := newTestController(t, analyzer)

	if _, err := ctrl.SubmitBarcode(context.Background(), "4006381333931"); err != nil {
		t.Fatalf("SubmitBarcode failed: %v", err)
	}

	analyzer.mu.Lock()
	defer analyzer.mu.Unlock()
	if len(analyzer.requests) != 1 {
		t.Fatalf("expected one request, got %d", len(analyzer.requests))
	}
	req := analyzer.requests[0]
	if req.Barcode != "4006381333931" || req.ImageBase64 != "" {
		t.Fatalf("unexpected request %+v", req)
	}
	if req.Latitude != 28.61 || req.Longitude != 77.20 {
		t.Fatalf("coordinates not applied: %+v", req)
	}
	if req.Persona == "" || req.UserID == "" {
		t.Fatalf("persona/user missing: %+v", req)
	}
}

func TestSingleFlightDropsConcurrentTriggers(t *testing.T) {
	analyzer := &fakeAnalyzer{
		payload: map[string]any{},
		block:   make(chan struct{}),
	}
	ctrl := newTestController(t, analyzer)

	firstDone := make(chan error, 1)
	go func() {
		_, err := ctrl.CaptureStill(context.Background(), ModeStill)
		firstDone <- err
	}()

	// Wait until the first trigger occupies the analysis slot.
	deadline := time.Now().Add(5 * time.Second)
	for ctrl.State() != StateAnalyzing {
		if time.Now().After(deadline) {
			t.Fatal("first capture never reached analyzing")
		}
		time.Sleep(time.Millisecond)
	}

	if _, err := ctrl.CaptureStill(context.Background(), ModeStill); !errors.Is(err, ErrAnalysisInFlight) {
		t.Fatalf("expected ErrAnalysisInFlight, got %v", err)
	}
	if _, err := ctrl.SubmitBarcode(context.Background(), "123"); !errors.Is(err, ErrAnalysisInFlight) {
		t.Fatalf("expected ErrAnalysisInFlight for barcode, got %v", err)
	}

	close(analyzer.block)
	if err := <-firstDone; err != nil {
		t.Fatalf("first capture failed: %v", err)
	}

	if got := atomic.LoadInt64(&analyzer.calls); got != 1 {
		t.Fatalf("expected exactly one outbound request, got %d", got)
	}
}

func TestBarcodeNotFoundIsRecoverable(t *testing.T) {
	analyzer := &fakeAnalyzer{err: backend.ErrBarcodeNotFound}
	ctrl := newTestController(t, analyzer)

	if _, err := ctrl.SubmitBarcode(context.Background(), "000"); err == nil {
		t.Fatal("expected error for unresolvable barcode")
	}
	if ctrl.State() != StateError {
		t.Fatalf("expected error state, got %s", ctrl.State())
	}
	if ctrl.LastError() == "" {
		t.Fatal("expected a user-facing message")
	}

	ctrl.Acknowledge()
	if ctrl.State() != StateIdle {
		t.Fatalf("expected idle after acknowledge, got %s", ctrl.State())
	}
	if _, err := ctrl.SubmitBarcode(context.Background(), "4006381333931"); err != nil && !errors.Is(err, backend.ErrBarcodeNotFound) {
		t.Fatalf("retry after acknowledge failed: %v", err)
	}
}

func TestCameraFailureLeavesErrorState(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	frames := &fakeFrames{err: errors.New("device busy")}
	ctrl := NewController(cfg, frames, &fakeLocator{}, &fakeAnalyzer{}, logging.NewNop())

	if _, err := ctrl.CaptureStill(context.Background(), ModeStill); err == nil {
		t.Fatal("expected error when camera fails")
	}
	if ctrl.State() != StateError {
		t.Fatalf("expected error state, got %s", ctrl.State())
	}
}

func TestFreshModeRoutesToFreshEndpoint(t *testing.T) {
	scanCalls := int64(0)
	freshCalls := int64(0)
	analyzer := &routingAnalyzer{scan: &scanCalls, fresh: &freshCalls}
	cfg := testsupport.NewConfig(t)
	frames := &fakeFrames{frame: &camera.Frame{Data: []byte{0x01}}}
	ctrl := NewController(cfg, frames, &fakeLocator{}, analyzer, logging.NewNop())

	if _, err := ctrl.CaptureStill(context.Background(), ModeFresh); err != nil {
		t.Fatalf("fresh capture failed: %v", err)
	}
	if scanCalls != 0 || freshCalls != 1 {
		t.Fatalf("expected fresh endpoint only, got scan=%d fresh=%d", scanCalls, freshCalls)
	}
}

type routingAnalyzer struct {
	scan  *int64
	fresh *int64
}

func (r *routingAnalyzer) Scan(ctx context.Context, req backend.ScanRequest) (map[string]any, error) {
	atomic.AddInt64(r.scan, 1)
	return map[string]any{}, nil
}

func (r *routingAnalyzer) ScanFresh(ctx context.Context, req backend.ScanRequest) (map[string]any, error) {
	atomic.AddInt64(r.fresh, 1)
	return map[string]any{}, nil
}

func TestGoLiveTransitions(t *testing.T) {
	ctrl := newTestController(t, &fakeAnalyzer{payload: map[string]any{}})

	if err := ctrl.GoLive(ModeBarcode); err != nil {
		t.Fatalf("GoLive barcode failed: %v", err)
	}
	if ctrl.State() != StateLiveBarcode {
		t.Fatalf("expected live-barcode, got %s", ctrl.State())
	}
	if err := ctrl.GoLive(ModeStill); err != nil {
		t.Fatalf("GoLive still failed: %v", err)
	}
	if ctrl.State() != StateLiveStill {
		t.Fatalf("expected live-still, got %s", ctrl.State())
	}
}

func TestCanTransitionRejectsIllegalEdges(t *testing.T) {
	if CanTransition(StateAnalyzing, StateCaptured) {
		t.Fatal("analyzing must not re-enter captured")
	}
	if CanTransition(StateError, StateAnalyzing) {
		t.Fatal("error must return to idle before analyzing")
	}
	if !CanTransition(StateAnalyzing, StateError) {
		t.Fatal("analyzing must be able to fail")
	}
}
