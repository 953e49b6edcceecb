package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"nutriscan/internal/backend"
	"nutriscan/internal/camera"
	"nutriscan/internal/config"
	"nutriscan/internal/geo"
	"nutriscan/internal/logging"
	"nutriscan/internal/nutrition"
)

// ErrAnalysisInFlight is returned when a capture trigger arrives while a
// previous analysis request is still outstanding. The trigger is dropped,
// never queued.
var ErrAnalysisInFlight = errors.New("analysis already in flight")

// Mode selects how a capture acquires its subject.
type Mode string

const (
	// ModeBarcode submits a decoded barcode string.
	ModeBarcode Mode = "barcode"
	// ModeStill submits a full-resolution still frame.
	ModeStill Mode = "still"
	// ModeFresh submits a still frame to the fresh-food endpoint.
	ModeFresh Mode = "fresh"
)

// FrameSource produces still frames on demand.
type FrameSource interface {
	Snapshot(ctx context.Context) (*camera.Frame, error)
}

// Locator resolves best-effort device coordinates.
type Locator interface {
	Locate(ctx context.Context) geo.Coordinates
}

// Analyzer submits analysis requests to the remote backend.
type Analyzer interface {
	Scan(ctx context.Context, req backend.ScanRequest) (map[string]any, error)
	ScanFresh(ctx context.Context, req backend.ScanRequest) (map[string]any, error)
}

// Result is the outcome of one successful capture-and-analyze cycle.
type Result struct {
	CaptureID  string
	Mode       Mode
	Record     nutrition.Record
	RawPayload map[string]any
	ImageURI   string
	Elapsed    time.Duration
}

// Controller owns one logical capture at a time. It arbitrates between
// decode-driven and manual-still capture and guarantees at most one
// outstanding analysis request: triggers arriving during analysis are
// dropped, so rapid repeated triggers produce exactly one network call.
type Controller struct {
	frames   FrameSource
	locator  Locator
	analyzer Analyzer
	userID   string
	persona  string
	logger   *slog.Logger

	mu        sync.Mutex
	state     State
	captureID string
	lastError string
}

// NewController wires a controller from its collaborators.
func NewController(cfg *config.Config, frames FrameSource, locator Locator, analyzer Analyzer, logger *slog.Logger) *Controller {
	return &Controller{
		frames:   frames,
		locator:  locator,
		analyzer: analyzer,
		userID:   cfg.Backend.UserID,
		persona:  cfg.Backend.Persona,
		logger:   logging.NewComponentLogger(logger, "capture"),
		state:    StateIdle,
	}
}

// State returns the controller's current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastError returns the message recorded by the most recent failed capture.
func (c *Controller) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastError
}

// GoLive moves the controller into one of the live-feed states.
func (c *Controller) GoLive(mode Mode) error {
	target := StateLiveStill
	if mode == ModeBarcode {
		target = StateLiveBarcode
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !CanTransition(c.state, target) {
		return transitionError(c.state, target)
	}
	c.state = target
	return nil
}

// Acknowledge clears an error state back to idle.
func (c *Controller) Acknowledge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateError {
		c.state = StateIdle
		c.lastError = ""
	}
}

// SubmitBarcode runs one capture cycle for a decoded barcode. Decodes
// arriving while an analysis is outstanding return ErrAnalysisInFlight and
// cause no network traffic.
func (c *Controller) SubmitBarcode(ctx context.Context, code string) (*Result, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, errors.New("barcode cannot be empty")
	}

	captureID, err := c.begin(ModeBarcode)
	if err != nil {
		return nil, err
	}

	coords := c.locator.Locate(ctx)
	req := backend.ScanRequest{
		UserID:    c.userID,
		Barcode:   code,
		Latitude:  coords.Latitude,
		Longitude: coords.Longitude,
		Persona:   c.persona,
	}

	return c.dispatch(ctx, captureID, ModeBarcode, req, "")
}

// CaptureStill grabs a still frame and runs one capture cycle for it.
// ModeFresh routes the frame to the fresh-food endpoint instead of the
// product scanner. Triggers during an outstanding analysis return
// ErrAnalysisInFlight.
func (c *Controller) CaptureStill(ctx context.Context, mode Mode) (*Result, error) {
	if mode != ModeStill && mode != ModeFresh {
		return nil, fmt.Errorf("mode %q cannot capture a still", mode)
	}

	captureID, err := c.begin(mode)
	if err != nil {
		return nil, err
	}

	frame, err := c.frames.Snapshot(ctx)
	if err != nil {
		c.fail(captureID, "camera capture failed")
		return nil, fmt.Errorf("acquire still: %w", err)
	}

	coords := c.locator.Locate(ctx)
	req := backend.ScanRequest{
		UserID:      c.userID,
		ImageBase64: frame.DataURI(),
		Latitude:    coords.Latitude,
		Longitude:   coords.Longitude,
		Persona:     c.persona,
	}

	return c.dispatch(ctx, captureID, mode, req, frame.DataURI())
}

// begin claims the single analysis slot. It moves the machine through
// Captured into Analyzing and mints the capture id.
func (c *Controller) begin(mode Mode) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateAnalyzing {
		c.logger.Debug("dropping capture trigger during analysis",
			logging.String("mode", string(mode)),
			logging.String(logging.FieldCaptureID, c.captureID))
		return "", ErrAnalysisInFlight
	}
	if !CanTransition(c.state, StateCaptured) {
		return "", transitionError(c.state, StateCaptured)
	}

	c.state = StateAnalyzing
	c.captureID = uuid.NewString()
	c.lastError = ""

	c.logger.Info("capture started",
		logging.String(logging.FieldEventType, "capture_started"),
		logging.String(logging.FieldCaptureID, c.captureID),
		logging.String("mode", string(mode)))

	return c.captureID, nil
}

// dispatch performs the single outbound analysis call for a claimed capture.
func (c *Controller) dispatch(ctx context.Context, captureID string, mode Mode, req backend.ScanRequest, imageURI string) (*Result, error) {
	if err := req.Validate(); err != nil {
		c.fail(captureID, err.Error())
		return nil, err
	}

	started := time.Now()
	var (
		payload map[string]any
		err     error
	)
	if mode == ModeFresh {
		payload, err = c.analyzer.ScanFresh(ctx, req)
	} else {
		payload, err = c.analyzer.Scan(ctx, req)
	}
	elapsed := time.Since(started)

	if err != nil {
		message := "analysis request failed"
		if errors.Is(err, backend.ErrBarcodeNotFound) {
			message = "barcode not recognized; try still capture instead"
		}
		c.fail(captureID, message)
		return nil, fmt.Errorf("analyze capture: %w", err)
	}

	record := nutrition.Normalize(payload, imageURI)

	c.mu.Lock()
	c.state = StateIdle
	c.mu.Unlock()

	c.logger.Info("capture analyzed",
		logging.String(logging.FieldEventType, "capture_analyzed"),
		logging.String(logging.FieldCaptureID, captureID),
		logging.String("food", record.Name),
		logging.String("status", string(record.Status)),
		logging.Duration("elapsed", elapsed))

	return &Result{
		CaptureID:  captureID,
		Mode:       mode,
		Record:     record,
		RawPayload: payload,
		ImageURI:   imageURI,
		Elapsed:    elapsed,
	}, nil
}

// fail records an error outcome for a claimed capture.
func (c *Controller) fail(captureID, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = StateError
	c.lastError = message

	c.logger.Warn("capture failed",
		logging.String(logging.FieldEventType, "capture_failed"),
		logging.String(logging.FieldCaptureID, captureID),
		logging.String("message", message))
}
