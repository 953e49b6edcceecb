package camera

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"nutriscan/internal/config"
	"nutriscan/internal/logging"
)

// Executor abstracts command execution for the grabber.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) ([]byte, error)
}

// commandExecutor executes commands using os/exec.
type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	return cmd.Output()
}

// Grabber captures single stills from a V4L2 camera by shelling out to
// ffmpeg. Stills are always requested at the probed native resolution so the
// analysis backend receives the sharpest frame the sensor can produce.
type Grabber struct {
	grabBinary  string
	probeBinary string
	device      string
	widthHint   int
	heightHint  int
	quality     int
	timeout     time.Duration
	exec        Executor
	logger      *slog.Logger
}

// NewGrabber constructs a Grabber from configuration.
func NewGrabber(cfg *config.Config, logger *slog.Logger) *Grabber {
	return newGrabber(cfg, logger, commandExecutor{})
}

// NewGrabberWithExecutor allows injecting a custom executor for testing.
func NewGrabberWithExecutor(cfg *config.Config, logger *slog.Logger, exec Executor) *Grabber {
	if exec == nil {
		exec = commandExecutor{}
	}
	return newGrabber(cfg, logger, exec)
}

func newGrabber(cfg *config.Config, logger *slog.Logger, exec Executor) *Grabber {
	timeout := time.Duration(cfg.Camera.SnapshotTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Grabber{
		grabBinary:  cfg.GrabberBinary(),
		probeBinary: cfg.ProbeBinary(),
		device:      strings.TrimSpace(cfg.Camera.Device),
		widthHint:   cfg.Camera.WidthHint,
		heightHint:  cfg.Camera.HeightHint,
		quality:     cfg.Camera.StillQuality,
		timeout:     timeout,
		exec:        exec,
		logger:      logging.NewComponentLogger(logger, "camera"),
	}
}

// Snapshot grabs one still frame from the camera. The capture resolution is
// probed from the device first; when probing fails the configured hints are
// used instead.
func (g *Grabber) Snapshot(ctx context.Context) (*Frame, error) {
	if g.device == "" {
		return nil, errors.New("no camera device configured")
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	width, height := g.resolution(ctx)

	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-f", "v4l2",
		"-video_size", fmt.Sprintf("%dx%d", width, height),
		"-i", g.device,
		"-frames:v", "1",
		"-q:v", fmt.Sprintf("%d", qualityToScale(g.quality)),
		"-f", "image2",
		"-",
	}

	started := time.Now()
	data, err := g.exec.Run(ctx, g.grabBinary, args)
	if err != nil {
		return nil, fmt.Errorf("capture still from %s: %w", g.device, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("capture still from %s: empty frame", g.device)
	}

	g.logger.Debug("still captured",
		logging.String("device", g.device),
		logging.Int("width", width),
		logging.Int("height", height),
		logging.Int("bytes", len(data)),
		logging.Duration("elapsed", time.Since(started)))

	return &Frame{
		Data:       data,
		Width:      width,
		Height:     height,
		CapturedAt: time.Now().UTC(),
	}, nil
}

// resolution probes the device's current format and falls back to the
// configured hints when the probe fails.
func (g *Grabber) resolution(ctx context.Context) (int, int) {
	output, err := g.exec.Run(ctx, g.probeBinary, []string{"--device", g.device, "--get-fmt-video"})
	if err == nil {
		if w, h, ok := ParseFormatResolution(string(output)); ok {
			return w, h
		}
	}
	if err != nil {
		g.logger.Debug("resolution probe failed; using configured hints",
			logging.Error(err),
			logging.String("device", g.device))
	}
	return g.widthHint, g.heightHint
}

// qualityToScale maps a 1-100 JPEG quality percentage onto ffmpeg's inverted
// 2-31 qscale range.
func qualityToScale(quality int) int {
	if quality < 1 {
		quality = 1
	}
	if quality > 100 {
		quality = 100
	}
	scale := 31 - (quality*29)/100
	if scale < 2 {
		scale = 2
	}
	return scale
}
