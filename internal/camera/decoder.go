package camera

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"

	"nutriscan/internal/config"
	"nutriscan/internal/logging"
)

// Decoder streams barcode reads from a camera by shelling out to zbarcam and
// scanning its line-oriented raw output. Each decoded symbol arrives as one
// line on stdout while the process holds the device open.
type Decoder struct {
	binary string
	device string
	logger *slog.Logger

	mu      sync.Mutex
	cmd     *exec.Cmd
	cancel  context.CancelFunc
	running bool
}

// NewDecoder constructs a Decoder from configuration.
func NewDecoder(cfg *config.Config, logger *slog.Logger) *Decoder {
	return &Decoder{
		binary: cfg.DecoderBinary(),
		device: strings.TrimSpace(cfg.Camera.Device),
		logger: logging.NewComponentLogger(logger, "barcode-decoder"),
	}
}

// Start launches the decoder process and returns a channel of decoded
// barcode values. The channel closes when the process exits or the context
// is cancelled. Only one decode session can run at a time.
func (d *Decoder) Start(ctx context.Context) (<-chan string, error) {
	if d.device == "" {
		return nil, fmt.Errorf("no camera device configured")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		return nil, fmt.Errorf("decoder already running on %s", d.device)
	}

	procCtx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(procCtx, d.binary, "--raw", "--nodisplay", d.device) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("attach decoder stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("start decoder on %s: %w", d.device, err)
	}

	d.cmd = cmd
	d.cancel = cancel
	d.running = true

	codes := make(chan string, 16)
	go func() {
		defer close(codes)
		ScanCodes(stdout, func(code string) {
			select {
			case codes <- code:
			default:
				d.logger.Debug("dropping barcode read, consumer is behind",
					logging.String("barcode", code))
			}
		})
		_ = cmd.Wait()
		d.mu.Lock()
		d.running = false
		d.cmd = nil
		d.cancel = nil
		d.mu.Unlock()
	}()

	d.logger.Info("barcode decode session started",
		logging.String(logging.FieldEventType, "decode_session_started"),
		logging.String("device", d.device))

	return codes, nil
}

// Stop terminates the running decode session, if any.
func (d *Decoder) Stop() {
	d.mu.Lock()
	cancel := d.cancel
	d.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Running reports whether a decode session is active.
func (d *Decoder) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}

// ScanCodes reads decoder output line by line and emits each non-empty
// trimmed line as a barcode value.
func ScanCodes(r io.Reader, emit func(string)) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		code := strings.TrimSpace(scanner.Text())
		if code == "" {
			continue
		}
		emit(code)
	}
}
