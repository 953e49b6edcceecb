package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"nutriscan/internal/backend"
	"nutriscan/internal/camera"
	"nutriscan/internal/capture"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Continuously decode barcodes from the live camera feed",
		Long: `Hold the camera open and analyze every barcode the decoder reads.
Reads arriving while an analysis is in flight are dropped, and a cooldown
after each result stops the same package from being re-scanned while it is
still in front of the lens. Camera attach and detach events restart or
suspend the session automatically.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			controller, err := ctx.newController()
			if err != nil {
				return err
			}

			// One watch session per data directory.
			sessionLock := flock.New(filepath.Join(cfg.Paths.DataDir, "nutriscan.lock"))
			locked, err := sessionLock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire session lock: %w", err)
			}
			if !locked {
				return errors.New("another watch session is already running")
			}
			defer func() { _ = sessionLock.Unlock() }()

			signalCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := controller.GoLive(capture.ModeBarcode); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			decoder := camera.NewDecoder(cfg, logger)

			events := make(chan camera.HotplugEvent, 4)
			monitor := camera.NewHotplugMonitor(cfg, logger, func(_ context.Context, event camera.HotplugEvent) {
				select {
				case events <- event:
				default:
				}
			})
			if err := monitor.Start(signalCtx); err != nil {
				return err
			}
			defer monitor.Stop()

			codes, err := decoder.Start(signalCtx)
			if err != nil {
				fmt.Fprintf(out, "camera unavailable (%v); waiting for hotplug\n", err)
			}

			cooldown := time.Duration(cfg.Watch.DecodeCooldownSeconds) * time.Second
			var nextAccept time.Time

			fmt.Fprintln(out, "Watching for barcodes. Press Ctrl-C to stop.")
			for {
				select {
				case <-signalCtx.Done():
					decoder.Stop()
					return nil

				case event := <-events:
					switch event.Action {
					case "remove":
						decoder.Stop()
						codes = nil
						fmt.Fprintln(out, "Camera detached; session suspended.")
					case "add":
						if decoder.Running() {
							continue
						}
						codes, err = decoder.Start(signalCtx)
						if err != nil {
							fmt.Fprintf(out, "camera reattach failed: %v\n", err)
							continue
						}
						fmt.Fprintln(out, "Camera attached; session resumed.")
					}

				case code, ok := <-codes:
					if !ok {
						codes = nil
						continue
					}
					if !nextAccept.IsZero() && time.Now().Before(nextAccept) {
						continue
					}

					result, err := controller.SubmitBarcode(signalCtx, code)
					switch {
					case errors.Is(err, capture.ErrAnalysisInFlight):
						continue
					case errors.Is(err, backend.ErrBarcodeNotFound):
						fmt.Fprintf(out, "Barcode %s not recognized; use `nutriscan scan --still` for the label.\n", code)
						controller.Acknowledge()
					case err != nil:
						fmt.Fprintf(out, "analysis failed: %v\n", err)
						controller.Acknowledge()
					default:
						printRecord(out, result.Record)
					}

					nextAccept = time.Now().Add(cooldown)
					if err := controller.GoLive(capture.ModeBarcode); err != nil {
						return err
					}
				}
			}
		},
	}

	return cmd
}
