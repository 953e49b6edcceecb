package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"nutriscan/internal/backend"
	"nutriscan/internal/capture"
	"nutriscan/internal/foodlog"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var barcode string
	var still bool
	var fresh bool
	var logAfter bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Capture and analyze one food item",
		Long: `Analyze a single food item, either from a known barcode or from a
camera still. Pass --log to confirm the result into the remote food log,
which also stores the captured image locally and records the timestamp
join for the history view.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			modes := 0
			if barcode != "" {
				modes++
			}
			if still {
				modes++
			}
			if fresh {
				modes++
			}
			if modes != 1 {
				return errors.New("specify exactly one of --barcode, --still, or --fresh")
			}

			controller, err := ctx.newController()
			if err != nil {
				return err
			}

			var result *capture.Result
			switch {
			case barcode != "":
				result, err = controller.SubmitBarcode(cmd.Context(), barcode)
			case fresh:
				result, err = controller.CaptureStill(cmd.Context(), capture.ModeFresh)
			default:
				result, err = controller.CaptureStill(cmd.Context(), capture.ModeStill)
			}
			if err != nil {
				if errors.Is(err, backend.ErrBarcodeNotFound) {
					return fmt.Errorf("barcode not recognized; retry with --still to analyze the label instead")
				}
				return err
			}

			out := cmd.OutOrStdout()
			printRecord(out, result.Record)

			if !logAfter {
				return nil
			}

			client, err := ctx.newBackendClient()
			if err != nil {
				return err
			}
			store, err := ctx.openImageStore()
			if err != nil {
				return err
			}
			defer store.Close()
			index, err := ctx.openReconcileIndex()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			svc := foodlog.NewService(ctx.configValue(), client, store, index, logger)
			outcome, err := svc.Confirm(cmd.Context(), result.Record)
			if err != nil {
				return fmt.Errorf("confirm log: %w", err)
			}

			fmt.Fprintf(out, "Logged %s", result.Record.Name)
			if outcome.ImageLinked {
				fmt.Fprintf(out, " (image %s linked to %s)", outcome.ImageID, outcome.JoinKey)
			}
			fmt.Fprintln(out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&barcode, "barcode", "b", "", "Analyze a known barcode without using the camera")
	cmd.Flags().BoolVarP(&still, "still", "s", false, "Capture a still frame of a packaged label")
	cmd.Flags().BoolVarP(&fresh, "fresh", "f", false, "Capture a still frame of a fresh, unpackaged item")
	cmd.Flags().BoolVar(&logAfter, "log", false, "Confirm the result into the food log")

	return cmd
}
