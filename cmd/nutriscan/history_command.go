package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"nutriscan/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the remote food log with locally captured images attached",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
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

			dashboard, err := client.Dashboard(cmd.Context(), cfg.Backend.UserID)
			if err != nil {
				return fmt.Errorf("fetch dashboard: %w", err)
			}

			remote := dashboard.History
			if limit > 0 && len(remote) > limit {
				remote = remote[:limit]
			}

			hydrator := history.NewHydrator(index, store, logger)
			entries := hydrator.Hydrate(cmd.Context(), remote)

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No history entries.")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				image := "-"
				if entry.ImageURI != "" {
					image = entry.ImageID
				}
				rows = append(rows, []string{
					entry.Time,
					entry.Food,
					formatNumber(entry.Calories),
					formatNumber(entry.Macros.Sugar),
					image,
					strings.Join(entry.Swaps, ", "),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Time", "Food", "Calories", "Sugar", "Image", "Swaps"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
			))

			fmt.Fprintf(out, "Daily progress: %s%% sugar, %s%% calories\n",
				formatNumber(dashboard.Progress.SugarPercent),
				formatNumber(dashboard.Progress.CaloriesPercent))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most this many entries (0 = all)")
	return cmd
}
