package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newImagesCommand(ctx *commandContext) *cobra.Command {
	imagesCmd := &cobra.Command{
		Use:   "images",
		Short: "Inspect and maintain the local image store",
	}

	imagesCmd.AddCommand(newImagesListCommand(ctx))
	imagesCmd.AddCommand(newImagesPurgeCommand(ctx))

	return imagesCmd
}

func newImagesListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored capture images, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openImageStore()
			if err != nil {
				return err
			}
			defer store.Close()

			images, err := store.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("list images: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(images) == 0 {
				fmt.Fprintln(out, "No stored images.")
				return nil
			}

			rows := make([][]string, 0, len(images))
			for _, image := range images {
				rows = append(rows, []string{
					image.ID,
					strconv.FormatInt(image.Size, 10),
					image.CreatedAt.Format("2006-01-02 15:04:05"),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Bytes", "Created"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
}

func newImagesPurgeCommand(ctx *commandContext) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete stored images older than the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if days <= 0 {
				days = cfg.ImageStore.PurgeDays
			}

			store, err := ctx.openImageStore()
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.PurgeOlderThan(cmd.Context(), days)
			if err != nil {
				return fmt.Errorf("purge images: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d image(s) older than %d day(s)\n", removed, days)
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "Retention window in days (defaults to the configured value)")
	return cmd
}
