package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"nutriscan/internal/deps"
)

func newPingCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check backend reachability and local tooling",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			client, err := ctx.newBackendClient()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if client.Ping(cmd.Context()) {
				fmt.Fprintf(out, "backend %s: ok\n", cfg.Backend.BaseURL)
			} else {
				fmt.Fprintf(out, "backend %s: unreachable\n", cfg.Backend.BaseURL)
			}

			for _, status := range deps.CheckBinaries(deps.CaptureRequirements(cfg)) {
				state := "ok"
				if !status.Available {
					state = "missing"
					if status.Optional {
						state = "missing (optional)"
					}
					if status.Detail != "" {
						state += " - " + status.Detail
					}
				}
				fmt.Fprintf(out, "%s (%s): %s\n", status.Name, status.Command, state)
			}
			return nil
		},
	}
}
