package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check daemon and tool availability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var health healthView
			if err := ctx.getJSON(cmd.Context(), "/api/health", &health); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			kind := statusOK
			if health.Status != "ok" {
				kind = statusWarn
			}
			fmt.Fprintln(out, renderStatusLine("Daemon", kind, health.Status, colorize))
			for _, check := range health.Checks {
				kind := statusOK
				if !check.Available {
					kind = statusError
				}
				fmt.Fprintln(out, renderStatusLine(check.Name, kind, check.Detail, colorize))
			}
			return nil
		},
	}
}
