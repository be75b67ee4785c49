package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "jobs",
		Short: "List submitted jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var views []jobView
			if err := ctx.getJSON(cmd.Context(), "/api/jobs", &views); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(views) == 0 {
				fmt.Fprintln(out, "No jobs submitted yet")
				return nil
			}

			headers := []string{"ID", "NAME", "STATE", "STAGE", "PROGRESS", "UPDATED"}
			rows := make([][]string, 0, len(views))
			for _, view := range views {
				rows = append(rows, []string{
					view.ID,
					truncate(view.OriginalName, 32),
					stateLabel(view.Status.State),
					formatStage(view.Status),
					formatPercent(view.Status),
					formatAge(view.UpdatedAt),
				})
			}
			fmt.Fprintln(out, renderTable(headers, rows, 4, 5))
			return nil
		},
	}
}
