package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newShareCommand(ctx *commandContext) *cobra.Command {
	var expiresIn int64
	var maxViews int

	cmd := &cobra.Command{
		Use:   "share <job-id>",
		Short: "Create a public playback link for a finished job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]any{}
			if expiresIn > 0 {
				payload["expires_in_seconds"] = expiresIn
			}
			if maxViews > 0 {
				payload["max_views"] = maxViews
			}

			var share shareView
			if err := ctx.postJSON(cmd.Context(), "/api/video/"+args[0]+"/share", payload, &share); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			base, err := ctx.baseURL()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Share link: %s%s\n", base, share.URL)
			if share.ExpiresAt != nil {
				fmt.Fprintf(out, "Expires:    %s\n", share.ExpiresAt.Format("2006-01-02 15:04:05 MST"))
			}
			if share.MaxViews > 0 {
				fmt.Fprintf(out, "Max views:  %d\n", share.MaxViews)
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&expiresIn, "expires", 0, "Seconds until the link expires (0 = never)")
	cmd.Flags().IntVar(&maxViews, "max-views", 0, "Maximum number of views (0 = unlimited)")
	return cmd
}
