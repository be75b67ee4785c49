package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"clipline/internal/store"
)

func newPresetsCommand(ctx *commandContext) *cobra.Command {
	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "Manage processing presets",
	}
	presetsCmd.AddCommand(newPresetsListCommand(ctx))
	presetsCmd.AddCommand(newPresetsCreateCommand(ctx))
	presetsCmd.AddCommand(newPresetsDeleteCommand(ctx))
	return presetsCmd
}

func newPresetsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var views []presetView
			if err := ctx.getJSON(cmd.Context(), "/api/presets", &views); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(views) == 0 {
				fmt.Fprintln(out, "No presets saved yet")
				return nil
			}

			headers := []string{"ID", "NAME", "EDIT TEXT", "SILENCE", "FACE CROP"}
			rows := make([][]string, 0, len(views))
			for _, view := range views {
				rows = append(rows, []string{
					view.ID,
					view.Name,
					truncate(view.Config.EditText, 40),
					yesNo(view.Config.RemoveSilence),
					yesNo(view.Config.AutoCropFace),
				})
			}
			fmt.Fprintln(out, renderTable(headers, rows))
			return nil
		},
	}
}

func newPresetsCreateCommand(ctx *commandContext) *cobra.Command {
	var description string
	var editText string
	var removeSilence bool
	var autoCropFace bool

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Save a new preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := struct {
				Name        string             `json:"name"`
				Description string             `json:"description"`
				Config      store.PresetConfig `json:"config"`
			}{
				Name:        args[0],
				Description: description,
				Config: store.PresetConfig{
					EditText:      editText,
					RemoveSilence: removeSilence,
					AutoCropFace:  autoCropFace,
				},
			}
			var view presetView
			if err := ctx.postJSON(cmd.Context(), "/api/presets", payload, &view); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created preset %s (%s)\n", view.Name, view.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Preset description")
	cmd.Flags().StringVarP(&editText, "edit", "e", "", "Default edit instructions")
	cmd.Flags().BoolVar(&removeSilence, "remove-silence", false, "Cut silent passages by default")
	cmd.Flags().BoolVar(&autoCropFace, "auto-crop-face", false, "Crop to a portrait frame by default")
	return cmd
}

func newPresetsDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <preset-id>",
		Short: "Delete a preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.delete(cmd.Context(), "/api/presets/"+args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted preset %s\n", args[0])
			return nil
		},
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
