package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var editText string
	var removeSilence bool
	var autoCropFace bool
	var presetID string
	var follow bool

	cmd := &cobra.Command{
		Use:   "submit <video-file>",
		Short: "Upload a video and queue it for processing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			fields := map[string]string{}
			if cmd.Flags().Changed("edit") {
				fields["edit_text"] = editText
			}
			if cmd.Flags().Changed("remove-silence") {
				fields["remove_silence"] = strconv.FormatBool(removeSilence)
			}
			if cmd.Flags().Changed("auto-crop-face") {
				fields["auto_crop_face"] = strconv.FormatBool(autoCropFace)
			}
			if presetID != "" {
				fields["preset_id"] = presetID
			}

			upload, err := uploadFile(cmd.Context(), ctx, args[0], fields)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Queued job %s (asset %s)\n", upload.JobID, upload.AssetID)

			if follow {
				return followJob(cmd.Context(), ctx, upload.JobID, out)
			}
			fmt.Fprintf(out, "Track progress with `clipline status %s --follow`\n", upload.JobID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&editText, "edit", "e", "", "Natural-language edit instructions")
	cmd.Flags().BoolVar(&removeSilence, "remove-silence", false, "Cut silent passages from the clip")
	cmd.Flags().BoolVar(&autoCropFace, "auto-crop-face", false, "Crop to a face-centered 9:16 portrait frame")
	cmd.Flags().StringVarP(&presetID, "preset", "p", "", "Preset id supplying default options")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Stream job progress until it finishes")
	return cmd
}

func uploadFile(ctx context.Context, cc *commandContext, path string, fields map[string]string) (*uploadView, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open video: %w", err)
	}
	defer file.Close()

	// Stream the multipart body through a pipe so large files never land in
	// memory.
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)
	go func() {
		part, err := writer.CreateFormFile("file", filepath.Base(path))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			pw.CloseWithError(err)
			return
		}
		for name, value := range fields {
			if err := writer.WriteField(name, value); err != nil {
				pw.CloseWithError(err)
				return
			}
		}
		pw.CloseWithError(writer.Close())
	}()

	resp, err := cc.do(ctx, http.MethodPost, "/api/upload", pr, writer.FormDataContentType())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		return nil, decodeAPIError(resp)
	}
	var upload uploadView
	if err := json.NewDecoder(resp.Body).Decode(&upload); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}
	return &upload, nil
}
