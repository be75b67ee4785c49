package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"clipline/internal/job"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var follow bool

	cmd := &cobra.Command{
		Use:   "status <job-id>",
		Short: "Show the current state of a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if follow {
				return followJob(cmd.Context(), ctx, args[0], out)
			}
			var status job.Status
			if err := ctx.getJSON(cmd.Context(), "/api/video/"+args[0]+"/status", &status); err != nil {
				return err
			}
			fmt.Fprintln(out, describeStatus(status))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Stream updates until the job finishes")
	return cmd
}

// followJob consumes the server-sent event stream for a job and prints each
// status transition until a terminal state arrives.
func followJob(ctx context.Context, cc *commandContext, jobID string, out io.Writer) error {
	base, err := cc.baseURL()
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/api/video/"+jobID+"/status/stream", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	// Streams outlive the default request timeout, so use a bare client.
	resp, err := (&http.Client{}).Do(req)
	if err != nil {
		return fmt.Errorf("connect to daemon at %s: %w (is cliplined running?)", base, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decodeAPIError(resp)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var last job.Status
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var status job.Status
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &status); err != nil {
			return fmt.Errorf("decode status event: %w", err)
		}
		last = status
		fmt.Fprintln(out, describeStatus(status))
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if last.State == job.StateFailed {
		return fmt.Errorf("job %s failed: %s", jobID, last.Reason)
	}
	return nil
}
