package facecrop

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// CommandDetector shells out to an external face detection command. The
// command receives the image path as its last argument and prints a JSON
// object with a "detections" array on stdout.
type CommandDetector struct {
	command string
	args    []string
}

// NewCommandDetector splits the configured command line into the executable
// and its leading arguments.
func NewCommandDetector(commandLine string) (*CommandDetector, error) {
	fields := strings.Fields(strings.TrimSpace(commandLine))
	if len(fields) == 0 {
		return nil, errors.New("facecrop: empty detector command")
	}
	return &CommandDetector{command: fields[0], args: fields[1:]}, nil
}

type detectorPayload struct {
	Detections []Detection `json:"detections"`
}

// Detect runs the detector against one image and decodes its report.
func (c *CommandDetector) Detect(ctx context.Context, imagePath string) ([]Detection, error) {
	args := append(append([]string(nil), c.args...), imagePath)
	cmd := exec.CommandContext(ctx, c.command, args...)
	output, err := cmd.Output()
	if err != nil {
		detail := ""
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			detail = strings.TrimSpace(string(exitErr.Stderr))
		}
		return nil, fmt.Errorf("face detector: %w: %s", err, detail)
	}
	var payload detectorPayload
	if err := json.Unmarshal(output, &payload); err != nil {
		return nil, fmt.Errorf("face detector output: %w", err)
	}
	return payload.Detections, nil
}

// FFmpegFrameExtractor returns a FrameExtractor that grabs a single frame at
// the requested timestamp using the given ffmpeg binary.
func FFmpegFrameExtractor(binary string) FrameExtractor {
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	return func(ctx context.Context, videoPath string, timestamp float64, outPath string) error {
		cmd := exec.CommandContext(ctx, binary,
			"-hide_banner", "-loglevel", "error",
			"-ss", strconv.FormatFloat(timestamp, 'f', 3, 64),
			"-i", videoPath,
			"-frames:v", "1",
			"-q:v", "2",
			"-y", outPath,
		)
		if output, err := cmd.CombinedOutput(); err != nil {
			return fmt.Errorf("extract frame at %.3fs: %w: %s", timestamp, err, strings.TrimSpace(string(output)))
		}
		return nil
	}
}
