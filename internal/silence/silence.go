package silence

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"clipline/internal/logging"
	"clipline/internal/services"
)

// Detection thresholds passed to ffmpeg silencedetect. Quieter than -30dB for
// at least half a second counts as silence.
const (
	NoiseFloor = "-30dB"
	MinSilence = 0.5
)

// Segment is a half-open [Start, End) interval in seconds.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// Runner executes ffmpeg and returns its stderr output. silencedetect logs
// its findings to stderr, so that is the stream we capture.
type Runner func(ctx context.Context, binary string, args []string) (string, error)

// ExecRunner runs ffmpeg via os/exec. A non-zero exit still returns the
// captured stderr so callers can include tool output in the failure.
func ExecRunner(ctx context.Context, binary string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return stderr.String(), fmt.Errorf("ffmpeg silencedetect: %w", err)
	}
	return stderr.String(), nil
}

// Segmenter finds audible regions of a clip by complementing the silence
// intervals ffmpeg reports.
type Segmenter struct {
	binary string
	runner Runner
	logger *slog.Logger
}

// NewSegmenter constructs a Segmenter that invokes the given ffmpeg binary.
func NewSegmenter(binary string, logger *slog.Logger, opts ...Option) *Segmenter {
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	s := &Segmenter{
		binary: binary,
		runner: ExecRunner,
		logger: logging.NewComponentLogger(logger, "silence"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Option customizes Segmenter construction.
type Option func(*Segmenter)

// WithRunner replaces the ffmpeg invocation, used by tests.
func WithRunner(runner Runner) Option {
	return func(s *Segmenter) {
		if runner != nil {
			s.runner = runner
		}
	}
}

// KeepSegments runs silence detection against the clip and returns the
// ordered, disjoint audible segments covering everything outside detected
// silence. A clip that is silent end to end fails with reason
// "no-audible-content".
func (s *Segmenter) KeepSegments(ctx context.Context, path string, duration float64) ([]Segment, error) {
	if duration <= 0 {
		return nil, services.Wrap(services.ErrValidation, "removeSilence", "", "non-positive clip duration", nil)
	}

	args := []string{
		"-hide_banner", "-nostats",
		"-i", path,
		"-af", fmt.Sprintf("silencedetect=noise=%s:d=%s", NoiseFloor, strconv.FormatFloat(MinSilence, 'f', -1, 64)),
		"-f", "null", "-",
	}
	stderr, err := s.runner(ctx, s.binary, args)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "removeSilence", "silencedetect",
			tail(stderr), err)
	}

	silences := ParseSilences(stderr, duration)
	keep := Complement(silences, duration)
	if len(keep) == 0 {
		return nil, services.Wrap(services.ErrValidation, "removeSilence", "", "no-audible-content", nil)
	}

	s.logger.Info("silence detection complete",
		logging.Int("silences", len(silences)),
		logging.Int("keep_segments", len(keep)),
		logging.Float64("duration", duration),
	)
	return keep, nil
}

var (
	silenceStartRe = regexp.MustCompile(`silence_start:\s*(-?[0-9.]+)`)
	silenceEndRe   = regexp.MustCompile(`silence_end:\s*(-?[0-9.]+)`)
)

// ParseSilences extracts silence intervals from silencedetect stderr output.
// A trailing silence_start with no matching end means the clip is silent
// through to its final frame.
func ParseSilences(stderr string, duration float64) []Segment {
	var silences []Segment
	start := 0.0
	haveStart := false
	for _, line := range strings.Split(stderr, "\n") {
		if m := silenceStartRe.FindStringSubmatch(line); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				start, haveStart = v, true
			}
			continue
		}
		if m := silenceEndRe.FindStringSubmatch(line); m != nil && haveStart {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				silences = append(silences, Segment{Start: max(start, 0), End: min(v, duration)})
			}
			haveStart = false
		}
	}
	if haveStart && start < duration {
		silences = append(silences, Segment{Start: max(start, 0), End: duration})
	}
	return silences
}

// Complement returns the audible segments left over once the silence
// intervals are removed from [0, duration). Every gap between silences is
// kept, however short: the result is ordered, disjoint, and together with
// the silences covers [0, duration) exactly.
func Complement(silences []Segment, duration float64) []Segment {
	var keep []Segment
	cursor := 0.0
	for _, s := range silences {
		if s.Start > cursor {
			keep = append(keep, Segment{Start: cursor, End: s.Start})
		}
		if s.End > cursor {
			cursor = s.End
		}
	}
	if cursor < duration {
		keep = append(keep, Segment{Start: cursor, End: duration})
	}
	return keep
}

// TotalDuration sums the lengths of the segments.
func TotalDuration(segments []Segment) float64 {
	total := 0.0
	for _, seg := range segments {
		total += seg.Duration()
	}
	return total
}

func tail(output string) string {
	output = strings.TrimSpace(output)
	if output == "" {
		return "tool produced no output"
	}
	lines := strings.Split(output, "\n")
	if len(lines) > 3 {
		lines = lines[len(lines)-3:]
	}
	return strings.Join(lines, "; ")
}
