package transform

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"clipline/internal/editplan"
	"clipline/internal/facecrop"
	"clipline/internal/fileutil"
	"clipline/internal/logging"
	"clipline/internal/services"
	"clipline/internal/silence"
)

// Runner executes ffmpeg and returns its combined output for diagnostics.
type Runner func(ctx context.Context, binary string, args []string) (string, error)

// ExecRunner is the production Runner backed by os/exec.
func ExecRunner(ctx context.Context, binary string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

// Executor issues deterministic ffmpeg invocations for each edit operation.
// It holds no job state; every call names its input and output explicitly.
type Executor struct {
	binary string
	runner Runner
	logger *slog.Logger
}

// NewExecutor constructs an Executor around the given ffmpeg binary.
func NewExecutor(binary string, logger *slog.Logger, opts ...Option) *Executor {
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	e := &Executor{
		binary: binary,
		runner: ExecRunner,
		logger: logging.NewComponentLogger(logger, "transform"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Option customizes Executor construction.
type Option func(*Executor)

// WithRunner replaces the ffmpeg invocation, used by tests.
func WithRunner(runner Runner) Option {
	return func(e *Executor) {
		if runner != nil {
			e.runner = runner
		}
	}
}

// Trim copies the [start, end) window of the input without re-encoding.
func (e *Executor) Trim(ctx context.Context, in, out string, start, end float64) error {
	return e.run(ctx, "trim", out,
		"-hide_banner", "-loglevel", "error",
		"-ss", seconds(start),
		"-i", in,
		"-t", seconds(end-start),
		"-c", "copy",
		"-y", out,
	)
}

// Speed re-times the clip by the given factor. Video frames are re-stamped
// with setpts; audio, when present, goes through a chain of atempo filters
// since a single atempo only accepts factors in [0.5, 2].
func (e *Executor) Speed(ctx context.Context, in, out string, factor float64, hasAudio bool) error {
	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-i", in,
		"-vf", "setpts=PTS/" + seconds(factor),
	}
	if hasAudio {
		args = append(args, "-af", AtempoChain(factor))
	} else {
		args = append(args, "-an")
	}
	args = append(args, "-y", out)
	return e.run(ctx, "speed", out, args...)
}

// FadeOut fades video and audio to black/silence over the final fadeSeconds
// of a clip clipDuration long.
func (e *Executor) FadeOut(ctx context.Context, in, out string, fadeSeconds, clipDuration float64, hasAudio bool) error {
	start := clipDuration - fadeSeconds
	if start < 0 {
		start = 0
	}
	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-i", in,
		"-vf", fmt.Sprintf("fade=t=out:st=%s:d=%s", seconds(start), seconds(fadeSeconds)),
	}
	if hasAudio {
		args = append(args, "-af", fmt.Sprintf("afade=t=out:st=%s:d=%s", seconds(start), seconds(fadeSeconds)))
	}
	args = append(args, "-y", out)
	return e.run(ctx, "fade_out", out, args...)
}

// CropScale applies the crop region to every frame, passing audio through
// untouched.
func (e *Executor) CropScale(ctx context.Context, in, out string, region facecrop.Region) error {
	return e.run(ctx, "crop", out,
		"-hide_banner", "-loglevel", "error",
		"-i", in,
		"-vf", region.FilterString(),
		"-c:a", "copy",
		"-y", out,
	)
}

// ExtractJoin cuts the keep segments out of the input and concatenates them
// in order with a single filter_complex graph, re-encoding once.
func (e *Executor) ExtractJoin(ctx context.Context, in, out string, segments []silence.Segment) error {
	if len(segments) == 0 {
		return services.Wrap(services.ErrValidation, "", "", "transcode-failed: no segments to join", nil)
	}
	var graph strings.Builder
	for i, seg := range segments {
		fmt.Fprintf(&graph, "[0:v]trim=start=%s:end=%s,setpts=PTS-STARTPTS[v%d];", seconds(seg.Start), seconds(seg.End), i)
		fmt.Fprintf(&graph, "[0:a]atrim=start=%s:end=%s,asetpts=PTS-STARTPTS[a%d];", seconds(seg.Start), seconds(seg.End), i)
	}
	for i := range segments {
		fmt.Fprintf(&graph, "[v%d][a%d]", i, i)
	}
	fmt.Fprintf(&graph, "concat=n=%d:v=1:a=1[outv][outa]", len(segments))

	return e.run(ctx, "extract_join", out,
		"-hide_banner", "-loglevel", "error",
		"-i", in,
		"-filter_complex", graph.String(),
		"-map", "[outv]",
		"-map", "[outa]",
		"-y", out,
	)
}

// ApplyOperations runs the validated plan in order, chaining intermediates in
// the output's directory. An empty plan degenerates to a byte copy.
func (e *Executor) ApplyOperations(ctx context.Context, in, out string, ops []editplan.Operation, duration float64, hasAudio bool) error {
	if len(ops) == 0 {
		if err := fileutil.CopyFile(in, out); err != nil {
			return services.Wrap(services.ErrExternalTool, "", "", "transcode-failed: copy unedited clip", err)
		}
		return nil
	}

	ext := filepath.Ext(out)
	base := strings.TrimSuffix(out, ext)
	current := in
	remaining := duration
	for i, op := range ops {
		target := out
		if i < len(ops)-1 {
			target = fmt.Sprintf("%s_op%d%s", base, i, ext)
		}
		var err error
		switch op.Kind {
		case editplan.KindTrim:
			err = e.Trim(ctx, current, target, op.Start, op.End)
		case editplan.KindSpeed:
			err = e.Speed(ctx, current, target, op.Factor, hasAudio)
		case editplan.KindFadeOut:
			err = e.FadeOut(ctx, current, target, op.Duration, remaining, hasAudio)
		default:
			err = services.Wrap(services.ErrValidation, "", "", "transcode-failed: unknown operation "+string(op.Kind), nil)
		}
		if err != nil {
			return err
		}
		remaining = op.ResultDuration(remaining)
		current = target
	}
	return nil
}

// AtempoChain builds an audio tempo filter expression for the factor,
// chaining steps so every stage stays inside atempo's [0.5, 2] range.
func AtempoChain(factor float64) string {
	var parts []string
	for factor > 2.0 {
		parts = append(parts, "atempo=2.0")
		factor /= 2.0
	}
	for factor < 0.5 {
		parts = append(parts, "atempo=0.5")
		factor /= 0.5
	}
	parts = append(parts, "atempo="+seconds(factor))
	return strings.Join(parts, ",")
}

func (e *Executor) run(ctx context.Context, operation, out string, args ...string) error {
	output, err := e.runner(ctx, e.binary, args)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "", "",
			fmt.Sprintf("transcode-failed: %s: %s", operation, tail(output)), err)
	}
	if !fileutil.NonEmptyFile(out) {
		return services.Wrap(services.ErrExternalTool, "", "",
			fmt.Sprintf("transcode-failed: %s: output missing or empty", operation), nil)
	}
	e.logger.Debug("ffmpeg operation complete",
		logging.String("operation", operation),
		logging.String("output", out),
	)
	return nil
}

func seconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
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
