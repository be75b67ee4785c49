package engine

import (
	"context"
	"fmt"

	"clipline/internal/job"
	"clipline/internal/logging"
	"clipline/internal/services"
	"clipline/internal/silence"
)

// run drives one job from Queued to a terminal state. Every transition is
// published before the work behind it starts, so subscribers always see the
// stage a job is about to enter. Failures stop the pipeline immediately;
// intermediates already written stay on disk for inspection.
func (e *Engine) run(ctx context.Context, j *job.Job) {
	logger := logging.WithContext(ctx, e.logger)
	stages := j.Stages
	total := len(stages)

	if total == 0 {
		if err := e.copyDirect(j); err != nil {
			logger.Error("direct copy failed", logging.Error(err))
			e.publish(j.ID, job.Failed("", "transcode-failed: "+err.Error()))
			return
		}
		e.publish(j.ID, job.Succeeded(e.outputPath(j)))
		logger.Info("job complete without processing stages")
		return
	}

	current := j.Request.SourcePath
	duration := j.Request.Duration
	for i, stage := range stages {
		e.publish(j.ID, job.Running(stage, float64(i)/float64(total)))

		out := e.intermediatePath(j, i)
		stageCtx := logging.WithStage(ctx, string(stage))
		next, err := e.runStage(stageCtx, j, stage, current, out, duration)
		if err != nil {
			reason := services.Reason(err)
			logging.WithContext(stageCtx, e.logger).Error("stage failed",
				logging.String("reason", reason),
				logging.Error(err),
			)
			e.publish(j.ID, job.Failed(stage, reason))
			return
		}
		current = out
		duration = next
	}

	final := e.outputPath(j)
	if err := e.moveOutput(current, final); err != nil {
		logger.Error("finalize output failed", logging.Error(err))
		e.publish(j.ID, job.Failed(stages[total-1], "transcode-failed: "+err.Error()))
		return
	}
	e.publish(j.ID, job.Succeeded(final))
	logger.Info("job complete",
		logging.String("output", final),
		logging.Int("stages", total),
	)
}

// runStage executes one stage, reading current and writing out. It returns
// the clip duration after the stage for downstream bookkeeping.
func (e *Engine) runStage(ctx context.Context, j *job.Job, stage job.Stage, current, out string, duration float64) (float64, error) {
	switch stage {
	case job.StageTranslateEdits:
		ops, err := e.translator.Translate(ctx, j.Request.EditText, duration)
		if err != nil {
			return 0, err
		}
		if err := e.executor.ApplyOperations(ctx, current, out, ops, duration, j.Request.HasAudio); err != nil {
			return 0, err
		}
		for _, op := range ops {
			duration = op.ResultDuration(duration)
		}
		return duration, nil

	case job.StageRemoveSilence:
		segments, err := e.segmenter.KeepSegments(ctx, current, duration)
		if err != nil {
			return 0, err
		}
		if err := e.executor.ExtractJoin(ctx, current, out, segments); err != nil {
			return 0, err
		}
		return silence.TotalDuration(segments), nil

	case job.StageCropFace:
		region, err := e.cropper.Estimate(ctx, current, duration, j.Request.Width, j.Request.Height)
		if err != nil {
			return 0, err
		}
		if err := e.executor.CropScale(ctx, current, out, region); err != nil {
			return 0, err
		}
		return duration, nil
	}
	return 0, services.Wrap(services.ErrConfiguration, string(stage), "", fmt.Sprintf("unknown stage %q", stage), nil)
}
