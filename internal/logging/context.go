package logging

import (
	"context"
	"log/slog"
	"strings"
)

// Standardized field keys shared by all components.
const (
	FieldComponent = "component"
	FieldStage     = "stage"
	FieldJobID     = "job_id"
	FieldEventType = "event_type"
)

type contextKey string

const (
	ctxStage contextKey = "stage"
	ctxJobID contextKey = "job_id"
)

// WithStage annotates the context with the active pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	stage = strings.TrimSpace(stage)
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxStage, stage)
}

// WithJobID annotates the context with the job identifier.
func WithJobID(ctx context.Context, jobID string) context.Context {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxJobID, jobID)
}

// WithContext returns a logger enriched with any stage/job fields carried by ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if ctx == nil {
		return logger
	}
	if stage, ok := ctx.Value(ctxStage).(string); ok && stage != "" {
		logger = logger.With(String(FieldStage, stage))
	}
	if jobID, ok := ctx.Value(ctxJobID).(string); ok && jobID != "" {
		logger = logger.With(String(FieldJobID, jobID))
	}
	return logger
}
