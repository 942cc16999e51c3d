package logging

import (
	"context"
	"log/slog"

	"loom/internal/tools"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID is the standardized structured logging key for pipeline run identifiers.
	FieldRunID = "run_id"
	// FieldStage is the standardized structured logging key for pipeline stage names.
	FieldStage = "stage"
	// FieldStageIndex is the standardized structured logging key for pipeline stage indexes.
	FieldStageIndex = "stage_index"
	// FieldSubset is the standardized structured logging key for corpus subset names.
	FieldSubset = "subset"
	// FieldJobID is the standardized structured logging key for fan-out job identifiers.
	FieldJobID = "job_id"
	// FieldEventType is the standardized structured logging key for event classification.
	FieldEventType = "event_type"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 4)
	if id, ok := tools.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if stage, ok := tools.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	if subset, ok := tools.SubsetFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldSubset, subset))
	}
	if job, ok := tools.JobIDFromContext(ctx); ok {
		fields = append(fields, slog.Int(FieldJobID, job))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
