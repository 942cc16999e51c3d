package tools

import "context"

type contextKey string

const (
	runIDKey  contextKey = "run_id"
	stageKey  contextKey = "stage"
	subsetKey contextKey = "subset"
	jobIDKey  contextKey = "job_id"
)

// WithRunID annotates context with the pipeline run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the pipeline run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(stageKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithSubset annotates context with the corpus subset name.
func WithSubset(ctx context.Context, subset string) context.Context {
	if subset == "" {
		return ctx
	}
	return context.WithValue(ctx, subsetKey, subset)
}

// SubsetFromContext returns the subset name if present.
func SubsetFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(subsetKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithJobID annotates context with the fan-out job identifier.
func WithJobID(ctx context.Context, job int) context.Context {
	if job < 0 {
		return ctx
	}
	return context.WithValue(ctx, jobIDKey, job)
}

// JobIDFromContext returns the fan-out job identifier if present.
func JobIDFromContext(ctx context.Context) (int, bool) {
	if v, ok := ctx.Value(jobIDKey).(int); ok {
		return v, true
	}
	return 0, false
}
