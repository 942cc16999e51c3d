package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"loom/internal/logging"
	"loom/internal/tools"
)

// Runner executes stages whose index falls inside an inclusive range.
type Runner struct {
	stages   []Stage
	logger   *slog.Logger
	recorder Recorder
}

// Option configures the runner.
type Option func(*Runner)

// WithRecorder attaches a stage outcome recorder (the run ledger).
func WithRecorder(recorder Recorder) Option {
	return func(r *Runner) {
		if recorder != nil {
			r.recorder = recorder
		}
	}
}

// NewRunner constructs a runner over the given stages, ordered by
// ascending index. Duplicate indexes are rejected.
func NewRunner(stages []Stage, logger *slog.Logger, opts ...Option) (*Runner, error) {
	if len(stages) == 0 {
		return nil, fmt.Errorf("pipeline requires at least one stage")
	}
	ordered := make([]Stage, len(stages))
	copy(ordered, stages)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })
	for i := 1; i < len(ordered); i++ {
		if ordered[i].Index == ordered[i-1].Index {
			return nil, fmt.Errorf("duplicate stage index %d (%s, %s)", ordered[i].Index, ordered[i-1].Name, ordered[i].Name)
		}
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	runner := &Runner{stages: ordered, logger: logger}
	for _, opt := range opts {
		opt(runner)
	}
	return runner, nil
}

// Stages returns the ordered stage descriptors.
func (r *Runner) Stages() []Stage {
	cp := make([]Stage, len(r.stages))
	copy(cp, r.stages)
	return cp
}

// Run executes, in ascending index order, every stage whose index lies
// in [start, stop]. The first stage failure aborts the run immediately;
// stages with a satisfied completion predicate are skipped and
// recorded as such. Results for all visited stages are returned
// alongside the terminal error, if any.
func (r *Runner) Run(ctx context.Context, start, stop int) ([]Result, error) {
	if start > stop {
		return nil, fmt.Errorf("invalid stage range: start %d exceeds stop %d", start, stop)
	}

	var results []Result
	for _, stage := range r.stages {
		if stage.Index < start || stage.Index > stop {
			continue
		}
		result, err := r.runStage(ctx, stage)
		results = append(results, result)
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

func (r *Runner) runStage(ctx context.Context, stage Stage) (Result, error) {
	stageCtx := tools.WithStage(ctx, stage.Name)
	stageLogger := logging.WithContext(stageCtx, r.logger).With(
		logging.Int(logging.FieldStageIndex, stage.Index),
	)

	if r.recorder != nil {
		if err := r.recorder.StageStarted(stageCtx, stage.Index, stage.Name); err != nil {
			return Result{Index: stage.Index, Name: stage.Name, Status: StageFailed, Err: err},
				fmt.Errorf("record stage start: %w", err)
		}
	}

	if stage.Done != nil {
		done, err := stage.Done(stageCtx)
		if err != nil {
			result := Result{Index: stage.Index, Name: stage.Name, Status: StageFailed, Err: err}
			r.finishStage(stageCtx, stageLogger, result, time.Time{})
			return result, err
		}
		if done {
			result := Result{Index: stage.Index, Name: stage.Name, Status: StageSkipped}
			stageLogger.Info(
				"stage skipped",
				logging.String(logging.FieldEventType, "stage_skip"),
			)
			if r.recorder != nil {
				if err := r.recorder.StageFinished(stageCtx, result); err != nil {
					stageLogger.Error("failed to record stage skip", logging.Error(err))
				}
			}
			return result, nil
		}
	}

	stageStart := time.Now()
	stageLogger.Info(
		"stage started",
		logging.String(logging.FieldEventType, "stage_start"),
	)

	if stage.Run == nil {
		err := fmt.Errorf("stage %s has no body", stage.Name)
		result := Result{Index: stage.Index, Name: stage.Name, Status: StageFailed, Err: err}
		r.finishStage(stageCtx, stageLogger, result, stageStart)
		return result, err
	}

	if err := stage.Run(stageCtx); err != nil {
		result := Result{Index: stage.Index, Name: stage.Name, Status: StageFailed, Err: err}
		r.finishStage(stageCtx, stageLogger, result, stageStart)
		return result, err
	}

	result := Result{Index: stage.Index, Name: stage.Name, Status: StageCompleted}
	r.finishStage(stageCtx, stageLogger, result, stageStart)
	return result, nil
}

func (r *Runner) finishStage(ctx context.Context, logger *slog.Logger, result Result, started time.Time) {
	if result.Status == StageFailed {
		logger.Error(
			"stage failed",
			logging.String(logging.FieldEventType, "stage_failure"),
			logging.Error(result.Err),
		)
	} else {
		logger.Info(
			"stage completed",
			logging.String(logging.FieldEventType, "stage_complete"),
			logging.Duration("stage_duration", time.Since(started)),
		)
	}
	if r.recorder != nil {
		if err := r.recorder.StageFinished(ctx, result); err != nil {
			logger.Error("failed to record stage result", logging.Error(err))
		}
	}
}
