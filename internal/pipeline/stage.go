package pipeline

import "context"

// Stage describes one numbered phase of the pipeline.
type Stage struct {
	// Index orders the stage and is the value matched against the
	// --stage/--stop-stage range.
	Index int
	// Name is the human-readable stage label used in logs and the
	// run ledger.
	Name string
	// Done reports whether the stage's outputs already exist, letting
	// the runner skip it on resume. Nil means the stage always runs.
	Done func(ctx context.Context) (bool, error)
	// Run performs the stage's work, typically invoking external
	// tools. Errors abort the whole run.
	Run func(ctx context.Context) error
}

// StageStatus is the terminal state of one stage within a run.
type StageStatus string

const (
	StageCompleted StageStatus = "completed"
	StageSkipped   StageStatus = "skipped"
	StageFailed    StageStatus = "failed"
)

// Result records the outcome of a single executed stage.
type Result struct {
	Index  int
	Name   string
	Status StageStatus
	Err    error
}

// Recorder observes stage outcomes; the run ledger implements it.
type Recorder interface {
	StageStarted(ctx context.Context, index int, name string) error
	StageFinished(ctx context.Context, result Result) error
}
