package ledger

import "time"

// RunStatus is the lifecycle of a recorded pipeline run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// Run is one recorded pipeline invocation.
type Run struct {
	ID         string
	StartStage int
	StopStage  int
	Status     RunStatus
	StartedAt  time.Time
	FinishedAt *time.Time
	Error      string
}

// StageRecord is the outcome of one stage within a run.
type StageRecord struct {
	RunID      string
	StageIndex int
	StageName  string
	Status     string
	StartedAt  time.Time
	FinishedAt *time.Time
	Error      string
}
