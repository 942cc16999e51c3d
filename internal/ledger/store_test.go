package ledger_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"loom/internal/ledger"
)

func openStore(t *testing.T) *ledger.Store {
	t.Helper()
	store, err := ledger.Open(filepath.Join(t.TempDir(), "loom.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestRunLifecycle(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	run := ledger.Run{ID: "run-1", StartStage: 0, StopStage: 3}
	if err := store.BeginRun(ctx, run); err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}
	if err := store.StageStarted(ctx, "run-1", 0, "dataprep"); err != nil {
		t.Fatalf("StageStarted failed: %v", err)
	}
	if err := store.StageFinished(ctx, "run-1", 0, "completed", ""); err != nil {
		t.Fatalf("StageFinished failed: %v", err)
	}
	if err := store.StageStarted(ctx, "run-1", 1, "features"); err != nil {
		t.Fatalf("StageStarted failed: %v", err)
	}
	if err := store.StageFinished(ctx, "run-1", 1, "failed", "extractor exited 1"); err != nil {
		t.Fatalf("StageFinished failed: %v", err)
	}
	if err := store.FinishRun(ctx, "run-1", ledger.RunFailed, "extractor exited 1"); err != nil {
		t.Fatalf("FinishRun failed: %v", err)
	}

	runs, err := store.RecentRuns(ctx, 5)
	if err != nil {
		t.Fatalf("RecentRuns returned error: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	got := runs[0]
	if got.ID != "run-1" || got.Status != ledger.RunFailed {
		t.Fatalf("unexpected run: %+v", got)
	}
	if got.FinishedAt == nil {
		t.Fatal("expected finished timestamp")
	}
	if got.Error != "extractor exited 1" {
		t.Fatalf("unexpected error message: %q", got.Error)
	}

	stages, err := store.StagesForRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("StagesForRun returned error: %v", err)
	}
	if len(stages) != 2 {
		t.Fatalf("expected 2 stage records, got %d", len(stages))
	}
	if stages[0].StageName != "dataprep" || stages[0].Status != "completed" {
		t.Fatalf("unexpected first stage record: %+v", stages[0])
	}
	if stages[1].StageName != "features" || stages[1].Status != "failed" {
		t.Fatalf("unexpected second stage record: %+v", stages[1])
	}
}

func TestBeginRunRequiresID(t *testing.T) {
	store := openStore(t)
	if err := store.BeginRun(context.Background(), ledger.Run{}); err == nil {
		t.Fatal("expected error for missing run ID")
	}
}

func TestStageStartedIsRerunSafe(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	if err := store.BeginRun(ctx, ledger.Run{ID: "run-2", StopStage: 1}); err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}
	if err := store.StageStarted(ctx, "run-2", 0, "dataprep"); err != nil {
		t.Fatalf("first StageStarted failed: %v", err)
	}
	if err := store.StageStarted(ctx, "run-2", 0, "dataprep"); err != nil {
		t.Fatalf("repeated StageStarted failed: %v", err)
	}
	stages, err := store.StagesForRun(ctx, "run-2")
	if err != nil {
		t.Fatalf("StagesForRun returned error: %v", err)
	}
	if len(stages) != 1 {
		t.Fatalf("expected upsert to keep one record, got %d", len(stages))
	}
}

func TestRecentRunsOrdersNewestFirst(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"run-a", "run-b", "run-c"} {
		run := ledger.Run{ID: id, StopStage: 1, StartedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := store.BeginRun(ctx, run); err != nil {
			t.Fatalf("BeginRun %s failed: %v", id, err)
		}
	}
	runs, err := store.RecentRuns(ctx, 2)
	if err != nil {
		t.Fatalf("RecentRuns returned error: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected limit of 2, got %d", len(runs))
	}
	if runs[0].ID != "run-c" {
		t.Fatalf("expected newest run first, got %s", runs[0].ID)
	}
}
