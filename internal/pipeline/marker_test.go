package pipeline_test

import (
	"context"
	"testing"

	"loom/internal/logging"
	"loom/internal/pipeline"
)

func TestMarkersRoundTrip(t *testing.T) {
	markers := pipeline.NewMarkers(t.TempDir())

	done, err := markers.Done("features")
	if err != nil {
		t.Fatalf("Done returned error: %v", err)
	}
	if done {
		t.Fatal("expected marker absent initially")
	}

	if err := markers.Mark("features"); err != nil {
		t.Fatalf("Mark failed: %v", err)
	}
	done, err = markers.Done("features")
	if err != nil {
		t.Fatalf("Done returned error: %v", err)
	}
	if !done {
		t.Fatal("expected marker present after Mark")
	}

	if err := markers.Clear("features"); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	done, err = markers.Done("features")
	if err != nil {
		t.Fatalf("Done returned error: %v", err)
	}
	if done {
		t.Fatal("expected marker absent after Clear")
	}

	// Clearing an absent marker is not an error.
	if err := markers.Clear("features"); err != nil {
		t.Fatalf("Clear of absent marker failed: %v", err)
	}
}

func TestRerunWithMarkersIsIdempotent(t *testing.T) {
	markers := pipeline.NewMarkers(t.TempDir())
	runs := 0
	stages := []pipeline.Stage{
		{
			Index: 0,
			Name:  "features",
			Done: func(context.Context) (bool, error) {
				return markers.Done("features")
			},
			Run: func(context.Context) error {
				runs++
				return markers.Mark("features")
			},
		},
	}
	runner, err := pipeline.NewRunner(stages, logging.NewNop())
	if err != nil {
		t.Fatalf("NewRunner returned error: %v", err)
	}

	if _, err := runner.Run(context.Background(), 0, 0); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	results, err := runner.Run(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if runs != 1 {
		t.Fatalf("expected stage body to run once, ran %d times", runs)
	}
	if results[0].Status != pipeline.StageSkipped {
		t.Fatalf("expected second run to skip, got %s", results[0].Status)
	}
}
