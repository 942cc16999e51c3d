package preflight

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"loom/internal/config"
)

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()
	if result := CheckDirectoryAccess("Work directory", dir); !result.Passed {
		t.Fatalf("expected accessible directory to pass: %+v", result)
	}

	missing := filepath.Join(dir, "missing")
	result := CheckDirectoryAccess("Work directory", missing)
	if result.Passed {
		t.Fatalf("expected missing directory to fail: %+v", result)
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}

	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if result := CheckDirectoryAccess("Work directory", file); result.Passed {
		t.Fatalf("expected regular file to fail: %+v", result)
	}
}

func TestCheckDiskSpace(t *testing.T) {
	dir := t.TempDir()
	if result := CheckDiskSpace("Work filesystem", dir, 0); !result.Passed {
		t.Fatalf("expected zero floor to pass: %+v", result)
	}
	// No filesystem has this much free space.
	if result := CheckDiskSpace("Work filesystem", dir, 1<<30); result.Passed {
		t.Fatalf("expected impossible floor to fail: %+v", result)
	}
}

func TestRunAllReportsFailures(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.CorpusDir = filepath.Join(dir, "missing-corpus")
	cfg.Paths.WorkDir = dir
	cfg.Paths.LogDir = dir
	cfg.Workflow.MinFreeGiB = 0

	results := RunAll(&cfg)
	failed := Failures(results)
	if len(failed) != 1 {
		t.Fatalf("expected exactly the corpus check to fail, got %+v", failed)
	}
	if failed[0].Name != "Corpus directory" {
		t.Fatalf("unexpected failed check: %+v", failed[0])
	}
	if summary := Summarize(results); !strings.Contains(summary, "Corpus directory") {
		t.Fatalf("expected summary to mention corpus check, got %q", summary)
	}
}

func TestSystemDepsCoversConfiguredTools(t *testing.T) {
	cfg := config.Default()
	cfg.Features.Binary = "sh"
	cfg.Tokenizer.TrainBinary = "sh"
	cfg.Tokenizer.EncodeBinary = "sh"
	cfg.Training.Command = "sh -c true"
	cfg.Decode.Command = "no-such-decoder --beam 10"
	cfg.Decode.ScoreCommand = "sh"

	statuses := SystemDeps(&cfg)
	if len(statuses) != 6 {
		t.Fatalf("expected 6 statuses, got %d", len(statuses))
	}
	byName := make(map[string]bool, len(statuses))
	for _, status := range statuses {
		byName[status.Name] = status.Available
	}
	if !byName["Trainer"] {
		t.Error("expected trainer binary sh to resolve")
	}
	if byName["Decoder"] {
		t.Error("expected missing decoder binary to be reported unavailable")
	}
}
