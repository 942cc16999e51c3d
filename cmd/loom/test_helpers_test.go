package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeTestConfig(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	corpus := filepath.Join(root, "corpus")
	if err := os.MkdirAll(corpus, 0o755); err != nil {
		t.Fatalf("create corpus dir: %v", err)
	}
	path := filepath.Join(root, "config.toml")
	contents := `
[paths]
corpus_dir = "` + corpus + `"
work_dir = "` + filepath.Join(root, "work") + `"
log_dir = "` + filepath.Join(root, "logs") + `"

[corpus]
train_set = "train"
dev_sets = ["dev"]
eval_sets = ["test"]
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
