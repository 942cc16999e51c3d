package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"loom/internal/config"
	"loom/internal/manifest"
)

func prepareSubsetDir(t *testing.T, configPath, name string, count int) *config.Config {
	t.Helper()
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	dir := cfg.SubsetDir(name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create subset dir: %v", err)
	}
	text := make(map[string]string, count)
	feats := make(map[string]string, count)
	for i := 1; i <= count; i++ {
		id := fmt.Sprintf("%s-%03d", name, i)
		text[id] = "hello"
		feats[id] = "/feats.ark:0"
	}
	if err := manifest.WriteFile(filepath.Join(dir, "text"), text); err != nil {
		t.Fatalf("write text: %v", err)
	}
	if err := manifest.WriteFile(filepath.Join(dir, "feats.scp"), feats); err != nil {
		t.Fatalf("write feats.scp: %v", err)
	}
	return cfg
}

func TestMergeCommandWritesRecords(t *testing.T) {
	path := writeTestConfig(t)
	cfg := prepareSubsetDir(t, path, "dev", 3)

	out, err := executeCommand(t, "merge", "--subset", "dev", "--config", path)
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if !strings.Contains(out, "Merged 3 records") {
		t.Fatalf("expected record count in output, got %q", out)
	}

	data, err := os.ReadFile(filepath.Join(cfg.SubsetDir("dev"), manifest.MergedFileName))
	if err != nil {
		t.Fatalf("read merged output: %v", err)
	}
	if !strings.Contains(string(data), `"utt_id"`) {
		t.Fatalf("expected JSON records, got %q", string(data))
	}
	// No dictionary trained yet, so no odim field.
	if strings.Contains(string(data), "odim") {
		t.Fatalf("expected no odim without dictionary, got %q", string(data))
	}
}

func TestMergeCommandAttachesOdimFromDict(t *testing.T) {
	path := writeTestConfig(t)
	cfg := prepareSubsetDir(t, path, "dev", 2)

	dictPath := filepath.Join(t.TempDir(), "dict")
	if err := manifest.WriteDictionary(dictPath, []string{"a", "zebra"}, 4998); err != nil {
		t.Fatalf("write dictionary: %v", err)
	}

	out, err := executeCommand(t, "merge", "--subset", "dev", "--dict", dictPath, "--config", path)
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if !strings.Contains(out, "Merged 2 records") {
		t.Fatalf("unexpected output %q", out)
	}

	data, err := os.ReadFile(filepath.Join(cfg.SubsetDir("dev"), manifest.MergedFileName))
	if err != nil {
		t.Fatalf("read merged output: %v", err)
	}
	// Dictionary's last line is "zebra 4999", so odim is 5001.
	if !strings.Contains(string(data), `"odim":"5001"`) {
		t.Fatalf("expected odim 5001 in %q", string(data))
	}
}

func TestMergeCommandRequiresSubsetFlag(t *testing.T) {
	path := writeTestConfig(t)
	if _, err := executeCommand(t, "merge", "--config", path); err == nil {
		t.Fatal("expected missing --subset flag to fail")
	}
}

func TestMergeCommandRejectsUnknownSubset(t *testing.T) {
	path := writeTestConfig(t)
	_, err := executeCommand(t, "merge", "--subset", "nope", "--config", path)
	if err == nil || !strings.Contains(err.Error(), "not configured") {
		t.Fatalf("expected unknown subset error, got %v", err)
	}
}
