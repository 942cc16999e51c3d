package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "loom", "config.toml")
	out, err := executeCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Fatalf("expected output to mention %s, got %q", target, out)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[tokenizer]") {
		t.Fatal("sample config missing tokenizer section")
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	if _, err := executeCommand(t, "config", "init", "--path", target); err != nil {
		t.Fatalf("first init failed: %v", err)
	}
	if _, err := executeCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected second init to fail without --overwrite")
	}
	if _, err := executeCommand(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("init with --overwrite failed: %v", err)
	}
}

func TestConfigValidateWithExplicitPath(t *testing.T) {
	path := writeTestConfig(t)
	out, err := executeCommand(t, "config", "validate", "--config", path)
	if err != nil {
		t.Fatalf("config validate failed: %v", err)
	}
	if !strings.Contains(out, "Configuration valid") {
		t.Fatalf("expected valid confirmation, got %q", out)
	}
	if !strings.Contains(out, path) {
		t.Fatalf("expected resolved path in output, got %q", out)
	}
}

func TestConfigValidateRejectsBrokenConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[features]\nnum_jobs = 0\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := executeCommand(t, "config", "validate", "--config", path); err == nil {
		t.Fatal("expected validation failure")
	}
}
