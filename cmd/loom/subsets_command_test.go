package main

import (
	"strings"
	"testing"
)

func TestSubsetsListsConfiguredSubsets(t *testing.T) {
	path := writeTestConfig(t)
	out, err := executeCommand(t, "subsets", "--config", path)
	if err != nil {
		t.Fatalf("subsets failed: %v", err)
	}
	for _, name := range []string{"train", "dev", "test"} {
		if !strings.Contains(out, name) {
			t.Errorf("expected subset %q in output %q", name, out)
		}
	}
}
