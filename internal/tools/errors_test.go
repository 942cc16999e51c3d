package tools_test

import (
	"errors"
	"testing"

	"loom/internal/tools"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("exit status 2")
	err := tools.Wrap(tools.ErrExternalTool, "features", "extract", "job 3", base)
	if !errors.Is(err, tools.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool marker, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped base error, got %v", err)
	}
	want := "external tool error: features: extract: job 3: exit status 2"
	if err.Error() != want {
		t.Fatalf("unexpected message: got %q want %q", err.Error(), want)
	}
}

func TestWrapDefaultsMarkerAndDetail(t *testing.T) {
	err := tools.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, tools.ErrExternalTool) {
		t.Fatalf("expected default marker, got %v", err)
	}
	if err.Error() != "external tool error: tool failure" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := tools.Wrap(tools.ErrMissingArgument, "", "run", "stage flag required", nil)
	if !errors.Is(err, tools.ErrMissingArgument) {
		t.Fatalf("expected ErrMissingArgument, got %v", err)
	}
	if err.Error() != "missing required argument: run: stage flag required" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}
