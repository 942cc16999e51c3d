package featex_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"loom/internal/tools"
	"loom/internal/tools/featex"
)

type stubExecutor struct {
	binary string
	args   []string
	err    error
}

func (s *stubExecutor) Run(_ context.Context, binary string, args []string, onLine func(string)) error {
	s.binary = binary
	s.args = args
	if onLine != nil {
		onLine("LOG extracting")
	}
	return s.err
}

func TestExtractBuildsKaldiStyleArgs(t *testing.T) {
	stub := &stubExecutor{}
	client := featex.New("compute-fbank-feats", "fbank", []string{"--num-mel-bins=80"}, nil, featex.WithExecutor(stub))

	job := featex.Job{ID: 3, WavScp: "/w/wav.3.scp", OutArk: "/w/feats.3.ark", OutScp: "/w/feats.3.scp"}
	if err := client.Extract(context.Background(), job); err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if stub.binary != "compute-fbank-feats" {
		t.Fatalf("unexpected binary %q", stub.binary)
	}
	want := []string{"--num-mel-bins=80", "scp:/w/wav.3.scp", "ark,scp:/w/feats.3.ark,/w/feats.3.scp"}
	if len(stub.args) != len(want) {
		t.Fatalf("unexpected args %v", stub.args)
	}
	for i, arg := range want {
		if stub.args[i] != arg {
			t.Fatalf("arg %d: expected %q, got %q", i, arg, stub.args[i])
		}
	}
}

func TestExtractWrapsToolFailure(t *testing.T) {
	stub := &stubExecutor{err: errors.New("exit status 2")}
	client := featex.New("compute-fbank-feats", "fbank", nil, nil, featex.WithExecutor(stub))

	err := client.Extract(context.Background(), featex.Job{ID: 1, WavScp: "a", OutArk: "b", OutScp: "c"})
	if !errors.Is(err, tools.ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "job 1") {
		t.Fatalf("expected job context in %q", err.Error())
	}
}

func TestExtractValidatesInputs(t *testing.T) {
	client := featex.New("", "fbank", nil, nil)
	if err := client.Extract(context.Background(), featex.Job{WavScp: "a", OutArk: "b", OutScp: "c"}); !errors.Is(err, tools.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}

	client = featex.New("compute-fbank-feats", "fbank", nil, nil)
	if err := client.Extract(context.Background(), featex.Job{}); !errors.Is(err, tools.ErrMissingArgument) {
		t.Fatalf("expected missing argument error, got %v", err)
	}
}
