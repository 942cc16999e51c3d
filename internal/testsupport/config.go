// Package testsupport provides shared helpers for package tests:
// temp-directory configs and corpus fixtures.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"loom/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per
// test. It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.CorpusDir = filepath.Join(base, "corpus")
	cfgVal.Paths.WorkDir = filepath.Join(base, "work")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Workflow.Sequential = true
	cfgVal.Workflow.MinFreeGiB = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := os.MkdirAll(cfgVal.Paths.CorpusDir, 0o755); err != nil {
		t.Fatalf("mkdir corpus dir: %v", err)
	}
	if err := cfgVal.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	return builder.cfg
}

// WithSubsets overrides the configured subset names.
func WithSubsets(train string, devs, evals []string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Corpus = config.Corpus{TrainSet: train, DevSets: devs, EvalSets: evals}
	}
}

// WithNumJobs sets the feature-extraction parallelism.
func WithNumJobs(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Features.NumJobs = n
	}
}

// WithCommands overrides every external tool the pipeline invokes.
func WithCommands(features, spmTrain, spmEncode, train, decode, score string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Features.Binary = features
		b.cfg.Tokenizer.TrainBinary = spmTrain
		b.cfg.Tokenizer.EncodeBinary = spmEncode
		b.cfg.Training.Command = train
		b.cfg.Decode.Command = decode
		b.cfg.Decode.ScoreCommand = score
	}
}

// WithStubbedBinaries writes stub executables for the provided names
// and prepends them to PATH for the duration of the test.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.WorkDir)
}
