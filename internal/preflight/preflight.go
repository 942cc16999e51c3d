package preflight

import (
	"fmt"
	"strings"

	"loom/internal/config"
	"loom/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("Corpus directory", cfg.Paths.CorpusDir))
	results = append(results, CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir))
	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))

	if cfg.Workflow.MinFreeGiB > 0 {
		results = append(results, CheckDiskSpace("Work filesystem", cfg.Paths.WorkDir, cfg.Workflow.MinFreeGiB))
	}

	return results
}

// Failures filters results down to the checks that did not pass.
func Failures(results []Result) []Result {
	var failed []Result
	for _, result := range results {
		if !result.Passed {
			failed = append(failed, result)
		}
	}
	return failed
}

// Summarize renders failed checks as a single error-message string.
func Summarize(results []Result) string {
	failed := Failures(results)
	parts := make([]string, 0, len(failed))
	for _, result := range failed {
		parts = append(parts, fmt.Sprintf("%s: %s", result.Name, result.Detail))
	}
	return strings.Join(parts, "; ")
}

// SystemDeps evaluates the external binaries the configured pipeline
// will invoke. Both the run command and the status command use this to
// avoid duplicating the requirements list.
func SystemDeps(cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "Feature extractor",
			Command:     cfg.Features.Binary,
			Description: "Required for feature extraction",
		},
		{
			Name:        "SentencePiece trainer",
			Command:     cfg.Tokenizer.TrainBinary,
			Description: "Required for vocabulary training",
		},
		{
			Name:        "SentencePiece encoder",
			Command:     cfg.Tokenizer.EncodeBinary,
			Description: "Required for transcript tokenization",
		},
		{
			Name:        "Trainer",
			Command:     deps.CommandBinary(cfg.Training.Command),
			Description: "Required for model training",
		},
		{
			Name:        "Decoder",
			Command:     deps.CommandBinary(cfg.Decode.Command),
			Description: "Required for decoding",
		},
		{
			Name:        "Scorer",
			Command:     deps.CommandBinary(cfg.Decode.ScoreCommand),
			Description: "Scores decode hypotheses against references",
			Optional:    true,
		},
	}
	return deps.CheckBinaries(requirements)
}
