package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the configuration for invalid or conflicting values.
func (c *Config) Validate() error {
	var problems []string

	problems = append(problems, c.validatePaths()...)
	problems = append(problems, c.validateCorpus()...)
	problems = append(problems, c.validateFeatures()...)
	problems = append(problems, c.validateTokenizer()...)
	problems = append(problems, c.validateCommands()...)
	problems = append(problems, c.validateWorkflow()...)
	problems = append(problems, c.validateLogging()...)

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) validatePaths() []string {
	var problems []string
	if c.Paths.CorpusDir == "" {
		problems = append(problems, "paths.corpus_dir is required")
	}
	if c.Paths.WorkDir == "" {
		problems = append(problems, "paths.work_dir is required")
	}
	if c.Paths.LogDir == "" {
		problems = append(problems, "paths.log_dir is required")
	}
	return problems
}

func (c *Config) validateCorpus() []string {
	var problems []string
	if c.Corpus.TrainSet == "" {
		problems = append(problems, "corpus.train_set is required")
	}
	seen := make(map[string]struct{})
	for _, name := range c.Subsets() {
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			problems = append(problems, fmt.Sprintf("subset %q is configured more than once", name))
		}
		seen[name] = struct{}{}
		if strings.ContainsAny(name, "/\\ ") {
			problems = append(problems, fmt.Sprintf("subset name %q must not contain path separators or spaces", name))
		}
	}
	return problems
}

func (c *Config) validateFeatures() []string {
	var problems []string
	if c.Features.Binary == "" {
		problems = append(problems, "features.binary is required")
	}
	if c.Features.NumJobs < 1 {
		problems = append(problems, "features.num_jobs must be at least 1")
	}
	return problems
}

func (c *Config) validateTokenizer() []string {
	var problems []string
	if c.Tokenizer.TrainBinary == "" {
		problems = append(problems, "tokenizer.train_binary is required")
	}
	if c.Tokenizer.EncodeBinary == "" {
		problems = append(problems, "tokenizer.encode_binary is required")
	}
	if c.Tokenizer.VocabSize < 1 {
		problems = append(problems, "tokenizer.vocab_size must be positive")
	}
	switch c.Tokenizer.ModelType {
	case "unigram", "bpe", "char", "word":
	default:
		problems = append(problems, fmt.Sprintf("tokenizer.model_type %q must be unigram, bpe, char, or word", c.Tokenizer.ModelType))
	}
	if c.Tokenizer.CharacterCoverage <= 0 || c.Tokenizer.CharacterCoverage > 1 {
		problems = append(problems, "tokenizer.character_coverage must be in (0, 1]")
	}
	return problems
}

func (c *Config) validateCommands() []string {
	var problems []string
	if c.Training.Command == "" {
		problems = append(problems, "training.command is required")
	}
	if c.Decode.Command == "" {
		problems = append(problems, "decode.command is required")
	}
	if c.Decode.ScoreCommand == "" {
		problems = append(problems, "decode.score_command is required")
	}
	return problems
}

func (c *Config) validateWorkflow() []string {
	var problems []string
	if c.Workflow.MinFreeGiB < 0 {
		problems = append(problems, "workflow.min_free_gib must not be negative")
	}
	return problems
}

func (c *Config) validateLogging() []string {
	var problems []string
	switch c.Logging.Format {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format %q must be console or json", c.Logging.Format))
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("logging.level %q must be debug, info, warn, or error", c.Logging.Level))
	}
	return problems
}
