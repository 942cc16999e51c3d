package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables that override path configuration. They take
// precedence over both the config file and the env file so a single
// shell export can redirect a recipe at a different corpus.
const (
	envCorpusDir = "LOOM_CORPUS_DIR"
	envWorkDir   = "LOOM_WORK_DIR"
	envLogDir    = "LOOM_LOG_DIR"
)

func (c *Config) normalize() error {
	c.trimStrings()

	if err := c.loadEnvFile(); err != nil {
		return err
	}
	c.applyEnvOverrides()

	return c.expandPaths()
}

func (c *Config) trimStrings() {
	c.Paths.CorpusDir = strings.TrimSpace(c.Paths.CorpusDir)
	c.Paths.WorkDir = strings.TrimSpace(c.Paths.WorkDir)
	c.Paths.LogDir = strings.TrimSpace(c.Paths.LogDir)
	c.Paths.EnvFile = strings.TrimSpace(c.Paths.EnvFile)

	c.Corpus.TrainSet = strings.TrimSpace(c.Corpus.TrainSet)
	c.Corpus.DevSets = trimSlice(c.Corpus.DevSets)
	c.Corpus.EvalSets = trimSlice(c.Corpus.EvalSets)

	c.Features.Binary = strings.TrimSpace(c.Features.Binary)
	c.Features.Type = strings.ToLower(strings.TrimSpace(c.Features.Type))

	c.Tokenizer.TrainBinary = strings.TrimSpace(c.Tokenizer.TrainBinary)
	c.Tokenizer.EncodeBinary = strings.TrimSpace(c.Tokenizer.EncodeBinary)
	c.Tokenizer.ModelType = strings.ToLower(strings.TrimSpace(c.Tokenizer.ModelType))

	c.Training.Command = strings.TrimSpace(c.Training.Command)
	c.Training.Config = strings.TrimSpace(c.Training.Config)
	c.Training.Tag = strings.TrimSpace(c.Training.Tag)

	c.Decode.Command = strings.TrimSpace(c.Decode.Command)
	c.Decode.Config = strings.TrimSpace(c.Decode.Config)
	c.Decode.ScoreCommand = strings.TrimSpace(c.Decode.ScoreCommand)

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
}

func trimSlice(values []string) []string {
	trimmed := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value != "" {
			trimmed = append(trimmed, value)
		}
	}
	return trimmed
}

// loadEnvFile merges the configured env file into the process
// environment without clobbering variables already set, so shell
// exports keep the highest precedence.
func (c *Config) loadEnvFile() error {
	if c.Paths.EnvFile == "" {
		return nil
	}
	expanded, err := expandPath(c.Paths.EnvFile)
	if err != nil {
		return err
	}
	c.Paths.EnvFile = expanded
	if _, statErr := os.Stat(expanded); statErr != nil {
		if os.IsNotExist(statErr) {
			return fmt.Errorf("env file %q does not exist", expanded)
		}
		return fmt.Errorf("stat env file: %w", statErr)
	}
	values, err := godotenv.Read(expanded)
	if err != nil {
		return fmt.Errorf("parse env file %q: %w", expanded, err)
	}
	for key, value := range values {
		if _, present := os.LookupEnv(key); !present {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("set %s from env file: %w", key, err)
			}
		}
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if value := strings.TrimSpace(os.Getenv(envCorpusDir)); value != "" {
		c.Paths.CorpusDir = value
	}
	if value := strings.TrimSpace(os.Getenv(envWorkDir)); value != "" {
		c.Paths.WorkDir = value
	}
	if value := strings.TrimSpace(os.Getenv(envLogDir)); value != "" {
		c.Paths.LogDir = value
	}
}

func (c *Config) expandPaths() error {
	fields := []struct {
		name  string
		value *string
	}{
		{"paths.corpus_dir", &c.Paths.CorpusDir},
		{"paths.work_dir", &c.Paths.WorkDir},
		{"paths.log_dir", &c.Paths.LogDir},
	}
	for _, field := range fields {
		if *field.value == "" {
			continue
		}
		expanded, err := expandPath(*field.value)
		if err != nil {
			return fmt.Errorf("expand %s: %w", field.name, err)
		}
		*field.value = expanded
	}
	return nil
}
