// Package spm wraps the SentencePiece command-line tools used for
// vocabulary training and transcript tokenization.
package spm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"loom/internal/logging"
	"loom/internal/tools"
)

// Client invokes spm_train and spm_encode.
type Client struct {
	trainBinary  string
	encodeBinary string
	executor     tools.Executor
	logger       *slog.Logger
}

// Option configures optional client behavior.
type Option func(*Client)

// WithExecutor overrides the command executor, primarily for tests.
func WithExecutor(executor tools.Executor) Option {
	return func(c *Client) {
		if executor != nil {
			c.executor = executor
		}
	}
}

// New builds a SentencePiece client.
func New(trainBinary, encodeBinary string, logger *slog.Logger, opts ...Option) *Client {
	client := &Client{
		trainBinary:  strings.TrimSpace(trainBinary),
		encodeBinary: strings.TrimSpace(encodeBinary),
		executor:     tools.CommandExecutor{},
		logger:       logging.NewComponentLogger(logger, "spm"),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// TrainParams describes one spm_train invocation.
type TrainParams struct {
	// Input is a text file with one sentence per line.
	Input             string
	ModelPrefix       string
	VocabSize         int
	ModelType         string
	CharacterCoverage float64
}

// ModelPath returns the model file spm_train writes.
func (p TrainParams) ModelPath() string {
	return p.ModelPrefix + ".model"
}

// VocabPath returns the vocabulary file spm_train writes.
func (p TrainParams) VocabPath() string {
	return p.ModelPrefix + ".vocab"
}

// Train runs spm_train with the given parameters.
func (c *Client) Train(ctx context.Context, params TrainParams) error {
	if c.trainBinary == "" {
		return tools.Wrap(tools.ErrConfiguration, "vocab", "train", "spm train binary not configured", nil)
	}
	if params.Input == "" || params.ModelPrefix == "" {
		return tools.Wrap(tools.ErrMissingArgument, "vocab", "train", "input text and model prefix are required", nil)
	}

	args := []string{
		fmt.Sprintf("--input=%s", params.Input),
		fmt.Sprintf("--model_prefix=%s", params.ModelPrefix),
		fmt.Sprintf("--vocab_size=%d", params.VocabSize),
		fmt.Sprintf("--model_type=%s", params.ModelType),
		fmt.Sprintf("--character_coverage=%g", params.CharacterCoverage),
	}

	c.logger.Debug("training sentencepiece model",
		logging.String("input", params.Input),
		logging.Int("vocab_size", params.VocabSize))

	err := c.executor.Run(ctx, c.trainBinary, args, func(line string) {
		c.logger.Debug("spm_train output", logging.String("line", line))
	})
	if err != nil {
		return tools.Wrap(tools.ErrExternalTool, "vocab", "train", fmt.Sprintf("model prefix %s", params.ModelPrefix), err)
	}
	return nil
}

// Encode tokenizes input with a trained model, writing one
// space-separated piece sequence per input line to output.
func (c *Client) Encode(ctx context.Context, modelPath, inputPath, outputPath string) error {
	if c.encodeBinary == "" {
		return tools.Wrap(tools.ErrConfiguration, "vocab", "encode", "spm encode binary not configured", nil)
	}
	if modelPath == "" || inputPath == "" || outputPath == "" {
		return tools.Wrap(tools.ErrMissingArgument, "vocab", "encode", "model, input, and output paths are required", nil)
	}

	args := []string{
		fmt.Sprintf("--model=%s", modelPath),
		"--output_format=piece",
		fmt.Sprintf("--output=%s", outputPath),
		inputPath,
	}

	c.logger.Debug("encoding transcripts",
		logging.String("model", modelPath),
		logging.String("input", inputPath))

	err := c.executor.Run(ctx, c.encodeBinary, args, func(line string) {
		c.logger.Debug("spm_encode output", logging.String("line", line))
	})
	if err != nil {
		return tools.Wrap(tools.ErrExternalTool, "vocab", "encode", fmt.Sprintf("input %s", inputPath), err)
	}
	return nil
}
