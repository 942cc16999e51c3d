// Package featex wraps the external feature-extraction binary. The
// pipeline hands it one wav scp slice per parallel job; the binary
// writes a Kaldi-style ark/scp pair for that slice.
package featex

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"loom/internal/logging"
	"loom/internal/tools"
)

// Client invokes the configured feature extractor.
type Client struct {
	binary    string
	featType  string
	extraArgs []string
	executor  tools.Executor
	logger    *slog.Logger
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

// New builds a feature-extraction client.
func New(binary, featType string, extraArgs []string, logger *slog.Logger, opts ...Option) *Client {
	client := &Client{
		binary:    strings.TrimSpace(binary),
		featType:  strings.TrimSpace(featType),
		extraArgs: extraArgs,
		executor:  tools.CommandExecutor{},
		logger:    logging.NewComponentLogger(logger, "featex"),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Job describes one extraction invocation: read recordings listed in
// WavScp, write features to OutArk with an index in OutScp.
type Job struct {
	ID     int
	WavScp string
	OutArk string
	OutScp string
}

// Extract runs the extractor for a single job slice.
func (c *Client) Extract(ctx context.Context, job Job) error {
	if c.binary == "" {
		return tools.Wrap(tools.ErrConfiguration, "features", "extract", "feature binary not configured", nil)
	}
	if job.WavScp == "" || job.OutArk == "" || job.OutScp == "" {
		return tools.Wrap(tools.ErrMissingArgument, "features", "extract", "wav scp and output paths are required", nil)
	}

	args := make([]string, 0, len(c.extraArgs)+2)
	args = append(args, c.extraArgs...)
	args = append(args,
		fmt.Sprintf("scp:%s", job.WavScp),
		fmt.Sprintf("ark,scp:%s,%s", job.OutArk, job.OutScp),
	)

	logger := c.logger.With(logging.Int(logging.FieldJobID, job.ID))
	logger.Debug("running feature extractor",
		logging.String("binary", c.binary),
		logging.String("type", c.featType),
		logging.String("wav_scp", job.WavScp))

	err := c.executor.Run(ctx, c.binary, args, func(line string) {
		logger.Debug("extractor output", logging.String("line", line))
	})
	if err != nil {
		return tools.Wrap(tools.ErrExternalTool, "features", "extract", fmt.Sprintf("job %d", job.ID), err)
	}
	return nil
}
