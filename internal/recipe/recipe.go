package recipe

import (
	"context"
	"log/slog"
	"strings"

	"loom/internal/config"
	"loom/internal/logging"
	"loom/internal/pipeline"
	"loom/internal/tools"
	"loom/internal/tools/featex"
	"loom/internal/tools/spm"
)

// Stage indexes, matched against the --stage/--stop-stage range.
const (
	StageDataPrep = 0
	StageFeatures = 1
	StageVocab    = 2
	StageMerge    = 3
	StageTrain    = 4
	StageDecode   = 5
)

// Recipe owns the full stage list for one configured corpus.
type Recipe struct {
	cfg      *config.Config
	logger   *slog.Logger
	executor tools.Executor
	markers  *pipeline.Markers
	featex   *featex.Client
	spm      *spm.Client
}

// Option configures optional recipe behavior.
type Option func(*Recipe)

// WithExecutor overrides command execution for every stage, primarily
// for tests.
func WithExecutor(executor tools.Executor) Option {
	return func(r *Recipe) {
		if executor != nil {
			r.executor = executor
		}
	}
}

// New builds a recipe bound to the given configuration.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Recipe {
	r := &Recipe{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "recipe"),
		executor: tools.CommandExecutor{},
		markers:  pipeline.NewMarkers(cfg.Paths.WorkDir),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.featex = featex.New(cfg.Features.Binary, cfg.Features.Type, cfg.Features.ExtraArgs, logger,
		featex.WithExecutor(r.executor))
	r.spm = spm.New(cfg.Tokenizer.TrainBinary, cfg.Tokenizer.EncodeBinary, logger,
		spm.WithExecutor(r.executor))
	return r
}

// Markers exposes the done-marker store, letting the CLI clear stages
// for a forced rerun.
func (r *Recipe) Markers() *pipeline.Markers {
	return r.markers
}

// Stages returns the ordered stage list.
func (r *Recipe) Stages() []pipeline.Stage {
	return []pipeline.Stage{
		r.stage(StageDataPrep, "dataprep", r.runDataPrep),
		r.stage(StageFeatures, "features", r.runFeatures),
		r.stage(StageVocab, "vocab", r.runVocab),
		r.stage(StageMerge, "merge", r.runMerge),
		r.stage(StageTrain, "train", r.runTrain),
		r.stage(StageDecode, "decode", r.runDecode),
	}
}

func (r *Recipe) stage(index int, name string, run func(context.Context) error) pipeline.Stage {
	return pipeline.Stage{
		Index: index,
		Name:  name,
		Done: func(context.Context) (bool, error) {
			return r.markers.Done(name)
		},
		Run: func(ctx context.Context) error {
			if err := run(ctx); err != nil {
				return err
			}
			return r.markers.Mark(name)
		},
	}
}

// runCommand executes a configured command line, streaming tool output
// into the run log at debug level.
func (r *Recipe) runCommand(ctx context.Context, stage, operation, command string, args []string) error {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return tools.Wrap(tools.ErrConfiguration, stage, operation, "command not configured", nil)
	}
	binary := fields[0]
	full := append(append([]string{}, fields[1:]...), args...)

	logger := logging.WithContext(ctx, r.logger)
	logger.Debug("running command",
		logging.String("binary", binary),
		logging.String("operation", operation))

	err := r.executor.Run(ctx, binary, full, func(line string) {
		logger.Debug("command output", logging.String("line", line))
	})
	if err != nil {
		return tools.Wrap(tools.ErrExternalTool, stage, operation, binary, err)
	}
	return nil
}
