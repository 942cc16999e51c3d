package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"loom/internal/config"
	"loom/internal/ledger"
	"loom/internal/logging"
	"loom/internal/pipeline"
	"loom/internal/preflight"
	"loom/internal/recipe"
	"loom/internal/tools"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var startStage int
	var stopStage int
	var retry bool
	var sequential bool
	var subsets []string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the corpus pipeline",
		Long: "Run executes every pipeline stage whose index lies in the inclusive\n" +
			"--stage/--stop-stage range. Completed stages are skipped on rerun\n" +
			"unless --retry clears their done markers first.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cfg, err = applyRunOverrides(cfg, sequential, subsets)
			if err != nil {
				return err
			}
			return runPipeline(cmd, cfg, startStage, stopStage, retry)
		},
	}

	cmd.Flags().IntVar(&startStage, "stage", recipe.StageDataPrep, "First stage to execute")
	cmd.Flags().IntVar(&stopStage, "stop-stage", recipe.StageDecode, "Last stage to execute (inclusive)")
	cmd.Flags().BoolVar(&retry, "retry", false, "Clear done markers inside the range before running")
	cmd.Flags().BoolVar(&sequential, "sequential", false, "Disable concurrent fan-out for this run")
	cmd.Flags().StringSliceVar(&subsets, "subsets", nil, "Restrict the run to these configured subsets")
	return cmd
}

// applyRunOverrides returns a copy of cfg with per-invocation flag
// overrides applied; the loaded config itself stays untouched.
func applyRunOverrides(cfg *config.Config, sequential bool, subsets []string) (*config.Config, error) {
	if !sequential && len(subsets) == 0 {
		return cfg, nil
	}
	overridden := *cfg
	if sequential {
		overridden.Workflow.Sequential = true
	}
	if len(subsets) > 0 {
		keep := make(map[string]struct{}, len(subsets))
		for _, name := range subsets {
			name = strings.TrimSpace(name)
			if !subsetConfigured(cfg.Subsets(), name) {
				return nil, fmt.Errorf("subset %q is not configured (known: %s)", name, strings.Join(cfg.Subsets(), ", "))
			}
			keep[name] = struct{}{}
		}
		if _, ok := keep[cfg.Corpus.TrainSet]; !ok {
			overridden.Corpus.TrainSet = ""
		}
		overridden.Corpus.DevSets = filterSubsets(cfg.Corpus.DevSets, keep)
		overridden.Corpus.EvalSets = filterSubsets(cfg.Corpus.EvalSets, keep)
		if overridden.Corpus.TrainSet == "" && len(overridden.Corpus.DevSets) == 0 && len(overridden.Corpus.EvalSets) == 0 {
			return nil, fmt.Errorf("--subsets removed every configured subset")
		}
	}
	return &overridden, nil
}

func filterSubsets(names []string, keep map[string]struct{}) []string {
	var filtered []string
	for _, name := range names {
		if _, ok := keep[name]; ok {
			filtered = append(filtered, name)
		}
	}
	return filtered
}

func runPipeline(cmd *cobra.Command, cfg *config.Config, startStage, stopStage int, retry bool) error {
	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if failed := preflight.Failures(preflight.RunAll(cfg)); len(failed) > 0 {
		return fmt.Errorf("preflight failed: %s", preflight.Summarize(failed))
	}
	for _, status := range preflight.SystemDeps(cfg) {
		if !status.Available && !status.Optional {
			return fmt.Errorf("%s unavailable: %s", status.Name, status.Detail)
		}
	}

	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another pipeline run holds %s", cfg.LockPath())
	}
	defer func() {
		_ = lock.Unlock()
	}()

	runID := uuid.NewString()
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("loom-%s.log", runID))
	logger, err := logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stdout", logPath},
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	store, err := ledger.Open(cfg.LedgerPath())
	if err != nil {
		return fmt.Errorf("open run ledger: %w", err)
	}
	defer store.Close()

	rec := recipe.New(cfg, logger)
	stages := rec.Stages()
	if retry {
		for _, stage := range stages {
			if stage.Index < startStage || stage.Index > stopStage {
				continue
			}
			if err := rec.Markers().Clear(stage.Name); err != nil {
				return err
			}
		}
	}

	runner, err := pipeline.NewRunner(stages, logger,
		pipeline.WithRecorder(ledgerRecorder{store: store, runID: runID}))
	if err != nil {
		return err
	}

	runCtx := tools.WithRunID(signalCtx, runID)
	if err := store.BeginRun(runCtx, ledger.Run{ID: runID, StartStage: startStage, StopStage: stopStage}); err != nil {
		return fmt.Errorf("record run start: %w", err)
	}

	logger.Info("pipeline run started",
		logging.String(logging.FieldRunID, runID),
		logging.Int("start_stage", startStage),
		logging.Int("stop_stage", stopStage))
	started := time.Now()

	results, runErr := runner.Run(runCtx, startStage, stopStage)

	status := ledger.RunCompleted
	message := ""
	if runErr != nil {
		status = ledger.RunFailed
		message = runErr.Error()
	}
	// Recording uses a fresh context so a cancelled run is still persisted.
	if err := store.FinishRun(context.Background(), runID, status, message); err != nil {
		logger.Error("failed to record run outcome", logging.Error(err))
	}

	logger.Info("pipeline run finished",
		logging.String(logging.FieldRunID, runID),
		logging.String("status", string(status)),
		logging.Duration("elapsed", time.Since(started)))

	printRunSummary(cmd, results)
	return runErr
}

func printRunSummary(cmd *cobra.Command, results []pipeline.Result) {
	if len(results) == 0 {
		return
	}
	rows := make([][]string, 0, len(results))
	for _, result := range results {
		detail := ""
		if result.Err != nil {
			detail = result.Err.Error()
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", result.Index),
			result.Name,
			string(result.Status),
			detail,
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"Stage", "Name", "Status", "Detail"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
	))
}

// ledgerRecorder bridges stage outcomes into the run ledger.
type ledgerRecorder struct {
	store *ledger.Store
	runID string
}

func (r ledgerRecorder) StageStarted(ctx context.Context, index int, name string) error {
	return r.store.StageStarted(ctx, r.runID, index, name)
}

func (r ledgerRecorder) StageFinished(ctx context.Context, result pipeline.Result) error {
	message := ""
	if result.Err != nil {
		message = result.Err.Error()
	}
	return r.store.StageFinished(ctx, r.runID, result.Index, string(result.Status), message)
}
