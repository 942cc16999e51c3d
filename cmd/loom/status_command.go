package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"loom/internal/config"
	"loom/internal/ledger"
	"loom/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show environment checks and recent pipeline runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return printStatus(cmd, cfg, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 5, "Number of recent runs to show")
	return cmd
}

func printStatus(cmd *cobra.Command, cfg *config.Config, limit int) error {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	printSection(out, "Environment", colorize)
	for _, result := range preflight.RunAll(cfg) {
		kind := statusError
		if result.Passed {
			kind = statusOK
		}
		fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
	}

	printSection(out, "External tools", colorize)
	for _, status := range preflight.SystemDeps(cfg) {
		kind := statusOK
		detail := status.Command
		if !status.Available {
			kind = statusError
			if status.Optional {
				kind = statusWarn
			}
			detail = status.Detail
		}
		fmt.Fprintln(out, renderStatusLine(status.Name, kind, detail, colorize))
	}

	store, err := ledger.Open(cfg.LedgerPath())
	if err != nil {
		return fmt.Errorf("open run ledger: %w", err)
	}
	defer store.Close()

	runs, err := store.RecentRuns(cmd.Context(), limit)
	if err != nil {
		return fmt.Errorf("list recent runs: %w", err)
	}

	printSection(out, "Recent runs", colorize)
	if len(runs) == 0 {
		fmt.Fprintln(out, "  no runs recorded")
		return nil
	}
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			shortRunID(run.ID),
			fmt.Sprintf("%d-%d", run.StartStage, run.StopStage),
			string(run.Status),
			run.StartedAt.Local().Format(time.DateTime),
			runDuration(run),
			run.Error,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Run", "Stages", "Status", "Started", "Duration", "Error"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	))

	stages, err := store.StagesForRun(cmd.Context(), runs[0].ID)
	if err != nil {
		return fmt.Errorf("list stages for run %s: %w", runs[0].ID, err)
	}
	if len(stages) == 0 {
		return nil
	}
	printSection(out, fmt.Sprintf("Stages of run %s", shortRunID(runs[0].ID)), colorize)
	stageRows := make([][]string, 0, len(stages))
	for _, stage := range stages {
		stageRows = append(stageRows, []string{
			fmt.Sprintf("%d", stage.StageIndex),
			stage.StageName,
			stage.Status,
			stage.Error,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Stage", "Name", "Status", "Error"},
		stageRows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
	))
	return nil
}

func printSection(out io.Writer, title string, colorize bool) {
	for _, line := range renderSectionHeader(title, colorize) {
		fmt.Fprintln(out, line)
	}
}

func shortRunID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

func runDuration(run ledger.Run) string {
	if run.FinishedAt == nil {
		return "-"
	}
	return run.FinishedAt.Sub(run.StartedAt).Round(time.Second).String()
}
