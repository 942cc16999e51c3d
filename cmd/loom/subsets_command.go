package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"loom/internal/config"
	"loom/internal/manifest"
)

func newSubsetsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "subsets",
		Short: "Show per-subset artifact progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return printSubsets(cmd, cfg)
		},
	}
}

func printSubsets(cmd *cobra.Command, cfg *config.Config) error {
	rows := make([][]string, 0, len(cfg.Subsets()))
	for _, name := range cfg.Subsets() {
		dir := cfg.SubsetDir(name)
		rows = append(rows, []string{
			name,
			subsetRole(cfg, name),
			utteranceCount(filepath.Join(dir, "text")),
			artifactMark(filepath.Join(dir, "feats.scp")),
			artifactMark(filepath.Join(dir, "token")),
			artifactMark(filepath.Join(dir, manifest.MergedFileName)),
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"Subset", "Role", "Utterances", "Features", "Tokens", "Merged"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignLeft},
	))
	return nil
}

func subsetRole(cfg *config.Config, name string) string {
	if name == cfg.Corpus.TrainSet {
		return "train"
	}
	for _, dev := range cfg.Corpus.DevSets {
		if name == dev {
			return "dev"
		}
	}
	return "eval"
}

func utteranceCount(textPath string) string {
	entries, err := manifest.ReadFile(textPath)
	if err != nil {
		return "-"
	}
	return fmt.Sprintf("%d", len(entries))
}

func artifactMark(path string) string {
	if _, err := os.Stat(path); err != nil {
		return "-"
	}
	return "yes"
}
