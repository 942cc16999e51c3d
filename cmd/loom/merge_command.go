package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"loom/internal/manifest"
)

func newMergeCommand(ctx *commandContext) *cobra.Command {
	var subsetName string
	var dictPath string

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge one subset's field files into data.jsonl",
		Long: "Merge reads every field file in the subset's working directory,\n" +
			"validates that all files share the same utterance-ID set, and writes\n" +
			"one JSON record per utterance. When a dictionary is available the\n" +
			"derived output dimension is attached to each record.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			name := strings.TrimSpace(subsetName)
			if !subsetConfigured(cfg.Subsets(), name) {
				return fmt.Errorf("subset %q is not configured (known: %s)", name, strings.Join(cfg.Subsets(), ", "))
			}

			dict, err := loadMergeDictionary(cfg.DictPath(), dictPath)
			if err != nil {
				return err
			}

			subset := manifest.Subset{Name: name, Dir: cfg.SubsetDir(name)}
			records, err := manifest.Merge(subset, dict)
			if err != nil {
				return err
			}
			if err := manifest.WriteRecords(subset.MergedPath(), records); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Merged %d records into %s\n", len(records), subset.MergedPath())
			if dict == nil {
				fmt.Fprintln(out, "No dictionary found; records carry no odim field")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&subsetName, "subset", "", "Subset to merge")
	cmd.Flags().StringVar(&dictPath, "dict", "", "Dictionary file (defaults to the trained dictionary)")
	_ = cmd.MarkFlagRequired("subset")
	return cmd
}

func subsetConfigured(names []string, name string) bool {
	for _, candidate := range names {
		if candidate == name {
			return true
		}
	}
	return false
}

// loadMergeDictionary resolves the dictionary for a standalone merge.
// An explicit --dict must exist; the default trained dictionary is
// optional so merge works before the vocab stage has run.
func loadMergeDictionary(defaultPath, explicitPath string) (*manifest.Dictionary, error) {
	path := strings.TrimSpace(explicitPath)
	if path != "" {
		return manifest.LoadDictionary(path)
	}
	if _, err := os.Stat(defaultPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat dictionary: %w", err)
	}
	return manifest.LoadDictionary(defaultPath)
}
