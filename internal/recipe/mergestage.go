package recipe

import (
	"context"
	"time"

	"loom/internal/logging"
	"loom/internal/manifest"
	"loom/internal/tools"
)

// runMerge combines every subset's field files into one data.jsonl,
// attaching the output dimension derived from the dictionary.
func (r *Recipe) runMerge(ctx context.Context) error {
	dict, err := manifest.LoadDictionary(r.cfg.DictPath())
	if err != nil {
		return tools.Wrap(tools.ErrNotFound, "merge", "", "load dictionary", err)
	}

	for _, name := range r.cfg.Subsets() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.mergeSubset(ctx, name, dict); err != nil {
			return err
		}
	}
	return nil
}

func (r *Recipe) mergeSubset(ctx context.Context, name string, dict *manifest.Dictionary) error {
	ctx = tools.WithSubset(ctx, name)
	logger := logging.WithContext(ctx, r.logger)
	start := time.Now()

	subset := manifest.Subset{Name: name, Dir: r.cfg.SubsetDir(name)}
	records, err := manifest.Merge(subset, dict)
	if err != nil {
		return err
	}
	if err := manifest.WriteRecords(subset.MergedPath(), records); err != nil {
		return err
	}

	logger.Info("subset merged",
		logging.Int("records", len(records)),
		logging.Int("odim", dict.OutputDim()),
		logging.Duration("elapsed", time.Since(start)))
	return nil
}
