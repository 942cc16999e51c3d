package recipe

import (
	"context"
	"path/filepath"
	"time"

	"loom/internal/logging"
	"loom/internal/manifest"
)

// runTrain launches the external training entry point with the merged
// train and dev manifests.
func (r *Recipe) runTrain(ctx context.Context) error {
	logger := logging.WithContext(ctx, r.logger)
	start := time.Now()

	args := []string{
		"--train-json", filepath.Join(r.cfg.SubsetDir(r.cfg.Corpus.TrainSet), manifest.MergedFileName),
		"--dict", r.cfg.DictPath(),
		"--outdir", r.expDir(),
		"--tag", r.cfg.Training.Tag,
	}
	for _, dev := range r.cfg.Corpus.DevSets {
		args = append(args, "--valid-json", filepath.Join(r.cfg.SubsetDir(dev), manifest.MergedFileName))
	}
	if r.cfg.Training.Config != "" {
		args = append(args, "--config", r.cfg.Training.Config)
	}
	args = append(args, r.cfg.Training.ExtraArgs...)

	if err := r.runCommand(ctx, "train", "train model", r.cfg.Training.Command, args); err != nil {
		return err
	}

	logger.Info("training finished",
		logging.String("tag", r.cfg.Training.Tag),
		logging.Duration("elapsed", time.Since(start)))
	return nil
}

// expDir is where the trainer writes checkpoints and where decode
// reads the final model from.
func (r *Recipe) expDir() string {
	return filepath.Join(r.cfg.Paths.WorkDir, "exp", r.cfg.Training.Tag)
}
