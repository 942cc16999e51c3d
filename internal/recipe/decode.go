package recipe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"loom/internal/fanout"
	"loom/internal/logging"
	"loom/internal/manifest"
	"loom/internal/tools"
)

// runDecode decodes and scores every eval subset, fanning out across
// subsets in list order.
func (r *Recipe) runDecode(ctx context.Context) error {
	eval := r.cfg.Corpus.EvalSets
	if len(eval) == 0 {
		logging.WithContext(ctx, r.logger).Info("no eval subsets configured, skipping decode")
		return nil
	}
	return fanout.Run(ctx, eval, r.cfg.Workflow.Sequential, r.decodeSubset)
}

func (r *Recipe) decodeSubset(ctx context.Context, name string) error {
	ctx = tools.WithSubset(ctx, name)
	logger := logging.WithContext(ctx, r.logger)
	start := time.Now()

	decodeDir := filepath.Join(r.cfg.SubsetDir(name), "decode")
	if err := os.MkdirAll(decodeDir, 0o755); err != nil {
		return fmt.Errorf("create decode directory %s: %w", decodeDir, err)
	}

	args := []string{
		"--recog-json", filepath.Join(r.cfg.SubsetDir(name), manifest.MergedFileName),
		"--dict", r.cfg.DictPath(),
		"--model-dir", r.expDir(),
		"--result-dir", decodeDir,
	}
	if r.cfg.Decode.Config != "" {
		args = append(args, "--config", r.cfg.Decode.Config)
	}
	args = append(args, r.cfg.Decode.ExtraArgs...)

	if err := r.runCommand(ctx, "decode", name, r.cfg.Decode.Command, args); err != nil {
		return err
	}
	if err := r.scoreSubset(ctx, name, decodeDir); err != nil {
		return err
	}

	logger.Info("subset decoded", logging.Duration("elapsed", time.Since(start)))
	return nil
}

// scoreSubset runs the scorer over the decode hypotheses against the
// reference transcripts.
func (r *Recipe) scoreSubset(ctx context.Context, name, decodeDir string) error {
	args := []string{
		"-r", filepath.Join(r.cfg.SubsetDir(name), textFile),
		"-h", filepath.Join(decodeDir, "hyp.trn"),
		"-i", "rm",
		"-o", "all",
		"-O", decodeDir,
	}
	return r.runCommand(ctx, "decode", fmt.Sprintf("score %s", name), r.cfg.Decode.ScoreCommand, args)
}
