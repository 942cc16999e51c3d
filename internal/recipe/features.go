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
	"loom/internal/tools/featex"
)

const featsScpFile = "feats.scp"

// runFeatures fans feature extraction out across subsets, and within
// each subset across num_jobs contiguous slices of the recording
// manifest.
func (r *Recipe) runFeatures(ctx context.Context) error {
	return fanout.Run(ctx, r.cfg.Subsets(), r.cfg.Workflow.Sequential, r.extractSubset)
}

func (r *Recipe) extractSubset(ctx context.Context, name string) error {
	ctx = tools.WithSubset(ctx, name)
	logger := logging.WithContext(ctx, r.logger)
	start := time.Now()

	dir := r.cfg.SubsetDir(name)
	wav, err := manifest.ReadFile(filepath.Join(dir, wavScpFile))
	if err != nil {
		return tools.Wrap(tools.ErrNotFound, "features", name, "recording manifest", err)
	}
	if len(wav) == 0 {
		return tools.Wrap(tools.ErrConfiguration, "features", name, "recording manifest is empty", nil)
	}

	// Job slices live under split/ so they are never mistaken for
	// subset field files.
	jobDir := filepath.Join(dir, "split")
	if err := os.MkdirAll(jobDir, 0o755); err != nil {
		return fmt.Errorf("create split directory %s: %w", jobDir, err)
	}

	slices := fanout.Split(manifest.Keys(wav), r.cfg.Features.NumJobs)
	jobs := make([]fanoutJob, 0, len(slices))
	for i, ids := range slices {
		jobID := i + 1
		slice := make(map[string]string, len(ids))
		for _, id := range ids {
			slice[id] = wav[id]
		}
		jobWavScp := fanout.JobPath(jobDir, wavScpFile, jobID)
		if err := manifest.WriteFile(jobWavScp, slice); err != nil {
			return err
		}
		jobs = append(jobs, fanoutJob{
			id:     jobID,
			wavScp: jobWavScp,
			outArk: fanout.JobPath(jobDir, "feats.ark", jobID),
			outScp: fanout.JobPath(jobDir, featsScpFile, jobID),
		})
	}

	logger.Info("extracting features",
		logging.Int("utterances", len(wav)),
		logging.Int("jobs", len(jobs)))

	group := fanout.Group{Sequential: r.cfg.Workflow.Sequential}
	for _, job := range jobs {
		job := job
		group.Go(ctx, fmt.Sprintf("%s/job-%d", name, job.id), func(ctx context.Context) error {
			return r.featex.Extract(tools.WithJobID(ctx, job.id), featex.Job{
				ID:     job.id,
				WavScp: job.wavScp,
				OutArk: job.outArk,
				OutScp: job.outScp,
			})
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	scpPaths := make([]string, 0, len(jobs))
	for _, job := range jobs {
		scpPaths = append(scpPaths, job.outScp)
	}
	if err := fanout.Gather(scpPaths, filepath.Join(dir, featsScpFile)); err != nil {
		return err
	}

	logger.Info("features extracted", logging.Duration("elapsed", time.Since(start)))
	return nil
}

type fanoutJob struct {
	id     int
	wavScp string
	outArk string
	outScp string
}
