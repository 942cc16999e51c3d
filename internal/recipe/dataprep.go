package recipe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/text/language"

	"loom/internal/logging"
	"loom/internal/manifest"
	"loom/internal/tools"
)

// Corpus field files dataprep expects per subset. The transcript and
// recording index are mandatory; the language map is optional.
const (
	textFile     = "text"
	wavScpFile   = "wav.scp"
	utt2LangFile = "utt2lang"
)

// runDataPrep copies and validates the raw corpus manifests into the
// work directory, one subset at a time.
func (r *Recipe) runDataPrep(ctx context.Context) error {
	for _, name := range r.cfg.Subsets() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.prepareSubset(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

func (r *Recipe) prepareSubset(ctx context.Context, name string) error {
	ctx = tools.WithSubset(ctx, name)
	logger := logging.WithContext(ctx, r.logger)

	srcDir := filepath.Join(r.cfg.Paths.CorpusDir, name)
	if _, err := os.Stat(srcDir); err != nil {
		return tools.Wrap(tools.ErrNotFound, "dataprep", name, fmt.Sprintf("corpus subset directory %s", srcDir), err)
	}

	text, err := manifest.ReadFile(filepath.Join(srcDir, textFile))
	if err != nil {
		return tools.Wrap(tools.ErrNotFound, "dataprep", name, "transcript manifest", err)
	}
	wav, err := manifest.ReadFile(filepath.Join(srcDir, wavScpFile))
	if err != nil {
		return tools.Wrap(tools.ErrNotFound, "dataprep", name, "recording manifest", err)
	}

	if err := validateAligned(name, map[string]map[string]string{textFile: text, wavScpFile: wav}); err != nil {
		return err
	}

	dstDir := r.cfg.SubsetDir(name)
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("create subset directory %s: %w", dstDir, err)
	}
	if err := manifest.WriteFile(filepath.Join(dstDir, textFile), text); err != nil {
		return err
	}
	if err := manifest.WriteFile(filepath.Join(dstDir, wavScpFile), wav); err != nil {
		return err
	}

	langCount, err := r.prepareLanguageMap(srcDir, dstDir, name, text)
	if err != nil {
		return err
	}

	logger.Info("subset prepared",
		logging.Int("utterances", len(text)),
		logging.Int("language_tags", langCount))
	return nil
}

// prepareLanguageMap canonicalizes the optional utt2lang field via BCP
// 47 parsing so downstream consumers see one spelling per language.
func (r *Recipe) prepareLanguageMap(srcDir, dstDir, name string, text map[string]string) (int, error) {
	src := filepath.Join(srcDir, utt2LangFile)
	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("stat %s: %w", src, err)
	}

	langs, err := manifest.ReadFile(src)
	if err != nil {
		return 0, tools.Wrap(tools.ErrNotFound, "dataprep", name, "language manifest", err)
	}
	if err := validateAligned(name, map[string]map[string]string{textFile: text, utt2LangFile: langs}); err != nil {
		return 0, err
	}

	canonical := make(map[string]string, len(langs))
	for id, raw := range langs {
		tag, err := language.Parse(raw)
		if err != nil {
			return 0, tools.Wrap(tools.ErrConfiguration, "dataprep", name,
				fmt.Sprintf("utterance %s has unparseable language tag %q", id, raw), err)
		}
		canonical[id] = tag.String()
	}
	if err := manifest.WriteFile(filepath.Join(dstDir, utt2LangFile), canonical); err != nil {
		return 0, err
	}
	return len(canonical), nil
}

// validateAligned checks that the given field maps agree on utterance
// membership, reporting a key-set mismatch otherwise.
func validateAligned(subset string, byField map[string]map[string]string) error {
	fields := make([]string, 0, len(byField))
	counts := make(map[string]int, len(byField))
	union := make(map[string]struct{})
	for field, entries := range byField {
		fields = append(fields, field)
		counts[field] = len(entries)
		for id := range entries {
			union[id] = struct{}{}
		}
	}

	mismatch := false
	missing := make(map[string][]string)
	for field, entries := range byField {
		if len(entries) == len(union) {
			continue
		}
		mismatch = true
		var absent []string
		for id := range union {
			if _, ok := entries[id]; !ok {
				absent = append(absent, id)
			}
		}
		missing[field] = manifest.SampleIDs(absent)
	}
	if !mismatch {
		return nil
	}
	return &manifest.KeySetMismatchError{Subset: subset, Counts: counts, Missing: missing}
}
