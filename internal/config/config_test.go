package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func minimalConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	return writeConfig(t, `
[paths]
corpus_dir = "`+dir+`"
work_dir = "`+filepath.Join(dir, "work")+`"
log_dir = "`+filepath.Join(dir, "logs")+`"
`)
}

func TestDefaultConfigValidatesWithCorpusDir(t *testing.T) {
	cfg := Default()
	cfg.Paths.CorpusDir = "/corpora/demo"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config with corpus dir should validate: %v", err)
	}
}

func TestLoadAppliesDefaultsAndExpandsPaths(t *testing.T) {
	cfg, resolved, exists, err := Load(minimalConfig(t))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be reported as existing")
	}
	if resolved == "" || !filepath.IsAbs(resolved) {
		t.Fatalf("expected absolute resolved path, got %q", resolved)
	}
	if cfg.Features.NumJobs != defaultNumJobs {
		t.Fatalf("expected default num_jobs %d, got %d", defaultNumJobs, cfg.Features.NumJobs)
	}
	if cfg.Tokenizer.VocabSize != defaultVocabSize {
		t.Fatalf("expected default vocab_size %d, got %d", defaultVocabSize, cfg.Tokenizer.VocabSize)
	}
	if !filepath.IsAbs(cfg.Paths.WorkDir) {
		t.Fatalf("expected expanded work dir, got %q", cfg.Paths.WorkDir)
	}
}

func TestLoadMissingExplicitPathUsesDefaults(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")
	t.Setenv(envCorpusDir, "/corpora/demo")
	cfg, _, exists, err := Load(missing)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected missing config to be reported as not existing")
	}
	if cfg.Corpus.TrainSet != "train" {
		t.Fatalf("expected default train set, got %q", cfg.Corpus.TrainSet)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := writeConfig(t, `
[paths]
corpus_dir = "/corpora/demo"

[features]
num_jobs = 0

[tokenizer]
model_type = "trigram"
`)
	_, _, _, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "features.num_jobs") {
		t.Errorf("expected num_jobs problem in %q", msg)
	}
	if !strings.Contains(msg, "tokenizer.model_type") {
		t.Errorf("expected model_type problem in %q", msg)
	}
}

func TestValidateRequiresCorpusDirAndTrainSet(t *testing.T) {
	cfg := Default()
	cfg.Corpus.TrainSet = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "corpus.train_set") {
		t.Errorf("expected train_set problem in %q", err.Error())
	}
	if !strings.Contains(err.Error(), "paths.corpus_dir") {
		t.Errorf("expected corpus_dir problem in %q", err.Error())
	}
}

func TestValidateRejectsDuplicateSubsets(t *testing.T) {
	cfg := Default()
	cfg.Paths.CorpusDir = "/corpora/demo"
	cfg.Corpus.DevSets = []string{"dev", "dev"}
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "more than once") {
		t.Fatalf("expected duplicate subset error, got %v", err)
	}
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	override := t.TempDir()
	t.Setenv(envCorpusDir, override)
	cfg, _, _, err := Load(minimalConfig(t))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.CorpusDir != override {
		t.Fatalf("expected corpus dir %q from environment, got %q", override, cfg.Paths.CorpusDir)
	}
}

func TestEnvFileSupplementsEnvironment(t *testing.T) {
	dir := t.TempDir()
	corpus := filepath.Join(dir, "corpus")
	envFile := filepath.Join(dir, "db.env")
	if err := os.WriteFile(envFile, []byte(envCorpusDir+"="+corpus+"\n"), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	os.Unsetenv(envCorpusDir)
	t.Cleanup(func() { os.Unsetenv(envCorpusDir) })

	path := writeConfig(t, `
[paths]
work_dir = "`+filepath.Join(dir, "work")+`"
log_dir = "`+filepath.Join(dir, "logs")+`"
env_file = "`+envFile+`"
`)
	cfg, _, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.CorpusDir != corpus {
		t.Fatalf("expected corpus dir %q from env file, got %q", corpus, cfg.Paths.CorpusDir)
	}
}

func TestLoadMissingEnvFileFails(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
[paths]
corpus_dir = "`+dir+`"
env_file = "`+filepath.Join(dir, "missing.env")+`"
`)
	if _, _, _, err := Load(path); err == nil {
		t.Fatal("expected error for missing env file")
	}
}

func TestSubsetHelpers(t *testing.T) {
	cfg := Default()
	cfg.Paths.WorkDir = "/work"
	cfg.Paths.LogDir = "/logs"
	cfg.Corpus = Corpus{TrainSet: "train", DevSets: []string{"dev"}, EvalSets: []string{"test", "test_other"}}

	subsets := cfg.Subsets()
	want := []string{"train", "dev", "test", "test_other"}
	if len(subsets) != len(want) {
		t.Fatalf("expected %d subsets, got %d", len(want), len(subsets))
	}
	for i, name := range want {
		if subsets[i] != name {
			t.Fatalf("subset %d: expected %q, got %q", i, name, subsets[i])
		}
	}
	if got := cfg.SubsetDir("dev"); got != filepath.Join("/work", "data", "dev") {
		t.Fatalf("unexpected subset dir %q", got)
	}
	if got := cfg.DictPath(); got != filepath.Join("/work", "lang", "dict") {
		t.Fatalf("unexpected dict path %q", got)
	}
	if got := cfg.LedgerPath(); got != filepath.Join("/logs", "loom.db") {
		t.Fatalf("unexpected ledger path %q", got)
	}
}

func TestCreateSampleWritesEmbeddedConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[tokenizer]") {
		t.Fatal("sample config missing tokenizer section")
	}
}
