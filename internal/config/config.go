package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	CorpusDir string `toml:"corpus_dir"`
	WorkDir   string `toml:"work_dir"`
	LogDir    string `toml:"log_dir"`
	EnvFile   string `toml:"env_file"`
}

// Corpus names the subsets the pipeline operates on.
type Corpus struct {
	TrainSet string   `toml:"train_set"`
	DevSets  []string `toml:"dev_sets"`
	EvalSets []string `toml:"eval_sets"`
}

// Features contains configuration for the external feature extractor.
type Features struct {
	Binary    string   `toml:"binary"`
	Type      string   `toml:"type"`
	NumJobs   int      `toml:"num_jobs"`
	ExtraArgs []string `toml:"extra_args"`
}

// Tokenizer contains configuration for SentencePiece vocabulary training.
type Tokenizer struct {
	TrainBinary       string  `toml:"train_binary"`
	EncodeBinary      string  `toml:"encode_binary"`
	VocabSize         int     `toml:"vocab_size"`
	ModelType         string  `toml:"model_type"`
	CharacterCoverage float64 `toml:"character_coverage"`
}

// Training contains configuration for the external training entry point.
type Training struct {
	Command   string   `toml:"command"`
	Config    string   `toml:"config"`
	Tag       string   `toml:"tag"`
	ExtraArgs []string `toml:"extra_args"`
}

// Decode contains configuration for decoding and scoring invocations.
type Decode struct {
	Command      string   `toml:"command"`
	Config       string   `toml:"config"`
	ScoreCommand string   `toml:"score_command"`
	ExtraArgs    []string `toml:"extra_args"`
}

// Workflow contains pipeline execution behavior.
type Workflow struct {
	// Sequential disables concurrent subset fan-out.
	Sequential bool `toml:"sequential"`
	// MinFreeGiB is the free-space floor preflight enforces on the work
	// filesystem. Zero disables the check.
	MinFreeGiB int `toml:"min_free_gib"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for loom.
type Config struct {
	Paths     Paths     `toml:"paths"`
	Corpus    Corpus    `toml:"corpus"`
	Features  Features  `toml:"features"`
	Tokenizer Tokenizer `toml:"tokenizer"`
	Training  Training  `toml:"training"`
	Decode    Decode    `toml:"decode"`
	Workflow  Workflow  `toml:"workflow"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/loom/config.toml")
}

// Load locates, parses, and validates a configuration file. The
// returned config has all path fields expanded, environment overrides
// applied, and defaults filled in.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// ResolvePath reports the configuration file the loader would use and
// whether it exists, without parsing or validating it.
func ResolvePath(path string) (string, bool, error) {
	return resolveConfigPath(path)
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("loom.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// Subsets returns every configured subset name, train set first, with
// dev and eval sets following in declaration order.
func (c *Config) Subsets() []string {
	names := make([]string, 0, 1+len(c.Corpus.DevSets)+len(c.Corpus.EvalSets))
	if c.Corpus.TrainSet != "" {
		names = append(names, c.Corpus.TrainSet)
	}
	names = append(names, c.Corpus.DevSets...)
	names = append(names, c.Corpus.EvalSets...)
	return names
}

// SubsetDir returns the working directory of a named subset.
func (c *Config) SubsetDir(name string) string {
	return filepath.Join(c.Paths.WorkDir, "data", name)
}

// LangDir returns the directory holding vocabulary artifacts.
func (c *Config) LangDir() string {
	return filepath.Join(c.Paths.WorkDir, "lang")
}

// DictPath returns the token dictionary file path.
func (c *Config) DictPath() string {
	return filepath.Join(c.LangDir(), "dict")
}

// ModelPrefix returns the SentencePiece model path prefix.
func (c *Config) ModelPrefix() string {
	return filepath.Join(c.LangDir(), fmt.Sprintf("%s_%d", c.Tokenizer.ModelType, c.Tokenizer.VocabSize))
}

// LedgerPath returns the run ledger database path.
func (c *Config) LedgerPath() string {
	return filepath.Join(c.Paths.LogDir, "loom.db")
}

// LockPath returns the work-directory lock file path.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.LogDir, "loom.lock")
}

// EnsureDirectories creates required directories for pipeline operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.LogDir, c.LangDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
