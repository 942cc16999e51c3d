package config

// Default values applied before any file or environment overrides.
const (
	defaultWorkDir = "~/.local/share/loom"
	defaultLogDir  = "~/.local/share/loom/logs"

	defaultFeatureBinary = "compute-fbank-feats"
	defaultFeatureType   = "fbank"
	defaultNumJobs       = 8

	defaultSPMTrainBinary    = "spm_train"
	defaultSPMEncodeBinary   = "spm_encode"
	defaultVocabSize         = 5000
	defaultModelType         = "unigram"
	defaultCharacterCoverage = 1.0

	defaultTrainCommand  = "python3 -m loom_trainer.train"
	defaultDecodeCommand = "python3 -m loom_trainer.decode"
	defaultScoreCommand  = "sclite"

	defaultMinFreeGiB = 10

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns the built-in configuration values.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir: defaultWorkDir,
			LogDir:  defaultLogDir,
		},
		Corpus: Corpus{
			TrainSet: "train",
			DevSets:  []string{"dev"},
			EvalSets: []string{"test"},
		},
		Features: Features{
			Binary:  defaultFeatureBinary,
			Type:    defaultFeatureType,
			NumJobs: defaultNumJobs,
		},
		Tokenizer: Tokenizer{
			TrainBinary:       defaultSPMTrainBinary,
			EncodeBinary:      defaultSPMEncodeBinary,
			VocabSize:         defaultVocabSize,
			ModelType:         defaultModelType,
			CharacterCoverage: defaultCharacterCoverage,
		},
		Training: Training{
			Command: defaultTrainCommand,
			Tag:     "base",
		},
		Decode: Decode{
			Command:      defaultDecodeCommand,
			ScoreCommand: defaultScoreCommand,
		},
		Workflow: Workflow{
			MinFreeGiB: defaultMinFreeGiB,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
