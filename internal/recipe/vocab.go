package recipe

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"loom/internal/fileutil"
	"loom/internal/logging"
	"loom/internal/manifest"
	"loom/internal/tools"
	"loom/internal/tools/spm"
)

const tokenFile = "token"

// Dictionary indexes start at 1; index 0 is reserved for the blank
// symbol downstream.
const dictFirstIndex = 1

// runVocab trains a SentencePiece model on the train-set transcripts,
// derives the token dictionary from its vocabulary, and tokenizes
// every subset's transcripts with the trained model.
func (r *Recipe) runVocab(ctx context.Context) error {
	logger := logging.WithContext(ctx, r.logger)
	langDir := r.cfg.LangDir()
	if err := os.MkdirAll(langDir, 0o755); err != nil {
		return fmt.Errorf("create lang directory %s: %w", langDir, err)
	}

	trainText, err := manifest.ReadFile(filepath.Join(r.cfg.SubsetDir(r.cfg.Corpus.TrainSet), textFile))
	if err != nil {
		return tools.Wrap(tools.ErrNotFound, "vocab", "train", "train-set transcript manifest", err)
	}

	inputPath := filepath.Join(langDir, "input.txt")
	if err := writeValues(inputPath, trainText); err != nil {
		return err
	}

	params := spm.TrainParams{
		Input:             inputPath,
		ModelPrefix:       r.cfg.ModelPrefix(),
		VocabSize:         r.cfg.Tokenizer.VocabSize,
		ModelType:         r.cfg.Tokenizer.ModelType,
		CharacterCoverage: r.cfg.Tokenizer.CharacterCoverage,
	}
	if err := r.spm.Train(ctx, params); err != nil {
		return err
	}

	pieces, err := spm.ReadVocab(params.VocabPath())
	if err != nil {
		return tools.Wrap(tools.ErrExternalTool, "vocab", "train", "read trained vocabulary", err)
	}
	if err := manifest.WriteDictionary(r.cfg.DictPath(), pieces, dictFirstIndex); err != nil {
		return err
	}
	logger.Info("dictionary written",
		logging.String("path", r.cfg.DictPath()),
		logging.Int("tokens", len(pieces)))

	for _, name := range r.cfg.Subsets() {
		if err := r.tokenizeSubset(ctx, name, params.ModelPath()); err != nil {
			return err
		}
	}
	return nil
}

// tokenizeSubset encodes one subset's transcript values and writes the
// aligned token field file.
func (r *Recipe) tokenizeSubset(ctx context.Context, name, modelPath string) error {
	ctx = tools.WithSubset(ctx, name)

	dir := r.cfg.SubsetDir(name)
	text, err := manifest.ReadFile(filepath.Join(dir, textFile))
	if err != nil {
		return tools.Wrap(tools.ErrNotFound, "vocab", name, "transcript manifest", err)
	}
	ids := manifest.Keys(text)

	langDir := r.cfg.LangDir()
	rawPath := filepath.Join(langDir, name+".txt")
	encodedPath := filepath.Join(langDir, name+".token")
	if err := writeValues(rawPath, text); err != nil {
		return err
	}
	if err := r.spm.Encode(ctx, modelPath, rawPath, encodedPath); err != nil {
		return err
	}

	encoded, err := readLines(encodedPath)
	if err != nil {
		return err
	}
	if len(encoded) != len(ids) {
		return tools.Wrap(tools.ErrExternalTool, "vocab", name,
			fmt.Sprintf("encoder produced %d lines for %d utterances", len(encoded), len(ids)), nil)
	}

	tokens := make(map[string]string, len(ids))
	for i, id := range ids {
		tokens[id] = encoded[i]
	}
	return manifest.WriteFile(filepath.Join(dir, tokenFile), tokens)
}

// writeValues emits manifest values one per line in sorted utterance-ID
// order, matching the order readLines pairs them back up in.
func writeValues(path string, entries map[string]string) error {
	var buf bytes.Buffer
	for _, id := range manifest.Keys(entries) {
		buf.WriteString(entries[id])
		buf.WriteByte('\n')
	}
	return fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644)
}

func readLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return lines, nil
}
