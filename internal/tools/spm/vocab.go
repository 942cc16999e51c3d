package spm

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Control symbols spm_train always places at the top of the vocab
// file. They get dedicated indexes downstream, so the dictionary
// excludes them.
var controlSymbols = map[string]struct{}{
	"<unk>": {},
	"<s>":   {},
	"</s>":  {},
	"<pad>": {},
}

// ReadVocab parses a spm_train vocabulary file (token and log
// probability per line, tab separated) and returns the plain tokens in
// file order with control symbols removed.
func ReadVocab(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vocab file: %w", err)
	}
	defer file.Close()

	var tokens []string
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		token, _, found := strings.Cut(line, "\t")
		if !found {
			return nil, fmt.Errorf("vocab file %s line %d: expected token and score", path, lineNo)
		}
		if token == "" {
			return nil, fmt.Errorf("vocab file %s line %d: empty token", path, lineNo)
		}
		if _, control := controlSymbols[token]; control {
			continue
		}
		tokens = append(tokens, token)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read vocab file: %w", err)
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("vocab file %s contains no usable tokens", path)
	}
	return tokens, nil
}
