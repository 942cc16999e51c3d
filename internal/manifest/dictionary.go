package manifest

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"loom/internal/fileutil"
)

// Dictionary is the token inventory produced by vocabulary training:
// one `<token> <index>` entry per line, indexes ascending.
type Dictionary struct {
	entries []DictEntry
}

// DictEntry is a single token/index pair.
type DictEntry struct {
	Token string
	Index int
}

// Offset reserved above the final dictionary index for the blank and
// end-of-sequence symbols appended by the training toolkit.
const reservedSymbols = 2

// LoadDictionary parses a dictionary file and validates that every line
// is a token plus an integer index, in ascending order.
func LoadDictionary(path string) (*Dictionary, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary: %w", err)
	}
	defer file.Close()

	var entries []DictEntry
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) != 2 {
			return nil, fmt.Errorf("%s:%d: expected `<token> <index>`, got %q", path, lineNo, line)
		}
		index, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, fmt.Errorf("%s:%d: index %q is not an integer", path, lineNo, parts[1])
		}
		if len(entries) > 0 && index <= entries[len(entries)-1].Index {
			return nil, fmt.Errorf("%s:%d: index %d not ascending", path, lineNo, index)
		}
		entries = append(entries, DictEntry{Token: parts[0], Index: index})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read dictionary %s: %w", path, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("dictionary %s is empty", path)
	}
	return &Dictionary{entries: entries}, nil
}

// Size returns the number of tokens in the dictionary.
func (d *Dictionary) Size() int {
	return len(d.entries)
}

// OutputDim derives the model output dimension from the final line's
// index field plus the reserved blank and end-of-sequence symbols.
func (d *Dictionary) OutputDim() int {
	return d.entries[len(d.entries)-1].Index + reservedSymbols
}

// Entries returns the parsed token/index pairs in file order.
func (d *Dictionary) Entries() []DictEntry {
	cp := make([]DictEntry, len(d.entries))
	copy(cp, d.entries)
	return cp
}

// WriteDictionary persists tokens with ascending indexes starting at
// firstIndex.
func WriteDictionary(path string, tokens []string, firstIndex int) error {
	var buf bytes.Buffer
	for i, token := range tokens {
		buf.WriteString(token)
		buf.WriteByte(' ')
		buf.WriteString(strconv.Itoa(firstIndex + i))
		buf.WriteByte('\n')
	}
	return fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644)
}
