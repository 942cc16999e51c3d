package manifest

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	"loom/internal/fileutil"
)

// ReadFile parses a flat key-value manifest file. The first
// whitespace-separated field of each line is the utterance ID; the
// remainder is the value. Blank lines are skipped, duplicate IDs are an
// error.
func ReadFile(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer file.Close()

	entries := make(map[string]string)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var id, value string
		if cut := strings.IndexAny(line, " \t"); cut >= 0 {
			id = line[:cut]
			value = strings.TrimSpace(line[cut+1:])
		} else {
			id = line
		}
		if _, ok := entries[id]; ok {
			return nil, fmt.Errorf("%s:%d: duplicate utterance ID %q", path, lineNo, id)
		}
		entries[id] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	return entries, nil
}

// WriteFile persists entries as a flat manifest file, sorted by
// utterance ID, using an atomic replace.
func WriteFile(path string, entries map[string]string) error {
	ids := Keys(entries)
	var buf bytes.Buffer
	for _, id := range ids {
		buf.WriteString(id)
		if value := entries[id]; value != "" {
			buf.WriteByte(' ')
			buf.WriteString(value)
		}
		buf.WriteByte('\n')
	}
	return fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644)
}

// Keys returns the sorted utterance-ID set of a manifest.
func Keys(entries map[string]string) []string {
	ids := make([]string, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
