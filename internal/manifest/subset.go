package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MergedFileName is the per-subset merge output, one JSON record per line.
const MergedFileName = "data.jsonl"

// Subset names a corpus partition and the directory holding its
// per-field manifest files. The utterance ID is the join key across
// every field file in the directory.
type Subset struct {
	Name string
	Dir  string
}

// FieldPath returns the path of a named field file within the subset.
func (s Subset) FieldPath(field string) string {
	return filepath.Join(s.Dir, field)
}

// MergedPath returns the path of the subset's merged record file.
func (s Subset) MergedPath() string {
	return filepath.Join(s.Dir, MergedFileName)
}

// FieldFiles lists the flat field files in the subset directory, sorted
// by name. Dotfiles, subdirectories, and the merge output itself are
// not fields.
func (s Subset) FieldFiles() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("read subset directory %s: %w", s.Dir, err)
	}
	fields := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || name == MergedFileName {
			continue
		}
		fields = append(fields, name)
	}
	return fields, nil
}
