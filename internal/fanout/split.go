package fanout

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"loom/internal/fileutil"
)

// Split partitions keys into at most n contiguous slices of near-equal
// size, preserving order. Fewer slices are returned when there are
// fewer keys than requested jobs; no slice is ever empty.
func Split(keys []string, n int) [][]string {
	if n < 1 {
		n = 1
	}
	if n > len(keys) {
		n = len(keys)
	}
	if n == 0 {
		return nil
	}

	slices := make([][]string, 0, n)
	base := len(keys) / n
	extra := len(keys) % n
	offset := 0
	for job := 0; job < n; job++ {
		size := base
		if job < extra {
			size++
		}
		slices = append(slices, keys[offset:offset+size])
		offset += size
	}
	return slices
}

// JobPath derives a per-job file path by inserting the 1-based job ID
// before the base name's extension: feats.scp job 3 -> feats.3.scp.
func JobPath(dir, base string, jobID int) string {
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, stem+"."+strconv.Itoa(jobID)+ext)
}

// Gather concatenates per-job output files into dst in ascending
// job-ID order (the order of paths) using an atomic replace.
func Gather(paths []string, dst string) error {
	var builder strings.Builder
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read job output %s: %w", path, err)
		}
		builder.Write(data)
		if len(data) > 0 && data[len(data)-1] != '\n' {
			builder.WriteByte('\n')
		}
	}
	return fileutil.WriteFileAtomic(dst, []byte(builder.String()), 0o644)
}
