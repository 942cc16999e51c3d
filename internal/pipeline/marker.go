package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Markers manages the done-marker files that make stage bodies
// idempotent: a stage checks its marker before doing work and writes it
// after succeeding, so re-running an already-completed range is a
// no-op.
type Markers struct {
	dir string
}

// NewMarkers places marker files under <workDir>/.done.
func NewMarkers(workDir string) *Markers {
	return &Markers{dir: filepath.Join(workDir, ".done")}
}

func (m *Markers) path(name string) string {
	return filepath.Join(m.dir, name+".done")
}

// Done reports whether the named marker exists.
func (m *Markers) Done(name string) (bool, error) {
	_, err := os.Stat(m.path(name))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat marker %s: %w", name, err)
}

// Mark records the named marker.
func (m *Markers) Mark(name string) error {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return fmt.Errorf("create marker directory: %w", err)
	}
	if err := os.WriteFile(m.path(name), nil, 0o644); err != nil {
		return fmt.Errorf("write marker %s: %w", name, err)
	}
	return nil
}

// Clear removes the named marker so the stage runs again.
func (m *Markers) Clear(name string) error {
	err := os.Remove(m.path(name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove marker %s: %w", name, err)
	}
	return nil
}
