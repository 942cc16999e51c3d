package tools

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrExternalTool marks a nonzero exit or I/O failure from an invoked binary.
	ErrExternalTool = errors.New("external tool error")
	// ErrMissingArgument marks a required CLI option or parameter that was absent.
	ErrMissingArgument = errors.New("missing required argument")
	// ErrConfiguration marks an unusable configuration value.
	ErrConfiguration = errors.New("configuration error")
	// ErrNotFound marks a missing input file or binary.
	ErrNotFound = errors.New("not found")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "tool failure"
	}
	return strings.Join(parts, ": ")
}
