// Package logging configures structured slog output for the pipeline.
//
// Two formats are supported: a console handler that renders
// timestamp/level/component followed by key=value pairs, and a JSON
// handler for machine consumption. Helpers attach standardized run,
// stage, subset, and job fields pulled from the context so every log
// line emitted during a stage carries the same identifiers.
package logging
