// Package tools provides the shared plumbing for invoking external
// binaries: an Executor abstraction with a default exec-based
// implementation, the error taxonomy used to classify failures, and
// context annotations that thread run/stage/subset/job identifiers
// through external invocations.
package tools
