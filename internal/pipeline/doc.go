// Package pipeline sequences the numbered stages of a corpus
// preparation run. Stages are static descriptors evaluated by a single
// dispatch loop: each carries an index, a name, an optional
// completion predicate for check-and-skip resumption, and a body that
// performs the work. Execution is fail-fast with no retry and no
// rollback; partially written artifacts are left on disk and re-running
// is safe as long as stage bodies honor the done-marker convention.
package pipeline
