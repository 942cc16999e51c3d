// Package manifest implements the on-disk corpus metadata model: flat
// per-field files mapping utterance IDs to values, the merge that joins
// them into one structured record per utterance, and the token
// dictionary the merge derives the output dimension from.
//
// Field files follow the whitespace-separated convention used across
// speech tooling: one `<utterance_id> <value...>` entry per line, in
// any order. All field files for a subset must agree on the exact
// utterance-ID set; merge refuses mismatches instead of silently
// dropping rows.
package manifest
