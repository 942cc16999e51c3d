// Package ledger persists pipeline run history in SQLite: one row per
// run and one row per visited stage, with outcomes and timings. The
// ledger is purely observational — resumability comes from on-disk
// done markers, not from the database — so losing it never corrupts a
// pipeline.
package ledger
