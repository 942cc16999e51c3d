// Package config loads, normalizes, and validates the loom
// configuration: a TOML file describing corpus locations, subset
// names, external tool binaries, and workflow behavior. An optional
// env file (plus LOOM_* process environment variables) overrides
// corpus locations so recipes stay portable across machines. The
// resulting Config is immutable by convention: it is built once at
// startup and passed to every pipeline component at construction time.
package config
