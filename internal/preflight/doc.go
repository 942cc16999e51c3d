// Package preflight validates the environment before a pipeline run:
// directory access, free disk space on the work filesystem, and the
// presence of the external binaries each stage shells out to. Checks
// report results instead of failing fast so the CLI can show the full
// picture at once.
package preflight
