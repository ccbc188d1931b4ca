// Package logging builds the slog logger shared across commands and
// workflows: console or JSON output, optional log-file mirroring, a per-run
// run_id attribute, and pruning of aged log files.
package logging
