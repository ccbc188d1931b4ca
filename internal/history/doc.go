// Package history persists run summaries and per-file outcomes in a small
// SQLite database so `boxpull history` can answer what was fetched, kept,
// and deleted across past runs.
package history
