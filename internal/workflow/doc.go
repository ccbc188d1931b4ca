// Package workflow composes discovery, retrieval, and retention into the
// end-to-end runs the CLI exposes: fetch everything, clean a remote folder,
// or clean a local directory. Per-item failures become summary counters;
// only configuration problems abort a run, and a summary is always printed.
package workflow
