// Package main hosts the boxpull CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into the
// workflow packages: fetch for acquisition, clean and clean-local for
// retention, watch for the scheduled loop, history for recorded runs, and
// config for scaffolding. It centralizes configuration resolution and
// structured logging setup so subcommands can focus on user experience
// instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
