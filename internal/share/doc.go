// Package share defines the types exchanged between discovery, retrieval,
// and retention: the Item catalog entry produced by every enumeration
// strategy, and the sentinel error markers used to classify failures across
// the acquisition pipeline.
package share
