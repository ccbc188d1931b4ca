package history

import "time"

// Run kinds.
const (
	KindFetch      = "fetch"
	KindClean      = "clean"
	KindCleanLocal = "clean-local"
)

// File actions.
const (
	ActionDownloaded = "downloaded"
	ActionDeleted    = "deleted"
	ActionFailed     = "failed"
)

// Run is one recorded workflow execution.
type Run struct {
	ID         string
	Kind       string
	Target     string
	DryRun     bool
	StartedAt  time.Time
	FinishedAt time.Time
	Discovered int
	Retrieved  int
	Kept       string
	Deleted    int
	Failed     int
}

// FileRecord is one per-file outcome within a run.
type FileRecord struct {
	Name   string
	Action string
	Bytes  int64
	Error  string
}
