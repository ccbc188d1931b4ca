package workflow

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"boxpull/internal/box"
	"boxpull/internal/history"
	"boxpull/internal/logging"
	"boxpull/internal/share"
)

// Enumerator produces the catalog for one target folder.
type Enumerator interface {
	Enumerate(ctx context.Context) ([]share.Item, error)
}

// BatchRetriever downloads a set of entries into a destination directory.
type BatchRetriever interface {
	RetrieveAll(ctx context.Context, items []share.Item, destDir string, workers int) []box.Outcome
}

// Summary is the user-facing tally every workflow ends with. It is always
// reported, including on partial failure; a run never terminates silently.
type Summary struct {
	RunID      string
	Discovered int
	Retrieved  int
	Kept       string
	Deleted    int
	Failed     int
	DryRun     bool
}

// lockRun takes the single-writer lock for a destination directory so two
// runs cannot interleave writes or deletions there.
func lockRun(dir string) (*flock.Flock, error) {
	lock := flock.New(filepath.Join(dir, ".boxpull.lock"))
	held, err := lock.TryLock()
	if err != nil {
		return nil, share.Wrap(share.ErrConfiguration, "lock", dir, err)
	}
	if !held {
		return nil, share.Wrap(share.ErrConfiguration, "lock", dir+": another run is in progress", nil)
	}
	return lock, nil
}

// ensureWritableDir creates dir if absent and verifies it accepts writes.
// Failures here are configuration errors and stop the run before any
// network activity.
func ensureWritableDir(dir string) error {
	if dir == "" {
		return share.Wrap(share.ErrConfiguration, "destination", "no directory configured", nil)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return share.Wrap(share.ErrConfiguration, "destination", dir, err)
	}
	probe, err := os.CreateTemp(dir, ".writable-*")
	if err != nil {
		return share.Wrap(share.ErrConfiguration, "destination", dir+": not writable", err)
	}
	probe.Close()
	os.Remove(probe.Name())
	return nil
}

func recordRun(ctx context.Context, store *history.Store, logger *slog.Logger, run history.Run, files []history.FileRecord) {
	if store == nil {
		return
	}
	if _, err := store.RecordRun(ctx, run, files); err != nil {
		logger.Warn("history record failed", logging.Args(logging.Error(err))...)
	}
}

func printSummary(out io.Writer, summary Summary) {
	fmt.Fprintf(out, "Discovered %d, retrieved %d, deleted %d, failed %d\n",
		summary.Discovered, summary.Retrieved, summary.Deleted, summary.Failed)
	if summary.Kept != "" {
		fmt.Fprintf(out, "Latest report: %s\n", summary.Kept)
	}
}
