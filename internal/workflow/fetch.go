package workflow

import (
	"context"
	"io"
	"log/slog"
	"time"

	"boxpull/internal/history"
	"boxpull/internal/logging"
	"boxpull/internal/share"
)

// Fetch downloads every file in a shared folder into OutputDir. Raw fetch
// mode keeps everything; no retention runs here.
type Fetch struct {
	Target     string
	OutputDir  string
	Workers    int
	Enumerator Enumerator
	Retriever  BatchRetriever
	History    *history.Store
	Logger     *slog.Logger
	Out        io.Writer
}

// Run executes the fetch workflow: Enumerate, then Retrieve each file entry
// independently, then report. Per-file failures become summary counters;
// the run only errors on configuration problems.
func (f *Fetch) Run(ctx context.Context) (Summary, error) {
	logger := f.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	out := f.Out
	if out == nil {
		out = io.Discard
	}

	if err := ensureWritableDir(f.OutputDir); err != nil {
		return Summary{}, err
	}
	lock, err := lockRun(f.OutputDir)
	if err != nil {
		return Summary{}, err
	}
	defer lock.Unlock()

	started := time.Now().UTC()

	items, err := f.Enumerator.Enumerate(ctx)
	if err != nil {
		return Summary{}, err
	}

	var files []share.Item
	for _, item := range items {
		if item.IsFile() {
			files = append(files, item)
		}
	}

	summary := Summary{Discovered: len(files)}
	logger.Info("fetch starting",
		logging.Args(logging.String("target", f.Target), logging.Int("files", len(files)))...)

	var records []history.FileRecord
	if len(files) > 0 {
		outcomes := f.Retriever.RetrieveAll(ctx, files, f.OutputDir, f.Workers)
		for _, outcome := range outcomes {
			if outcome.Err != nil {
				summary.Failed++
				logger.Warn("retrieval failed",
					logging.Args(logging.String("file", outcome.Item.Name), logging.Error(outcome.Err))...)
				records = append(records, history.FileRecord{
					Name: outcome.Item.Name, Action: history.ActionFailed, Error: outcome.Err.Error(),
				})
				continue
			}
			summary.Retrieved++
			records = append(records, history.FileRecord{
				Name: outcome.Item.Name, Action: history.ActionDownloaded, Bytes: outcome.Bytes,
			})
		}
	}

	printSummary(out, summary)
	recordRun(ctx, f.History, logger, history.Run{
		Kind:       history.KindFetch,
		Target:     f.Target,
		StartedAt:  started,
		FinishedAt: time.Now().UTC(),
		Discovered: summary.Discovered,
		Retrieved:  summary.Retrieved,
		Failed:     summary.Failed,
	}, records)

	return summary, nil
}
