package workflow

import (
	"context"
	"io"
	"log/slog"
	"time"

	"boxpull/internal/history"
	"boxpull/internal/logging"
	"boxpull/internal/retention"
	"boxpull/internal/share"
)

// Clean applies the retention policy to a catalog: keep the latest dated
// report, delete all other dated reports and every image. The catalog may
// come from a remote enumeration or a local scan; deletion goes through the
// supplied Deleter either way.
type Clean struct {
	// Kind labels the run in history (clean or clean-local).
	Kind    string
	Target  string
	Deleter retention.Deleter
	History *history.Store
	Logger  *slog.Logger
	Out     io.Writer
	DryRun  bool
}

// Run plans and executes retention over the given entries. Plan always
// runs; Delete is skipped entry-for-entry in dry-run mode while the printed
// decisions stay identical.
func (c *Clean) Run(ctx context.Context, items []share.Item) (Summary, error) {
	logger := c.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	out := c.Out
	if out == nil {
		out = io.Discard
	}

	if c.Deleter == nil && !c.DryRun {
		// No way to delete at the source; degrade to reporting only.
		logger.Warn("no deletion capability available; falling back to dry-run")
		c.DryRun = true
	}

	started := time.Now().UTC()
	plan := retention.Compute(items)

	summary := Summary{Discovered: len(items), DryRun: c.DryRun}
	if plan.Keep != nil {
		summary.Kept = plan.Keep.Name
	}

	executor := retention.NewExecutor(c.Deleter, logger, out, c.DryRun)
	result := executor.Execute(ctx, plan)
	summary.Deleted = result.Deleted
	summary.Failed = result.Failed

	logger.Info("cleanup finished",
		logging.Args(
			logging.String("target", c.Target),
			logging.Bool("dry_run", c.DryRun),
			logging.Int("planned", result.Attempted),
			logging.Int("deleted", result.Deleted),
			logging.Int("failed", result.Failed),
		)...)

	printSummary(out, summary)

	var records []history.FileRecord
	if !c.DryRun {
		for _, item := range plan.Deletions() {
			records = append(records, history.FileRecord{Name: item.Name, Action: history.ActionDeleted})
		}
	}
	recordRun(ctx, c.History, logger, history.Run{
		Kind:       c.Kind,
		Target:     c.Target,
		DryRun:     c.DryRun,
		StartedAt:  started,
		FinishedAt: time.Now().UTC(),
		Discovered: summary.Discovered,
		Kept:       summary.Kept,
		Deleted:    summary.Deleted,
		Failed:     summary.Failed,
	}, records)

	return summary, nil
}

// CleanLocal scans a directory tree and applies retention to it.
func CleanLocal(ctx context.Context, dir string, clean *Clean) (Summary, error) {
	items, err := retention.ScanDir(dir)
	if err != nil {
		return Summary{}, err
	}
	if clean.Deleter == nil {
		clean.Deleter = retention.LocalDeleter{}
	}
	if clean.Kind == "" {
		clean.Kind = history.KindCleanLocal
	}
	if clean.Target == "" {
		clean.Target = dir
	}
	return clean.Run(ctx, items)
}
