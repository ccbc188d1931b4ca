package retention

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"boxpull/internal/logging"
	"boxpull/internal/share"
)

// Deleter removes one item at its source.
type Deleter interface {
	Delete(ctx context.Context, item share.Item) error
}

// LocalDeleter removes items found by a local directory walk.
type LocalDeleter struct{}

func (LocalDeleter) Delete(_ context.Context, item share.Item) error {
	if item.LocalPath == "" {
		return share.Wrap(share.ErrDeletionFailure, "delete", item.Name+": no local path", nil)
	}
	if err := os.Remove(item.LocalPath); err != nil {
		return share.Wrap(share.ErrDeletionFailure, "delete", item.Name, err)
	}
	return nil
}

// Result tallies one executed plan.
type Result struct {
	Attempted int
	Deleted   int
	Failed    int
}

// Executor applies a plan through a Deleter, best-effort per item: one
// failure is logged and the remaining deletions still run. In dry-run mode
// it prints the same decision lines the live mode would and mutates nothing.
type Executor struct {
	deleter Deleter
	logger  *slog.Logger
	out     io.Writer
	dryRun  bool
}

// NewExecutor builds an executor. out receives the human-readable decision
// lines; it must be identical between dry-run and live output apart from the
// absence of mutation.
func NewExecutor(deleter Deleter, logger *slog.Logger, out io.Writer, dryRun bool) *Executor {
	if logger == nil {
		logger = logging.NewNop()
	}
	if out == nil {
		out = io.Discard
	}
	return &Executor{deleter: deleter, logger: logger, out: out, dryRun: dryRun}
}

// Execute runs the plan's deletions and returns per-item tallies.
func (e *Executor) Execute(ctx context.Context, plan Plan) Result {
	if plan.Keep != nil {
		fmt.Fprintf(e.out, "Keeping latest report: %s (%s)\n", plan.Keep.Name, plan.Keep.ReportDate.Format("2006-01-02"))
	}
	if plan.Empty() {
		fmt.Fprintln(e.out, "No cleanup needed")
		return Result{}
	}

	var result Result
	for _, item := range plan.DeleteReports {
		e.deleteOne(ctx, item, fmt.Sprintf("older report %s (%s)", item.Name, item.ReportDate.Format("2006-01-02")), &result)
	}
	for _, item := range plan.DeleteImages {
		e.deleteOne(ctx, item, "image "+item.Name, &result)
	}
	return result
}

func (e *Executor) deleteOne(ctx context.Context, item share.Item, label string, result *Result) {
	result.Attempted++
	fmt.Fprintf(e.out, "Would delete %s\n", label)
	if e.dryRun {
		return
	}
	if err := ctx.Err(); err != nil {
		result.Failed++
		return
	}
	if err := e.deleter.Delete(ctx, item); err != nil {
		result.Failed++
		e.logger.Warn("deletion failed; continuing",
			logging.Args(logging.String("file", item.Name), logging.Error(err))...)
		return
	}
	result.Deleted++
	e.logger.Info("deleted", logging.Args(logging.String("file", item.Name))...)
}
