package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"boxpull/internal/history"
	"boxpull/internal/share"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var showFiles string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				if store == nil {
					return share.Wrap(share.ErrConfiguration, "history", "history store unavailable", nil)
				}
				out := cmd.OutOrStdout()
				if showFiles != "" {
					files, err := store.ListFiles(cmd.Context(), showFiles)
					if err != nil {
						return err
					}
					if len(files) == 0 {
						fmt.Fprintln(out, "No files recorded for that run.")
						return nil
					}
					rows := make([][]string, 0, len(files))
					for _, f := range files {
						rows = append(rows, []string{f.Name, f.Action, formatBytes(f.Bytes), f.Error})
					}
					fmt.Fprintln(out, renderTable([]string{"File", "Action", "Size", "Error"}, rows, 2))
					return nil
				}

				runs, err := store.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded yet.")
					return nil
				}
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					mode := ""
					if run.DryRun {
						mode = "dry-run"
					}
					rows = append(rows, []string{
						run.StartedAt.Local().Format("2006-01-02 15:04"),
						run.Kind,
						mode,
						run.Target,
						strconv.Itoa(run.Discovered),
						strconv.Itoa(run.Retrieved),
						strconv.Itoa(run.Deleted),
						strconv.Itoa(run.Failed),
						run.ID,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Started", "Kind", "Mode", "Target", "Found", "Got", "Deleted", "Failed", "Run ID"},
					rows, 4, 5, 6, 7))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Maximum number of runs to show")
	cmd.Flags().StringVar(&showFiles, "files", "", "Show per-file outcomes for the given run ID")
	return cmd
}

func formatBytes(n int64) string {
	if n <= 0 {
		return ""
	}
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
