package main

import (
	"context"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"boxpull/internal/box"
	"boxpull/internal/config"
	"boxpull/internal/history"
	"boxpull/internal/logging"
	"boxpull/internal/share"
	"boxpull/internal/workflow"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var schedule string
	var runNow bool

	cmd := &cobra.Command{
		Use:   "watch [shared-link]",
		Short: "Fetch and clean on a schedule until interrupted",
		Long: `Watch runs fetch then clean-local on a cron schedule (watch.schedule,
default daily at 06:00) for the given shared link, or for every configured
link when none is given. The process stays in the foreground and stops on
interrupt.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			spec := cfg.Watch.Schedule
			if schedule != "" {
				spec = schedule
			}
			if _, err := cron.ParseStandard(spec); err != nil {
				return share.Wrap(share.ErrConfiguration, "watch", "invalid schedule "+spec, err)
			}
			links, err := resolveLinks(cfg, args, len(args) == 0)
			if err != nil {
				return err
			}

			return ctx.withHistory(func(store *history.Store) error {
				// Guards against a slow cycle overlapping the next tick.
				var cycleMu sync.Mutex
				runCycle := func() {
					if !cycleMu.TryLock() {
						logger.Warn("previous cycle still running; skipping tick")
						return
					}
					defer cycleMu.Unlock()
					watchCycle(cmd.Context(), cfg, logger, store, links, cmd)
				}

				scheduler := cron.New()
				if _, err := scheduler.AddFunc(spec, runCycle); err != nil {
					return share.Wrap(share.ErrConfiguration, "watch", "schedule "+spec, err)
				}

				logger.Info("watch started", logging.Args(
					logging.String("schedule", spec),
					logging.Int("links", len(links)),
				)...)
				if runNow {
					runCycle()
				}
				scheduler.Start()
				<-cmd.Context().Done()
				<-scheduler.Stop().Done()
				logger.Info("watch stopped")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&schedule, "schedule", "", "Cron schedule override (defaults to watch.schedule)")
	cmd.Flags().BoolVar(&runNow, "now", false, "Run one cycle immediately before waiting for the schedule")
	return cmd
}

// watchCycle fetches every target link, then applies retention to the
// output directory. Failures are logged and the next tick retries.
func watchCycle(ctx context.Context, cfg *config.Config, logger *slog.Logger, store *history.Store, links []string, cmd *cobra.Command) {
	for _, link := range links {
		session := box.NewSession(cfg, link)
		fetch := &workflow.Fetch{
			Target:     link,
			OutputDir:  cfg.Paths.OutputDir,
			Workers:    cfg.Retrieval.Workers,
			Enumerator: box.NewEnumerator(session, logger),
			Retriever:  box.NewRetriever(session, logger, cfg.Retrieval.ChunkKiB, nil),
			History:    store,
			Logger:     logger,
			Out:        cmd.OutOrStdout(),
		}
		if _, err := fetch.Run(ctx); err != nil {
			logger.Error("scheduled fetch failed",
				logging.Args(logging.String("target", link), logging.Error(err))...)
		}
	}

	clean := &workflow.Clean{History: store, Logger: logger, Out: cmd.OutOrStdout()}
	if _, err := workflow.CleanLocal(ctx, cfg.Paths.OutputDir, clean); err != nil {
		logger.Error("scheduled cleanup failed", logging.Args(logging.Error(err))...)
	}
}
