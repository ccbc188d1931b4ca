package main

import (
	"strings"

	"github.com/spf13/cobra"

	"boxpull/internal/box"
	"boxpull/internal/browser"
	"boxpull/internal/history"
	"boxpull/internal/logging"
	"boxpull/internal/retention"
	"boxpull/internal/share"
	"boxpull/internal/workflow"
)

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var headless bool

	cmd := &cobra.Command{
		Use:   "clean [shared-link]",
		Short: "Apply the retention policy to a remote shared folder",
		Long: `Clean keeps the single latest dated report in the shared folder and
deletes every older dated report and every image.

Remote deletion needs a driven browser session with credentials. Without
one the command still plans and prints the same decisions in dry-run
form, so the output can be inspected before enabling deletion.`,
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
			links, err := resolveLinks(cfg, args, false)
			if err != nil {
				return err
			}
			link := links[0]
			if cmd.Flags().Changed("headless") {
				cfg.Browser.Headless = headless
			}

			var items []share.Item
			var deleter retention.Deleter

			if cfg.Browser.Enabled {
				surface, err := browser.Open(cmd.Context(), cfg, cfg.Paths.OutputDir, logger)
				if err != nil {
					return err
				}
				defer surface.Close(cmd.Context())
				loggedIn := false
				if cfg.HasCredentials() {
					loggedIn, err = surface.Login(cmd.Context(), cfg.Box.Email, cfg.Box.Password)
					if err != nil {
						logger.Warn("login failed; remote deletion unavailable", logging.Args(logging.Error(err))...)
					}
				}
				items, err = surface.Enumerate(cmd.Context(), link)
				if err != nil {
					return err
				}
				if loggedIn {
					deleter = surface
				}
			} else {
				session := box.NewSession(cfg, link)
				items, err = box.NewEnumerator(session, logger).Enumerate(cmd.Context())
				if err != nil {
					return err
				}
			}

			return ctx.withHistory(func(store *history.Store) error {
				clean := &workflow.Clean{
					Kind:    history.KindClean,
					Target:  link,
					Deleter: deleter,
					History: store,
					Logger:  logger,
					Out:     cmd.OutOrStdout(),
					DryRun:  dryRun,
				}
				_, err := clean.Run(cmd.Context(), items)
				return err
			})
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Print the plan without deleting anything")
	cmd.Flags().BoolVar(&headless, "headless", true, "Run the browser headless (overrides browser.headless)")
	return cmd
}

func newCleanLocalCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "clean-local [directory]",
		Short: "Apply the retention policy to a local directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			dir := cfg.Paths.OutputDir
			if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
				dir = strings.TrimSpace(args[0])
			}

			return ctx.withHistory(func(store *history.Store) error {
				clean := &workflow.Clean{
					History: store,
					Logger:  logger,
					Out:     cmd.OutOrStdout(),
					DryRun:  dryRun,
				}
				_, err := workflow.CleanLocal(cmd.Context(), dir, clean)
				return err
			})
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Print the plan without deleting anything")
	return cmd
}
