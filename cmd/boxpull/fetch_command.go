package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"boxpull/internal/box"
	"boxpull/internal/browser"
	"boxpull/internal/config"
	"boxpull/internal/history"
	"boxpull/internal/logging"
	"boxpull/internal/share"
	"boxpull/internal/workflow"
)

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var outputDir string
	var all bool
	var useBrowser bool
	var headless bool

	cmd := &cobra.Command{
		Use:   "fetch [shared-link]",
		Short: "Download every file from a Box shared folder",
		Long: `Fetch enumerates a Box shared folder and downloads every file in it.

Enumeration and retrieval each walk a chain of strategies from the direct
API down to a driven browser session, so a single blocked endpoint does
not fail the run. Pass a shared link, or rely on the links configured
under [box], or --all to fetch every configured link.`,
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

			links, err := resolveLinks(cfg, args, all)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("headless") {
				cfg.Browser.Headless = headless
			}
			dest := cfg.Paths.OutputDir
			if strings.TrimSpace(outputDir) != "" {
				dest = strings.TrimSpace(outputDir)
			}

			return ctx.withHistory(func(store *history.Store) error {
				var firstErr error
				for _, link := range links {
					summary, err := runFetch(cmd.Context(), cfg, logger, store, link, dest, useBrowser, cmd)
					if err != nil {
						if share.Fatal(err) {
							return err
						}
						logger.Error("fetch failed", logging.Args(logging.String("target", link), logging.Error(err))...)
						if firstErr == nil {
							firstErr = err
						}
						continue
					}
					if summary.Discovered > 0 && summary.Retrieved == 0 && firstErr == nil {
						firstErr = fmt.Errorf("fetch %s: discovered %d files but retrieved none", link, summary.Discovered)
					}
				}
				return firstErr
			})
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Destination directory (defaults to paths.output_dir)")
	cmd.Flags().BoolVar(&all, "all", false, "Fetch every shared link from the configuration")
	cmd.Flags().BoolVar(&useBrowser, "browser", false, "Skip the HTTP strategies and drive the browser directly")
	cmd.Flags().BoolVar(&headless, "headless", true, "Run the browser headless (overrides browser.headless)")
	return cmd
}

func runFetch(ctx context.Context, cfg *config.Config, logger *slog.Logger, store *history.Store, link, dest string, useBrowser bool, cmd *cobra.Command) (workflow.Summary, error) {
	fetch := &workflow.Fetch{
		Target:    link,
		OutputDir: dest,
		Workers:   cfg.Retrieval.Workers,
		History:   store,
		Logger:    logger,
		Out:       cmd.OutOrStdout(),
	}

	if useBrowser {
		surface, err := browser.Open(ctx, cfg, dest, logger)
		if err != nil {
			return workflow.Summary{}, err
		}
		defer surface.Close(ctx)
		if cfg.HasCredentials() {
			if _, err := surface.Login(ctx, cfg.Box.Email, cfg.Box.Password); err != nil {
				logger.Warn("login failed; continuing unauthenticated", logging.Args(logging.Error(err))...)
			}
		}
		fetch.Enumerator = &surfaceEnumerator{surface: surface, link: link}
		fetch.Retriever = &surfaceRetriever{surface: surface}
		return fetch.Run(ctx)
	}

	session := box.NewSession(cfg, link)
	fetch.Enumerator = box.NewEnumerator(session, logger)
	fetch.Retriever = box.NewRetriever(session, logger, cfg.Retrieval.ChunkKiB, newProgressObserver(cfg.Retrieval.Workers))
	return fetch.Run(ctx)
}

// resolveLinks picks the fetch targets: an explicit argument wins, --all
// takes every configured link, otherwise the first configured link.
func resolveLinks(cfg *config.Config, args []string, all bool) ([]string, error) {
	if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
		return []string{strings.TrimSpace(args[0])}, nil
	}
	if len(cfg.Box.SharedLinks) == 0 {
		return nil, share.Wrap(share.ErrConfiguration, "fetch", "no shared link given and none configured under [box]", nil)
	}
	if all {
		return cfg.Box.SharedLinks, nil
	}
	return cfg.Box.SharedLinks[:1], nil
}

// surfaceEnumerator adapts a browser surface to the workflow enumerator
// contract for a single shared link.
type surfaceEnumerator struct {
	surface *browser.Surface
	link    string
}

func (e *surfaceEnumerator) Enumerate(ctx context.Context) ([]share.Item, error) {
	return e.surface.Enumerate(ctx, e.link)
}

// surfaceRetriever downloads through the driven browser. The browser owns
// its download directory and a single page, so retrieval is serial
// regardless of the configured worker count.
type surfaceRetriever struct {
	surface *browser.Surface
}

func (r *surfaceRetriever) RetrieveAll(ctx context.Context, items []share.Item, destDir string, workers int) []box.Outcome {
	outcomes := make([]box.Outcome, 0, len(items))
	for _, item := range items {
		if ctx.Err() != nil {
			outcomes = append(outcomes, box.Outcome{Item: item, Err: ctx.Err()})
			continue
		}
		bytes, err := r.surface.Download(ctx, item)
		outcomes = append(outcomes, box.Outcome{Item: item, Bytes: bytes, Err: err})
	}
	return outcomes
}
