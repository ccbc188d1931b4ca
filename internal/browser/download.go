package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"boxpull/internal/logging"
	"boxpull/internal/share"
	"boxpull/internal/webdriver"
)

var downloadControlSelectors = []string{
	"button[aria-label*='Download']",
	"button[data-testid='download-btn']",
	"button[title*='Download']",
}

const moreOptionsSelector = "button[aria-label='More Options']"

// Download drives the simulated click sequence for one catalog entry:
// select the row, try the direct download controls, fall back to the
// overflow menu, then wait for the file to materialize in the download
// directory. Success is the file's stable presence on disk, never a click
// having happened.
func (s *Surface) Download(ctx context.Context, item share.Item) (int64, error) {
	if item.RowRef == "" {
		return 0, share.Wrap(share.ErrRetrievalExhausted, "browser download", item.Name+": no row reference", nil)
	}

	row := s.session.ElementByID(item.RowRef)
	if err := row.Click(ctx); err != nil {
		return 0, share.Wrap(share.ErrStrategyFailure, "browser download", "select row", err)
	}

	if err := s.clickDownloadControl(ctx, row); err != nil {
		return 0, err
	}

	size, err := s.waitForDownload(ctx, item.Name)
	if err != nil {
		return 0, share.Wrap(share.ErrRetrievalExhausted, "browser download", item.Name, err)
	}
	s.logger.Info("file downloaded via browser",
		logging.Args(logging.String("file", item.Name), logging.Int64("bytes", size))...)
	return size, nil
}

func (s *Surface) clickDownloadControl(ctx context.Context, row webdriver.Element) error {
	for _, selector := range downloadControlSelectors {
		control, err := row.FindElement(ctx, selector)
		if errors.Is(err, webdriver.ErrNoSuchElement) {
			// The control may live in the toolbar rather than the row.
			control, err = s.session.FindElement(ctx, selector)
		}
		if err != nil {
			continue
		}
		if err := control.Click(ctx); err == nil {
			return nil
		}
	}

	// Fall back to the overflow menu.
	more, err := s.session.FindElement(ctx, moreOptionsSelector)
	if err != nil {
		return share.Wrap(share.ErrStrategyFailure, "browser download", "no download control", err)
	}
	if err := more.Click(ctx); err != nil {
		return share.Wrap(share.ErrStrategyFailure, "browser download", "open overflow menu", err)
	}
	action, err := s.session.WaitForElements(ctx, "[role='menuitem']", s.pageTimeout)
	if err != nil {
		return share.Wrap(share.ErrStrategyFailure, "browser download", "overflow menu items", err)
	}
	for _, candidate := range action {
		text, err := candidate.Text(ctx)
		if err != nil {
			continue
		}
		if strings.Contains(strings.ToLower(text), "download") {
			if err := candidate.Click(ctx); err == nil {
				return nil
			}
		}
	}
	return share.Wrap(share.ErrStrategyFailure, "browser download", "no download action in menu", nil)
}

// waitForDownload blocks until name exists in the download directory with no
// in-progress marker alongside it, or the download timeout passes. fsnotify
// provides wakeups; a coarse ticker covers events the watcher may miss.
func (s *Surface) waitForDownload(ctx context.Context, name string) (int64, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return 0, fmt.Errorf("watch download dir: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(s.downloadDir); err != nil {
		return 0, fmt.Errorf("watch download dir: %w", err)
	}

	deadline := time.NewTimer(s.downloadTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		if size, done := s.downloadComplete(name); done {
			return size, nil
		}
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-deadline.C:
			return 0, fmt.Errorf("download of %s timed out after %s", name, s.downloadTimeout)
		case <-watcher.Events:
		case err := <-watcher.Errors:
			s.logger.Debug("download watcher error", logging.Args(logging.Error(err))...)
		case <-ticker.C:
		}
	}
}

func (s *Surface) downloadComplete(name string) (int64, bool) {
	path := filepath.Join(s.downloadDir, name)
	info, err := os.Stat(path)
	if err != nil {
		return 0, false
	}
	// Chrome streams into a .crdownload sibling until the download finishes.
	if _, err := os.Stat(path + ".crdownload"); err == nil {
		return 0, false
	}
	matches, _ := filepath.Glob(filepath.Join(s.downloadDir, "*.crdownload"))
	if len(matches) > 0 {
		return 0, false
	}
	return info.Size(), true
}
