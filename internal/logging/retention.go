package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// CleanupOldLogs removes boxpull log files in dir older than retentionDays.
// A retentionDays value of 0 disables pruning. Failures are logged and
// skipped; log hygiene never blocks a run.
func CleanupOldLogs(logger *slog.Logger, dir string, retentionDays int) {
	if retentionDays <= 0 || dir == "" {
		return
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		matched, err := filepath.Match("boxpull*.log", entry.Name())
		if err != nil || !matched {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			if logger != nil {
				logger.Warn("log retention remove failed; file remains", Args(String("path", path), Error(err))...)
			}
			continue
		}
		if logger != nil {
			logger.Debug("log pruned", Args(String("path", path))...)
		}
	}
}
