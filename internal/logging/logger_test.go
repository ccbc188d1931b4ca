package logging

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewCreatesLogFile(t *testing.T) {
	dir := t.TempDir()
	logger, err := New(Options{Level: "debug", Format: "json", LogDir: dir})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("hello")

	data, err := os.ReadFile(filepath.Join(dir, "boxpull.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected log record in file")
	}
}

func TestCleanupOldLogs(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "boxpull.log")
	if err := os.WriteFile(old, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	stale := time.Now().AddDate(0, 0, -30)
	if err := os.Chtimes(old, stale, stale); err != nil {
		t.Fatal(err)
	}
	fresh := filepath.Join(dir, "boxpull-2.log")
	if err := os.WriteFile(fresh, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	unrelated := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(unrelated, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(unrelated, stale, stale); err != nil {
		t.Fatal(err)
	}

	CleanupOldLogs(NewNop(), dir, 7)

	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("expected stale log to be pruned")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Error("fresh log must survive")
	}
	if _, err := os.Stat(unrelated); err != nil {
		t.Error("non-log files must survive")
	}
}

func TestFromContextFallsBackToNop(t *testing.T) {
	logger := FromContext(t.Context())
	if logger == nil {
		t.Fatal("expected nop logger")
	}
}
