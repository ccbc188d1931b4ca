package retention

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"boxpull/internal/logging"
	"boxpull/internal/share"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestExecuteDeletesPlannedLocalFiles(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir,
		"Data_Volume_Report_01012024.xlsx",
		"Data_Volume_Report_15012024.xlsx",
		"chart.png",
	)

	items, err := ScanDir(dir)
	if err != nil {
		t.Fatalf("ScanDir: %v", err)
	}
	plan := Compute(items)

	var out bytes.Buffer
	result := NewExecutor(LocalDeleter{}, logging.NewNop(), &out, false).Execute(context.Background(), plan)
	if result.Attempted != 2 || result.Deleted != 2 || result.Failed != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}

	if _, err := os.Stat(filepath.Join(dir, "Data_Volume_Report_15012024.xlsx")); err != nil {
		t.Error("survivor must remain on disk")
	}
	for _, gone := range []string{"Data_Volume_Report_01012024.xlsx", "chart.png"} {
		if _, err := os.Stat(filepath.Join(dir, gone)); !os.IsNotExist(err) {
			t.Errorf("%s should have been deleted", gone)
		}
	}
}

func TestDryRunOutputMatchesLiveAndMutatesNothing(t *testing.T) {
	build := func(t *testing.T) (string, Plan) {
		dir := t.TempDir()
		writeFiles(t, dir,
			"Data_Volume_Report_01012024.xlsx",
			"Data_Volume_Report_15012024.xlsx",
			"chart.png",
		)
		items, err := ScanDir(dir)
		if err != nil {
			t.Fatal(err)
		}
		return dir, Compute(items)
	}

	dryDir, dryPlan := build(t)
	var dryOut bytes.Buffer
	NewExecutor(LocalDeleter{}, logging.NewNop(), &dryOut, true).Execute(context.Background(), dryPlan)

	liveDir, livePlan := build(t)
	var liveOut bytes.Buffer
	NewExecutor(LocalDeleter{}, logging.NewNop(), &liveOut, false).Execute(context.Background(), livePlan)

	if dryOut.String() != liveOut.String() {
		t.Fatalf("dry-run output diverges from live:\n%s\nvs\n%s", dryOut.String(), liveOut.String())
	}

	// Dry run leaves all three files present.
	entries, err := os.ReadDir(dryDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("dry run mutated the directory: %d entries remain", len(entries))
	}
	liveEntries, err := os.ReadDir(liveDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(liveEntries) != 1 {
		t.Fatalf("live run should leave one file, left %d", len(liveEntries))
	}
}

func TestExecuteReportsNoCleanupNeeded(t *testing.T) {
	plan := Compute(fileItems("Data_Volume_Report_15012024.xlsx"))

	var out bytes.Buffer
	result := NewExecutor(LocalDeleter{}, logging.NewNop(), &out, false).Execute(context.Background(), plan)
	if result.Attempted != 0 {
		t.Fatalf("nothing should be attempted: %+v", result)
	}
	if !bytes.Contains(out.Bytes(), []byte("No cleanup needed")) {
		t.Fatalf("expected no-cleanup notice, got %q", out.String())
	}
}

type flakyDeleter struct {
	failFor string
	deleted []string
}

func (d *flakyDeleter) Delete(_ context.Context, item share.Item) error {
	if item.Name == d.failFor {
		return errors.New("permission denied")
	}
	d.deleted = append(d.deleted, item.Name)
	return nil
}

func TestExecuteBestEffortPerItem(t *testing.T) {
	plan := Compute(fileItems(
		"Data_Volume_Report_01012024.xlsx",
		"Data_Volume_Report_15012024.xlsx",
		"chart.png",
	))

	deleter := &flakyDeleter{failFor: "Data_Volume_Report_01012024.xlsx"}
	result := NewExecutor(deleter, logging.NewNop(), nil, false).Execute(context.Background(), plan)

	if result.Attempted != 2 || result.Deleted != 1 || result.Failed != 1 {
		t.Fatalf("unexpected tallies: %+v", result)
	}
	if len(deleter.deleted) != 1 || deleter.deleted[0] != "chart.png" {
		t.Fatalf("image deletion must proceed past the failure: %+v", deleter.deleted)
	}
}

func TestScanDirRecurses(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "sub", "deeper")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFiles(t, dir, "top.png")
	writeFiles(t, nested, "Data_Volume_Report_15012024.xlsx")

	items, err := ScanDir(dir)
	if err != nil {
		t.Fatalf("ScanDir: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	for _, item := range items {
		if item.LocalPath == "" {
			t.Fatalf("local path missing on %+v", item)
		}
	}
}

func TestScanDirMissingDirectory(t *testing.T) {
	if _, err := ScanDir(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
