package workflow

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"boxpull/internal/box"
	"boxpull/internal/history"
	"boxpull/internal/logging"
	"boxpull/internal/share"
)

type stubEnumerator struct {
	items []share.Item
	err   error
}

func (s stubEnumerator) Enumerate(context.Context) ([]share.Item, error) {
	return s.items, s.err
}

type stubRetriever struct {
	failFor map[string]bool
	seen    []string
}

func (s *stubRetriever) RetrieveAll(_ context.Context, items []share.Item, destDir string, _ int) []box.Outcome {
	outcomes := make([]box.Outcome, len(items))
	for i, item := range items {
		s.seen = append(s.seen, item.Name)
		if s.failFor[item.Name] {
			outcomes[i] = box.Outcome{Item: item, Err: errors.New("all templates failed")}
			continue
		}
		os.WriteFile(filepath.Join(destDir, item.Name), []byte("data"), 0o644)
		outcomes[i] = box.Outcome{Item: item, Bytes: 4}
	}
	return outcomes
}

func catalog(names ...string) []share.Item {
	items := make([]share.Item, 0, len(names))
	for _, name := range names {
		items = append(items, share.NewItem(name, share.KindFile))
	}
	return items
}

func TestFetchDownloadsAllFiles(t *testing.T) {
	dest := t.TempDir()
	folder := share.NewItem("archive", share.KindFolder)
	enum := stubEnumerator{items: append(catalog("a.xlsx", "b.png"), folder)}
	retriever := &stubRetriever{}

	fetch := &Fetch{
		Target:     "https://app.box.com/s/abc",
		OutputDir:  dest,
		Workers:    2,
		Enumerator: enum,
		Retriever:  retriever,
		Logger:     logging.NewNop(),
	}
	summary, err := fetch.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Discovered != 2 || summary.Retrieved != 2 || summary.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(retriever.seen) != 2 {
		t.Fatalf("folder entries must not be retrieved: %v", retriever.seen)
	}
}

func TestFetchPartialFailureKeepsBatch(t *testing.T) {
	dest := t.TempDir()
	enum := stubEnumerator{items: catalog("a.xlsx", "b.png", "c.gif")}
	retriever := &stubRetriever{failFor: map[string]bool{"b.png": true}}

	var out bytes.Buffer
	fetch := &Fetch{
		OutputDir:  dest,
		Enumerator: enum,
		Retriever:  retriever,
		Logger:     logging.NewNop(),
		Out:        &out,
	}
	summary, err := fetch.Run(context.Background())
	if err != nil {
		t.Fatalf("partial failure must not abort the run: %v", err)
	}
	if summary.Retrieved != 2 || summary.Failed != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if !strings.Contains(out.String(), "failed 1") {
		t.Fatalf("summary must report the failure: %q", out.String())
	}
}

func TestFetchEmptyFolderIsSuccess(t *testing.T) {
	fetch := &Fetch{
		OutputDir:  t.TempDir(),
		Enumerator: stubEnumerator{},
		Retriever:  &stubRetriever{},
		Logger:     logging.NewNop(),
	}
	summary, err := fetch.Run(context.Background())
	if err != nil {
		t.Fatalf("empty folder must not error: %v", err)
	}
	if summary.Discovered != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestFetchUnwritableDestinationIsFatal(t *testing.T) {
	fetch := &Fetch{
		OutputDir:  "",
		Enumerator: stubEnumerator{},
		Retriever:  &stubRetriever{},
	}
	_, err := fetch.Run(context.Background())
	if err == nil {
		t.Fatal("expected configuration error")
	}
	if !share.Fatal(err) {
		t.Fatalf("destination failure must be fatal: %v", err)
	}
}

func TestFetchRecordsHistory(t *testing.T) {
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	fetch := &Fetch{
		Target:     "https://app.box.com/s/abc",
		OutputDir:  t.TempDir(),
		Enumerator: stubEnumerator{items: catalog("a.xlsx")},
		Retriever:  &stubRetriever{},
		History:    store,
		Logger:     logging.NewNop(),
	}
	if _, err := fetch.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	runs, err := store.ListRuns(context.Background(), 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Kind != history.KindFetch || runs[0].Retrieved != 1 {
		t.Fatalf("unexpected history: %+v", runs)
	}
}

func TestCleanLocalKeepsLatestReport(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"Data_Volume_Report_01012024.xlsx",
		"Data_Volume_Report_15012024.xlsx",
		"chart.png",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	var out bytes.Buffer
	summary, err := CleanLocal(context.Background(), dir, &Clean{Logger: logging.NewNop(), Out: &out})
	if err != nil {
		t.Fatalf("CleanLocal: %v", err)
	}
	if summary.Kept != "Data_Volume_Report_15012024.xlsx" {
		t.Fatalf("unexpected keep: %+v", summary)
	}
	if summary.Deleted != 2 || summary.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "Data_Volume_Report_15012024.xlsx" {
		t.Fatalf("unexpected survivors: %v", entries)
	}
}

func TestCleanLocalDryRun(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"Data_Volume_Report_01012024.xlsx",
		"Data_Volume_Report_15012024.xlsx",
		"chart.png",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	var out bytes.Buffer
	summary, err := CleanLocal(context.Background(), dir, &Clean{
		Logger: logging.NewNop(),
		Out:    &out,
		DryRun: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if summary.Deleted != 0 {
		t.Fatalf("dry run must not delete: %+v", summary)
	}
	if !strings.Contains(out.String(), "Would delete older report Data_Volume_Report_01012024.xlsx") {
		t.Fatalf("missing report decision line: %q", out.String())
	}
	if !strings.Contains(out.String(), "Would delete image chart.png") {
		t.Fatalf("missing image decision line: %q", out.String())
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("dry run must leave all files, found %d", len(entries))
	}
}

func TestCleanSingleReportNoCleanupNeeded(t *testing.T) {
	var out bytes.Buffer
	clean := &Clean{Kind: history.KindClean, Logger: logging.NewNop(), Out: &out}
	summary, err := clean.Run(context.Background(), catalog("Data_Volume_Report_15012024.xlsx"))
	if err != nil {
		t.Fatal(err)
	}
	if summary.Deleted != 0 || summary.Kept == "" {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if !strings.Contains(out.String(), "No cleanup needed") {
		t.Fatalf("expected no-cleanup notice: %q", out.String())
	}
}
