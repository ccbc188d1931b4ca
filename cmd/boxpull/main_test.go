package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"boxpull/internal/config"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

func writeTestConfig(t *testing.T, extra string) string {
	t.Helper()
	base := t.TempDir()
	path := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
output_dir = %q
log_dir = %q
%s`, filepath.Join(base, "downloads"), filepath.Join(base, "logs"), extra)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestConfigInitCreatesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, err := runCLI(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, "Wrote sample configuration") {
		t.Fatalf("unexpected output: %q", out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, err := runCLI(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error for existing config file")
	}
}

func TestConfigShowRedactsPassword(t *testing.T) {
	path := writeTestConfig(t, `[box]
email = "ops@example.com"
password = "hunter2"
`)

	out, err := runCLI(t, "--config", path, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if strings.Contains(out, "hunter2") {
		t.Fatalf("password leaked into output: %q", out)
	}
	if !strings.Contains(out, "<set>") {
		t.Fatalf("expected redaction marker in output: %q", out)
	}
	if !strings.Contains(out, path) {
		t.Fatalf("expected resolved path comment in output: %q", out)
	}
}

func TestFetchWithoutLinkFails(t *testing.T) {
	path := writeTestConfig(t, "")

	_, err := runCLI(t, "--config", path, "fetch")
	if err == nil {
		t.Fatal("expected error when no shared link is given or configured")
	}
	if !strings.Contains(err.Error(), "no shared link") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCleanLocalDryRunThroughCLI(t *testing.T) {
	path := writeTestConfig(t, "")

	dir := t.TempDir()
	for _, name := range []string{
		"Data_Volume_Report_01032024.xlsx",
		"Data_Volume_Report_15022024.xlsx",
		"chart.png",
		"notes.txt",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	out, err := runCLI(t, "--config", path, "clean-local", dir, "--dry-run")
	if err != nil {
		t.Fatalf("clean-local: %v", err)
	}
	if !strings.Contains(out, "Keeping latest report: Data_Volume_Report_01032024.xlsx") {
		t.Fatalf("missing keep line: %q", out)
	}
	if !strings.Contains(out, "Would delete older report Data_Volume_Report_15022024.xlsx") {
		t.Fatalf("missing report deletion line: %q", out)
	}
	if !strings.Contains(out, "Would delete image chart.png") {
		t.Fatalf("missing image deletion line: %q", out)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("dry run must not delete anything, found %d entries", len(entries))
	}
}

func TestResolveLinks(t *testing.T) {
	cfg := &config.Config{}
	cfg.Box.SharedLinks = []string{"https://app.box.com/s/first", "https://app.box.com/s/second"}

	links, err := resolveLinks(cfg, []string{"https://app.box.com/s/arg"}, false)
	if err != nil || len(links) != 1 || links[0] != "https://app.box.com/s/arg" {
		t.Fatalf("argument should win: %v %v", links, err)
	}

	links, err = resolveLinks(cfg, nil, false)
	if err != nil || len(links) != 1 || links[0] != cfg.Box.SharedLinks[0] {
		t.Fatalf("default should be first configured link: %v %v", links, err)
	}

	links, err = resolveLinks(cfg, nil, true)
	if err != nil || len(links) != 2 {
		t.Fatalf("--all should return every link: %v %v", links, err)
	}

	if _, err := resolveLinks(&config.Config{}, nil, false); err == nil {
		t.Fatal("expected error with no argument and no configured links")
	}
}

func TestFormatBytes(t *testing.T) {
	cases := map[int64]string{
		0:       "",
		512:     "512 B",
		2048:    "2.0 KiB",
		5 << 20: "5.0 MiB",
	}
	for in, want := range cases {
		if got := formatBytes(in); got != want {
			t.Errorf("formatBytes(%d) = %q, want %q", in, got, want)
		}
	}
}
