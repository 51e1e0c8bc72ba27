package deps

import (
	"os"
	"path/filepath"
	"testing"

	"lqcli/internal/config"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: "  ", Optional: true},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Detail != "" {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary to be unavailable with detail, got %#v", results[1])
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
	if results[2].Detail != "command not configured" {
		t.Fatalf("unexpected detail for blank command: %q", results[2].Detail)
	}

	missing := MissingRequired(results)
	if len(missing) != 1 || missing[0].Name != "Missing" {
		t.Fatalf("expected only the required missing binary, got %#v", missing)
	}
}

func TestRequirementsFollowDownloadMethods(t *testing.T) {
	cfg := config.Default()
	cfg.Download.YtDlpBinary = "/usr/local/bin/yt-dlp"
	cfg.Sources = []config.Source{{Name: "direct", DownloadMethod: config.DownloadHTTP}}

	reqs := Requirements(&cfg)
	if len(reqs) != 2 {
		t.Fatalf("expected 2 requirements, got %d", len(reqs))
	}
	if reqs[0].Command != "/usr/local/bin/yt-dlp" {
		t.Fatalf("expected configured yt-dlp binary, got %q", reqs[0].Command)
	}
	for _, req := range reqs {
		if !req.Optional {
			t.Fatalf("expected %s to be optional without yt-dlp sources", req.Name)
		}
	}

	cfg.Sources = append(cfg.Sources, config.Source{Name: "video", DownloadMethod: config.DownloadYtDlp})
	for _, req := range Requirements(&cfg) {
		if req.Optional {
			t.Fatalf("expected %s to be required with a yt-dlp source", req.Name)
		}
	}
}
