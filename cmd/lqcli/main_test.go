package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"lqcli/internal/config"
	"lqcli/internal/runlock"
	"lqcli/internal/testsupport"
)

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, stateDir, lingqURL, sources string) string {
	t.Helper()
	body := fmt.Sprintf(`[lingq]
api_key = "test-key"
base_url = %q
request_delay = 0

[paths]
state_dir = %q

[logging]
level = "error"

%s`, lingqURL, stateDir, sources)
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("LINGQ_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
}

const listSources = `
[[sources]]
name = "Morning News"
url = "http://127.0.0.1:1/news.xml"
course_id = 11
language = "de"
tags = ["daily"]
transcript_via = "lingq"
download_method = "http"

[[sources]]
name = "Long Reads"
url = "http://127.0.0.1:1/reads.xml"
content_type = "enclosure"
course_id = 22
language = "fr"
tags = ["weekly"]
transcript_via = "lingq"
download_method = "http"
`

func TestSourcesListFiltersByTag(t *testing.T) {
	isolateEnv(t)
	cfgPath := writeTestConfig(t, t.TempDir(), "http://127.0.0.1:1", listSources)

	out, _, err := runCLI(t, []string{"sources", "list"}, cfgPath)
	if err != nil {
		t.Fatalf("sources list: %v", err)
	}
	if !strings.Contains(out, "Morning News") || !strings.Contains(out, "Long Reads") {
		t.Fatalf("expected both sources, got %q", out)
	}
	if strings.Index(out, "Morning News") > strings.Index(out, "Long Reads") {
		t.Fatalf("expected declaration order, got %q", out)
	}

	out, _, err = runCLI(t, []string{"sources", "list", "--tags", "weekly"}, cfgPath)
	if err != nil {
		t.Fatalf("sources list --tags: %v", err)
	}
	if strings.Contains(out, "Morning News") || !strings.Contains(out, "Long Reads") {
		t.Fatalf("unexpected filtered output: %q", out)
	}
	if !strings.Contains(out, "Enclosure") {
		t.Fatalf("expected content type label, got %q", out)
	}

	out, _, err = runCLI(t, []string{"sources", "list", "-t", "Daily"}, cfgPath)
	if err != nil {
		t.Fatalf("sources list -t Daily: %v", err)
	}
	if !strings.Contains(out, "No sources match") {
		t.Fatalf("tag match should be case-sensitive, got %q", out)
	}
}

func TestSyncDryRunMakesNoNetworkCalls(t *testing.T) {
	isolateEnv(t)
	stateDir := t.TempDir()
	cfgPath := writeTestConfig(t, stateDir, "http://127.0.0.1:1", listSources)

	out, _, err := runCLI(t, []string{"sources", "sync", "--dry-run", "--tags", "daily"}, cfgPath)
	if err != nil {
		t.Fatalf("sync --dry-run: %v", err)
	}
	if !strings.Contains(out, "Dry run") || !strings.Contains(out, "Morning News") {
		t.Fatalf("unexpected dry-run output: %q", out)
	}
	if strings.Contains(out, "Long Reads") {
		t.Fatalf("dry run should honor tags, got %q", out)
	}
	if _, err := os.Stat(filepath.Join(stateDir, "history.db")); !os.IsNotExist(err) {
		t.Fatalf("dry run should not open history, stat err=%v", err)
	}
}

func TestMissingConfigIsFatal(t *testing.T) {
	isolateEnv(t)
	_, _, err := runCLI(t, []string{"sources", "list"}, filepath.Join(t.TempDir(), "absent.toml"))
	if err == nil || !strings.Contains(err.Error(), "config init") {
		t.Fatalf("expected missing config error, got %v", err)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	isolateEnv(t)
	target := filepath.Join(t.TempDir(), "nested", "config.toml")

	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Fatalf("expected target path in output, got %q", out)
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected error when config exists without --overwrite")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}

	cfgPath := writeTestConfig(t, t.TempDir(), "http://127.0.0.1:1", listSources)
	out, _, err = runCLI(t, []string{"config", "validate"}, cfgPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	if !strings.Contains(out, cfgPath) || !strings.Contains(out, "Configuration valid") {
		t.Fatalf("unexpected validate output: %q", out)
	}
	if !strings.Contains(out, "Dependencies") {
		t.Fatalf("expected dependency section, got %q", out)
	}
}

type fakeLingQ struct {
	mu        sync.Mutex
	published []string
	notified  []string
	feed      string
}

func (f *fakeLingQ) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/feed.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		io.WriteString(w, f.feed)
	})
	mux.HandleFunc("/ntfy", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.notified = append(f.notified, r.Header.Get("Title"))
		f.mu.Unlock()
	})
	mux.HandleFunc("/slow.xml", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	})
	mux.HandleFunc("/audio/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ID3-fake-audio"))
	})
	mux.HandleFunc("/api/v2/de/collections/42/", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Token test-key" {
			t.Errorf("unexpected authorization header %q", got)
		}
		io.WriteString(w, `{"pk":42,"title":"Course","lessons":[{"title":"Old Episode"}]}`)
	})
	mux.HandleFunc("/api/v3/de/lessons/import/", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.published = append(f.published, r.FormValue("title"))
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"id":1}`)
	})
	return mux
}

func TestSyncPublishesNewItemsAndRecordsHistory(t *testing.T) {
	isolateEnv(t)
	fake := &fakeLingQ{}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()
	fake.feed = fmt.Sprintf(`<?xml version="1.0"?>
<rss version="2.0"><channel><title>Podcast</title>
<item><title>New Episode</title><enclosure url="%[1]s/audio/new.mp3" type="audio/mpeg" length="1"/></item>
<item><title>Old Episode</title><enclosure url="%[1]s/audio/old.mp3" type="audio/mpeg" length="1"/></item>
</channel></rss>`, srv.URL)

	sources := fmt.Sprintf(`
[notifications]
ntfy_topic = "%[1]s/ntfy"

[[sources]]
name = "Podcast"
url = "%[1]s/feed.xml"
course_id = 42
language = "de"
transcript_via = "lingq"
download_method = "http"

[[sources]]
name = "Broken"
url = "%[1]s/missing.xml"
course_id = 42
language = "de"
transcript_via = "lingq"
download_method = "http"
`, srv.URL)
	stateDir := t.TempDir()
	cfgPath := writeTestConfig(t, stateDir, srv.URL+"/api", sources)

	out, _, err := runCLI(t, []string{"sources", "sync"}, cfgPath)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	fake.mu.Lock()
	published := append([]string(nil), fake.published...)
	fake.mu.Unlock()
	if len(published) != 1 || published[0] != "New Episode" {
		t.Fatalf("expected only the new episode published, got %v", published)
	}
	if !strings.Contains(out, "Podcast") || !strings.Contains(out, "fetch error") {
		t.Fatalf("expected summary with failed source, got %q", out)
	}
	fake.mu.Lock()
	notified := append([]string(nil), fake.notified...)
	fake.mu.Unlock()
	if len(notified) != 1 || notified[0] != "lqcli - Sync Complete (with errors)" {
		t.Fatalf("expected one sync summary notification, got %v", notified)
	}

	out, _, err = runCLI(t, []string{"history", "--limit", "10"}, cfgPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "New Episode") || !strings.Contains(out, "Old Episode") {
		t.Fatalf("expected recorded outcomes, got %q", out)
	}
}

func TestSyncLinksOnlyDoesNotPublish(t *testing.T) {
	isolateEnv(t)
	fake := &fakeLingQ{}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()
	fake.feed = fmt.Sprintf(`<?xml version="1.0"?>
<rss version="2.0"><channel><title>Podcast</title>
<item><title>Fresh</title><enclosure url="%s/audio/fresh.mp3" type="audio/mpeg" length="1"/></item>
</channel></rss>`, srv.URL)

	sources := fmt.Sprintf(`
[[sources]]
name = "Podcast"
url = "%s/feed.xml"
course_id = 42
language = "de"
transcript_via = "lingq"
download_method = "http"
`, srv.URL)
	cfgPath := writeTestConfig(t, t.TempDir(), srv.URL+"/api", sources)

	out, _, err := runCLI(t, []string{"sources", "sync", "--links-only"}, cfgPath)
	if err != nil {
		t.Fatalf("sync --links-only: %v", err)
	}
	if !strings.Contains(out, "/audio/fresh.mp3") {
		t.Fatalf("expected resolved link in output, got %q", out)
	}
	if len(fake.published) != 0 {
		t.Fatalf("links-only should not publish, got %v", fake.published)
	}
}

func TestAdhocImportsSingleLink(t *testing.T) {
	isolateEnv(t)
	fake := &fakeLingQ{}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()
	cfgPath := writeTestConfig(t, t.TempDir(), srv.URL+"/api", "")

	out, _, err := runCLI(t, []string{"adhoc", srv.URL + "/audio/clip.mp3", "Clip", "deu", "42", "-s", "-m", "http"}, cfgPath)
	if err != nil {
		t.Fatalf("adhoc: %v", err)
	}
	if !strings.Contains(out, "Imported \"Clip\" into course 42") {
		t.Fatalf("unexpected adhoc output: %q", out)
	}
	if len(fake.published) != 1 || fake.published[0] != "Clip" {
		t.Fatalf("expected Clip published, got %v", fake.published)
	}
}

func TestAdhocRejectsBadArguments(t *testing.T) {
	isolateEnv(t)
	cfgPath := writeTestConfig(t, t.TempDir(), "http://127.0.0.1:1", "")

	cases := map[string][]string{
		"course id": {"adhoc", "http://x/a.mp3", "A", "de", "zero", "-s"},
		"language":  {"adhoc", "http://x/a.mp3", "A", "klingon", "1", "-s"},
		"method":    {"adhoc", "http://x/a.mp3", "A", "de", "1", "-s", "-m", "ftp"},
		"openai":    {"adhoc", "http://x/a.mp3", "A", "de", "1"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			if _, _, err := runCLI(t, args, cfgPath); err == nil {
				t.Fatalf("expected error for %v", args)
			}
		})
	}
}

func TestConfigValidateReportsMissingYtDlp(t *testing.T) {
	isolateEnv(t)
	t.Setenv("PATH", t.TempDir())
	source := config.Source{
		Name:           "Videos",
		URL:            "https://example.com/videos.xml",
		ContentType:    config.ContentTypeLink,
		DownloadMethod: config.DownloadYtDlp,
		CourseID:       7,
		Language:       "es",
		TranscriptVia:  config.TranscriptViaLingQ,
	}

	cfg := testsupport.NewConfig(t, testsupport.WithSources(source))
	out, _, err := runCLI(t, []string{"config", "validate"}, testsupport.WriteConfig(t, cfg))
	if err == nil || !strings.Contains(err.Error(), "yt-dlp") {
		t.Fatalf("expected missing yt-dlp error, got %v (output %q)", err, out)
	}

	cfg = testsupport.NewConfig(t, testsupport.WithSources(source), testsupport.WithStubbedBinaries())
	out, _, err = runCLI(t, []string{"config", "validate"}, testsupport.WriteConfig(t, cfg))
	if err != nil {
		t.Fatalf("config validate with stubs: %v", err)
	}
	if !strings.Contains(out, "[OK]") || !strings.Contains(out, "Configuration valid") {
		t.Fatalf("unexpected validate output: %q", out)
	}
}

func TestSyncFailsFastWhenAnotherRunHoldsTheLock(t *testing.T) {
	isolateEnv(t)
	cfg := testsupport.NewConfig(t, testsupport.WithSources(config.Source{
		Name:           "Podcast",
		URL:            "http://127.0.0.1:1/feed.xml",
		ContentType:    config.ContentTypeRSSAtom,
		DownloadMethod: config.DownloadHTTP,
		CourseID:       1,
		Language:       "de",
		TranscriptVia:  config.TranscriptViaLingQ,
	}))
	cfgPath := testsupport.WriteConfig(t, cfg)

	held, err := runlock.Acquire(cfg.LockPath())
	if err != nil {
		t.Fatalf("acquire lock: %v", err)
	}
	defer held.Release()

	_, _, err = runCLI(t, []string{"sources", "sync"}, cfgPath)
	if err == nil || !strings.Contains(err.Error(), "in progress") {
		t.Fatalf("expected lock contention error, got %v", err)
	}
}

func TestSyncNotifiesEvenWhenRunTimesOut(t *testing.T) {
	isolateEnv(t)
	fake := &fakeLingQ{}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	sources := fmt.Sprintf(`
[sync]
run_timeout_seconds = 1

[notifications]
ntfy_topic = "%[1]s/ntfy"

[[sources]]
name = "Slow"
url = "%[1]s/slow.xml"
course_id = 42
language = "de"
transcript_via = "lingq"
download_method = "http"
`, srv.URL)
	cfgPath := writeTestConfig(t, t.TempDir(), srv.URL+"/api", sources)

	out, _, err := runCLI(t, []string{"sources", "sync"}, cfgPath)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if !strings.Contains(out, "fetch error") {
		t.Fatalf("expected timed out source to be reported, got %q", out)
	}
	fake.mu.Lock()
	notified := append([]string(nil), fake.notified...)
	fake.mu.Unlock()
	if len(notified) != 1 || notified[0] != "lqcli - Sync Complete (with errors)" {
		t.Fatalf("expected summary notification after timeout, got %v", notified)
	}
}
