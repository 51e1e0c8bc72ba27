package lingq

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"lqcli/internal/services"
)

func newTestClient(serverURL string) *Client {
	return NewClient(Config{APIKey: "key", BaseURL: serverURL}, WithLimiter(rate.NewLimiter(rate.Inf, 1)))
}

func TestListTitles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("unexpected method %s", r.Method)
		}
		if r.URL.Path != "/v2/de/collections/42/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Token key" {
			t.Errorf("unexpected auth header %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"pk":    42,
			"title": "Course",
			"lessons": []any{
				map[string]any{"title": "Episode 1", "url": "https://www.lingq.com/l/1"},
				map[string]any{"title": "Episode 2", "url": "https://www.lingq.com/l/2"},
			},
		})
	}))
	defer server.Close()

	titles, err := newTestClient(server.URL).ListTitles(context.Background(), "de", 42)
	if err != nil {
		t.Fatalf("ListTitles returned error: %v", err)
	}
	if !reflect.DeepEqual(titles, []string{"Episode 1", "Episode 2"}) {
		t.Fatalf("unexpected titles %v", titles)
	}
}

func TestListTitlesStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"detail":"no"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).ListTitles(context.Background(), "de", 1)
	if !errors.Is(err, services.ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 status error, got %v", err)
	}
}

func TestCreateLessonMultipart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v3/es/lessons/import/" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			return
		}
		want := map[string]string{"title": "Ep", "collection": "7", "save": "true", "text": "hola"}
		for key, value := range want {
			if got := r.FormValue(key); got != value {
				t.Errorf("field %s = %q, want %q", key, got, value)
			}
		}
		file, header, err := r.FormFile("audio")
		if err != nil {
			t.Errorf("missing audio part: %v", err)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if header.Filename != "audio.mp3" || string(data) != "mp3" {
			t.Errorf("unexpected audio %q %q", header.Filename, data)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	err := newTestClient(server.URL).CreateLesson(context.Background(), Lesson{
		CourseID: 7,
		Language: "es",
		Title:    "Ep",
		Text:     "hola",
		Audio:    []byte("mp3"),
	})
	if err != nil {
		t.Fatalf("CreateLesson returned error: %v", err)
	}
}

func TestCreateLessonWithoutAudio(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			return
		}
		if _, _, err := r.FormFile("audio"); err == nil {
			t.Error("did not expect an audio part")
		}
	}))
	defer server.Close()

	if err := newTestClient(server.URL).CreateLesson(context.Background(), Lesson{CourseID: 1, Language: "de", Title: "T", Text: "x"}); err != nil {
		t.Fatalf("CreateLesson returned error: %v", err)
	}
}

func TestCreateLessonFailureIsPublishError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	err := newTestClient(server.URL).CreateLesson(context.Background(), Lesson{CourseID: 1, Language: "de", Title: "T"})
	if !errors.Is(err, services.ErrPublish) {
		t.Fatalf("expected ErrPublish, got %v", err)
	}
}

func TestRequestDelaySpacesCalls(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"lessons":[]}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL, RequestDelay: 50 * time.Millisecond})
	started := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := client.ListTitles(context.Background(), "de", 1); err != nil {
			t.Fatalf("ListTitles returned error: %v", err)
		}
	}
	if elapsed := time.Since(started); elapsed < 90*time.Millisecond {
		t.Fatalf("expected calls to be spaced, took %s", elapsed)
	}
}

func TestLimiterHonorsCancellation(t *testing.T) {
	client := NewClient(Config{APIKey: "k", BaseURL: "http://127.0.0.1:1", RequestDelay: time.Hour})
	client.limiter.Allow()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := client.ListTitles(ctx, "de", 1); !errors.Is(err, services.ErrFetch) {
		t.Fatalf("expected ErrFetch on cancelled wait, got %v", err)
	}
}
