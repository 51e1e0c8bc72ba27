package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"lqcli/internal/services"
)

func TestTranscribeUploadsMultipart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/transcriptions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected auth header %q", got)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			return
		}
		if got := r.FormValue("model"); got != "whisper-1" {
			t.Errorf("unexpected model %q", got)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("missing file part: %v", err)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if header.Filename != "audio.mp3" || string(data) != "mp3" {
			t.Errorf("unexpected file %q with %q", header.Filename, data)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"text": "hallo welt"})
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "secret", BaseURL: server.URL})
	text, err := client.Transcribe(context.Background(), []byte("mp3"))
	if err != nil {
		t.Fatalf("Transcribe returned error: %v", err)
	}
	if text != "hallo welt" {
		t.Fatalf("unexpected transcript %q", text)
	}
}

func TestTranscribeStatusErrorIsTranscriptionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "bad", BaseURL: server.URL})
	_, err := client.Transcribe(context.Background(), []byte("mp3"))
	if !errors.Is(err, services.ErrTranscription) {
		t.Fatalf("expected ErrTranscription, got %v", err)
	}
	if !IsStatus(err, http.StatusUnauthorized) {
		t.Fatalf("expected status error in chain, got %v", err)
	}
}

func TestTranscribeRequiresKeyAndAudio(t *testing.T) {
	if _, err := NewClient(Config{}).Transcribe(context.Background(), []byte("x")); !errors.Is(err, services.ErrTranscription) {
		t.Fatalf("expected ErrTranscription without key, got %v", err)
	}
	if _, err := NewClient(Config{APIKey: "k"}).Transcribe(context.Background(), nil); !errors.Is(err, services.ErrTranscription) {
		t.Fatalf("expected ErrTranscription without audio, got %v", err)
	}
}

func TestPostprocessSendsPromptAndTranscript(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var payload chatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		if payload.Model != "gpt-4o-mini" {
			t.Errorf("unexpected model %q", payload.Model)
		}
		if len(payload.Messages) != 2 || payload.Messages[0].Role != "system" || payload.Messages[0].Content != "fix it" ||
			payload.Messages[1].Role != "user" || payload.Messages[1].Content != "raw text" {
			t.Errorf("unexpected messages %#v", payload.Messages)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{
				map[string]any{"message": map[string]any{"content": "  Clean text.  "}},
			},
		})
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL + "/"})
	out, err := client.Postprocess(context.Background(), "raw text", "fix it", "gpt-4o-mini")
	if err != nil {
		t.Fatalf("Postprocess returned error: %v", err)
	}
	if out != "Clean text." {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestPostprocessEmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{
				map[string]any{"message": map[string]any{"content": ""}, "finish_reason": "length"},
			},
		})
	}))
	defer server.Close()

	_, err := NewClient(Config{APIKey: "k", BaseURL: server.URL}).Postprocess(context.Background(), "t", "p", "m")
	if !errors.Is(err, services.ErrTranscription) {
		t.Fatalf("expected ErrTranscription, got %v", err)
	}
}

func TestPostprocessIsNotRetried(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := NewClient(Config{APIKey: "k", BaseURL: server.URL}).Postprocess(context.Background(), "t", "p", "m")
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("expected a single request, got %d", calls)
	}
}
