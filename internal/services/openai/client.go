package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lqcli/internal/config"
	"lqcli/internal/services"
)

const (
	defaultBaseURL     = "https://api.openai.com/v1"
	defaultHTTPTimeout = 10 * time.Minute
	audioFileName      = "audio.mp3"
)

// Config captures the runtime settings required to talk to OpenAI.
type Config struct {
	APIKey         string
	BaseURL        string
	WhisperModel   string
	TimeoutSeconds int
}

// Client issues transcription and chat completion requests.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			WhisperModel:   strings.TrimSpace(cfg.WhisperModel),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = defaultBaseURL
	}
	if client.cfg.WhisperModel == "" {
		client.cfg.WhisperModel = "whisper-1"
	}
	return client
}

// NewFromConfig builds a client from application config.
func NewFromConfig(cfg *config.Config, opts ...Option) *Client {
	return NewClient(Config{
		APIKey:         cfg.OpenAI.APIKey,
		BaseURL:        cfg.OpenAI.BaseURL,
		WhisperModel:   cfg.OpenAI.WhisperModel,
		TimeoutSeconds: cfg.OpenAI.TimeoutSeconds,
	}, opts...)
}

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// Transcribe uploads mp3 audio and returns the transcript text.
func (c *Client) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if c.cfg.APIKey == "" {
		return "", services.Wrap(services.ErrTranscription, "transcribe", "", "api key required", nil)
	}
	if len(audio) == 0 {
		return "", services.Wrap(services.ErrTranscription, "transcribe", "", "audio is empty", nil)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", audioFileName)
	if err != nil {
		return "", services.Wrap(services.ErrTranscription, "transcribe", "encode body", "", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", services.Wrap(services.ErrTranscription, "transcribe", "encode body", "", err)
	}
	if err := writer.WriteField("model", c.cfg.WhisperModel); err != nil {
		return "", services.Wrap(services.ErrTranscription, "transcribe", "encode body", "", err)
	}
	if err := writer.Close(); err != nil {
		return "", services.Wrap(services.ErrTranscription, "transcribe", "encode body", "", err)
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := c.post(ctx, "audio/transcriptions", writer.FormDataContentType(), &body, &result); err != nil {
		return "", services.Wrap(services.ErrTranscription, "transcribe", "whisper", "", err)
	}
	return result.Text, nil
}

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Refusal string `json:"refusal"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Postprocess asks model to rewrite transcript following prompt. The prompt is
// sent as the system message and the transcript as the user message.
func (c *Client) Postprocess(ctx context.Context, transcript, prompt, model string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", services.Wrap(services.ErrTranscription, "postprocess", "", "api key required", nil)
	}
	model = strings.TrimSpace(model)
	if model == "" {
		return "", services.Wrap(services.ErrTranscription, "postprocess", "", "model required", nil)
	}
	payload := chatCompletionRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: prompt},
			{Role: "user", Content: transcript},
		},
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", services.Wrap(services.ErrTranscription, "postprocess", "encode body", "", err)
	}

	var completion chatCompletionResponse
	if err := c.post(ctx, "chat/completions", "application/json", bytes.NewReader(encoded), &completion); err != nil {
		return "", services.Wrap(services.ErrTranscription, "postprocess", "chat completion", "", err)
	}
	if completion.Error != nil {
		return "", services.Wrap(services.ErrTranscription, "postprocess", "chat completion", strings.TrimSpace(completion.Error.Message), nil)
	}
	for _, choice := range completion.Choices {
		if content := strings.TrimSpace(choice.Message.Content); content != "" {
			return content, nil
		}
	}
	return "", services.Wrap(services.ErrTranscription, "postprocess", "chat completion", emptyContentDetail(completion), nil)
}

func emptyContentDetail(completion chatCompletionResponse) string {
	if len(completion.Choices) == 0 {
		return "empty choices"
	}
	choice := completion.Choices[0]
	return fmt.Sprintf("empty content (finish_reason=%q, refusal=%q)", choice.FinishReason, choice.Message.Refusal)
}

func (c *Client) post(ctx context.Context, path, contentType string, body io.Reader, target any) error {
	endpoint, err := url.JoinPath(c.cfg.BaseURL, path)
	if err != nil {
		return fmt.Errorf("build url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http error (timeout=%s): %w", c.httpClient.Timeout, err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return &StatusError{StatusCode: resp.StatusCode, Body: string(payload)}
	}
	if err := json.Unmarshal(payload, target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// IsStatus reports whether err carries an HTTP status error with the given code.
func IsStatus(err error, code int) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == code
}
