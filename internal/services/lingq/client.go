package lingq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"lqcli/internal/config"
	"lqcli/internal/services"
)

const (
	defaultBaseURL     = "https://www.lingq.com/api"
	defaultHTTPTimeout = 60 * time.Second
	audioFileName      = "audio.mp3"
)

// Config captures the runtime settings required to talk to LingQ.
type Config struct {
	APIKey       string
	BaseURL      string
	RequestDelay time.Duration
	Timeout      time.Duration
}

// Client wraps the LingQ collections and lesson import endpoints.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
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

// WithLimiter overrides the request limiter.
func WithLimiter(limiter *rate.Limiter) Option {
	return func(c *Client) {
		if limiter != nil {
			c.limiter = limiter
		}
	}
}

// NewClient constructs a LingQ client.
func NewClient(cfg Config, opts ...Option) *Client {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultHTTPTimeout
	}
	limit := rate.Inf
	if cfg.RequestDelay > 0 {
		limit = rate.Every(cfg.RequestDelay)
	}
	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(limit, 1),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// NewFromConfig builds a client from application config.
func NewFromConfig(cfg *config.Config, opts ...Option) *Client {
	return NewClient(Config{
		APIKey:       cfg.LingQ.APIKey,
		BaseURL:      cfg.LingQ.BaseURL,
		RequestDelay: time.Duration(cfg.LingQ.RequestDelay) * time.Second,
		Timeout:      time.Duration(cfg.LingQ.TimeoutSeconds) * time.Second,
	}, opts...)
}

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, body)
}

type collection struct {
	ID      uint64   `json:"pk"`
	Title   string   `json:"title"`
	Lessons []lesson `json:"lessons"`
}

type lesson struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// ListTitles returns the titles of every lesson in the course.
func (c *Client) ListTitles(ctx context.Context, language string, courseID uint64) ([]string, error) {
	endpoint, err := url.JoinPath(c.cfg.BaseURL, "v2", language, "collections", strconv.FormatUint(courseID, 10), "/")
	if err != nil {
		return nil, services.Wrap(services.ErrFetch, "catalog", "build url", "", err)
	}
	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrFetch, "catalog", "list titles", "", err)
	}
	body, err := c.do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrFetch, "catalog", "list titles", fmt.Sprintf("course %d", courseID), err)
	}
	var payload collection
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, services.Wrap(services.ErrParse, "catalog", "list titles", "decode response", err)
	}
	titles := make([]string, 0, len(payload.Lessons))
	for _, l := range payload.Lessons {
		titles = append(titles, l.Title)
	}
	return titles, nil
}

// Lesson describes a lesson to import.
type Lesson struct {
	CourseID uint64
	Language string
	Title    string
	Text     string
	// Audio is attached as audio.mp3 when non-empty.
	Audio []byte
}

// CreateLesson imports a lesson into its course.
func (c *Client) CreateLesson(ctx context.Context, l Lesson) error {
	endpoint, err := url.JoinPath(c.cfg.BaseURL, "v3", l.Language, "lessons", "import", "/")
	if err != nil {
		return services.Wrap(services.ErrPublish, "publish", "build url", "", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	fields := [][2]string{
		{"title", l.Title},
		{"collection", strconv.FormatUint(l.CourseID, 10)},
		{"save", "true"},
		{"text", l.Text},
	}
	for _, field := range fields {
		if err := writer.WriteField(field[0], field[1]); err != nil {
			return services.Wrap(services.ErrPublish, "publish", "encode body", "", err)
		}
	}
	if len(l.Audio) > 0 {
		part, err := writer.CreateFormFile("audio", audioFileName)
		if err != nil {
			return services.Wrap(services.ErrPublish, "publish", "encode body", "", err)
		}
		if _, err := part.Write(l.Audio); err != nil {
			return services.Wrap(services.ErrPublish, "publish", "encode body", "", err)
		}
	}
	if err := writer.Close(); err != nil {
		return services.Wrap(services.ErrPublish, "publish", "encode body", "", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return services.Wrap(services.ErrPublish, "publish", "create lesson", "", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if _, err := c.do(req); err != nil {
		return services.Wrap(services.ErrPublish, "publish", "create lesson", l.Title, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http error: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
