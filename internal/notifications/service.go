package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"lqcli/internal/config"
)

const userAgent = "lqcli/0.1.0"

// SyncSummary is the outcome of a sync run as reported to the user.
type SyncSummary struct {
	Sources       int
	FailedSources int
	Published     int
	FailedItems   int
	Duration      time.Duration
}

// Service defines the notification surface used by the CLI.
type Service interface {
	NotifySyncCompleted(ctx context.Context, summary SyncSummary) error
	NotifyLessonPublished(ctx context.Context, source, title string) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifySyncCompleted(ctx context.Context, summary SyncSummary) error {
	duration := summary.Duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}

	data := payload{
		title:   "lqcli - Sync Complete",
		message: fmt.Sprintf("Synced %d sources: %d lessons published in %s", summary.Sources, summary.Published, duration),
		tags:    []string{"lqcli", "sync", "completed"},
	}
	if summary.FailedSources > 0 || summary.FailedItems > 0 {
		data.title = "lqcli - Sync Complete (with errors)"
		data.message = fmt.Sprintf("Synced %d sources: %d lessons published, %d sources failed, %d items failed in %s",
			summary.Sources, summary.Published, summary.FailedSources, summary.FailedItems, duration)
		data.tags = []string{"lqcli", "sync", "warning"}
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyLessonPublished(ctx context.Context, source, title string) error {
	source = strings.TrimSpace(source)
	title = strings.TrimSpace(title)
	message := fmt.Sprintf("Published: %s", title)
	if source != "" {
		message = fmt.Sprintf("%s\nSource: %s", message, source)
	}
	data := payload{
		title:   "lqcli - Lesson Published",
		message: message,
		tags:    []string{"lqcli", "lesson", "published"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "lqcli - Error",
		message:  builder.String(),
		tags:     []string{"lqcli", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "lqcli - Test",
		message:  "Notification system test",
		tags:     []string{"lqcli", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifySyncCompleted(context.Context, SyncSummary) error      { return nil }
func (noopService) NotifyLessonPublished(context.Context, string, string) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error            { return nil }
func (noopService) TestNotification(context.Context) error                      { return nil }
