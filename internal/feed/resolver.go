package feed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed/atom"
	"github.com/mmcdole/gofeed/rss"

	"lqcli/internal/logging"
	"lqcli/internal/services"
)

const (
	defaultUserAgent = "lqcli/1.0 (+https://github.com/lqcli/lqcli)"
	defaultTimeout   = 30 * time.Second
	// maxFeedBytes bounds how much of a response body is decoded.
	maxFeedBytes = 16 << 20
)

// Resolver fetches and decodes feeds.
type Resolver struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	logger     *slog.Logger
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithHTTPClient overrides the HTTP client used for fetching.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Resolver) {
		if client != nil {
			r.httpClient = client
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(agent string) Option {
	return func(r *Resolver) {
		if agent != "" {
			r.userAgent = agent
		}
	}
}

// WithMaxBytes overrides the largest accepted response body.
func WithMaxBytes(limit int64) Option {
	return func(r *Resolver) {
		if limit > 0 {
			r.maxBytes = limit
		}
	}
}

// WithLogger attaches a logger for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logging.NewComponentLogger(logger, "feed")
	}
}

// NewResolver constructs a Resolver.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		httpClient: &http.Client{Timeout: defaultTimeout},
		userAgent:  defaultUserAgent,
		maxBytes:   maxFeedBytes,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve fetches url and decodes the body. Transport failures, non-2xx
// responses and oversized bodies wrap services.ErrFetch; undecodable bodies wrap services.ErrParse.
func (r *Resolver) Resolve(ctx context.Context, url string) (*Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrFetch, "feed", "build request", "invalid feed URL", err)
	}
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrFetch, "feed", "get", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, services.Wrap(services.ErrFetch, "feed", "get", fmt.Sprintf("%s returned status %d", url, resp.StatusCode), nil)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, r.maxBytes+1))
	if err != nil {
		return nil, services.Wrap(services.ErrFetch, "feed", "read body", url, err)
	}
	if int64(len(data)) > r.maxBytes {
		return nil, services.Wrap(services.ErrFetch, "feed", "read body", fmt.Sprintf("%s exceeds %d bytes", url, r.maxBytes), nil)
	}

	parsed, err := Parse(data)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("feed resolved",
		logging.String("url", url),
		logging.String("format", string(parsed.Format)),
		logging.Int("items", parsed.Len()),
	)
	return parsed, nil
}

// Parse decodes data as RSS, then as Atom. The first format that succeeds wins.
func Parse(data []byte) (*Feed, error) {
	rssParser := &rss.Parser{}
	if doc, err := rssParser.Parse(bytes.NewReader(data)); err == nil {
		return newRSSFeed(doc), nil
	}

	atomParser := &atom.Parser{}
	if doc, err := atomParser.Parse(bytes.NewReader(data)); err == nil {
		return newAtomFeed(doc), nil
	}

	return nil, services.Wrap(services.ErrParse, "feed", "", "could not parse as any supported feed format", nil)
}
