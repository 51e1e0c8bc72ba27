package download

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"lqcli/internal/config"
	"lqcli/internal/logging"
	"lqcli/internal/services"
)

const (
	defaultTimeout = 15 * time.Minute
	// maxAudioBytes bounds direct HTTP downloads.
	maxAudioBytes = 512 << 20
)

// CommandRunner executes an external tool and returns whatever it wrote to stderr.
type CommandRunner func(ctx context.Context, name string, args ...string) (stderr []byte, err error)

// Config captures downloader settings.
type Config struct {
	YtDlpBinary string
	Timeout     time.Duration
	// TempDir is the parent of per-download scratch directories. Empty uses os.TempDir.
	TempDir string
	// MaxBytes caps direct HTTP downloads. Zero uses the package default.
	MaxBytes int64
}

// Downloader fetches audio for a link using the configured method.
type Downloader struct {
	cfg        Config
	runner     CommandRunner
	httpClient *http.Client
	logger     *slog.Logger
}

// Option customizes a Downloader.
type Option func(*Downloader)

// WithCommandRunner replaces the process runner (for testing).
func WithCommandRunner(runner CommandRunner) Option {
	return func(d *Downloader) {
		if runner != nil {
			d.runner = runner
		}
	}
}

// WithHTTPClient overrides the client used by the http method.
func WithHTTPClient(client *http.Client) Option {
	return func(d *Downloader) {
		if client != nil {
			d.httpClient = client
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Downloader) {
		d.logger = logging.NewComponentLogger(logger, "download")
	}
}

// New constructs a Downloader.
func New(cfg Config, opts ...Option) *Downloader {
	if cfg.YtDlpBinary == "" {
		cfg.YtDlpBinary = "yt-dlp"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = maxAudioBytes
	}
	d := &Downloader{
		cfg:        cfg,
		runner:     execRunner,
		httpClient: &http.Client{},
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewFromConfig builds a Downloader from application config.
func NewFromConfig(cfg *config.Config, opts ...Option) *Downloader {
	return New(Config{
		YtDlpBinary: cfg.Download.YtDlpBinary,
		Timeout:     time.Duration(cfg.Download.TimeoutSeconds) * time.Second,
		TempDir:     cfg.Download.TempDir,
	}, opts...)
}

// Download returns the audio bytes for url using method.
func (d *Downloader) Download(ctx context.Context, url string, method config.DownloadMethod) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
	defer cancel()

	started := time.Now()
	var (
		data []byte
		err  error
	)
	switch method {
	case config.DownloadYtDlp:
		data, err = d.downloadYtDlp(ctx, url)
	case config.DownloadHTTP:
		data, err = d.downloadHTTP(ctx, url)
	default:
		return nil, services.Wrap(services.ErrDownload, "download", "", fmt.Sprintf("unsupported download method %q", method), nil)
	}
	if err != nil {
		return nil, err
	}
	d.logger.Debug("audio downloaded",
		logging.String("method", string(method)),
		logging.String("url", url),
		logging.Int("bytes", len(data)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return data, nil
}
