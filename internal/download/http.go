package download

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"lqcli/internal/services"
)

func (d *Downloader) downloadHTTP(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrDownload, "download", "build request", url, err)
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrDownload, "download", "get", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, services.Wrap(services.ErrDownload, "download", "get", fmt.Sprintf("%s returned status %d", url, resp.StatusCode), nil)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, d.cfg.MaxBytes+1))
	if err != nil {
		return nil, services.Wrap(services.ErrDownload, "download", "read body", url, err)
	}
	if int64(len(data)) > d.cfg.MaxBytes {
		return nil, services.Wrap(services.ErrDownload, "download", "read body", fmt.Sprintf("%s exceeds %d bytes", url, d.cfg.MaxBytes), nil)
	}
	return data, nil
}
