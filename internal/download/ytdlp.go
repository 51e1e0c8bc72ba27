package download

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"lqcli/internal/services"
)

const audioFileName = "audio.mp3"

// ToolError carries the stderr of a failed external tool verbatim.
type ToolError struct {
	Tool   string
	Stderr string
	Err    error
}

func (e *ToolError) Error() string {
	stderr := strings.TrimSpace(e.Stderr)
	if stderr == "" {
		return fmt.Sprintf("%s: %v", e.Tool, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Tool, e.Err, stderr)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

func (d *Downloader) downloadYtDlp(ctx context.Context, url string) ([]byte, error) {
	workDir, err := os.MkdirTemp(d.cfg.TempDir, "lqcli-")
	if err != nil {
		return nil, services.Wrap(services.ErrDownload, "download", "create temp dir", "", err)
	}
	defer os.RemoveAll(workDir)

	output := filepath.Join(workDir, audioFileName)
	stderr, err := d.runner(ctx, d.cfg.YtDlpBinary, buildYtDlpArgs(url, output)...)
	if err != nil {
		toolErr := &ToolError{Tool: "yt-dlp", Stderr: string(stderr), Err: err}
		return nil, services.Wrap(services.ErrDownload, "download", "yt-dlp", "", toolErr)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		return nil, services.Wrap(services.ErrDownload, "download", "read audio", output, err)
	}
	return data, nil
}

func buildYtDlpArgs(url, output string) []string {
	return []string{
		"--format", "bestaudio/best",
		"-x",
		"--audio-format", "mp3",
		"--output", output,
		"--force-overwrites",
		url,
	}
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.Bytes(), err
}
