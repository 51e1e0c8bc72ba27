package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-isatty"

	"lqcli/internal/deps"
	"lqcli/internal/syncer"
)

type statusKind int

const (
	statusOK statusKind = iota
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiBold   = "\x1b[1m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

const maxStatusLabelWidth = 32

// statusLine is one labelled row of a status block.
type statusLine struct {
	label   string
	kind    statusKind
	message string
}

func (k statusKind) label() string {
	switch k {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	default:
		return "ERROR"
	}
}

func (k statusKind) color() string {
	switch k {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	default:
		return ansiRed
	}
}

// sourceStatus summarizes one synced source: ok when every item was handled,
// warn when some items failed, error when the feed never resolved.
func sourceStatus(report syncer.SourceReport) statusLine {
	line := statusLine{label: report.Source}
	if report.Err != nil {
		line.kind = statusError
		line.message = firstLine(report.Err.Error())
		return line
	}

	linked, skipped, failed := report.Counts()
	line.message = fmt.Sprintf("%d published, %d linked, %d skipped, %d failed", report.Published(), linked, skipped, failed)
	switch report.Status() {
	case "ok":
		line.kind = statusOK
	default:
		line.kind = statusWarn
	}
	if report.CatalogErr != nil {
		line.kind = statusWarn
		line.message += " (course listing unavailable)"
	}
	return line
}

func dependencyStatus(status deps.Status) statusLine {
	line := statusLine{label: status.Name, kind: statusOK, message: status.Command}
	if status.Available {
		return line
	}
	line.message = status.Detail
	if status.Optional {
		line.kind = statusWarn
		line.message += " (optional)"
		return line
	}
	line.kind = statusError
	return line
}

// renderStatusBlock aligns labels to the longest one, capped so a long source
// name cannot push messages off screen.
func renderStatusBlock(lines []statusLine, colorize bool) []string {
	width := 0
	for _, line := range lines {
		if n := utf8.RuneCountInString(line.label); n > width {
			width = n
		}
	}
	if width > maxStatusLabelWidth {
		width = maxStatusLabelWidth
	}

	rendered := make([]string, 0, len(lines))
	for _, line := range lines {
		label := truncate(line.label, width)
		pad := strings.Repeat(" ", width-utf8.RuneCountInString(label))
		tag := "[" + line.kind.label() + "]"
		if colorize {
			tag = line.kind.color() + tag + ansiReset
		}
		text := fmt.Sprintf("  %s%s  %s", label, pad, tag)
		if line.message != "" {
			text += " " + line.message
		}
		rendered = append(rendered, text)
	}
	return rendered
}

func renderHeading(title string, colorize bool) string {
	title = strings.TrimSpace(title)
	if colorize {
		return ansiBold + title + ansiReset
	}
	return title + ":"
}

// shouldColorize reports whether writer is a terminal. NO_COLOR disables colour
// regardless.
func shouldColorize(writer io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
