// Package observability provides logging and formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jonathan/system-info/internal/collect"
	"github.com/jonathan/system-info/internal/upload"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stderr; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		line = truncate(line, boxWidth-4)
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintReport outputs a human-readable summary of a collected document.
func (p *Printer) PrintReport(report *collect.Report) {
	if report == nil || report.Document == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Probe:     %s\n", report.Command))
	if report.Probe != nil {
		sb.WriteString(fmt.Sprintf("Duration:  %s\n", report.Probe.Duration.Round(time.Millisecond)))
	}
	if report.ManifestIncluded {
		sb.WriteString("Manifest:  included\n")
	} else {
		sb.WriteString("Manifest:  absent\n")
	}
	sb.WriteString(fmt.Sprintf("Size:      %d bytes\n", len(report.Output)))

	keys := report.Document.Keys()
	if len(keys) > 0 {
		sb.WriteString(fmt.Sprintf("\nTop-level keys (%d):\n", len(keys)))
		count := min(len(keys), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", keys[i]))
		}
		if len(keys) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(keys)-maxItemsToShow))
		}
	}

	p.printBox("SYSTEM INFO", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintUpload outputs the server's reply to an upload.
func (p *Printer) PrintUpload(target string, result *upload.Result) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("URL:     %s\n", target))
	sb.WriteString(fmt.Sprintf("Status:  %d\n", result.StatusCode))
	if body := strings.TrimSpace(result.Body); body != "" {
		sb.WriteString(fmt.Sprintf("Reply:   %s\n", truncate(body, 40)))
	}

	p.printBox("UPLOAD", strings.TrimSuffix(sb.String(), "\n"))
}

// truncate shortens s to at most width runes, ending in "..." when cut.
func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-3]) + "..."
}
