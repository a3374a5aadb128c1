package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/profilescan/profilescan/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no profiles are shown.
	showEmpty bool

	// verbose enables full about text instead of truncated lines.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with full profile text.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the full report in human-readable format.
func (w *SimpleWriter) Write(report *model.CrawlReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeProfiles(&sb, report.Directory)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// WriteDirectory outputs only the profile directory in human-readable format.
func (w *SimpleWriter) WriteDirectory(directory *model.Directory) (int, error) {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                        PROFILE DIRECTORY\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	w.writeProfiles(&sb, directory)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with crawl information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.CrawlReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                        PROFILESCAN REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Site:            %s\n", report.BaseURL))
	sb.WriteString(fmt.Sprintf("Crawl Date:      %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Pages Processed: %d\n", report.PagesProcessed))
	sb.WriteString(fmt.Sprintf("Pages Failed:    %d\n", report.PagesFailed))

	switch {
	case report.Interrupted:
		sb.WriteString("Status:          INTERRUPTED (partial results)\n")
	case report.ErrorMessage != "":
		sb.WriteString(fmt.Sprintf("Status:          ERROR - %s\n", report.ErrorMessage))
	default:
		sb.WriteString("Status:          Complete\n")
	}

	sb.WriteString("\n")
}

// writeProfiles writes the extracted profiles section.
func (w *SimpleWriter) writeProfiles(sb *strings.Builder, directory *model.Directory) {
	count := 0
	if directory != nil {
		count = directory.Len()
	}

	if count == 0 && !w.showEmpty {
		sb.WriteString("  No profiles found\n\n")
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("PROFILES (%d)\n", count))
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if count == 0 {
		sb.WriteString("  No profiles found\n\n")
		return
	}

	for _, p := range directory.Profiles {
		sb.WriteString(fmt.Sprintf("  * %s\n", p.Name))
		about := p.About
		if !w.verbose {
			about = truncateString(about, 100)
		}
		sb.WriteString(fmt.Sprintf("    %s\n", about))
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by profilescan\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
