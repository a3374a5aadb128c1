package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/profilescan/profilescan/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.CrawlReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeCrawlSummary(md, report)
	w.writeProfiles(md, report.Directory)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteDirectory outputs only the profile directory in Markdown format.
func (w *MarkdownWriter) WriteDirectory(directory *model.Directory) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Profile Directory")
	md.PlainText("")
	w.writeProfileTable(md, directory)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with crawl information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.CrawlReport) {
	md.H1("Profile Directory Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Site", "`" + report.BaseURL + "`"},
			{"Crawl Date", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", report.Duration().Round(time.Second).String()},
			{"Pages Processed", strconv.Itoa(report.PagesProcessed)},
			{"Pages Failed", strconv.Itoa(report.PagesFailed)},
			{"Status", w.statusText(report)},
		},
	})
	md.PlainText("")
}

// statusText returns the status text based on report state.
func (w *MarkdownWriter) statusText(report *model.CrawlReport) string {
	if report.Interrupted {
		return "⚠️ Interrupted (partial results)"
	}
	if report.ErrorMessage != "" {
		return "❌ Error - " + report.ErrorMessage
	}
	return "✅ Complete"
}

// writeCrawlSummary writes the page outcome summary section.
func (w *MarkdownWriter) writeCrawlSummary(md *markdown.Markdown, report *model.CrawlReport) {
	md.H2("Crawl Summary")
	md.PlainText("")

	if report.PagesProcessed+report.PagesFailed > 0 {
		w.writePieChart(md, report)
	}

	w.writeAlert(md, report)
}

// writePieChart writes a mermaid pie chart for page outcomes.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.CrawlReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Page Outcomes"),
		piechart.WithShowData(true),
	)

	if report.PagesProcessed > 0 {
		chart.LabelAndIntValue("Processed", uint64(report.PagesProcessed))
	}
	if report.PagesFailed > 0 {
		chart.LabelAndIntValue("Failed", uint64(report.PagesFailed))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on the crawl outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.CrawlReport) {
	profileCount := 0
	if report.Directory != nil {
		profileCount = report.Directory.Len()
	}

	switch {
	case report.Interrupted:
		md.Warningf(
			"Crawl was interrupted. The directory holds %d profile(s) collected before the interruption.",
			profileCount,
		)
	case profileCount == 0:
		md.Note("No profiles were extracted from this site.")
	default:
		md.Tip(fmt.Sprintf("Extracted %d profile(s) from %d page(s).", profileCount, report.PagesProcessed))
	}
	md.PlainText("")
}

// writeProfiles writes the extracted profiles section.
func (w *MarkdownWriter) writeProfiles(md *markdown.Markdown, directory *model.Directory) {
	md.H2("Profiles")
	md.PlainText("")
	w.writeProfileTable(md, directory)
}

// writeProfileTable writes a table of profile names and descriptions.
func (w *MarkdownWriter) writeProfileTable(md *markdown.Markdown, directory *model.Directory) {
	if directory == nil || directory.Len() == 0 {
		md.PlainText("No profiles found.")
		md.PlainText("")
		return
	}

	rows := make([][]string, directory.Len())
	for i, p := range directory.Profiles {
		rows[i] = []string{
			p.Name,
			truncateString(p.About, 120),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Name", "About"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [profilescan](https://github.com/profilescan/profilescan)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
