package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/crawler/internal/model"
)

// MarkdownWriter outputs summaries in Markdown format for documentation
// and sharing. Task outcomes are drawn as a mermaid pie chart.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the summary in Markdown format.
func (w *MarkdownWriter) Write(summary *model.CrawlSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeTasks(md, summary)
	w.writeDiscovery(md, summary)
	w.writeSeeds(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the run information table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *model.CrawlSummary) {
	md.H1("Crawl Report")
	md.PlainText("")

	rows := make([][]string, 0, 6)
	if summary.RunID != "" {
		rows = append(rows, []string{"Run ID", "`" + summary.RunID + "`"})
	}
	rows = append(rows,
		[]string{"Started", summary.StartedAt.Format(timeLayout)},
		[]string{"Duration", formatDuration(summary.Duration())},
		[]string{"Max Depth", strconv.Itoa(summary.MaxDepth)},
		[]string{"Max Host Visits", strconv.Itoa(summary.MaxHostVisits)},
		[]string{"Status", w.getStatusText(summary)},
	)

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) getStatusText(summary *model.CrawlSummary) string {
	if summary.Interrupted {
		return "⚠️ " + statusText(summary)
	}
	return "✅ " + statusText(summary)
}

// writeTasks writes the task outcome table, chart and alert.
func (w *MarkdownWriter) writeTasks(md *markdown.Markdown, summary *model.CrawlSummary) {
	md.H2("Tasks")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Outcome", "Count"},
		Rows: [][]string{
			{"Pages crawled", strconv.Itoa(summary.PagesCrawled)},
			{"Pages failed", strconv.Itoa(summary.PagesFailed)},
			{"Resources fetched", strconv.Itoa(summary.ResourcesFetched)},
			{"Resources skipped", strconv.Itoa(summary.ResourcesSkipped)},
			{"Resources failed", strconv.Itoa(summary.ResourcesFailed)},
			{"Bytes downloaded", formatBytes(summary.BytesDownloaded)},
			{"**Total**", "**" + strconv.Itoa(summary.TasksCompleted()) + "**"},
		},
	})
	md.PlainText("")

	if summary.TasksCompleted() > 0 {
		w.writePieChart(md, summary)
	}
	w.writeAlert(md, summary)
}

// writePieChart writes a mermaid pie chart of task outcomes.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, summary *model.CrawlSummary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Task Outcomes"),
		piechart.WithShowData(true),
	)

	slices := []struct {
		label string
		count int
	}{
		{"Pages crawled", summary.PagesCrawled},
		{"Pages failed", summary.PagesFailed},
		{"Resources fetched", summary.ResourcesFetched},
		{"Resources skipped", summary.ResourcesSkipped},
		{"Resources failed", summary.ResourcesFailed},
	}
	for _, s := range slices {
		if s.count > 0 {
			chart.LabelAndIntValue(s.label, uint64(s.count))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an alert describing how the run went.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, summary *model.CrawlSummary) {
	switch {
	case summary.Interrupted:
		md.Warningf(
			"The crawl was interrupted after %d task(s); the frontier was not drained.",
			summary.TasksCompleted(),
		)
	case summary.TasksFailed() > 0:
		md.Importantf(
			"%d of %d task(s) failed. See the log file for details.",
			summary.TasksFailed(), summary.TasksCompleted(),
		)
	case summary.TasksCompleted() == 0:
		md.Note("No tasks were run.")
	default:
		md.Tip("Every task succeeded.")
	}
	md.PlainText("")
}

// writeDiscovery writes the link discovery table.
func (w *MarkdownWriter) writeDiscovery(md *markdown.Markdown, summary *model.CrawlSummary) {
	md.H2("Discovery")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"New pages", strconv.Itoa(summary.PagesDiscovered)},
			{"New images", strconv.Itoa(summary.ImagesDiscovered)},
			{"Duplicates dropped", strconv.Itoa(summary.DuplicatesDropped)},
			{"Pages beyond depth limit", strconv.Itoa(summary.DepthLimited)},
			{"Resources with EXIF", strconv.Itoa(summary.ImagesWithEXIF)},
			{"Scheduling passes", strconv.Itoa(summary.Passes)},
			{"Deferred admissions", strconv.Itoa(summary.DeferredAdmissions)},
			{"Busiest host", busiestHost(summary)},
		},
	})
	md.PlainText("")
}

// writeSeeds lists the seed URLs.
func (w *MarkdownWriter) writeSeeds(md *markdown.Markdown, summary *model.CrawlSummary) {
	md.H2("Seeds")
	md.PlainText("")

	if len(summary.Seeds) == 0 {
		md.PlainText("No seeds.")
		md.PlainText("")
		return
	}
	seeds := make([]string, len(summary.Seeds))
	for i, s := range summary.Seeds {
		seeds[i] = "`" + truncateString(s, 100) + "`"
	}
	md.BulletList(seeds...)
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [crawler](https://github.com/nao1215/crawler)*")
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
