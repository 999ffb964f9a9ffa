package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/crawler/internal/model"
)

// SimpleWriter outputs human-readable text reports for the terminal.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with nothing to report are shown.
	showEmpty bool

	// verbose adds the crawl limits and scheduling details.
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

// WithVerbose enables verbose output with additional details.
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

// Write outputs the summary in human-readable format.
func (w *SimpleWriter) Write(summary *model.CrawlSummary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary)
	w.writeTasks(&sb, summary)
	w.writeDiscovery(&sb, summary)
	if w.verbose {
		w.writeScheduling(&sb, summary)
	}
	w.writeFooter(&sb)

	return io.WriteString(w.output, sb.String())
}

func writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, summary *model.CrawlSummary) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                            CRAWL REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	if summary.RunID != "" {
		fmt.Fprintf(sb, "Run ID:         %s\n", summary.RunID)
	}
	fmt.Fprintf(sb, "Seeds:          %s\n", strings.Join(summary.Seeds, ", "))
	fmt.Fprintf(sb, "Started:        %s\n", summary.StartedAt.Format(timeLayout))
	fmt.Fprintf(sb, "Duration:       %s\n", formatDuration(summary.Duration()))
	fmt.Fprintf(sb, "Status:         %s\n", statusText(summary))
	sb.WriteString("\n")
}

// writeTasks writes the harvested task counts.
func (w *SimpleWriter) writeTasks(sb *strings.Builder, summary *model.CrawlSummary) {
	writeSection(sb, "TASKS")

	fmt.Fprintf(sb, "  PAGES CRAWLED:      %d\n", summary.PagesCrawled)
	fmt.Fprintf(sb, "  PAGES FAILED:       %d\n", summary.PagesFailed)
	fmt.Fprintf(sb, "  RESOURCES FETCHED:  %d (%s)\n", summary.ResourcesFetched, formatBytes(summary.BytesDownloaded))
	fmt.Fprintf(sb, "  RESOURCES SKIPPED:  %d\n", summary.ResourcesSkipped)
	fmt.Fprintf(sb, "  RESOURCES FAILED:   %d\n", summary.ResourcesFailed)
	sb.WriteString("\n")
	fmt.Fprintf(sb, "  TOTAL:              %d tasks, %d failed\n", summary.TasksCompleted(), summary.TasksFailed())
	sb.WriteString("\n")
}

// writeDiscovery writes the link discovery counts.
func (w *SimpleWriter) writeDiscovery(sb *strings.Builder, summary *model.CrawlSummary) {
	discovered := summary.PagesDiscovered + summary.ImagesDiscovered + summary.DuplicatesDropped
	if discovered == 0 && !w.showEmpty {
		return
	}

	writeSection(sb, "DISCOVERY")

	fmt.Fprintf(sb, "  [+] %d new pages\n", summary.PagesDiscovered)
	fmt.Fprintf(sb, "  [+] %d new images\n", summary.ImagesDiscovered)
	fmt.Fprintf(sb, "  [-] %d duplicates dropped\n", summary.DuplicatesDropped)
	fmt.Fprintf(sb, "  [-] %d pages beyond depth %d\n", summary.DepthLimited, summary.MaxDepth)
	if summary.ImagesWithEXIF > 0 {
		fmt.Fprintf(sb, "  [!] %d resources carry EXIF metadata\n", summary.ImagesWithEXIF)
	}
	sb.WriteString("\n")
}

// writeScheduling writes the dispatcher's limits and pressure.
func (w *SimpleWriter) writeScheduling(sb *strings.Builder, summary *model.CrawlSummary) {
	writeSection(sb, "SCHEDULING")

	fmt.Fprintf(sb, "  Max depth:            %d\n", summary.MaxDepth)
	fmt.Fprintf(sb, "  Max host visits:      %d\n", summary.MaxHostVisits)
	fmt.Fprintf(sb, "  Passes:               %d\n", summary.Passes)
	fmt.Fprintf(sb, "  Deferred admissions:  %d\n", summary.DeferredAdmissions)
	fmt.Fprintf(sb, "  Busiest host:         %s\n", busiestHost(summary))
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
