package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/nao1215/markdown"

	"github.com/nao1215/crawler/internal/database"
	"github.com/nao1215/crawler/internal/model"
)

// HistoryWriter renders the crawl history database as Markdown tables.
type HistoryWriter struct {
	baseWriter
}

// NewHistoryWriter creates a HistoryWriter that outputs to the given writer.
func NewHistoryWriter(output io.Writer) *HistoryWriter {
	return &HistoryWriter{baseWriter: newBaseWriter(output)}
}

// WriteRuns writes one row per run, newest first as given.
func (w *HistoryWriter) WriteRuns(runs []database.RunRecord) error {
	md := markdown.NewMarkdown(w.output)
	md.H2("Crawl History")
	md.PlainText("")

	if len(runs) == 0 {
		md.PlainText("No runs recorded.")
		return md.Build()
	}

	rows := make([][]string, len(runs))
	for i, run := range runs {
		rows[i] = []string{
			"`" + run.ID + "`",
			humanize.Time(run.StartedAt),
			truncateString(strings.Join(run.Seeds, " "), 60),
			runStatus(run),
			runTasks(run),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Run", "Started", "Seeds", "Status", "Tasks"},
		Rows:   rows,
	})
	return md.Build()
}

// WriteRun writes the visits of one run.
func (w *HistoryWriter) WriteRun(run *database.RunRecord, pages []model.PageVisit, resources []model.ResourceVisit) error {
	md := markdown.NewMarkdown(w.output)
	md.H2("Run " + run.ID)
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Seeds", strings.Join(run.Seeds, ", ")},
			{"Max Depth", strconv.Itoa(run.MaxDepth)},
			{"Started", run.StartedAt.Format(timeLayout)},
			{"Status", runStatus(*run)},
		},
	})
	md.PlainText("")

	md.H3("Pages")
	md.PlainText("")
	if len(pages) == 0 {
		md.PlainText("No pages recorded.")
	} else {
		rows := make([][]string, len(pages))
		for i, p := range pages {
			rows[i] = []string{truncateString(p.URL, 80), strconv.Itoa(p.Depth), strconv.Itoa(p.Findings), outcome(p.Failure, p.Error)}
		}
		md.Table(markdown.TableSet{
			Header: []string{"URL", "Depth", "Findings", "Outcome"},
			Rows:   rows,
		})
	}
	md.PlainText("")

	md.H3("Resources")
	md.PlainText("")
	if len(resources) == 0 {
		md.PlainText("No resources recorded.")
	} else {
		rows := make([][]string, len(resources))
		for i, r := range resources {
			result := outcome(r.Failure, r.Error)
			if r.Skipped() {
				result = "skipped"
			}
			rows[i] = []string{truncateString(r.URL, 80), formatBytes(r.Size), shortDigest(r.Digest), strconv.Itoa(r.EXIFTags), result}
		}
		md.Table(markdown.TableSet{
			Header: []string{"URL", "Size", "Digest", "EXIF tags", "Outcome"},
			Rows:   rows,
		})
	}
	return md.Build()
}

// WriteDigestMatches lists the URLs that served a body with digest.
func (w *HistoryWriter) WriteDigestMatches(digest string, urls []string) error {
	md := markdown.NewMarkdown(w.output)
	md.H2("Resources with digest " + shortDigest(digest))
	md.PlainText("")
	if len(urls) == 0 {
		md.PlainText("No resources recorded.")
		return md.Build()
	}
	md.BulletList(urls...)
	return md.Build()
}

func runStatus(run database.RunRecord) string {
	switch {
	case !run.Finished():
		return "running or aborted"
	case run.Interrupted:
		return "interrupted"
	default:
		return "complete"
	}
}

func runTasks(run database.RunRecord) string {
	if run.Summary == nil {
		return "-"
	}
	return strconv.Itoa(run.Summary.TasksCompleted()) + " (" + strconv.Itoa(run.Summary.TasksFailed()) + " failed)"
}

func outcome(failure, msg string) string {
	if msg == "" {
		return "ok"
	}
	if failure == "" {
		return msg
	}
	return failure + ": " + truncateString(msg, 60)
}

// shortDigest abbreviates a hex digest to 12 characters.
func shortDigest(digest string) string {
	if digest == "" {
		return "-"
	}
	if len(digest) <= 12 {
		return digest
	}
	return digest[:12]
}
