// Package report renders crawl summaries.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Human-readable text output for terminal display
//   - JSONWriter: Structured JSON output for tool integration
//   - MarkdownWriter: Markdown with a mermaid chart of task outcomes
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output. HistoryWriter
// renders the runs stored in the crawl history database.
package report
