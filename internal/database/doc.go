// Package database stores crawl history in SQLite.
//
// Every run gets a row in the runs table, and every harvested spider and
// fetch task gets a row in page_visits or resource_visits. The history is
// write-only from the crawler's point of view: it is never read back to
// resume a crawl. The "crawler history" subcommand reads it.
//
// The driver is modernc.org/sqlite, which needs no cgo.
package database
