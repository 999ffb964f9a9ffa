// Package model defines the data structures shared across the crawler.
//
// The crawl itself works on two small value types:
//   - Finding: a discovered unit of work, either a page to crawl or an image
//     to download. Findings are comparable and are used directly as map keys.
//   - Host: the normalized authority of a URL, used as the throttle key.
//
// The remaining types (PageVisit, ResourceVisit, CrawlSummary) describe what
// happened during a run. They are produced by the dispatcher and consumed by
// the report writers and the history database.
package model
