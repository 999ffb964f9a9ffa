package model

import "time"

// CrawlSummary describes a finished (or interrupted) crawl run.
// It is filled by the dispatcher and rendered by the report writers.
type CrawlSummary struct {
	// RunID identifies the run in the history database.
	RunID string `json:"run_id,omitempty"`

	// Seeds are the URLs the crawl started from.
	Seeds []string `json:"seeds"`

	// MaxDepth is the recursion-depth limit.
	MaxDepth int `json:"max_depth"`

	// MaxHostVisits is the per-host in-flight ceiling.
	MaxHostVisits int `json:"max_host_visits"`

	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Passes is the number of scheduling passes the dispatcher made.
	Passes int `json:"passes"`

	// PagesCrawled and PagesFailed count harvested spider tasks.
	PagesCrawled int `json:"pages_crawled"`
	PagesFailed  int `json:"pages_failed"`

	// ResourcesFetched, ResourcesSkipped and ResourcesFailed count harvested
	// fetch tasks. Skipped resources had no path segment to name a file after.
	ResourcesFetched int `json:"resources_fetched"`
	ResourcesSkipped int `json:"resources_skipped"`
	ResourcesFailed  int `json:"resources_failed"`

	// BytesDownloaded is the total size of written resources.
	BytesDownloaded int64 `json:"bytes_downloaded"`

	// PagesDiscovered and ImagesDiscovered count findings that passed dedup.
	PagesDiscovered  int `json:"pages_discovered"`
	ImagesDiscovered int `json:"images_discovered"`

	// DuplicatesDropped counts findings rejected by the archive.
	DuplicatesDropped int `json:"duplicates_dropped"`

	// DepthLimited counts new page findings not re-queued because of the depth limit.
	DepthLimited int `json:"depth_limited"`

	// DeferredAdmissions counts admission attempts denied by the host throttle.
	DeferredAdmissions int `json:"deferred_admissions"`

	// BusiestHost is the host with the highest in-flight peak.
	BusiestHost Host `json:"busiest_host,omitempty"`

	// BusiestHostPeak is the in-flight peak of BusiestHost.
	BusiestHostPeak int `json:"busiest_host_peak"`

	// ImagesWithEXIF counts downloaded resources that carried EXIF metadata.
	ImagesWithEXIF int `json:"images_with_exif"`

	// Interrupted is set when the run was cancelled before draining.
	Interrupted bool `json:"interrupted"`
}

// NewCrawlSummary returns a summary for a run starting now.
func NewCrawlSummary(seeds []string, maxDepth, maxHostVisits int) *CrawlSummary {
	return &CrawlSummary{
		Seeds:         seeds,
		MaxDepth:      maxDepth,
		MaxHostVisits: maxHostVisits,
		StartedAt:     time.Now(),
	}
}

// Duration returns the wall time of the run.
// It is zero until FinishedAt is set.
func (s *CrawlSummary) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// TasksCompleted returns the number of harvested tasks, failed or not.
func (s *CrawlSummary) TasksCompleted() int {
	return s.PagesCrawled + s.PagesFailed + s.ResourcesFetched + s.ResourcesSkipped + s.ResourcesFailed
}

// TasksFailed returns the number of harvested tasks that failed.
func (s *CrawlSummary) TasksFailed() int {
	return s.PagesFailed + s.ResourcesFailed
}

// ObservePeak records an in-flight peak for host, keeping the largest one.
func (s *CrawlSummary) ObservePeak(host Host, peak int) {
	if peak > s.BusiestHostPeak {
		s.BusiestHost = host
		s.BusiestHostPeak = peak
	}
}
