package model

import "time"

// PageVisit records the outcome of one spider task.
type PageVisit struct {
	// URL is the crawled page.
	URL string `json:"url"`

	// Depth is the recursion depth of the page.
	Depth int `json:"depth"`

	// Findings is the number of findings the page produced before dedup.
	Findings int `json:"findings"`

	// Failure is the failure kind ("timeout", "transport", ...) or empty on success.
	Failure string `json:"failure,omitempty"`

	// Error is the failure message or empty on success.
	Error string `json:"error,omitempty"`

	// VisitedAt is when the dispatcher harvested the task.
	VisitedAt time.Time `json:"visited_at"`
}

// Succeeded reports whether the page was fetched and parsed.
func (v PageVisit) Succeeded() bool {
	return v.Error == ""
}

// ResourceVisit records the outcome of one fetch task.
type ResourceVisit struct {
	// URL is the downloaded resource.
	URL string `json:"url"`

	// Path is the file the resource was written to.
	// Empty when the URL had no usable path segment.
	Path string `json:"path,omitempty"`

	// Size is the number of bytes written.
	Size int64 `json:"size"`

	// Digest is the hex SHA3-256 digest of the body.
	Digest string `json:"digest,omitempty"`

	// EXIFTags is the number of EXIF tags found in the body.
	EXIFTags int `json:"exif_tags"`

	// Failure is the failure kind or empty on success.
	Failure string `json:"failure,omitempty"`

	// Error is the failure message or empty on success.
	Error string `json:"error,omitempty"`

	// FetchedAt is when the dispatcher harvested the task.
	FetchedAt time.Time `json:"fetched_at"`
}

// Succeeded reports whether the resource was downloaded (or skipped).
func (v ResourceVisit) Succeeded() bool {
	return v.Error == ""
}

// Skipped reports whether the fetch was a no-op because the URL had no
// usable path segment to name the file after.
func (v ResourceVisit) Skipped() bool {
	return v.Succeeded() && v.Path == ""
}
