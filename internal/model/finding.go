package model

import "fmt"

// FindingKind discriminates the two variants of a Finding.
type FindingKind uint8

const (
	// FindingPage is a page awaiting a crawl.
	FindingPage FindingKind = iota + 1

	// FindingImage is a resource awaiting download.
	FindingImage
)

// String returns a human-readable name for the kind.
func (k FindingKind) String() string {
	switch k {
	case FindingPage:
		return "page"
	case FindingImage:
		return "image"
	default:
		return "unknown"
	}
}

// Finding is a discovered, not-yet-processed unit of crawl work.
//
// Identity is the full tuple (Kind, URL, Depth). Image findings carry no
// depth and always use zero, so two images with the same URL are equal no
// matter which page they were found on. The same page URL discovered at two
// different depths yields two distinct findings.
type Finding struct {
	// Kind tells whether the URL is crawled or downloaded.
	Kind FindingKind

	// URL is the absolute URL of the page or resource.
	URL string

	// Depth is the recursion depth the page was discovered at.
	// Seeds are depth 0. Always 0 for images.
	Depth int
}

// NewPage returns a page finding at the given depth.
func NewPage(url string, depth int) Finding {
	return Finding{Kind: FindingPage, URL: url, Depth: depth}
}

// NewImage returns an image finding.
func NewImage(url string) Finding {
	return Finding{Kind: FindingImage, URL: url}
}

// IsPage reports whether f should be crawled by a spider.
func (f Finding) IsPage() bool {
	return f.Kind == FindingPage
}

// IsImage reports whether f should be downloaded by a fetcher.
func (f Finding) IsImage() bool {
	return f.Kind == FindingImage
}

// String implements fmt.Stringer for log output.
func (f Finding) String() string {
	if f.Kind == FindingPage {
		return fmt.Sprintf("page(%s, depth=%d)", f.URL, f.Depth)
	}
	return fmt.Sprintf("%s(%s)", f.Kind, f.URL)
}
