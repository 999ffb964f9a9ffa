package crawler

import (
	"context"

	"github.com/nao1215/crawler/internal/fetcher"
	"github.com/nao1215/crawler/internal/media"
)

// Resource is the outcome of a fetch task.
type Resource struct {
	// URL is the downloaded resource.
	URL string

	// Path is where the body was written; empty when the URL had no
	// usable path segment and nothing was fetched.
	Path string

	// Info describes the body.
	media.Info
}

// FetchResource downloads resourceURL and writes it to store under the URL's
// last path segment. A URL without a usable segment is a successful no-op.
// Failures are *TaskError values; nothing is retried.
func FetchResource(ctx context.Context, f fetcher.Fetcher, store ResourceStore, resourceURL string) (Resource, error) {
	res := Resource{URL: resourceURL}

	name, ok := ResourceName(resourceURL)
	if !ok {
		return res, nil
	}

	body, err := f.Fetch(ctx, resourceURL)
	if err != nil {
		return res, newTaskError(resourceURL, err)
	}

	path, err := store.Store(name, body)
	if err != nil {
		return res, &TaskError{URL: resourceURL, Kind: FailureIO, Err: err}
	}

	res.Path = path
	res.Info = media.Inspect(body)
	return res, nil
}
