package crawler

import (
	"bytes"
	"context"
	"log/slog"
	"net/url"

	"github.com/nao1215/crawler/internal/fetcher"
	"github.com/nao1215/crawler/internal/model"
)

// SpiderPage fetches one page and returns the findings linked from it.
//
// Pages are tagged at depth+1 and images carry no depth. The call is bounded
// by ctx, which should carry the per-task timeout. On failure the returned
// error is a *TaskError. SpiderPage never follows the links it finds.
func SpiderPage(ctx context.Context, f fetcher.Fetcher, pageURL string, depth int, logger *slog.Logger) ([]model.Finding, error) {
	page, err := url.Parse(pageURL)
	if err != nil {
		return nil, &TaskError{URL: pageURL, Kind: FailureTransport, Err: err}
	}

	body, err := f.Fetch(ctx, pageURL)
	if err != nil {
		return nil, newTaskError(pageURL, err)
	}

	candidates := ExtractLinks(bytes.NewReader(body))
	root := SiteRoot(page)
	pages := ResolveLinks(root, candidates.Pages, logger)
	images := ResolveLinks(root, candidates.Resources, logger)

	findings := make([]model.Finding, 0, len(pages)+len(images))
	for _, link := range pages {
		findings = append(findings, model.NewPage(link, depth+1))
	}
	for _, link := range images {
		findings = append(findings, model.NewImage(link))
	}

	logger.Debug("page parsed",
		"url", pageURL,
		"depth", depth,
		"pages", len(pages),
		"images", len(images),
	)
	return findings, nil
}
