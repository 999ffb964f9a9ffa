package crawler

import (
	"log/slog"
	"net/url"
	"slices"
	"strings"

	"github.com/nao1215/crawler/internal/model"
)

// SiteRoot returns "scheme://host/" for u, dropping path, query, fragment and
// user info. Relative links are resolved against this rather than against
// the page's own directory, so "about" on /blog/post1 becomes /about.
func SiteRoot(u *url.URL) *url.URL {
	return &url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/"}
}

// ResolveLinks turns candidates into absolute URLs.
//
// Each candidate is trimmed and parsed; unparsable candidates are logged as
// malformed and dropped. Candidates are resolved against root, which leaves
// absolute URLs pointing where they did but removes their dot segments. The
// host is lower-cased and an empty path becomes "/". Only URLs whose scheme
// contains "http" and that carry a host name survive, so every returned URL
// has a throttle key. The result is sorted and free of duplicates.
func ResolveLinks(root *url.URL, candidates []string, logger *slog.Logger) []string {
	seen := make(map[string]struct{}, len(candidates))
	links := make([]string, 0, len(candidates))

	for _, candidate := range candidates {
		raw := strings.TrimSpace(candidate)
		ref, err := url.Parse(raw)
		if err != nil {
			logger.Warn("malformed link found", "link", raw, "page", root.String(), "error", err)
			continue
		}

		abs := root.ResolveReference(ref)
		if !strings.Contains(abs.Scheme, "http") {
			continue
		}
		if _, err := model.HostOfURL(abs); err != nil {
			logger.Debug("link without host dropped", "link", raw, "page", root.String())
			continue
		}
		abs.Host = strings.ToLower(abs.Host)
		if abs.Path == "" && abs.Opaque == "" {
			abs.Path = "/"
		}

		link := abs.String()
		if _, dup := seen[link]; dup {
			continue
		}
		seen[link] = struct{}{}
		links = append(links, link)
	}

	slices.Sort(links)
	return links
}
