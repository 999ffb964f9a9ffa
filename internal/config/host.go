package config

import (
	"fmt"
	"maps"
	"strings"

	"github.com/nao1215/crawler/internal/fetcher"
	"github.com/nao1215/crawler/internal/model"
)

// HostConfig holds request settings for one host.
type HostConfig struct {
	// Cookie is an HTTP cookie sent to the host.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are extra HTTP headers sent to the host.
	Headers map[string]string `yaml:"headers,omitempty"`
}

// merge returns c with the non-empty fields of override applied on top.
func (c HostConfig) merge(override HostConfig) HostConfig {
	result := HostConfig{Cookie: c.Cookie}
	if override.Cookie != "" {
		result.Cookie = override.Cookie
	}
	if len(c.Headers)+len(override.Headers) > 0 {
		result.Headers = make(map[string]string, len(c.Headers)+len(override.Headers))
		maps.Copy(result.Headers, c.Headers)
		maps.Copy(result.Headers, override.Headers)
	}
	return result
}

// toFetcher converts c for the HTTP fetcher.
func (c HostConfig) toFetcher() fetcher.HostHeaders {
	return fetcher.HostHeaders{Headers: c.Headers, Cookie: c.Cookie}
}

// ConfigFor returns the merged configuration for key, a host as written in
// the file. Defaults apply first and the host entry overrides them.
func (f *File) ConfigFor(key string) HostConfig {
	return f.Defaults.merge(f.Hosts[key])
}

// DefaultHeaders returns the headers sent to hosts without an entry.
func (f *File) DefaultHeaders() fetcher.HostHeaders {
	return f.Defaults.toFetcher()
}

// HostHeaders returns the per-host headers keyed by normalized host, each
// merged with the defaults.
//
// A key written with a scheme ("https://example.test:8443") applies to that
// exact origin. A bare host name ("example.test") applies to both http and
// https on their default ports.
func (f *File) HostHeaders() (map[model.Host]fetcher.HostHeaders, error) {
	result := make(map[model.Host]fetcher.HostHeaders, len(f.Hosts))
	for key := range f.Hosts {
		origins := []string{key}
		if !strings.Contains(key, "://") {
			origins = []string{"http://" + key, "https://" + key}
		}
		merged := f.ConfigFor(key).toFetcher()
		for _, origin := range origins {
			host, err := model.HostOf(origin)
			if err != nil {
				return nil, fmt.Errorf("invalid host %q in configuration file: %w", key, err)
			}
			result[host] = merged
		}
	}
	return result, nil
}
