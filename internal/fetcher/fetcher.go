package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/http/cookiejar"

	"github.com/nao1215/crawler/internal/model"
)

// DefaultMaxBodySize is the default response body limit (10MB).
const DefaultMaxBodySize int64 = 10 * 1024 * 1024

// maxRedirects bounds redirect chains.
const maxRedirects = 10

// DefaultUserAgents is the pool a User-Agent is drawn from when none is configured.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:128.0) Gecko/20100101 Firefox/128.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_5) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
}

// Fetcher downloads the body at a URL.
// Implementations must honor ctx cancellation and deadlines.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// HTTPFetcher is a Fetcher backed by net/http.
type HTTPFetcher struct {
	client      *http.Client
	userAgent   string
	userAgents  []string
	maxBodySize int64
	proxy       string
	defaults    HostHeaders
	hosts       map[model.Host]HostHeaders
	logger      *slog.Logger
}

// Option configures an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithUserAgents sets the pool the User-Agent is drawn from.
// An empty pool keeps DefaultUserAgents.
func WithUserAgents(pool []string) Option {
	return func(f *HTTPFetcher) {
		if len(pool) > 0 {
			f.userAgents = pool
		}
	}
}

// WithMaxBodySize sets the response body limit in bytes.
func WithMaxBodySize(size int64) Option {
	return func(f *HTTPFetcher) {
		f.maxBodySize = size
	}
}

// WithProxy routes every connection through the SOCKS5 proxy at addr ("host:port").
func WithProxy(addr string) Option {
	return func(f *HTTPFetcher) {
		f.proxy = addr
	}
}

// WithDefaultHeaders sets the headers and cookie sent to hosts that have no
// entry of their own.
func WithDefaultHeaders(h HostHeaders) Option {
	return func(f *HTTPFetcher) {
		f.defaults = h
	}
}

// WithHostHeaders sets headers and cookies injected into requests per host.
// An entry replaces the defaults for its host; merge them beforehand if both
// should apply.
func WithHostHeaders(hosts map[model.Host]HostHeaders) Option {
	return func(f *HTTPFetcher) {
		f.hosts = hosts
	}
}

// WithHTTPClient replaces the underlying client. Proxy and host headers are
// not applied to a client supplied this way.
func WithHTTPClient(client *http.Client) Option {
	return func(f *HTTPFetcher) {
		f.client = client
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *HTTPFetcher) {
		f.logger = logger
	}
}

// New creates an HTTPFetcher.
// It fails only when the proxy address is malformed.
func New(opts ...Option) (*HTTPFetcher, error) {
	f := &HTTPFetcher{
		userAgents:  DefaultUserAgents,
		maxBodySize: DefaultMaxBodySize,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}

	f.userAgent = f.userAgents[rand.IntN(len(f.userAgents))] //nolint:gosec // not security sensitive

	if f.client == nil {
		transport, err := newTransport(f.proxy)
		if err != nil {
			return nil, err
		}
		jar, _ := cookiejar.New(nil) //nolint:errcheck // cookiejar.New only fails with invalid options
		f.client = &http.Client{
			Transport: &headerInjectingTransport{base: transport, defaults: f.defaults, hosts: f.hosts},
			Jar:       jar,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return http.ErrUseLastResponse
				}
				return nil
			},
		}
	}

	f.logger.Debug("http fetcher ready", "user_agent", f.userAgent, "proxy", f.proxy)
	return f, nil
}

// UserAgent returns the User-Agent chosen at construction.
func (f *HTTPFetcher) UserAgent() string {
	return f.userAgent
}

// Fetch performs one GET request and returns the decoded body.
// The request is bounded by ctx; pass a context with a deadline to enforce
// a timeout.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/*,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck
		return nil, &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := readBody(resp, f.maxBodySize)
	if err != nil {
		return nil, err
	}

	return toUTF8(body, resp.Header.Get("Content-Type")), nil
}
