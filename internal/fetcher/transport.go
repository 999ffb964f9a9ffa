package fetcher

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/net/proxy"

	"github.com/nao1215/crawler/internal/model"
)

// HostHeaders are extra request headers and a cookie sent to one host.
type HostHeaders struct {
	// Headers maps header names to values.
	Headers map[string]string

	// Cookie is a raw cookie string (e.g. "session=abc").
	Cookie string
}

// newTransport returns the base transport, dialing through a SOCKS5 proxy
// when proxyAddr is non-empty.
//
// Compression is disabled on the transport because Fetch sets
// Accept-Encoding itself and decodes the body in readBody.
func newTransport(proxyAddr string) (*http.Transport, error) {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
		DisableCompression:    true,
	}

	if proxyAddr == "" {
		return transport, nil
	}
	if !isValidProxyAddress(proxyAddr) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidProxyAddress, proxyAddr)
	}

	// nil auth: SOCKS ports used for crawling rarely require credentials.
	dialer, err := proxy.SOCKS5("tcp", proxyAddr, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}

	transport.Proxy = nil
	if cd, ok := dialer.(proxy.ContextDialer); ok {
		transport.DialContext = cd.DialContext
	} else {
		transport.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
			return dialer.Dial(network, addr)
		}
	}
	return transport, nil
}

// isValidProxyAddress checks that address is "host:port" with a port in 1..65535.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 65535
}

// empty reports whether h injects nothing.
func (h HostHeaders) empty() bool {
	return h.Cookie == "" && len(h.Headers) == 0
}

// headerInjectingTransport wraps an http.RoundTripper to inject the
// configured headers and cookie of the request's host, falling back to
// defaults for hosts without an entry.
// Redirects go through RoundTrip again, so the target host's values apply.
type headerInjectingTransport struct {
	base     http.RoundTripper
	defaults HostHeaders
	hosts    map[model.Host]HostHeaders
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	extra := t.defaults
	if host, err := model.HostOfURL(req.URL); err == nil {
		if h, ok := t.hosts[host]; ok {
			extra = h
		}
	}
	if extra.empty() {
		return t.base.RoundTrip(req)
	}

	clone := req.Clone(req.Context())
	if extra.Cookie != "" {
		if existing := clone.Header.Get("Cookie"); existing != "" {
			clone.Header.Set("Cookie", existing+"; "+extra.Cookie)
		} else {
			clone.Header.Set("Cookie", extra.Cookie)
		}
	}
	for key, value := range extra.Headers {
		clone.Header.Set(key, value)
	}
	return t.base.RoundTrip(clone)
}
