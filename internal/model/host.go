package model

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// ErrNoHost is returned when a URL has no host component.
// Such URLs can never be admitted by the host throttle.
var ErrNoHost = errors.New("url has no host")

// Host is the normalized authority of a URL: "scheme://host[:port]".
// Scheme and host name are lower-cased, internationalized names are converted
// to their ASCII form, and the default port of the scheme is elided, so
// "HTTPS://Example.TEST:443/a" and "https://example.test/b" share one Host.
type Host string

// String returns the host as a string.
func (h Host) String() string {
	return string(h)
}

// defaultPorts maps schemes to the port that is implied when none is given.
var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
}

// HostOf parses rawURL and returns its normalized Host.
func HostOf(rawURL string) (Host, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse %q: %w", rawURL, err)
	}
	return HostOfURL(u)
}

// HostOfURL returns the normalized Host of u.
// It returns ErrNoHost when u has no host component (e.g. "mailto:" URLs).
func HostOfURL(u *url.URL) (Host, error) {
	name := strings.ToLower(u.Hostname())
	if name == "" {
		return "", fmt.Errorf("%w: %q", ErrNoHost, u.String())
	}
	if ascii, err := idna.Punycode.ToASCII(name); err == nil {
		name = ascii
	}

	scheme := strings.ToLower(u.Scheme)
	port := u.Port()
	if port == defaultPorts[scheme] {
		port = ""
	}

	authority := name
	switch {
	case port != "":
		authority = net.JoinHostPort(name, port)
	case strings.Contains(name, ":"):
		// IPv6 literal without a port still needs its brackets.
		authority = "[" + name + "]"
	}

	return Host(scheme + "://" + authority), nil
}
