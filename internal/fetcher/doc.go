// Package fetcher downloads page and resource bodies over HTTP.
//
// The crawl engine only depends on the Fetcher interface: given a context
// (carrying the per-request timeout) and a URL, return the body bytes or an
// error. HTTPFetcher is the production implementation. It
//
//   - picks one User-Agent at random from a pool when it is constructed,
//   - decodes gzip, deflate and brotli Content-Encodings itself,
//   - transcodes text/html bodies to UTF-8 from the declared charset,
//   - caps the body size,
//   - reports non-2xx responses as *StatusError,
//   - injects per-host headers and cookies (see HostHeaders), and
//   - optionally dials through a SOCKS5 proxy.
package fetcher
