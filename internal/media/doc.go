// Package media inspects downloaded resources.
//
// Every resource written by a fetch task is passed through Inspect, which
// computes a SHA3-256 digest of the body, sniffs its content type, and counts
// the EXIF tags embedded in it. Images carrying EXIF metadata can leak the
// camera, serial number, or GPS position of whoever took them, so the count is
// surfaced in the crawl summary.
package media
