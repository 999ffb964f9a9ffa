package crawler

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/nao1215/crawler/internal/fetcher"
)

// ErrInvariant is wrapped by every error Dispatcher.Run returns.
// It signals a bug rather than a network condition: a hostless URL reaching
// the throttle, an unbalanced release, or a frontier that can never drain.
var ErrInvariant = errors.New("crawl invariant violated")

// FailureKind classifies why a task failed.
type FailureKind string

const (
	// FailureTimeout means the per-task deadline expired.
	FailureTimeout FailureKind = "timeout"

	// FailureTransport covers DNS, connection, TLS and body read errors.
	FailureTransport FailureKind = "transport"

	// FailureStatus means the server answered outside the 2xx range.
	FailureStatus FailureKind = "status"

	// FailureIO means the downloaded resource could not be written.
	FailureIO FailureKind = "io"
)

// TaskError is the typed failure of a spider or fetch task.
type TaskError struct {
	// URL is the page or resource the task worked on.
	URL string

	// Kind classifies the failure.
	Kind FailureKind

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *TaskError) Error() string {
	return fmt.Sprintf("%s failure for %s: %v", e.Kind, e.URL, e.Err)
}

// Unwrap returns the underlying error.
func (e *TaskError) Unwrap() error {
	return e.Err
}

// newTaskError wraps a fetch error, classifying it.
func newTaskError(url string, err error) *TaskError {
	return &TaskError{URL: url, Kind: classify(err), Err: err}
}

// classify maps a fetch error to a FailureKind.
func classify(err error) FailureKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureTimeout
	}
	var statusErr *fetcher.StatusError
	if errors.As(err, &statusErr) {
		return FailureStatus
	}
	return FailureTransport
}

// failureOf extracts kind and message from a task error for visit records.
func failureOf(err error) (string, string) {
	var taskErr *TaskError
	if errors.As(err, &taskErr) {
		return string(taskErr.Kind), taskErr.Err.Error()
	}
	return string(FailureTransport), err.Error()
}
