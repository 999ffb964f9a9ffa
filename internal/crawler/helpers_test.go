package crawler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nao1215/crawler/internal/fetcher"
	"github.com/nao1215/crawler/internal/model"
)

// discardLogger drops every record.
func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// fakeFetcher serves bodies from a map and tracks per-host concurrency.
// URLs missing from the map answer 404.
type fakeFetcher struct {
	mu          sync.Mutex
	bodies      map[string]string
	errs        map[string]error
	delay       time.Duration
	calls       map[string]int
	inFlight    map[model.Host]int
	maxInFlight map[model.Host]int
}

func newFakeFetcher(bodies map[string]string) *fakeFetcher {
	return &fakeFetcher{
		bodies:      bodies,
		errs:        make(map[string]error),
		calls:       make(map[string]int),
		inFlight:    make(map[model.Host]int),
		maxInFlight: make(map[model.Host]int),
	}
}

func (f *fakeFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	host, _ := model.HostOf(rawURL) //nolint:errcheck // test urls always carry a host

	f.mu.Lock()
	f.calls[rawURL]++
	f.inFlight[host]++
	if f.inFlight[host] > f.maxInFlight[host] {
		f.maxInFlight[host] = f.inFlight[host]
	}
	body, ok := f.bodies[rawURL]
	err := f.errs[rawURL]
	delay := f.delay
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight[host]--
		f.mu.Unlock()
	}()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &fetcher.StatusError{URL: rawURL, StatusCode: 404}
	}
	return []byte(body), nil
}

func (f *fakeFetcher) callCount(rawURL string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[rawURL]
}

func (f *fakeFetcher) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

func (f *fakeFetcher) peakInFlight(host model.Host) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxInFlight[host]
}

// memoryRecorder keeps every visit in memory.
type memoryRecorder struct {
	pages     []model.PageVisit
	resources []model.ResourceVisit
}

func (m *memoryRecorder) RecordPage(_ context.Context, v model.PageVisit) error {
	m.pages = append(m.pages, v)
	return nil
}

func (m *memoryRecorder) RecordResource(_ context.Context, v model.ResourceVisit) error {
	m.resources = append(m.resources, v)
	return nil
}
