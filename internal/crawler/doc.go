// Package crawler implements the recursive crawl engine.
//
// # Architecture
//
// A Dispatcher owns all crawl state and runs a single scheduling loop:
//
//	seeds -> Frontier -> HostThrottle.TryAdmit -> spider / fetch task
//	      <- Archive.Difference <- task result <-'
//
// Each admitted Finding becomes a goroutine (tracked by an errgroup) that
// either crawls a page (SpiderPage) or downloads a resource (FetchResource).
// Tasks never touch the Archive, the Frontier or the HostThrottle; they send
// their result back over a channel and the dispatcher applies it. None of
// these structures carry locks for that reason.
//
// # Depth
//
// Seeds are depth 0. A page crawled at depth d yields page findings at d+1,
// and those are re-queued only while d+1 < the depth limit. Images carry no
// depth and are always downloaded.
//
// # Host throttle
//
// At most MaxHostVisits tasks are in flight per host. A finding whose host is
// saturated stays in the Frontier until a task of that host completes. Every
// admission is released exactly once, for spider and fetch tasks alike, no
// matter how the task ended.
//
// # Errors
//
// Task failures (timeout, transport, non-2xx status, file I/O) are logged,
// recorded, and otherwise ignored. Run only fails when an internal invariant
// breaks, and the returned error then wraps ErrInvariant.
//
// # Usage
//
//	f, _ := fetcher.New()
//	d := crawler.NewDispatcher(f, crawler.WithMaxDepth(2))
//	summary, err := d.Run(ctx, []string{"https://example.test/"})
package crawler
