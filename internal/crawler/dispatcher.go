package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/crawler/internal/fetcher"
	"github.com/nao1215/crawler/internal/model"
)

const (
	// DefaultMaxDepth is the default recursion-depth limit.
	DefaultMaxDepth = 4

	// DefaultMaxHostVisits is the default per-host in-flight ceiling.
	DefaultMaxHostVisits = 512

	// DefaultTaskTimeout bounds every spider and fetch task.
	DefaultTaskTimeout = 20 * time.Second

	// DefaultResourceDir is where resources are written unless configured.
	DefaultResourceDir = "archive/res"
)

// Dispatcher drives a crawl from seed URLs to a drained frontier.
type Dispatcher struct {
	fetcher       fetcher.Fetcher
	store         ResourceStore
	recorder      Recorder
	logger        *slog.Logger
	runID         string
	maxDepth      int
	maxHostVisits int
	timeout       time.Duration
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithMaxDepth sets the recursion-depth limit. Page findings are re-queued
// only while their depth is strictly below it.
func WithMaxDepth(depth int) Option {
	return func(d *Dispatcher) {
		d.maxDepth = depth
	}
}

// WithMaxHostVisits sets the per-host in-flight ceiling.
func WithMaxHostVisits(n int) Option {
	return func(d *Dispatcher) {
		d.maxHostVisits = n
	}
}

// WithTaskTimeout sets the timeout of each spider and fetch task.
func WithTaskTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		d.timeout = timeout
	}
}

// WithResourceStore sets where downloaded resources go.
func WithResourceStore(store ResourceStore) Option {
	return func(d *Dispatcher) {
		d.store = store
	}
}

// WithRecorder sets the sink for per-task visit records.
func WithRecorder(recorder Recorder) Option {
	return func(d *Dispatcher) {
		d.recorder = recorder
	}
}

// WithRunID tags the summary with a run identifier.
func WithRunID(id string) Option {
	return func(d *Dispatcher) {
		d.runID = id
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// NewDispatcher returns a dispatcher fetching through f.
func NewDispatcher(f fetcher.Fetcher, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		fetcher:       f,
		store:         NewDirStore(DefaultResourceDir),
		recorder:      nopRecorder{},
		logger:        slog.Default(),
		maxDepth:      DefaultMaxDepth,
		maxHostVisits: DefaultMaxHostVisits,
		timeout:       DefaultTaskTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// spiderResult is what a spider task sends back.
type spiderResult struct {
	finding  model.Finding
	host     model.Host
	findings []model.Finding
	err      error
}

// fetchResult is what a fetch task sends back.
type fetchResult struct {
	finding  model.Finding
	host     model.Host
	resource Resource
	err      error
}

// run is the state of one Run call. Only the Run goroutine touches it.
type run struct {
	d        *Dispatcher
	archive  *Archive
	frontier *Frontier
	throttle *HostThrottle
	summary  *model.CrawlSummary

	group       errgroup.Group
	taskCtx     context.Context
	spiderDone  chan spiderResult
	fetchDone   chan fetchResult
	done        chan struct{}
	outstanding int
	saturated   map[model.Host]bool
}

// Run crawls from seeds until nothing is pending and no task is in flight.
//
// Seeds must be absolute URLs with a host; validate them before calling.
// Cancelling ctx stops admission of new tasks, waits for the ones in flight,
// and returns a summary marked as interrupted. Tasks themselves are never
// cancelled and are bounded only by the task timeout.
//
// The returned error is non-nil only for invariant violations and always
// wraps ErrInvariant. The summary is returned in every case.
func (d *Dispatcher) Run(ctx context.Context, seeds []string) (summary *model.CrawlSummary, err error) {
	archive := NewArchive()
	initial := make([]model.Finding, 0, len(seeds))
	for _, seed := range seeds {
		initial = append(initial, model.NewPage(seed, 0))
	}
	// Repeated seeds are crawled once.
	initial = archive.Difference(initial)
	archive.InsertAll(initial...)

	r := &run{
		d:          d,
		archive:    archive,
		frontier:   NewFrontier(initial...),
		throttle:   NewHostThrottle(d.maxHostVisits),
		summary:    model.NewCrawlSummary(seeds, d.maxDepth, d.maxHostVisits),
		taskCtx:    context.WithoutCancel(ctx),
		spiderDone: make(chan spiderResult),
		fetchDone:  make(chan fetchResult),
		done:       make(chan struct{}),
		saturated:  make(map[model.Host]bool),
	}
	r.summary.RunID = d.runID

	d.logger.Info("crawl started",
		"seeds", len(seeds),
		"max_depth", d.maxDepth,
		"max_host_visits", r.throttle.Ceiling(),
	)

	defer func() {
		close(r.done)
		if err == nil {
			_ = r.group.Wait() //nolint:errcheck // tasks always return nil
		}
		r.finish(ctx)
	}()

	for {
		if ctx.Err() == nil {
			if err := r.admit(); err != nil {
				return r.summary, err
			}
		}

		if r.outstanding == 0 {
			if r.frontier.Empty() || ctx.Err() != nil {
				return r.summary, nil
			}
			return r.summary, fmt.Errorf("%w: %d findings pending with no task in flight", ErrInvariant, r.frontier.Len())
		}

		if err := r.harvest(); err != nil {
			return r.summary, err
		}
	}
}

// admit tries every pending finding against the throttle, spawning a task
// for each admitted one and keeping the rest for the next pass.
func (r *run) admit() error {
	r.summary.Passes++
	pending := r.frontier.Drain()
	deferred := make([]model.Finding, 0)

	for _, f := range pending {
		host, err := model.HostOf(f.URL)
		if err != nil {
			return fmt.Errorf("%w: %s reached the host throttle: %w", ErrInvariant, f, err)
		}
		if !r.throttle.TryAdmit(host) {
			if !r.saturated[host] {
				r.saturated[host] = true
				r.d.logger.Warn("host saturated, deferring findings", "host", host, "ceiling", r.throttle.Ceiling())
			}
			deferred = append(deferred, f)
			continue
		}
		r.spawn(f, host)
	}

	r.summary.DeferredAdmissions += len(deferred)
	r.frontier.Push(deferred...)
	if len(deferred) > 0 {
		r.d.logger.Debug("findings deferred by host throttle", "count", len(deferred), "pass", r.summary.Passes)
	}
	return nil
}

// spawn starts the task for an admitted finding.
func (r *run) spawn(f model.Finding, host model.Host) {
	r.outstanding++
	d := r.d

	if f.IsPage() {
		d.logger.Debug("spider task started", "url", f.URL, "depth", f.Depth)
		r.group.Go(func() error {
			ctx, cancel := context.WithTimeout(r.taskCtx, d.timeout)
			defer cancel()
			findings, err := SpiderPage(ctx, d.fetcher, f.URL, f.Depth, d.logger)
			select {
			case r.spiderDone <- spiderResult{finding: f, host: host, findings: findings, err: err}:
			case <-r.done:
			}
			return nil
		})
		return
	}

	d.logger.Debug("fetch task started", "url", f.URL)
	r.group.Go(func() error {
		ctx, cancel := context.WithTimeout(r.taskCtx, d.timeout)
		defer cancel()
		res, err := FetchResource(ctx, d.fetcher, d.store, f.URL)
		select {
		case r.fetchDone <- fetchResult{finding: f, host: host, resource: res, err: err}:
		case <-r.done:
		}
		return nil
	})
}

// harvest waits for at least one task to complete, then collects every
// spider and fetch task that is already done.
func (r *run) harvest() error {
	select {
	case res := <-r.spiderDone:
		if err := r.harvestSpider(res); err != nil {
			return err
		}
	case res := <-r.fetchDone:
		if err := r.harvestFetch(res); err != nil {
			return err
		}
	}

spiders:
	for {
		select {
		case res := <-r.spiderDone:
			if err := r.harvestSpider(res); err != nil {
				return err
			}
		default:
			break spiders
		}
	}

	for {
		select {
		case res := <-r.fetchDone:
			if err := r.harvestFetch(res); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// release frees the throttle slot of a completed task.
func (r *run) release(f model.Finding, host model.Host) error {
	if !r.throttle.Release(host) {
		return fmt.Errorf("%w: release of %s without admission for host %s", ErrInvariant, f, host)
	}
	r.outstanding--
	return nil
}

// harvestSpider applies a completed spider task: dedup its findings against
// the archive and queue the fresh ones within the depth limit.
func (r *run) harvestSpider(res spiderResult) error {
	if err := r.release(res.finding, res.host); err != nil {
		return err
	}

	visit := model.PageVisit{
		URL:       res.finding.URL,
		Depth:     res.finding.Depth,
		VisitedAt: time.Now(),
	}

	if res.err != nil {
		r.summary.PagesFailed++
		visit.Failure, visit.Error = failureOf(res.err)
		r.d.logger.Warn("page crawl failed",
			"url", res.finding.URL,
			"depth", res.finding.Depth,
			"kind", visit.Failure,
			"error", visit.Error,
		)
		r.record(visit)
		return nil
	}

	r.summary.PagesCrawled++
	visit.Findings = len(res.findings)

	fresh := r.archive.Difference(res.findings)
	r.archive.InsertAll(fresh...)
	r.summary.DuplicatesDropped += len(res.findings) - len(fresh)

	queued := 0
	for _, f := range fresh {
		if f.IsImage() {
			r.summary.ImagesDiscovered++
			r.frontier.Push(f)
			queued++
			continue
		}
		r.summary.PagesDiscovered++
		if f.Depth < r.d.maxDepth {
			r.frontier.Push(f)
			queued++
		} else {
			r.summary.DepthLimited++
		}
	}

	r.d.logger.Info("page crawled",
		"url", res.finding.URL,
		"depth", res.finding.Depth,
		"found", len(res.findings),
		"new", len(fresh),
		"queued", queued,
	)
	r.record(visit)
	return nil
}

// harvestFetch applies a completed fetch task.
func (r *run) harvestFetch(res fetchResult) error {
	if err := r.release(res.finding, res.host); err != nil {
		return err
	}

	visit := model.ResourceVisit{
		URL:       res.finding.URL,
		Path:      res.resource.Path,
		Size:      res.resource.Size,
		Digest:    res.resource.Digest,
		EXIFTags:  len(res.resource.EXIF),
		FetchedAt: time.Now(),
	}

	switch {
	case res.err != nil:
		r.summary.ResourcesFailed++
		visit.Failure, visit.Error = failureOf(res.err)
		r.d.logger.Warn("resource fetch failed",
			"url", res.finding.URL,
			"kind", visit.Failure,
			"error", visit.Error,
		)
	case res.resource.Path == "":
		r.summary.ResourcesSkipped++
		r.d.logger.Debug("resource skipped, no file name in url", "url", res.finding.URL)
	default:
		r.summary.ResourcesFetched++
		r.summary.BytesDownloaded += res.resource.Size
		if res.resource.HasEXIF() {
			r.summary.ImagesWithEXIF++
		}
		r.d.logger.Info("resource saved",
			"url", res.finding.URL,
			"path", res.resource.Path,
			"size", res.resource.Size,
			"exif_tags", len(res.resource.EXIF),
		)
	}

	r.recordResource(visit)
	return nil
}

func (r *run) record(visit model.PageVisit) {
	if err := r.d.recorder.RecordPage(r.taskCtx, visit); err != nil {
		r.d.logger.Warn("failed to record page visit", "url", visit.URL, "error", err)
	}
}

func (r *run) recordResource(visit model.ResourceVisit) {
	if err := r.d.recorder.RecordResource(r.taskCtx, visit); err != nil {
		r.d.logger.Warn("failed to record resource visit", "url", visit.URL, "error", err)
	}
}

// finish stamps the summary once the loop has exited.
func (r *run) finish(ctx context.Context) {
	r.summary.FinishedAt = time.Now()
	r.summary.Interrupted = ctx.Err() != nil && (r.outstanding > 0 || !r.frontier.Empty())
	r.summary.ObservePeak(r.throttle.Busiest())

	r.d.logger.Info("crawl finished",
		"pages", r.summary.PagesCrawled,
		"pages_failed", r.summary.PagesFailed,
		"resources", r.summary.ResourcesFetched,
		"resources_failed", r.summary.ResourcesFailed,
		"archive", r.archive.Len(),
		"passes", r.summary.Passes,
		"interrupted", r.summary.Interrupted,
		"duration", r.summary.Duration(),
	)
}
