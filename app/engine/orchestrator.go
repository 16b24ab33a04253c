package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/Pianokruemel/TymR/app/database"
	"github.com/Pianokruemel/TymR/app/fetcher"
	"github.com/Pianokruemel/TymR/app/ical"
)

// Orchestrator runs sync passes: per active source it decides between a
// network fetch and the cached copy, pools all parsed events, selects the
// event of interest and publishes the result. Failures are contained per
// source; a pass always ends with a publish.
type Orchestrator struct {
	sourceRepo database.SourceRepository
	cacheRepo  database.CacheRepository
	fetcher    fetcher.FetcherInterface
	parser     *ical.Parser
	publisher  PublisherInterface
	staleness  time.Duration
	now        func() time.Time
}

func NewOrchestrator(sourceRepo database.SourceRepository, cacheRepo database.CacheRepository,
	calendarFetcher fetcher.FetcherInterface, publisher PublisherInterface,
	staleness time.Duration) *Orchestrator {
	return &Orchestrator{
		sourceRepo: sourceRepo,
		cacheRepo:  cacheRepo,
		fetcher:    calendarFetcher,
		parser:     ical.NewParser(),
		publisher:  publisher,
		staleness:  staleness,
		now:        time.Now,
	}
}

// Sync runs one full pass over all sources. A canceled context (the pass
// was superseded or the scheduler is stopping) aborts without publishing;
// every completed pass publishes, even an all-failed one.
func (o *Orchestrator) Sync(ctx context.Context, req Request) error {
	now := o.now()

	sources, err := o.sourceRepo.ListSources()
	if err != nil {
		// Still publish: with no readable source list the observable
		// state is "no events", not a crash.
		slog.Error("Failed to list sources", "error", err)
	}

	pool := make([]ical.Event, 0)
	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			slog.Debug("Sync pass superseded, skipping publish", "mode", string(req.Mode))
			return err
		}
		if !source.Active {
			continue
		}

		events := o.collectSource(ctx, source.URL, req, now)
		pool = append(pool, events...)
	}

	if err := ctx.Err(); err != nil {
		slog.Debug("Sync pass superseded, skipping publish", "mode", string(req.Mode))
		return err
	}

	return o.selectAndPublish(pool, now)
}

// RefreshDisplay re-pools strictly from cached text and republishes. It
// never touches the network, so it keeps the displayed countdown current
// between full sync passes without blocking on timeouts.
func (o *Orchestrator) RefreshDisplay(ctx context.Context) error {
	now := o.now()

	sources, err := o.sourceRepo.ListSources()
	if err != nil {
		slog.Error("Failed to list sources", "error", err)
	}

	pool := make([]ical.Event, 0)
	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !source.Active {
			continue
		}
		pool = append(pool, o.collectFromCache(source.URL)...)
	}

	return o.selectAndPublish(pool, now)
}

// collectSource obtains one source's events for this pass, either freshly
// fetched or from cache per the staleness decision.
func (o *Orchestrator) collectSource(ctx context.Context, url string, req Request, now time.Time) []ical.Event {
	if o.needsRefresh(url, req, now) {
		return o.collectFromNetwork(ctx, url, now)
	}
	return o.collectFromCache(url)
}

// needsRefresh implements the staleness decision for one source.
func (o *Orchestrator) needsRefresh(url string, req Request, now time.Time) bool {
	switch req.Mode {
	case ModeForceAll:
		return true
	case ModeForceOne:
		// Only the named URL is forced; everything else reuses cache
		// even when stale.
		return url == req.URL
	}

	lastFetch, err := o.cacheRepo.GetLastFetchTime(url)
	if err != nil {
		slog.Warn("Failed to read last fetch time, refreshing", "url", url, "error", err)
		return true
	}
	if lastFetch.IsZero() {
		return true
	}

	return now.Sub(lastFetch) > o.staleness
}

// collectFromNetwork fetches, parses and caches one source. On fetch
// failure the source contributes nothing this pass and its cached copy is
// left untouched, so the last known-good data survives a transient outage.
func (o *Orchestrator) collectFromNetwork(ctx context.Context, url string, now time.Time) []ical.Event {
	text, err := o.fetcher.Fetch(ctx, url)
	if err != nil {
		slog.Warn("Fetch failed, source contributes nothing this pass", "url", url, "error", err)
		return nil
	}

	events := o.parser.Run([]byte(text))

	if err := o.cacheRepo.PutCachedText(url, text); err != nil {
		slog.Error("Failed to cache feed text", "url", url, "error", err)
	}
	if err := o.cacheRepo.PutLastFetchTime(url, now); err != nil {
		slog.Error("Failed to record fetch time", "url", url, "error", err)
	}

	slog.Debug("Source refreshed", "url", url, "events", len(events))

	return events
}

func (o *Orchestrator) collectFromCache(url string) []ical.Event {
	text, ok, err := o.cacheRepo.GetCachedText(url)
	if err != nil {
		slog.Warn("Failed to read cached text", "url", url, "error", err)
		return nil
	}
	if !ok {
		// Never successfully fetched; nothing to contribute.
		return nil
	}

	events := o.parser.Run([]byte(text))

	slog.Debug("Source served from cache", "url", url, "events", len(events))

	return events
}

func (o *Orchestrator) selectAndPublish(pool []ical.Event, now time.Time) error {
	event := ical.Select(pool, now)
	if event == nil {
		return o.publisher.Publish(nil)
	}

	selection := &Selection{
		Event:     *event,
		IsOngoing: event.IsOngoing(now),
	}
	if selection.IsOngoing {
		selection.TimeRemaining = event.TimeUntilEnd(now)
	} else {
		selection.TimeRemaining = event.TimeUntilStart(now)
	}

	return o.publisher.Publish(selection)
}
