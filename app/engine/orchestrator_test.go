package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Pianokruemel/TymR/app/database"
	"github.com/Pianokruemel/TymR/app/fetcher"
)

const testFeed = `BEGIN:VEVENT
UID:event-1
SUMMARY:Pooled Event
DTSTART:20240115T130000Z
DTEND:20240115T140000Z
END:VEVENT`

const otherFeed = `BEGIN:VEVENT
UID:event-2
SUMMARY:Other Event
DTSTART:20240115T150000Z
DTEND:20240115T160000Z
END:VEVENT`

// MockSourceRepository implements a simple mock for testing
type MockSourceRepository struct {
	sources []database.Source
	err     error
}

var _ database.SourceRepository = (*MockSourceRepository)(nil)

func (m *MockSourceRepository) UpsertSource(url, name string, active bool) (int64, error) {
	return 1, nil
}

func (m *MockSourceRepository) GetSource(url string) (*database.Source, error) {
	return nil, nil
}

func (m *MockSourceRepository) ListSources() ([]database.Source, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.sources, nil
}

func (m *MockSourceRepository) SetSourceActive(url string, active bool) (bool, error) {
	return false, nil
}

func (m *MockSourceRepository) RemoveSource(url string) error {
	return nil
}

func (m *MockSourceRepository) GetSourceCount() (int, error) {
	return len(m.sources), nil
}

// MockCacheRepository implements an in-memory cache store for testing
type MockCacheRepository struct {
	texts      map[string]string
	fetchTimes map[string]time.Time
	textPuts   []string
	timePuts   []string
}

var _ database.CacheRepository = (*MockCacheRepository)(nil)

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{
		texts:      make(map[string]string),
		fetchTimes: make(map[string]time.Time),
	}
}

func (m *MockCacheRepository) GetCachedText(url string) (string, bool, error) {
	text, ok := m.texts[url]
	return text, ok, nil
}

func (m *MockCacheRepository) PutCachedText(url, text string) error {
	m.texts[url] = text
	m.textPuts = append(m.textPuts, url)
	return nil
}

func (m *MockCacheRepository) GetLastFetchTime(url string) (time.Time, error) {
	return m.fetchTimes[url], nil
}

func (m *MockCacheRepository) PutLastFetchTime(url string, t time.Time) error {
	m.fetchTimes[url] = t
	m.timePuts = append(m.timePuts, url)
	return nil
}

func (m *MockCacheRepository) Remove(url string) error {
	delete(m.texts, url)
	delete(m.fetchTimes, url)
	return nil
}

// MockFetcher implements a stub fetcher for testing
type MockFetcher struct {
	responses map[string]string
	errs      map[string]error
	calls     []string
}

var _ fetcher.FetcherInterface = (*MockFetcher)(nil)

func NewMockFetcher() *MockFetcher {
	return &MockFetcher{
		responses: make(map[string]string),
		errs:      make(map[string]error),
	}
}

func (m *MockFetcher) Fetch(ctx context.Context, url string) (string, error) {
	m.calls = append(m.calls, url)
	if err, ok := m.errs[url]; ok {
		return "", err
	}
	return m.responses[url], nil
}

func (m *MockFetcher) callCount(url string) int {
	count := 0
	for _, call := range m.calls {
		if call == url {
			count++
		}
	}
	return count
}

// MockPublisher records every published selection
type MockPublisher struct {
	published []*Selection
}

var _ PublisherInterface = (*MockPublisher)(nil)

func (m *MockPublisher) Publish(selection *Selection) error {
	m.published = append(m.published, selection)
	return nil
}

func (m *MockPublisher) last(t *testing.T) *Selection {
	t.Helper()
	if len(m.published) == 0 {
		t.Fatal("Expected at least one publish")
	}
	return m.published[len(m.published)-1]
}

type orchestratorFixture struct {
	orchestrator *Orchestrator
	sourceRepo   *MockSourceRepository
	cacheRepo    *MockCacheRepository
	fetcher      *MockFetcher
	publisher    *MockPublisher
	now          time.Time
}

func newFixture(sources []database.Source) *orchestratorFixture {
	f := &orchestratorFixture{
		sourceRepo: &MockSourceRepository{sources: sources},
		cacheRepo:  NewMockCacheRepository(),
		fetcher:    NewMockFetcher(),
		publisher:  &MockPublisher{},
		now:        time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC),
	}
	f.orchestrator = NewOrchestrator(f.sourceRepo, f.cacheRepo, f.fetcher, f.publisher, 24*time.Hour)
	f.orchestrator.now = func() time.Time { return f.now }
	return f
}

func TestSyncStalenessGate(t *testing.T) {
	url := "https://example.com/cal.ics"
	f := newFixture([]database.Source{{ID: 1, URL: url, Active: true}})
	f.fetcher.responses[url] = testFeed

	// Stale cache (25h old): fetcher must be called
	f.cacheRepo.texts[url] = otherFeed
	f.cacheRepo.fetchTimes[url] = f.now.Add(-25 * time.Hour)

	if err := f.orchestrator.Sync(context.Background(), Request{Mode: ModeScheduled}); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if f.fetcher.callCount(url) != 1 {
		t.Errorf("Expected 1 fetch for stale cache, got %d", f.fetcher.callCount(url))
	}
	if sel := f.publisher.last(t); sel == nil || sel.Event.UID != "event-1" {
		t.Errorf("Expected fresh feed to be published, got %+v", sel)
	}

	// Fresh cache (1h old): fetcher must not be called, cache used
	f.cacheRepo.fetchTimes[url] = f.now.Add(-1 * time.Hour)
	f.cacheRepo.texts[url] = otherFeed

	if err := f.orchestrator.Sync(context.Background(), Request{Mode: ModeScheduled}); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if f.fetcher.callCount(url) != 1 {
		t.Errorf("Expected no additional fetch for fresh cache, got %d total", f.fetcher.callCount(url))
	}
	if sel := f.publisher.last(t); sel == nil || sel.Event.UID != "event-2" {
		t.Errorf("Expected cached feed to be published, got %+v", sel)
	}
}

func TestSyncNeverFetchedIsNotFresh(t *testing.T) {
	url := "https://example.com/cal.ics"
	f := newFixture([]database.Source{{ID: 1, URL: url, Active: true}})
	f.fetcher.responses[url] = testFeed

	// Cached text exists but last fetch time is zero: must refresh
	f.cacheRepo.texts[url] = otherFeed

	if err := f.orchestrator.Sync(context.Background(), Request{Mode: ModeScheduled}); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if f.fetcher.callCount(url) != 1 {
		t.Errorf("Expected fetch for never-fetched source, got %d", f.fetcher.callCount(url))
	}
}

func TestSyncFetchFailureResilience(t *testing.T) {
	urlA := "https://example.com/a.ics"
	urlB := "https://example.com/b.ics"
	f := newFixture([]database.Source{
		{ID: 1, URL: urlA, Active: true},
		{ID: 2, URL: urlB, Active: true},
	})

	f.fetcher.errs[urlA] = errors.New("connection reset")
	f.fetcher.responses[urlB] = otherFeed

	// A has prior cache that must survive the failed fetch
	f.cacheRepo.texts[urlA] = testFeed
	f.cacheRepo.fetchTimes[urlA] = f.now.Add(-48 * time.Hour)

	if err := f.orchestrator.Sync(context.Background(), Request{Mode: ModeScheduled}); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	// Published result reflects only B's events
	sel := f.publisher.last(t)
	if sel == nil {
		t.Fatal("Expected a published selection")
	}
	if sel.Event.UID != "event-2" {
		t.Errorf("Expected B's event, got '%s'", sel.Event.UID)
	}

	// A's prior cache is unmodified
	if text := f.cacheRepo.texts[urlA]; text != testFeed {
		t.Error("Expected A's cached text to be untouched after failed fetch")
	}
	if got := f.cacheRepo.fetchTimes[urlA]; !got.Equal(f.now.Add(-48 * time.Hour)) {
		t.Error("Expected A's last fetch time to be untouched after failed fetch")
	}
}

func TestSyncForceOneSemantics(t *testing.T) {
	urlX := "https://example.com/x.ics"
	urlY := "https://example.com/y.ics"
	f := newFixture([]database.Source{
		{ID: 1, URL: urlX, Active: true},
		{ID: 2, URL: urlY, Active: true},
	})
	f.fetcher.responses[urlX] = testFeed
	f.fetcher.responses[urlY] = otherFeed

	// X is fresh, Y is stale; ForceOne(X) must fetch X and only X
	f.cacheRepo.fetchTimes[urlX] = f.now.Add(-1 * time.Hour)
	f.cacheRepo.texts[urlX] = testFeed
	f.cacheRepo.fetchTimes[urlY] = f.now.Add(-48 * time.Hour)
	f.cacheRepo.texts[urlY] = otherFeed

	if err := f.orchestrator.Sync(context.Background(), Request{Mode: ModeForceOne, URL: urlX}); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	if f.fetcher.callCount(urlX) != 1 {
		t.Errorf("Expected ForceOne to fetch urlX, got %d calls", f.fetcher.callCount(urlX))
	}
	if f.fetcher.callCount(urlY) != 0 {
		t.Errorf("Expected ForceOne not to fetch urlY despite staleness, got %d calls", f.fetcher.callCount(urlY))
	}

	// Y still contributes from cache
	sel := f.publisher.last(t)
	if sel == nil || sel.Event.UID != "event-1" {
		t.Errorf("Unexpected selection: %+v", sel)
	}
}

func TestSyncForceAllIgnoresStaleness(t *testing.T) {
	urlA := "https://example.com/a.ics"
	urlB := "https://example.com/b.ics"
	f := newFixture([]database.Source{
		{ID: 1, URL: urlA, Active: true},
		{ID: 2, URL: urlB, Active: true},
	})
	f.fetcher.responses[urlA] = testFeed
	f.fetcher.responses[urlB] = otherFeed

	// Both fresh; ForceAll fetches anyway
	f.cacheRepo.fetchTimes[urlA] = f.now.Add(-time.Minute)
	f.cacheRepo.fetchTimes[urlB] = f.now.Add(-time.Minute)

	if err := f.orchestrator.Sync(context.Background(), Request{Mode: ModeForceAll}); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	if f.fetcher.callCount(urlA) != 1 || f.fetcher.callCount(urlB) != 1 {
		t.Errorf("Expected ForceAll to fetch both sources, got %d and %d",
			f.fetcher.callCount(urlA), f.fetcher.callCount(urlB))
	}
}

func TestSyncSkipsInactiveSources(t *testing.T) {
	url := "https://example.com/inactive.ics"
	f := newFixture([]database.Source{{ID: 1, URL: url, Active: false}})
	f.fetcher.responses[url] = testFeed
	f.cacheRepo.texts[url] = testFeed

	if err := f.orchestrator.Sync(context.Background(), Request{Mode: ModeForceAll}); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	if len(f.fetcher.calls) != 0 {
		t.Errorf("Expected inactive source never to be fetched, got %d calls", len(f.fetcher.calls))
	}
	if sel := f.publisher.last(t); sel != nil {
		t.Errorf("Expected inactive source to contribute nothing, got %+v", sel)
	}
}

func TestSyncSuccessUpdatesCache(t *testing.T) {
	url := "https://example.com/cal.ics"
	f := newFixture([]database.Source{{ID: 1, URL: url, Active: true}})
	f.fetcher.responses[url] = testFeed

	if err := f.orchestrator.Sync(context.Background(), Request{Mode: ModeScheduled}); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	if f.cacheRepo.texts[url] != testFeed {
		t.Error("Expected fetched text to be cached")
	}
	if got := f.cacheRepo.fetchTimes[url]; !got.Equal(f.now) {
		t.Errorf("Expected last fetch time %v, got %v", f.now, got)
	}
}

func TestSyncAlwaysPublishes(t *testing.T) {
	// No sources at all: the explicit no-events state is still published
	f := newFixture(nil)

	if err := f.orchestrator.Sync(context.Background(), Request{Mode: ModeScheduled}); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if len(f.publisher.published) != 1 {
		t.Fatalf("Expected exactly one publish, got %d", len(f.publisher.published))
	}
	if f.publisher.published[0] != nil {
		t.Error("Expected the no-events selection")
	}

	// All sources failing with no cache: still publishes
	url := "https://example.com/down.ics"
	f = newFixture([]database.Source{{ID: 1, URL: url, Active: true}})
	f.fetcher.errs[url] = errors.New("dns failure")

	if err := f.orchestrator.Sync(context.Background(), Request{Mode: ModeScheduled}); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if len(f.publisher.published) != 1 {
		t.Fatalf("Expected exactly one publish, got %d", len(f.publisher.published))
	}
	if f.publisher.published[0] != nil {
		t.Error("Expected the no-events selection when every source failed")
	}
}

func TestSyncSupersededSkipsPublish(t *testing.T) {
	url := "https://example.com/cal.ics"
	f := newFixture([]database.Source{{ID: 1, URL: url, Active: true}})
	f.fetcher.responses[url] = testFeed

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := f.orchestrator.Sync(ctx, Request{Mode: ModeScheduled}); err == nil {
		t.Error("Expected context error from superseded pass")
	}
	if len(f.publisher.published) != 0 {
		t.Errorf("Expected no publish from superseded pass, got %d", len(f.publisher.published))
	}
}

func TestSyncPoolingOrderAcrossSources(t *testing.T) {
	// Both sources carry an ongoing event; the first source in list order
	// must win the tie-break.
	urlA := "https://example.com/a.ics"
	urlB := "https://example.com/b.ics"
	f := newFixture([]database.Source{
		{ID: 1, URL: urlA, Active: true},
		{ID: 2, URL: urlB, Active: true},
	})

	ongoingA := `BEGIN:VEVENT
UID:ongoing-a
SUMMARY:Ongoing A
DTSTART:20240115T113000Z
DTEND:20240115T123000Z
END:VEVENT`
	ongoingB := `BEGIN:VEVENT
UID:ongoing-b
SUMMARY:Ongoing B
DTSTART:20240115T100000Z
DTEND:20240115T130000Z
END:VEVENT`

	f.fetcher.responses[urlA] = ongoingA
	f.fetcher.responses[urlB] = ongoingB

	if err := f.orchestrator.Sync(context.Background(), Request{Mode: ModeForceAll}); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	sel := f.publisher.last(t)
	if sel == nil || sel.Event.UID != "ongoing-a" {
		t.Errorf("Expected first source's ongoing event to win, got %+v", sel)
	}
}

func TestRefreshDisplayNeverFetches(t *testing.T) {
	url := "https://example.com/cal.ics"
	f := newFixture([]database.Source{{ID: 1, URL: url, Active: true}})
	f.fetcher.responses[url] = otherFeed

	// Stale cache would trigger a fetch in a sync pass; the display
	// refresh must use cache regardless.
	f.cacheRepo.texts[url] = testFeed
	f.cacheRepo.fetchTimes[url] = f.now.Add(-72 * time.Hour)

	if err := f.orchestrator.RefreshDisplay(context.Background()); err != nil {
		t.Fatalf("RefreshDisplay failed: %v", err)
	}

	if len(f.fetcher.calls) != 0 {
		t.Errorf("Expected no fetches during display refresh, got %d", len(f.fetcher.calls))
	}
	if sel := f.publisher.last(t); sel == nil || sel.Event.UID != "event-1" {
		t.Errorf("Expected cached event to be republished, got %+v", sel)
	}
}

func TestSyncSelectionDerivedFields(t *testing.T) {
	url := "https://example.com/cal.ics"
	f := newFixture([]database.Source{{ID: 1, URL: url, Active: true}})

	// Event ongoing at the fixture's noon clock: 11:30 - 12:30 UTC
	f.fetcher.responses[url] = `BEGIN:VEVENT
UID:ongoing
SUMMARY:Ongoing
DTSTART:20240115T113000Z
DTEND:20240115T123000Z
END:VEVENT`

	if err := f.orchestrator.Sync(context.Background(), Request{Mode: ModeForceAll}); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	sel := f.publisher.last(t)
	if sel == nil {
		t.Fatal("Expected a selection")
	}
	if !sel.IsOngoing {
		t.Error("Expected selection to be ongoing")
	}
	if sel.TimeRemaining != 30*time.Minute {
		t.Errorf("Expected 30m remaining until end, got %v", sel.TimeRemaining)
	}
}
