package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arodriguez/craigwatch/internal/digest"
	"arodriguez/craigwatch/internal/listing"
	"arodriguez/craigwatch/internal/search"
)

// MockFetcher implements ListingFetcher for testing
type MockFetcher struct {
	byLocation map[string][]listing.Candidate
	errs       map[string]error
	calls      []string
}

var _ ListingFetcher = (*MockFetcher)(nil)

func (m *MockFetcher) Fetch(_ context.Context, target search.QueryTarget) ([]listing.Candidate, error) {
	m.calls = append(m.calls, target.Location)
	if err := m.errs[target.Location]; err != nil {
		return nil, err
	}
	return m.byLocation[target.Location], nil
}

// MockEnricher implements Enricher for testing
type MockEnricher struct {
	colors map[string]string
	calls  []string
}

var _ Enricher = (*MockEnricher)(nil)

func (m *MockEnricher) Enrich(detailURL string) string {
	m.calls = append(m.calls, detailURL)
	if color, ok := m.colors[detailURL]; ok {
		return color
	}
	return listing.DefaultPaintColor
}

// MockStore implements SeenStore in memory for testing
type MockStore struct {
	seen    map[string]struct{}
	order   []string
	saves   int
	saveErr error
}

var _ SeenStore = (*MockStore)(nil)

func NewMockStore(preseeded ...string) *MockStore {
	s := &MockStore{seen: make(map[string]struct{})}
	for _, u := range preseeded {
		s.Add(u)
	}
	return s
}

func (m *MockStore) Contains(rawURL string) bool {
	_, ok := m.seen[listing.NormalizeURL(rawURL)]
	return ok
}

func (m *MockStore) Add(rawURL string) {
	key := listing.NormalizeURL(rawURL)
	if _, ok := m.seen[key]; ok {
		return
	}
	m.seen[key] = struct{}{}
	m.order = append(m.order, key)
}

func (m *MockStore) Save() error {
	m.saves++
	return m.saveErr
}

// MockNotifier implements notifier.Notifier for testing
type MockNotifier struct {
	reports  []*digest.Report
	failures int // fail this many Send calls before succeeding
	attempts int
}

func (m *MockNotifier) Send(report *digest.Report) error {
	m.attempts++
	if m.attempts <= m.failures {
		return errors.New("smtp unavailable")
	}
	m.reports = append(m.reports, report)
	return nil
}

func sedanCriteria(blacklist ...string) *search.Criteria {
	return &search.Criteria{
		Locations:   []string{"metro-a"},
		Categories:  []string{"sedan"},
		Blacklist:   blacklist,
		URLTemplate: "https://{location}.craigslist.org/search/cta",
	}
}

func newTestPipeline(criteria *search.Criteria, f *MockFetcher, e *MockEnricher, store *MockStore, n *MockNotifier) *Pipeline {
	return New(criteria, f, e, store, digest.NewComposer(), n, 3, time.Millisecond)
}

// Scenario from the design notes: one clean listing survives, the
// blacklisted one is discarded before enrichment.
func TestCycleBlacklistScenario(t *testing.T) {
	criteria := sedanCriteria("salvage")
	f := &MockFetcher{byLocation: map[string][]listing.Candidate{
		"metro-a": {
			{Title: "2019 sedan clean", DetailURL: "https://metro-a.craigslist.org/cto/d/1.html", Category: "sedan"},
			{Title: "2020 sedan salvage title", DetailURL: "https://metro-a.craigslist.org/cto/d/2.html", Category: "sedan"},
		},
	}}
	e := &MockEnricher{colors: map[string]string{"https://metro-a.craigslist.org/cto/d/1.html": "blue"}}
	store := NewMockStore()
	n := &MockNotifier{}

	require.NoError(t, newTestPipeline(criteria, f, e, store, n).RunCycle(context.Background()))

	require.Len(t, n.reports, 1)
	html := n.reports[0].HTML
	assert.Contains(t, html, "2019 sedan clean")
	assert.NotContains(t, html, "salvage title", "blacklisted listing never appears in the report")

	assert.Equal(t, []string{"https://metro-a.craigslist.org/cto/d/1.html"}, e.calls,
		"blacklisted listing never triggers an enrichment fetch")

	assert.Equal(t, []string{"https://metro-a.craigslist.org/cto/d/1.html"}, store.order,
		"store contains exactly the surviving detail URL")
	assert.Equal(t, 1, store.saves)
}

// Scenario from the design notes: a previously seen URL is excluded and the
// store content does not change.
func TestCycleCrossRunDedupScenario(t *testing.T) {
	seenURL := "https://metro-a.craigslist.org/cto/d/1.html"
	criteria := sedanCriteria()
	f := &MockFetcher{byLocation: map[string][]listing.Candidate{
		"metro-a": {
			{Title: "2019 sedan clean", DetailURL: "HTTPS://Metro-A.craigslist.org/cto/d/1.html", Category: "sedan"},
		},
	}}
	e := &MockEnricher{}
	store := NewMockStore(seenURL)
	n := &MockNotifier{}

	require.NoError(t, newTestPipeline(criteria, f, e, store, n).RunCycle(context.Background()))

	assert.Empty(t, n.reports, "nothing new, no digest")
	assert.Empty(t, e.calls, "seen listing never triggers enrichment")
	assert.Equal(t, []string{seenURL}, store.order, "store content unchanged, no duplicate")
	assert.Equal(t, 1, store.saves, "store still persisted at cycle end")
}

func TestCycleEnrichmentFailureStillReports(t *testing.T) {
	criteria := sedanCriteria()
	f := &MockFetcher{byLocation: map[string][]listing.Candidate{
		"metro-a": {
			{Title: "2019 sedan clean", DetailURL: "https://x/1", Category: "sedan"},
		},
	}}
	// MockEnricher without a mapping simulates a failed enrichment:
	// it returns the default color.
	e := &MockEnricher{}
	store := NewMockStore()
	n := &MockNotifier{}

	require.NoError(t, newTestPipeline(criteria, f, e, store, n).RunCycle(context.Background()))

	require.Len(t, n.reports, 1)
	assert.Contains(t, n.reports[0].HTML, "2019 sedan clean")
	assert.Contains(t, n.reports[0].HTML, "color:orange;", "default color styles the link")
}

func TestCycleIntraRunDedupAcrossTargets(t *testing.T) {
	criteria := &search.Criteria{
		Locations:   []string{"metro-a", "metro-b"},
		Categories:  []string{"sedan"},
		URLTemplate: "https://{location}.craigslist.org/search/cta",
	}
	shared := listing.Candidate{Title: "2019 sedan clean", DetailURL: "https://x/1", Category: "sedan"}
	f := &MockFetcher{byLocation: map[string][]listing.Candidate{
		"metro-a": {shared},
		"metro-b": {shared},
	}}
	e := &MockEnricher{}
	store := NewMockStore()
	n := &MockNotifier{}

	require.NoError(t, newTestPipeline(criteria, f, e, store, n).RunCycle(context.Background()))

	assert.Equal(t, []string{"metro-a", "metro-b"}, f.calls)
	assert.Len(t, e.calls, 1, "shared listing enriched once")
	require.Len(t, n.reports, 1)
	assert.Equal(t, 1, len(store.order))
}

func TestCycleFetchErrorSkipsTargetOnly(t *testing.T) {
	criteria := &search.Criteria{
		Locations:   []string{"metro-a", "metro-b"},
		Categories:  []string{"sedan"},
		URLTemplate: "https://{location}.craigslist.org/search/cta",
	}
	f := &MockFetcher{
		byLocation: map[string][]listing.Candidate{
			"metro-b": {{Title: "2019 sedan clean", DetailURL: "https://x/1", Category: "sedan"}},
		},
		errs: map[string]error{"metro-a": errors.New("fetch failed after retries")},
	}
	e := &MockEnricher{}
	store := NewMockStore()
	n := &MockNotifier{}

	require.NoError(t, newTestPipeline(criteria, f, e, store, n).RunCycle(context.Background()))

	require.Len(t, n.reports, 1, "surviving target still produces a digest")
	assert.Contains(t, n.reports[0].HTML, "2019 sedan clean")
}

func TestCycleEmptyAccumulationSkipsNotifyButPersists(t *testing.T) {
	criteria := sedanCriteria()
	f := &MockFetcher{byLocation: map[string][]listing.Candidate{"metro-a": nil}}
	e := &MockEnricher{}
	store := NewMockStore()
	n := &MockNotifier{}

	require.NoError(t, newTestPipeline(criteria, f, e, store, n).RunCycle(context.Background()))

	assert.Zero(t, n.attempts, "no digest for an empty cycle")
	assert.Equal(t, 1, store.saves, "store persisted regardless")
}

func TestCycleNotifierRetriedThenSucceeds(t *testing.T) {
	criteria := sedanCriteria()
	f := &MockFetcher{byLocation: map[string][]listing.Candidate{
		"metro-a": {{Title: "2019 sedan clean", DetailURL: "https://x/1", Category: "sedan"}},
	}}
	store := NewMockStore()
	n := &MockNotifier{failures: 2}

	require.NoError(t, newTestPipeline(criteria, f, &MockEnricher{}, store, n).RunCycle(context.Background()))

	assert.Equal(t, 3, n.attempts)
	assert.Len(t, n.reports, 1)
}

func TestCyclePersistFailureIsNonFatal(t *testing.T) {
	criteria := sedanCriteria()
	f := &MockFetcher{byLocation: map[string][]listing.Candidate{
		"metro-a": {{Title: "2019 sedan clean", DetailURL: "https://x/1", Category: "sedan"}},
	}}
	store := NewMockStore()
	store.saveErr = errors.New("disk full")
	n := &MockNotifier{}

	err := newTestPipeline(criteria, f, &MockEnricher{}, store, n).RunCycle(context.Background())
	assert.NoError(t, err, "a failed store write is logged, never fatal")
	assert.Len(t, n.reports, 1)
}

func TestCycleNotifierAbandonedStillMarksSeen(t *testing.T) {
	criteria := sedanCriteria()
	f := &MockFetcher{byLocation: map[string][]listing.Candidate{
		"metro-a": {{Title: "2019 sedan clean", DetailURL: "https://x/1", Category: "sedan"}},
	}}
	store := NewMockStore()
	n := &MockNotifier{failures: 99}

	require.NoError(t, newTestPipeline(criteria, f, &MockEnricher{}, store, n).RunCycle(context.Background()))

	assert.Equal(t, 3, n.attempts, "bounded retry, then abandoned for the cycle")
	assert.Empty(t, n.reports)
	assert.True(t, store.Contains("https://x/1"),
		"listing stays marked seen even though delivery failed")
	assert.Equal(t, 1, store.saves)
}
