package aggregator

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freelanceradar/internal/scraper"
	"freelanceradar/services/cache"
)

// stubScraper implements scraper.Scraper with canned output and a call counter
type stubScraper struct {
	source string
	raws   []scraper.RawListing
	err    error
	panics bool
	calls  atomic.Int64
}

var _ scraper.Scraper = (*stubScraper)(nil)

func (s *stubScraper) Fetch() ([]scraper.RawListing, error) {
	s.calls.Add(1)
	if s.panics {
		panic("selector evaluation blew up")
	}
	return s.raws, s.err
}

func (s *stubScraper) Source() string {
	return s.source
}

func (s *stubScraper) URL() string {
	return "https://example.com/" + s.source
}

func rawAt(title string, index int) scraper.RawListing {
	return scraper.RawListing{
		Title:  title,
		Link:   "https://example.com/job/" + title,
		Skills: []string{"Python"},
		Index:  index,
	}
}

func newTestAggregator(workana, freelancer *stubScraper, ttl time.Duration) (*Aggregator, cache.Service) {
	c := cache.NewMemoryCache()
	return New(c, workana, freelancer, scraper.NewRelevanceFilter(50), ttl), c
}

func TestFetchMergesAndSorts(t *testing.T) {
	workana := &stubScraper{source: scraper.SourceWorkana, raws: []scraper.RawListing{
		rawAt("w1", 0), rawAt("w2", 1),
	}}
	freelancer := &stubScraper{source: scraper.SourceFreelancer, raws: []scraper.RawListing{
		rawAt("f1", 0),
	}}
	agg, _ := newTestAggregator(workana, freelancer, time.Minute)

	res, err := agg.Fetch(SetAll, 24*time.Hour)
	require.NoError(t, err)

	require.Len(t, res.Listings, 3)
	assert.False(t, res.Cached)
	assert.Equal(t, 3, res.Count)
	assert.Equal(t, 3, res.TotalCount)
	assert.Equal(t, map[string]int{scraper.SourceWorkana: 2, scraper.SourceFreelancer: 1}, res.Breakdown)

	// Descending by timestamp
	for i := 1; i < len(res.Listings); i++ {
		assert.GreaterOrEqual(t, res.Listings[i-1].Timestamp, res.Listings[i].Timestamp)
	}

	// Source tags per origin
	bySource := map[string]int{}
	for _, l := range res.Listings {
		bySource[l.Source]++
	}
	assert.Equal(t, 2, bySource[scraper.SourceWorkana])
	assert.Equal(t, 1, bySource[scraper.SourceFreelancer])
}

func TestFetchServesFromCache(t *testing.T) {
	workana := &stubScraper{source: scraper.SourceWorkana, raws: []scraper.RawListing{rawAt("w1", 0)}}
	freelancer := &stubScraper{source: scraper.SourceFreelancer}
	agg, _ := newTestAggregator(workana, freelancer, time.Minute)

	first, err := agg.Fetch(SetAll, 24*time.Hour)
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := agg.Fetch(SetAll, 24*time.Hour)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Listings, second.Listings)

	// Extraction ran exactly once per source
	assert.Equal(t, int64(1), workana.calls.Load())
	assert.Equal(t, int64(1), freelancer.calls.Load())
}

func TestPartialSourceFailure(t *testing.T) {
	workana := &stubScraper{source: scraper.SourceWorkana, err: assert.AnError}
	freelancer := &stubScraper{source: scraper.SourceFreelancer, raws: []scraper.RawListing{
		rawAt("f1", 0), rawAt("f2", 1), rawAt("f3", 2),
	}}
	agg, _ := newTestAggregator(workana, freelancer, time.Minute)

	res, err := agg.Fetch(SetAll, 24*time.Hour)
	require.NoError(t, err)

	var real, sentinels []scraper.Listing
	for _, l := range res.Listings {
		if l.IsError() {
			sentinels = append(sentinels, l)
		} else {
			real = append(real, l)
		}
	}

	require.Len(t, real, 3)
	for _, l := range real {
		assert.Equal(t, scraper.SourceFreelancer, l.Source)
	}
	require.Len(t, sentinels, 1)
	assert.Equal(t, scraper.SourceWorkana, sentinels[0].Source)
}

func TestPanickingSourceDegrades(t *testing.T) {
	workana := &stubScraper{source: scraper.SourceWorkana, panics: true}
	freelancer := &stubScraper{source: scraper.SourceFreelancer, raws: []scraper.RawListing{rawAt("f1", 0)}}
	agg, _ := newTestAggregator(workana, freelancer, time.Minute)

	res, err := agg.Fetch(SetAll, 24*time.Hour)
	require.NoError(t, err)

	var titles []string
	for _, l := range res.Listings {
		if !l.IsError() {
			titles = append(titles, l.Title)
		}
	}
	assert.Equal(t, []string{"f1"}, titles)
}

func TestBothSourcesFailing(t *testing.T) {
	workana := &stubScraper{source: scraper.SourceWorkana, err: assert.AnError}
	freelancer := &stubScraper{source: scraper.SourceFreelancer, err: assert.AnError}
	agg, _ := newTestAggregator(workana, freelancer, time.Minute)

	res, err := agg.Fetch(SetAll, 24*time.Hour)
	require.NoError(t, err)

	// Two sentinels, no real data: a valid, displayable state
	require.Len(t, res.Listings, 2)
	for _, l := range res.Listings {
		assert.True(t, l.IsError())
	}
}

func TestAgeWindowFiltering(t *testing.T) {
	// Index 120 puts the listing two hours in the past via the positional
	// recency heuristic
	workana := &stubScraper{source: scraper.SourceWorkana, raws: []scraper.RawListing{
		rawAt("fresh", 0), rawAt("stale", 120),
	}}
	freelancer := &stubScraper{source: scraper.SourceFreelancer}
	agg, c := newTestAggregator(workana, freelancer, time.Minute)

	res, err := agg.Fetch(SetAll, time.Hour)
	require.NoError(t, err)
	require.Len(t, res.Listings, 1)
	assert.Equal(t, "fresh", res.Listings[0].Title)
	assert.Equal(t, 2, res.TotalCount)

	// The cached value keeps the unfiltered merge so other windows can reuse it
	cached, ok := c.Get(keyAll)
	assert.True(t, ok)
	assert.Len(t, cached, 2)

	wide, err := agg.Fetch(SetAll, 24*time.Hour)
	require.NoError(t, err)
	assert.True(t, wide.Cached)
	assert.Len(t, wide.Listings, 2)
	assert.Equal(t, int64(1), workana.calls.Load())
}

func TestForceRefreshInvalidatesRelatedKeys(t *testing.T) {
	workana := &stubScraper{source: scraper.SourceWorkana, raws: []scraper.RawListing{rawAt("w1", 0)}}
	freelancer := &stubScraper{source: scraper.SourceFreelancer, raws: []scraper.RawListing{rawAt("f1", 0)}}
	agg, c := newTestAggregator(workana, freelancer, time.Minute)

	_, err := agg.Fetch(SetAll, 0)
	require.NoError(t, err)
	_, err = agg.Fetch(SetWorkana, 0)
	require.NoError(t, err)
	require.Equal(t, 2, c.Size())

	res, err := agg.ForceRefresh(SetAll)
	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.Len(t, res.Listings, 2)

	// Per-source keys were dropped, only the refreshed combined key remains
	assert.Equal(t, 1, c.Size())
	_, ok := c.Get(keyWorkana)
	assert.False(t, ok)
	_, ok = c.Get(keyAll)
	assert.True(t, ok)
}

func TestUnknownSourceSet(t *testing.T) {
	agg, _ := newTestAggregator(&stubScraper{source: scraper.SourceWorkana}, &stubScraper{source: scraper.SourceFreelancer}, time.Minute)

	_, err := agg.Fetch("linkedin", 0)
	assert.Error(t, err)
	_, err = agg.ForceRefresh("linkedin")
	assert.Error(t, err)
}
