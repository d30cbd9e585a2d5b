package aggregator

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"freelanceradar/internal/scraper"
	"freelanceradar/logger"
	"freelanceradar/pkg/errors"
	"freelanceradar/services/cache"
)

// Source sets accepted by Fetch and ForceRefresh.
const (
	SetWorkana    = "workana"
	SetFreelancer = "freelancer"
	SetAll        = "all"
)

// Cache keys per source set. Cached values are the merged, age-unfiltered
// listings, so requests with different windows can share one extraction.
const (
	keyWorkana    = "workana-jobs"
	keyFreelancer = "freelancer-jobs"
	keyAll        = "all-jobs"
)

// Result is the outcome of one aggregation request.
type Result struct {
	Listings   []scraper.Listing
	Cached     bool
	Count      int
	TotalCount int
	Sources    []string
	Breakdown  map[string]int
}

// Aggregator orchestrates cache lookups, concurrent source extraction,
// normalization, filtering, merging and sorting.
type Aggregator struct {
	cache      cache.Service
	workana    scraper.Scraper
	freelancer scraper.Scraper
	filter     *scraper.RelevanceFilter
	ttl        time.Duration
	group      singleflight.Group
	log        *logger.Logger
	now        func() time.Time
}

// New creates an aggregator over the two source scrapers
func New(c cache.Service, workana, freelancer scraper.Scraper, filter *scraper.RelevanceFilter, ttl time.Duration) *Aggregator {
	return &Aggregator{
		cache:      c,
		workana:    workana,
		freelancer: freelancer,
		filter:     filter,
		ttl:        ttl,
		log:        logger.ForAggregator(),
		now:        time.Now,
	}
}

// Fetch serves listings for a source set, extracting on cache miss. The age
// window filters the response only; the cached value stays unfiltered.
// A window of zero or less disables age filtering.
func (a *Aggregator) Fetch(sourceSet string, window time.Duration) (*Result, error) {
	key, err := a.cacheKey(sourceSet)
	if err != nil {
		return nil, err
	}

	if cached, ok := a.cache.Get(key); ok {
		a.log.Debug().Str("set", sourceSet).Msg("serving from cache")
		return a.buildResult(sourceSet, cached, window, true), nil
	}

	// Concurrent misses on the same key share one extraction pass
	v, err, _ := a.group.Do(key, func() (interface{}, error) {
		merged := a.extract(sourceSet)
		a.cache.Set(key, merged, a.ttl)
		return merged, nil
	})
	if err != nil {
		return nil, err
	}

	return a.buildResult(sourceSet, v.([]scraper.Listing), window, false), nil
}

// ForceRefresh invalidates every cache key related to the source set and
// re-extracts, so later unforced requests cannot resurrect stale per-source
// entries. The returned listings are not age-filtered.
func (a *Aggregator) ForceRefresh(sourceSet string) (*Result, error) {
	key, err := a.cacheKey(sourceSet)
	if err != nil {
		return nil, err
	}

	for _, related := range a.relatedKeys(sourceSet) {
		a.cache.Delete(related)
	}

	merged := a.extract(sourceSet)
	a.cache.Set(key, merged, a.ttl)

	return a.buildResult(sourceSet, merged, 0, false), nil
}

func (a *Aggregator) cacheKey(sourceSet string) (string, error) {
	switch sourceSet {
	case SetWorkana:
		return keyWorkana, nil
	case SetFreelancer:
		return keyFreelancer, nil
	case SetAll:
		return keyAll, nil
	default:
		return "", errors.NewValidation("", fmt.Sprintf("unknown source set %q", sourceSet))
	}
}

func (a *Aggregator) relatedKeys(sourceSet string) []string {
	switch sourceSet {
	case SetWorkana:
		return []string{keyWorkana, keyAll}
	case SetFreelancer:
		return []string{keyFreelancer, keyAll}
	default:
		return []string{keyAll, keyWorkana, keyFreelancer}
	}
}

func (a *Aggregator) scrapersFor(sourceSet string) []scraper.Scraper {
	switch sourceSet {
	case SetWorkana:
		return []scraper.Scraper{a.workana}
	case SetFreelancer:
		return []scraper.Scraper{a.freelancer}
	default:
		return []scraper.Scraper{a.workana, a.freelancer}
	}
}

// extract runs every scraper of the set concurrently and merges the
// normalized output into one stable, timestamp-descending list.
func (a *Aggregator) extract(sourceSet string) []scraper.Listing {
	scrapers := a.scrapersFor(sourceSet)
	results := make([][]scraper.Listing, len(scrapers))

	var wg sync.WaitGroup
	for i, s := range scrapers {
		wg.Add(1)
		go func(i int, s scraper.Scraper) {
			defer wg.Done()
			results[i] = a.extractSource(s)
		}(i, s)
	}
	wg.Wait()

	var merged []scraper.Listing
	for _, r := range results {
		merged = append(merged, r...)
	}

	// Stable: equal timestamps keep extraction order
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp > merged[j].Timestamp
	})

	a.log.Info().Str("set", sourceSet).Int("listings", len(merged)).Msg("extraction pass complete")
	return merged
}

// extractSource runs one scraper with full failure isolation: any error or
// panic degrades this source to a single sentinel record so the other
// source's results still get served.
func (a *Aggregator) extractSource(s scraper.Scraper) (listings []scraper.Listing) {
	now := a.now()

	defer func() {
		if r := recover(); r != nil {
			a.log.Error().Str("source", s.Source()).Msgf("extraction panicked: %v", r)
			listings = []scraper.Listing{scraper.ErrorListing(s.Source(), s.URL(), fmt.Sprintf("%v", r), now)}
		}
	}()

	raws, err := s.Fetch()
	if err != nil {
		a.log.Error().Str("source", s.Source()).Err(err).Msg("extraction failed")
		return []scraper.Listing{scraper.ErrorListing(s.Source(), s.URL(), err.Error(), now)}
	}

	if s.Source() == scraper.SourceFreelancer && a.filter != nil {
		before := len(raws)
		raws = a.filter.Apply(raws)
		a.log.Debug().Int("kept", len(raws)).Int("dropped", before-len(raws)).Msg("relevance filter applied")
	}

	return scraper.NormalizeAll(raws, s.Source(), now)
}

func (a *Aggregator) buildResult(sourceSet string, merged []scraper.Listing, window time.Duration, cached bool) *Result {
	filtered := a.filterByAge(merged, window)

	breakdown := make(map[string]int, 2)
	for _, l := range merged {
		breakdown[l.Source]++
	}

	sources := []string{scraper.SourceWorkana, scraper.SourceFreelancer}
	switch sourceSet {
	case SetWorkana:
		sources = []string{scraper.SourceWorkana}
	case SetFreelancer:
		sources = []string{scraper.SourceFreelancer}
	}

	return &Result{
		Listings:   filtered,
		Cached:     cached,
		Count:      len(filtered),
		TotalCount: len(merged),
		Sources:    sources,
		Breakdown:  breakdown,
	}
}

// filterByAge drops listings older than the window. Error sentinels always
// survive so failures stay visible to the consumer.
func (a *Aggregator) filterByAge(listings []scraper.Listing, window time.Duration) []scraper.Listing {
	if window <= 0 {
		return listings
	}

	limit := a.now().Add(-window).UnixMilli()
	filtered := make([]scraper.Listing, 0, len(listings))
	for _, l := range listings {
		if l.IsError() || l.Timestamp >= limit {
			filtered = append(filtered, l)
		}
	}
	return filtered
}
