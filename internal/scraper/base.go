package scraper

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"freelanceradar/helpers"
	"freelanceradar/logger"
)

// FetchFunc retrieves the raw page body for a URL. Injected in tests.
type FetchFunc func(url string) (io.Reader, error)

// BaseScraper provides common functionality for all source scrapers
type BaseScraper struct {
	PageURL   string
	fetchFunc FetchFunc
	log       *logger.Logger
}

func newBaseScraper(url, source string, fetch FetchFunc) BaseScraper {
	if fetch == nil {
		fetch = helpers.FetchWithBrowserHeaders
	}
	return BaseScraper{
		PageURL:   url,
		fetchFunc: fetch,
		log:       logger.ForScraper(source),
	}
}

// URL returns the upstream page URL
func (b *BaseScraper) URL() string {
	return b.PageURL
}

func (b *BaseScraper) fetch() (io.Reader, error) {
	return b.fetchFunc(b.PageURL)
}

// document creates a goquery document from a reader
func (b *BaseScraper) document(reader io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, fmt.Errorf("html parse error: %w", err)
	}
	return doc, nil
}

// processCards runs the processor over every card concurrently while keeping
// source order, so positional-recency timestamps stay consistent. A panic in
// one card is logged and skips that card only.
func (b *BaseScraper) processCards(cards *goquery.Selection, processor func(int, *goquery.Selection) *RawListing) []RawListing {
	results := make([]*RawListing, cards.Length())
	var wg sync.WaitGroup

	cards.Each(func(i int, s *goquery.Selection) {
		wg.Add(1)
		go func(i int, s *goquery.Selection) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					b.log.Warn().Int("card", i).Msgf("card processing failed: %v", r)
				}
			}()
			results[i] = processor(i, s)
		}(i, s)
	})
	wg.Wait()

	listings := make([]RawListing, 0, len(results))
	for _, r := range results {
		if r != nil {
			listings = append(listings, *r)
		}
	}
	return listings
}

// firstText tries each selector in order within the card and returns the
// trimmed text of the first non-empty match.
func firstText(card *goquery.Selection, selectors []string) string {
	for _, sel := range selectors {
		text := strings.TrimSpace(card.Find(sel).First().Text())
		if text != "" {
			return text
		}
	}
	return ""
}

// firstSelection tries each selector in order and returns the first
// selection that matches at least one element.
func firstSelection(card *goquery.Selection, selectors []string) *goquery.Selection {
	for _, sel := range selectors {
		found := card.Find(sel)
		if found.Length() > 0 {
			return found
		}
	}
	return nil
}

// absoluteURL prefixes base onto relative links. Links that already carry a
// scheme pass through unchanged.
func absoluteURL(base, link string) string {
	if link == "" || strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
		return link
	}
	if !strings.HasPrefix(link, "/") {
		link = "/" + link
	}
	return base + link
}
