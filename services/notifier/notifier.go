package notifier

import "freelanceradar/internal/scraper"

// Notifier delivers a best-effort alert for newly observed listings.
// Implementations report delivery success and never panic past this
// boundary.
type Notifier interface {
	Notify(listings []scraper.Listing) bool
}

// Noop is the notifier used when no delivery channel is configured.
type Noop struct{}

// Notify silently drops the listings
func (Noop) Notify(listings []scraper.Listing) bool {
	return false
}
