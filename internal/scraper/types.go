package scraper

import "time"

// Source names as they appear in the "source" field of served listings.
const (
	SourceWorkana    = "Workana"
	SourceFreelancer = "Freelancer"
)

// Unspecified is the sentinel for a field that is legitimately absent.
const Unspecified = "No especificado"

// Project type labels.
const (
	TypeHourly = "Por hora"
	TypeFixed  = "Precio fijo"
)

const (
	// MaxSkills caps the number of skills kept per listing.
	MaxSkills = 10

	// MaxDescriptionLen bounds the description length in runes.
	MaxDescriptionLen = 300

	// IndexRecencyStep is the recency assigned per card position when a
	// source exposes no publish time: card i is treated as published
	// i steps ago. Source ordering is assumed reverse-chronological.
	IndexRecencyStep = time.Minute
)

// RawListing is a source-specific candidate record as extracted from one
// page. It is discarded after normalization.
type RawListing struct {
	Title         string
	Link          string
	Country       string
	Skills        []string
	Price         string
	Budget        string
	ProjectType   string
	PublishedText string
	Description   string
	Index         int
	Err           string
}

// Listing is the canonical record exchanged with the HTTP layer, the cache,
// the publisher, and the notifier. Price and Budget are aliases of the same
// economic value, kept in sync during normalization. Error is present only
// on sentinel records that surface an extraction failure.
type Listing struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Link          string   `json:"link"`
	Country       string   `json:"country"`
	Skills        []string `json:"skills"`
	Price         string   `json:"price"`
	Budget        string   `json:"budget"`
	Type          string   `json:"type"`
	Source        string   `json:"source"`
	Timestamp     int64    `json:"timestamp"`
	PublishedDate string   `json:"publishedDate"`
	Description   string   `json:"description"`
	ScrapedAt     string   `json:"scrapedAt"`
	Error         string   `json:"error,omitempty"`
}

// IsError reports whether the listing is a surfaced failure rather than data.
func (l Listing) IsError() bool {
	return l.Error != ""
}

// Scraper is the contract for one upstream source extractor.
type Scraper interface {
	// Fetch retrieves and extracts raw candidate listings from the source
	Fetch() ([]RawListing, error)

	// Source returns the source name used to tag listings
	Source() string

	// URL returns the upstream page URL, used on sentinel error records
	URL() string
}
