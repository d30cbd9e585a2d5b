package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"freelanceradar/helpers"
)

const freelancerBaseURL = "https://www.freelancer.com.ar"

// genericCardTextThreshold is the minimum text length for the fallback card
// heuristic when every known container selector misses.
const genericCardTextThreshold = 100

// Ranked selector groups per logical field. The first selector with a
// non-empty result wins; the upstream markup shifts between these shapes.
var freelancerSelectors = struct {
	cards       []string
	titleLink   []string
	country     []string
	skills      []string
	price       []string
	projectType []string
	published   []string
	description []string
}{
	cards:       []string{".JobSearchCard-item", ".project-item", "article.project", `[data-role="project-card"]`},
	titleLink:   []string{".JobSearchCard-primary-heading a", "h2 a", "h3 a", ".project-title a", "a[data-title]"},
	country:     []string{".JobSearchCard-primary-heading-location", ".location", ".country", `[class*="location"]`, `[class*="country"]`},
	skills:      []string{".JobSearchCard-primary-tags a", ".skill", ".tag", ".badge", `[class*="skill"]`, `[class*="tag"]`},
	price:       []string{".JobSearchCard-primary-price", ".budget", ".price", ".amount", `[class*="price"]`, `[class*="budget"]`},
	projectType: []string{".JobSearchCard-item-type", `[class*="type"]`},
	published:   []string{".JobSearchCard-primary-heading-days", "time", ".published", ".date", `[class*="time"]`, `[class*="date"]`},
	description: []string{".JobSearchCard-primary-description", ".description", `[class*="description"]`},
}

// FreelancerScraper extracts bid-project listings from server-rendered
// Freelancer search pages.
type FreelancerScraper struct {
	BaseScraper
}

// NewFreelancerScraper creates a new Freelancer scraper. Pass a nil fetch
// func to use the default HTTP fetcher.
func NewFreelancerScraper(url string, fetch FetchFunc) *FreelancerScraper {
	return &FreelancerScraper{
		BaseScraper: newBaseScraper(url, SourceFreelancer, fetch),
	}
}

// Source returns the source tag for Freelancer listings
func (s *FreelancerScraper) Source() string {
	return SourceFreelancer
}

// Fetch retrieves the search page and extracts raw listings
func (s *FreelancerScraper) Fetch() ([]RawListing, error) {
	body, err := s.fetch()
	if err != nil {
		return nil, err
	}

	doc, err := s.document(body)
	if err != nil {
		return nil, err
	}

	cards := s.findCards(doc)
	s.log.Debug().Int("cards", cards.Length()).Msg("project cards located")

	return s.processCards(cards, s.processCard), nil
}

// findCards tries the known container selectors in order, then falls back
// to any block element with substantial text so that markup drift degrades
// gracefully instead of yielding zero results.
func (s *FreelancerScraper) findCards(doc *goquery.Document) *goquery.Selection {
	for _, sel := range freelancerSelectors.cards {
		cards := doc.Find(sel)
		if cards.Length() > 0 {
			return cards
		}
	}

	s.log.Warn().Msg("no known card container matched, using generic heuristic")
	return doc.Find("article, .card").FilterFunction(func(i int, el *goquery.Selection) bool {
		return len(strings.TrimSpace(el.Text())) > genericCardTextThreshold
	})
}

func (s *FreelancerScraper) processCard(index int, card *goquery.Selection) *RawListing {
	titleSel := firstSelection(card, freelancerSelectors.titleLink)

	var title, link string
	if titleSel != nil {
		first := titleSel.First()
		title = strings.TrimSpace(first.Text())
		if title == "" {
			title = strings.TrimSpace(first.AttrOr("data-title", ""))
		}
		link = strings.TrimSpace(first.AttrOr("href", ""))
	}

	// Headings without a dedicated title anchor
	if title == "" {
		title = firstText(card, []string{"h2", "h3", "h4"})
		if link == "" {
			link = strings.TrimSpace(card.Find("a").First().AttrOr("href", ""))
		}
	}

	// A card is only worth keeping when both title and link resolved
	if title == "" || link == "" {
		return nil
	}
	link = absoluteURL(freelancerBaseURL, link)

	country := firstText(card, freelancerSelectors.country)

	var skills []string
	if skillSel := firstSelection(card, freelancerSelectors.skills); skillSel != nil {
		skillSel.Each(func(i int, el *goquery.Selection) {
			skill := strings.TrimSpace(el.Text())
			if skill != "" && len(skill) < 50 {
				skills = append(skills, skill)
			}
		})
	}

	price := strings.Join(strings.Fields(firstText(card, freelancerSelectors.price)), " ")

	projectType := ""
	typeText := strings.ToLower(firstText(card, freelancerSelectors.projectType))
	switch {
	case strings.Contains(typeText, "hourly") || strings.Contains(typeText, "hora"):
		projectType = TypeHourly
	case strings.Contains(typeText, "fixed") || strings.Contains(typeText, "fijo"):
		projectType = TypeFixed
	}

	published := ""
	if dateSel := firstSelection(card, freelancerSelectors.published); dateSel != nil {
		first := dateSel.First()
		published = strings.TrimSpace(first.Text())
		if published == "" {
			published = strings.TrimSpace(first.AttrOr("datetime", ""))
		}
	}

	description := firstText(card, freelancerSelectors.description)

	return &RawListing{
		Title:         title,
		Link:          link,
		Country:       country,
		Skills:        skills,
		Price:         price,
		ProjectType:   projectType,
		PublishedText: published,
		Description:   helpers.Truncate(description, MaxDescriptionLen),
		Index:         index,
	}
}
