package scraper

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"freelanceradar/helpers"
)

const (
	workanaBaseURL     = "https://www.workana.com"
	workanaJobTemplate = workanaBaseURL + "/job/"
)

// The listings live in a client-framework data island: a tag attribute whose
// value is HTML-entity-encoded JSON. Both quoting styles occur in the wild.
var workanaIslandRe = regexp.MustCompile(`projects\s*=\s*(?:"([^"]+)"|'([^']+)')`)

// skillNameKeys is the priority order of name-bearing properties tried when
// a skill arrives as an object instead of a plain string.
var skillNameKeys = []string{"name", "label", "title", "value"}

// workanaProject mirrors one element of the decoded island array. Fields
// with shifting shapes stay raw and are probed during extraction.
type workanaProject struct {
	Title       string            `json:"title"`
	Slug        string            `json:"slug"`
	Country     json.RawMessage   `json:"country"`
	Skills      []json.RawMessage `json:"skills"`
	Budget      json.RawMessage   `json:"budget"`
	Description string            `json:"description"`
}

// WorkanaScraper extracts job listings from the JSON data island embedded in
// Workana's job-search page.
type WorkanaScraper struct {
	BaseScraper
}

// NewWorkanaScraper creates a new Workana scraper. Pass a nil fetch func to
// use the default HTTP fetcher.
func NewWorkanaScraper(url string, fetch FetchFunc) *WorkanaScraper {
	return &WorkanaScraper{
		BaseScraper: newBaseScraper(url, SourceWorkana, fetch),
	}
}

// Source returns the source tag for Workana listings
func (s *WorkanaScraper) Source() string {
	return SourceWorkana
}

// Fetch retrieves the page and extracts listings from the data island.
// An absent or malformed island yields an empty slice, never an error:
// markup drift on one source must not look like a hard failure.
func (s *WorkanaScraper) Fetch() ([]RawListing, error) {
	body, err := s.fetch()
	if err != nil {
		return nil, err
	}

	html, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read page body: %w", err)
	}

	projects, ok := s.decodeIsland(string(html))
	if !ok {
		return []RawListing{}, nil
	}

	listings := make([]RawListing, 0, len(projects))
	for i, p := range projects {
		if raw := s.processProject(i, p); raw != nil {
			listings = append(listings, *raw)
		}
	}
	return listings, nil
}

// decodeIsland locates the projects attribute, decodes its entity-encoded
// value, and parses the JSON array.
func (s *WorkanaScraper) decodeIsland(html string) ([]workanaProject, bool) {
	match := workanaIslandRe.FindStringSubmatch(html)
	if match == nil {
		s.log.Warn().Msg("projects data island not found in page")
		return nil, false
	}

	encoded := match[1]
	if encoded == "" {
		encoded = match[2]
	}

	var projects []workanaProject
	if err := json.Unmarshal([]byte(helpers.DecodeEntities(encoded)), &projects); err != nil {
		s.log.Warn().Err(err).Msg("projects data island is not valid JSON")
		return nil, false
	}
	return projects, true
}

func (s *WorkanaScraper) processProject(index int, p workanaProject) *RawListing {
	title, embeddedHref := titleFromMarkup(p.Title)
	if title == "" || title == Unspecified {
		return nil
	}

	link := ""
	if p.Slug != "" {
		link = workanaJobTemplate + p.Slug
	} else if embeddedHref != "" {
		link = absoluteURL(workanaBaseURL, embeddedHref)
	}
	if link == "" {
		return nil
	}

	skills := make([]string, 0, len(p.Skills))
	for _, rawSkill := range p.Skills {
		if name := skillName(rawSkill); name != "" {
			skills = append(skills, name)
		}
	}

	return &RawListing{
		Title:       title,
		Link:        link,
		Country:     stringOrNamed(p.Country),
		Skills:      skills,
		Budget:      budgetText(p.Budget),
		Description: helpers.Truncate(helpers.StripHTML(p.Description), MaxDescriptionLen),
		Index:       index,
	}
}

// titleFromMarkup strips embedded markup from a title field. When a nested
// tag carries a title attribute longer than the rendered text, the attribute
// wins: the rendered text is often elided. The first href found inside the
// markup is returned as a link fallback.
func titleFromMarkup(raw string) (title, href string) {
	if raw == "" {
		return "", ""
	}
	if !strings.ContainsRune(raw, '<') {
		return strings.TrimSpace(raw), ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return strings.TrimSpace(raw), ""
	}

	title = strings.Join(strings.Fields(doc.Text()), " ")
	if attr := strings.TrimSpace(doc.Find("[title]").First().AttrOr("title", "")); len(attr) > len(title) {
		title = attr
	}
	href = doc.Find("a[href]").First().AttrOr("href", "")
	return title, href
}

// skillName resolves the heterogeneous skill shapes: plain strings, or
// objects exposing one of several name-bearing properties.
func skillName(raw json.RawMessage) string {
	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return strings.TrimSpace(plain)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return ""
	}
	for _, key := range skillNameKeys {
		if val, ok := obj[key]; ok {
			var name string
			if err := json.Unmarshal(val, &name); err == nil && strings.TrimSpace(name) != "" {
				return strings.TrimSpace(name)
			}
		}
	}
	return ""
}

// stringOrNamed accepts either a plain string or an object with a name field.
func stringOrNamed(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return strings.TrimSpace(plain)
	}

	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return strings.TrimSpace(obj.Name)
	}
	return ""
}

// budgetText renders the budget field, which arrives as a preformatted
// string, a bare number, or an object with minimum/maximum amounts.
func budgetText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return strings.TrimSpace(plain)
	}

	var amount float64
	if err := json.Unmarshal(raw, &amount); err == nil {
		return fmt.Sprintf("USD %.0f", amount)
	}

	var ranged struct {
		Minimum  float64 `json:"minimum"`
		Maximum  float64 `json:"maximum"`
		Currency string  `json:"currency"`
	}
	if err := json.Unmarshal(raw, &ranged); err == nil && (ranged.Minimum > 0 || ranged.Maximum > 0) {
		currency := ranged.Currency
		if currency == "" {
			currency = "USD"
		}
		if ranged.Maximum > ranged.Minimum {
			return fmt.Sprintf("%s %.0f - %.0f", currency, ranged.Minimum, ranged.Maximum)
		}
		return fmt.Sprintf("%s %.0f", currency, ranged.Minimum)
	}
	return ""
}
