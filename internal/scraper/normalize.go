package scraper

import (
	"fmt"
	"strings"
	"time"

	"freelanceradar/helpers"
)

// Normalize maps a source-specific raw listing into the canonical schema.
// The input is never mutated. Price and budget are filled from whichever is
// present; the sentinel lands on both only when neither is. Records carrying
// an extraction error keep it verbatim.
func Normalize(raw RawListing, source string, now time.Time) Listing {
	price := raw.Price
	budget := raw.Budget
	if price == "" {
		price = budget
	}
	if budget == "" {
		budget = price
	}
	if price == "" {
		price = Unspecified
		budget = Unspecified
	}

	country := raw.Country
	if country == "" {
		country = Unspecified
	}

	projectType := raw.ProjectType
	if projectType == "" {
		projectType = Unspecified
	}

	skills := raw.Skills
	if len(skills) > MaxSkills {
		skills = skills[:MaxSkills]
	}
	skills = append([]string(nil), skills...)
	if skills == nil {
		skills = []string{}
	}

	var timestamp time.Time
	published := raw.PublishedText
	if published == "" {
		// Earlier cards are treated as more recent when the source
		// exposes no publish time
		timestamp = now.Add(-time.Duration(raw.Index) * IndexRecencyStep)
		published = positionLabel(raw.Index)
	} else {
		timestamp = helpers.ParseRelativeTime(published, now)
	}

	return Listing{
		ID:            fmt.Sprintf("%s-%d-%d", strings.ToLower(source), now.UnixMilli(), raw.Index),
		Title:         raw.Title,
		Link:          raw.Link,
		Country:       country,
		Skills:        skills,
		Price:         price,
		Budget:        budget,
		Type:          projectType,
		Source:        source,
		Timestamp:     timestamp.UnixMilli(),
		PublishedDate: published,
		Description:   helpers.Truncate(helpers.StripHTML(raw.Description), MaxDescriptionLen),
		ScrapedAt:     now.UTC().Format(time.RFC3339),
		Error:         raw.Err,
	}
}

// NormalizeAll normalizes a batch extracted in one pass
func NormalizeAll(raws []RawListing, source string, now time.Time) []Listing {
	listings := make([]Listing, 0, len(raws))
	for _, raw := range raws {
		listings = append(listings, Normalize(raw, source, now))
	}
	return listings
}

// ErrorListing builds the sentinel record surfaced when a whole extraction
// pass fails. It rides the normal record shape; the error field is the
// discriminator.
func ErrorListing(source, url, message string, now time.Time) Listing {
	return Listing{
		ID:            fmt.Sprintf("error-%s-1", strings.ToLower(source)),
		Title:         fmt.Sprintf("Error al obtener trabajos de %s", source),
		Link:          url,
		Country:       "N/A",
		Skills:        []string{},
		Price:         "N/A",
		Budget:        "N/A",
		Type:          "N/A",
		Source:        source,
		Timestamp:     now.UnixMilli(),
		PublishedDate: "Ahora",
		ScrapedAt:     now.UTC().Format(time.RFC3339),
		Error:         message,
	}
}

func positionLabel(index int) string {
	if index == 0 {
		return "hace 1 minuto"
	}
	return fmt.Sprintf("hace %d minutos", index+1)
}
