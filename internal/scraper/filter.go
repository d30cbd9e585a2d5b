package scraper

import (
	"strings"

	"freelanceradar/helpers"
)

// allowedKeywords marks technical listings worth keeping. The upstream
// search URL carries skill-id filters, but the server ignores them, so the
// filtering happens here.
var allowedKeywords = []string{
	"python", "javascript", "php", "html", "css", "react", "node", "vue", "angular",
	"java", "c#", "c++", "ruby", "go", "swift", "kotlin", "typescript", "sql",
	"mysql", "postgresql", "mongodb", "redis", "aws", "azure", "docker", "kubernetes",
	"api", "rest", "graphql", "git", "linux", "devops", "ci/cd", "testing",
	"jquery", "bootstrap", "tailwind", "next", "nuxt", "express", "django", "flask",
	"laravel", "spring", "nest", ".net", "android", "ios", "flutter", "react native",
	"wordpress", "shopify", "woocommerce", "magento", "prestashop", "opencart",
	"web development", "software development", "mobile development", "app development",
	"backend", "frontend", "full stack", "database", "blockchain", "machine learning",
	"desarrollo de software", "desarrollo web", "desarrollo de apps",
	"diseño web", "programador", "developer", "engineer", "ionic", "xamarin", "unity",
	"game", "crm", "erp", "ecommerce", "responsive", "ui/ux", "seo técnico",
}

// excludedKeywords marks non-technical listings. Exclusion always wins over
// inclusion, so a listing tagged both "Python" and "Marketing" is dropped.
var excludedKeywords = []string{
	"ventas", "sales", "marketing", "redacción", "writing", "translation",
	"traducción", "data entry", "entrada de datos", "virtual assistant",
	"asistente virtual", "customer service", "atención al cliente", "telemarketing",
	"lead generation", "generación de leads", "social media marketing",
	"content writing", "copywriting", "diseño de logotipos",
	"logo design", "illustration", "ilustración", "video editing", "edición de video",
	"audio", "voice", "voz", "photography", "fotografía",
}

// RelevanceFilter drops non-technical and sub-floor-budget listings from
// sources known to carry mixed categories.
type RelevanceFilter struct {
	allowed    []string
	excluded   []string
	priceFloor int
}

// NewRelevanceFilter creates a filter with the default keyword lists and the
// given minimum budget in USD.
func NewRelevanceFilter(priceFloor int) *RelevanceFilter {
	return &RelevanceFilter{
		allowed:    allowedKeywords,
		excluded:   excludedKeywords,
		priceFloor: priceFloor,
	}
}

// Keep decides whether a raw listing survives both the category and the
// budget filters. Error sentinels always survive so failures stay visible.
func (f *RelevanceFilter) Keep(raw RawListing) bool {
	if raw.Err != "" {
		return true
	}
	return f.keepRelevant(raw) && f.keepBudget(raw)
}

func (f *RelevanceFilter) keepRelevant(raw RawListing) bool {
	haystack := strings.ToLower(raw.Title + " " + raw.Description + " " + strings.Join(raw.Skills, " "))

	// Exclusion takes precedence over inclusion
	for _, keyword := range f.excluded {
		if strings.Contains(haystack, keyword) {
			return false
		}
	}

	// Without structured skills, fall back to the full haystack
	if len(raw.Skills) == 0 {
		for _, keyword := range f.allowed {
			if strings.Contains(haystack, keyword) {
				return true
			}
		}
		return false
	}

	// Match skill-by-skill in both containment directions to tolerate
	// partial or abbreviated skill names
	for _, skill := range raw.Skills {
		lowerSkill := strings.ToLower(skill)
		for _, keyword := range f.allowed {
			if strings.Contains(lowerSkill, keyword) || strings.Contains(keyword, lowerSkill) {
				return true
			}
		}
	}
	return false
}

// keepBudget applies the price floor. A listing whose price text carries no
// digits passes: unknown budget is not a reason to exclude.
func (f *RelevanceFilter) keepBudget(raw RawListing) bool {
	priceText := raw.Price
	if priceText == "" {
		priceText = raw.Budget
	}
	if priceText == "" || priceText == Unspecified {
		return true
	}

	value, ok := helpers.ParsePriceFloor(priceText)
	if !ok {
		return true
	}
	return value >= f.priceFloor
}

// Apply filters a batch of raw listings in place order
func (f *RelevanceFilter) Apply(raws []RawListing) []RawListing {
	kept := make([]RawListing, 0, len(raws))
	for _, raw := range raws {
		if f.Keep(raw) {
			kept = append(kept, raw)
		}
	}
	return kept
}
