package helpers

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var firstNumberRe = regexp.MustCompile(`\d+`)

// timeUnits lists the recognized relative-time units in priority order.
// The first keyword found in the text wins. The month step is a 30-day
// approximation, not calendar-accurate.
var timeUnits = []struct {
	keywords []string
	step     time.Duration
}{
	{[]string{"second", "segundo"}, time.Second},
	{[]string{"minute", "minuto"}, time.Minute},
	{[]string{"hour", "hora"}, time.Hour},
	{[]string{"day", "día", "dia"}, 24 * time.Hour},
	{[]string{"week", "semana"}, 7 * 24 * time.Hour},
	{[]string{"month", "mes"}, 30 * 24 * time.Hour},
}

// ParseRelativeTime converts a relative-time phrase ("hace 3 horas",
// "3 hours ago") into an absolute time. Text without a number or a
// recognized unit is treated as "just now".
func ParseRelativeTime(text string, now time.Time) time.Time {
	if text == "" {
		return now
	}

	lower := strings.ToLower(text)

	numberMatch := firstNumberRe.FindString(lower)
	if numberMatch == "" {
		return now
	}
	value, err := strconv.Atoi(numberMatch)
	if err != nil {
		return now
	}

	for _, unit := range timeUnits {
		for _, keyword := range unit.keywords {
			if strings.Contains(lower, keyword) {
				return now.Add(-time.Duration(value) * unit.step)
			}
		}
	}

	return now
}

// ParsePriceFloor extracts the first run of digits from a price string.
// The second return value is false when no digits are present, which a
// minimum-price filter must treat as "no floor information".
func ParsePriceFloor(text string) (int, bool) {
	match := firstNumberRe.FindString(text)
	if match == "" {
		return 0, false
	}
	value, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return value, true
}

// entityReplacer decodes the fixed entity set used by the upstream
// data-island encoding.
var entityReplacer = strings.NewReplacer(
	"&quot;", `"`,
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&#39;", "'",
	"&apos;", "'",
)

// DecodeEntities decodes the HTML entities found in attribute-embedded JSON.
func DecodeEntities(s string) string {
	return entityReplacer.Replace(s)
}

// StripHTML parses a markup fragment and returns its collapsed text content.
// Plain text passes through unchanged apart from whitespace normalization.
func StripHTML(s string) string {
	if !strings.ContainsRune(s, '<') {
		return strings.Join(strings.Fields(s), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// Truncate bounds a string to max runes.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
