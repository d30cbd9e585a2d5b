package scraper

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const freelancerFixture = `<html><body>
<div class="JobSearchCard-item">
	<div class="JobSearchCard-primary-heading">
		<a href="/projects/php/sitio-web-empresa">Sitio web para empresa</a>
		<span class="JobSearchCard-primary-heading-location">Argentina</span>
		<span class="JobSearchCard-primary-heading-days">hace 2 horas</span>
	</div>
	<div class="JobSearchCard-primary-description">Necesitamos un sitio institucional con panel de administración.</div>
	<div class="JobSearchCard-primary-tags">
		<a>PHP</a>
		<a>Laravel</a>
	</div>
	<div class="JobSearchCard-primary-price">USD 250 - 500</div>
	<span class="JobSearchCard-item-type">Fixed</span>
</div>
<div class="JobSearchCard-item">
	<div class="JobSearchCard-primary-heading">
		<a href="https://www.freelancer.com.ar/projects/python/bot-scraping">Bot de scraping</a>
	</div>
	<div class="JobSearchCard-primary-tags"><a>Python</a></div>
	<span class="JobSearchCard-item-type">Hourly</span>
</div>
<div class="JobSearchCard-item">
	<span>Card sin título ni enlace, debe descartarse</span>
</div>
</body></html>`

func fixedFetch(html string) FetchFunc {
	return func(url string) (io.Reader, error) {
		return strings.NewReader(html), nil
	}
}

func TestFreelancerScraperFetch(t *testing.T) {
	s := NewFreelancerScraper("https://www.freelancer.com.ar/search/projects", fixedFetch(freelancerFixture))

	raws, err := s.Fetch()
	require.NoError(t, err)
	require.Len(t, raws, 2)

	first := raws[0]
	assert.Equal(t, "Sitio web para empresa", first.Title)
	assert.Equal(t, "https://www.freelancer.com.ar/projects/php/sitio-web-empresa", first.Link)
	assert.Equal(t, "Argentina", first.Country)
	assert.Equal(t, []string{"PHP", "Laravel"}, first.Skills)
	assert.Equal(t, "USD 250 - 500", first.Price)
	assert.Equal(t, TypeFixed, first.ProjectType)
	assert.Equal(t, "hace 2 horas", first.PublishedText)
	assert.Contains(t, first.Description, "sitio institucional")
	assert.Equal(t, 0, first.Index)

	second := raws[1]
	assert.Equal(t, "Bot de scraping", second.Title)
	// Absolute links pass through unchanged
	assert.Equal(t, "https://www.freelancer.com.ar/projects/python/bot-scraping", second.Link)
	assert.Equal(t, TypeHourly, second.ProjectType)
	assert.Empty(t, second.PublishedText)
	assert.Equal(t, 1, second.Index)
}

func TestFreelancerScraperGenericFallback(t *testing.T) {
	// None of the known container selectors match, but an article with
	// substantial text and a titled link is still picked up
	html := `<html><body>
	<article>
		<h3><a href="/projects/web/tienda-online">Tienda online completa con carrito y pasarela de pagos</a></h3>
		<p>` + strings.Repeat("descripción larga ", 10) + `</p>
	</article>
	<article><a href="/x">corto</a></article>
	</body></html>`

	s := NewFreelancerScraper("https://www.freelancer.com.ar/search/projects", fixedFetch(html))

	raws, err := s.Fetch()
	require.NoError(t, err)
	require.Len(t, raws, 1)
	assert.Equal(t, "Tienda online completa con carrito y pasarela de pagos", raws[0].Title)
	assert.Equal(t, "https://www.freelancer.com.ar/projects/web/tienda-online", raws[0].Link)
}

func TestFreelancerScraperEmptyPage(t *testing.T) {
	s := NewFreelancerScraper("https://www.freelancer.com.ar/search/projects", fixedFetch("<html><body></body></html>"))

	raws, err := s.Fetch()
	require.NoError(t, err)
	assert.Empty(t, raws)
}
