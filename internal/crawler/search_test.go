package crawler

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchPageHTML = `
<!DOCTYPE html>
<html>
<body>
  <div class="search-results">
    <a class="listing-result" href="/to-rent/western-cape/cape-town/gardens/RR100001">
      <div class="listing-result__title">Modern 2 Bedroom Apartment</div>
      <div class="listing-result__price">R 12 500</div>
      <span class="listing-result__desktop-suburb">Gardens</span>
      <span class="listing-result__agent-name">Jane Smith</span>
      <img class="listing-result__logo" alt="Acme Property Group" src="/logo1.png"/>
      <div class="listing-result__features">
        <span title="Bedrooms">2</span>
        <span title="Bathrooms">1</span>
        <span title="Parking spaces">1</span>
        <span title="Floor size">65 m²</span>
      </div>
    </a>
    <a class="listing-result" href="https://www.example.co.za/to-rent/western-cape/cape-town/gardens/RR100002/">
      <div class="listing-result__title">Studio Flat</div>
      <div class="listing-result__price">R 8 000</div>
    </a>
    <a class="listing-result">
      <div class="listing-result__title">Card with no link</div>
    </a>
    <a class="listing-result" href="/to-rent/western-cape/cape-town/gardens/RR100003">
      <div class="listing-result__price">R 20 000</div>
      <div class="listing-result__features">
        <span title="Bedrooms">3</span>
        <span>no label attr</span>
      </div>
    </a>
  </div>
</body>
</html>
`

func TestExtractListings(t *testing.T) {
	extractor := NewSearchExtractor("https://www.example.co.za")

	stubs, err := extractor.ExtractListings(strings.NewReader(searchPageHTML))
	require.NoError(t, err)

	// The card without an href is skipped; the rest survive.
	require.Len(t, stubs, 3)

	first := stubs[0]
	assert.Equal(t, "RR100001", first.ID)
	assert.Equal(t, "https://www.example.co.za/to-rent/western-cape/cape-town/gardens/RR100001", first.URL)
	assert.Equal(t, "Modern 2 Bedroom Apartment", first.Title)
	assert.Equal(t, "R 12 500", first.Price)
	assert.Equal(t, "Gardens", first.Suburb)
	assert.Equal(t, "Jane Smith", first.AgentName)
	assert.Equal(t, "Acme Property Group", first.EstateAgency)
	assert.Equal(t, "2", first.Bedrooms)
	assert.Equal(t, "1", first.Bathrooms)
	assert.Equal(t, "1", first.ParkingSpaces)
	assert.Equal(t, "65 m²", first.FloorSize)

	// Trailing slash on the absolute URL does not leak into the id.
	second := stubs[1]
	assert.Equal(t, "RR100002", second.ID)
	assert.Equal(t, "Studio Flat", second.Title)
	assert.Equal(t, "", second.Suburb)
	assert.Equal(t, "", second.EstateAgency)

	// Feature spans without a title attribute are ignored.
	third := stubs[2]
	assert.Equal(t, "RR100003", third.ID)
	assert.Equal(t, "", third.Title)
	assert.Equal(t, "3", third.Bedrooms)
	assert.Equal(t, "", third.Bathrooms)
}

func TestExtractListingsIsolatesPanickingCard(t *testing.T) {
	extractor := NewSearchExtractor("https://www.example.co.za")
	extractor.inspectCard = func(s *goquery.Selection) {
		if href, _ := s.Attr("href"); strings.Contains(href, "RR100002") {
			panic("card markup changed underneath us")
		}
	}

	stubs, err := extractor.ExtractListings(strings.NewReader(searchPageHTML))
	require.NoError(t, err)

	// The panicking card and the href-less card are skipped; siblings survive.
	require.Len(t, stubs, 2)
	assert.Equal(t, "RR100001", stubs[0].ID)
	assert.Equal(t, "RR100003", stubs[1].ID)
}

func TestExtractListingsEmptyPage(t *testing.T) {
	extractor := NewSearchExtractor("https://www.example.co.za")

	stubs, err := extractor.ExtractListings(strings.NewReader("<html><body><p>No results</p></body></html>"))
	require.NoError(t, err)
	assert.Empty(t, stubs)
}
