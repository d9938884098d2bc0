package crawler

import (
	"net/http"
	"strings"
	"testing"

	"rental-harvester/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const detailPageHTML = `
<!DOCTYPE html>
<html>
<body>
  <div class="listing-price-display__additional-details">Deposit: R 25 000</div>
  <div class="listing-description__text">
    Sunny two bedroom apartment close to the promenade.
  </div>
  <div class="listing-details">
    <div class="listing-details__item"><span class="listing-details__label">Property type:</span> Apartment</div>
    <div class="listing-details__item"><span class="listing-details__label">Listed:</span> 12 Aug 2026</div>
    <div class="listing-details__item"><span class="listing-details__label">Erf size:</span> 120 m²</div>
  </div>
</body>
</html>
`

func fetchResult(status int, body string) *helpers.FetchResult {
	return &helpers.FetchResult{StatusCode: status, Body: strings.NewReader(body)}
}

func TestExtractDetail(t *testing.T) {
	extractor := NewDetailExtractor()

	fields, err := extractor.ExtractDetail(fetchResult(http.StatusOK, detailPageHTML))
	require.NoError(t, err)

	assert.Equal(t, "Sunny two bedroom apartment close to the promenade.", fields.Description)
	assert.Equal(t, "Apartment", fields.PropertyType)
	assert.Equal(t, "12 Aug 2026", fields.ListingDate)
	assert.Equal(t, "R 25 000", fields.Deposit)
}

func TestExtractDetailNonOKStatus(t *testing.T) {
	extractor := NewDetailExtractor()

	fields, err := extractor.ExtractDetail(fetchResult(http.StatusNotFound, "not found"))
	require.NoError(t, err)
	assert.Equal(t, DetailFields{}, fields)
}

func TestExtractDetailNilResult(t *testing.T) {
	extractor := NewDetailExtractor()

	fields, err := extractor.ExtractDetail(nil)
	require.NoError(t, err)
	assert.Equal(t, DetailFields{}, fields)
}

func TestExtractDetailMissingSections(t *testing.T) {
	extractor := NewDetailExtractor()

	fields, err := extractor.ExtractDetail(fetchResult(http.StatusOK, "<html><body><p>bare page</p></body></html>"))
	require.NoError(t, err)
	assert.Equal(t, DetailFields{}, fields)
}

func TestExtractDetailIgnoresNonDepositAdditionalDetails(t *testing.T) {
	extractor := NewDetailExtractor()

	html := `<html><body>
      <div class="listing-price-display__additional-details">Levy: R 1 200</div>
    </body></html>`
	fields, err := extractor.ExtractDetail(fetchResult(http.StatusOK, html))
	require.NoError(t, err)
	assert.Equal(t, "", fields.Deposit)
}
