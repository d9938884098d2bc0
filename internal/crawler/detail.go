package crawler

import (
	"net/http"
	"strings"

	"rental-harvester/helpers"
	"rental-harvester/pkg/errors"

	"github.com/PuerkitoBio/goquery"
)

// DetailExtractor extracts enrichment fields from a listing detail page.
type DetailExtractor struct {
	selectors DetailSelectors
}

// NewDetailExtractor creates a detail extractor with the default selectors.
func NewDetailExtractor() *DetailExtractor {
	return &DetailExtractor{selectors: DefaultDetailSelectors()}
}

// WithSelectors overrides the default selector set.
func (e *DetailExtractor) WithSelectors(s DetailSelectors) *DetailExtractor {
	e.selectors = s
	return e
}

// ExtractDetail parses a detail-page fetch result. A missing page or a
// non-2xx status yields empty fields, never an error: a listing without
// enrichment is still worth keeping.
func (e *DetailExtractor) ExtractDetail(res *helpers.FetchResult) (DetailFields, error) {
	var fields DetailFields

	if res == nil || res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return fields, nil
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return fields, errors.NewParsing("", "failed to parse detail page", err)
	}

	fields.Description = strings.TrimSpace(doc.Find(e.selectors.Description).First().Text())

	doc.Find(e.selectors.DetailItem).Each(func(_ int, item *goquery.Selection) {
		label := strings.ToLower(strings.TrimSpace(item.Find(e.selectors.DetailLabel).First().Text()))
		value := valueAfterLastColon(item.Text())
		switch {
		case strings.Contains(label, "property type"):
			fields.PropertyType = value
		case strings.Contains(label, "listed"):
			fields.ListingDate = value
		}
	})

	doc.Find(e.selectors.PriceAdditional).Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if !strings.Contains(strings.ToLower(text), "deposit") {
			return
		}
		fields.Deposit = strings.TrimSpace(strings.TrimPrefix(text, "Deposit:"))
	})

	return fields, nil
}

// valueAfterLastColon returns the text after the last colon, trimmed.
// Detail rows render as "Label: value", and values themselves never
// contain a colon on this site.
func valueAfterLastColon(text string) string {
	idx := strings.LastIndex(text, ":")
	if idx < 0 {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(text[idx+1:])
}
