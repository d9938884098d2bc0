package crawler

import (
	"fmt"
	"io"
	"strings"

	"rental-harvester/helpers"
	"rental-harvester/logger"
	"rental-harvester/pkg/errors"

	"github.com/PuerkitoBio/goquery"
)

// SearchExtractor extracts listing stubs from a rendered search-result page.
type SearchExtractor struct {
	baseURL   string
	selectors SearchSelectors
	log       *logger.Logger

	// inspectCard, when set, runs before a card is processed. Tests use
	// it to inject extraction faults.
	inspectCard func(*goquery.Selection)
}

// NewSearchExtractor creates a search extractor. baseURL is prepended to
// relative card links.
func NewSearchExtractor(baseURL string) *SearchExtractor {
	return &SearchExtractor{
		baseURL:   strings.TrimRight(baseURL, "/"),
		selectors: DefaultSearchSelectors(),
		log:       logger.ForWorker().WithField("extractor", "search"),
	}
}

// WithSelectors overrides the default selector set. Used when the site
// markup changes or in tests.
func (e *SearchExtractor) WithSelectors(s SearchSelectors) *SearchExtractor {
	e.selectors = s
	return e
}

// ExtractListings parses a search-result page and returns one stub per
// usable card. A card that cannot be processed is skipped without
// affecting its siblings.
func (e *SearchExtractor) ExtractListings(r io.Reader) ([]ListingStub, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, errors.NewParsing("", "failed to parse search page", err)
	}

	var stubs []ListingStub
	doc.Find(e.selectors.Card).Each(func(i int, s *goquery.Selection) {
		stub, err := e.extractCard(s)
		if err != nil {
			e.log.Warn().Err(err).Int("card", i).Msg("Skipping unusable listing card")
			return
		}
		stubs = append(stubs, *stub)
	})

	return stubs, nil
}

// extractCard pulls every field from one card independently, so a card
// missing a sub-element still yields a stub with the fields it has.
func (e *SearchExtractor) extractCard(s *goquery.Selection) (stub *ListingStub, err error) {
	defer func() {
		if r := recover(); r != nil {
			stub = nil
			err = fmt.Errorf("card processing panicked: %v", r)
		}
	}()

	if e.inspectCard != nil {
		e.inspectCard(s)
	}

	href, ok := s.Attr("href")
	if !ok || href == "" {
		return nil, fmt.Errorf("card has no href")
	}

	listingURL := href
	if strings.HasPrefix(href, "/") {
		listingURL = e.baseURL + href
	}

	id := helpers.LastPathSegment(listingURL)
	if id == "" {
		return nil, fmt.Errorf("card URL %q yields no listing id", listingURL)
	}

	stub = &ListingStub{
		ID:        id,
		URL:       listingURL,
		Title:     strings.TrimSpace(s.Find(e.selectors.Title).First().Text()),
		Price:     strings.TrimSpace(s.Find(e.selectors.Price).First().Text()),
		Suburb:    strings.TrimSpace(s.Find(e.selectors.Suburb).First().Text()),
		AgentName: strings.TrimSpace(s.Find(e.selectors.AgentName).First().Text()),
	}

	if alt, ok := s.Find(e.selectors.AgencyLogo).First().Attr("alt"); ok {
		stub.EstateAgency = strings.TrimSpace(alt)
	}

	s.Find(e.selectors.Features).Each(func(_ int, f *goquery.Selection) {
		label, ok := f.Attr("title")
		if !ok {
			return
		}
		value := strings.TrimSpace(f.Text())
		switch l := strings.ToLower(label); {
		case strings.Contains(l, "bedroom"):
			stub.Bedrooms = value
		case strings.Contains(l, "bathroom"):
			stub.Bathrooms = value
		case strings.Contains(l, "parking"):
			stub.ParkingSpaces = value
		case strings.Contains(l, "floor"):
			stub.FloorSize = value
		}
	})

	return stub, nil
}
