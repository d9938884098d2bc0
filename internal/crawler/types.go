package crawler

// ListingStub is the partial record extracted from one search-result card.
// Fields hold the site's raw text; normalization happens at store time.
type ListingStub struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	Title         string `json:"title"`
	Price         string `json:"price,omitempty"`
	Suburb        string `json:"suburb,omitempty"`
	AgentName     string `json:"agent_name,omitempty"`
	EstateAgency  string `json:"estate_agency,omitempty"`
	Bedrooms      string `json:"bedrooms,omitempty"`
	Bathrooms     string `json:"bathrooms,omitempty"`
	ParkingSpaces string `json:"parking_spaces,omitempty"`
	FloorSize     string `json:"floor_size,omitempty"`
}

// DetailFields is the enrichment extracted from a listing's detail page.
// All fields are optional; a failed or missing detail fetch yields the
// zero value.
type DetailFields struct {
	Description  string `json:"description,omitempty"`
	PropertyType string `json:"property_type,omitempty"`
	ListingDate  string `json:"listing_date,omitempty"`
	Deposit      string `json:"deposit,omitempty"`
}

// SearchSelectors contains CSS selectors for the search-result page
type SearchSelectors struct {
	Card       string
	Title      string
	Price      string
	Suburb     string
	AgentName  string
	AgencyLogo string
	Features   string
}

// DetailSelectors contains CSS selectors for the listing detail page
type DetailSelectors struct {
	Description     string
	DetailItem      string
	DetailLabel     string
	PriceAdditional string
}

// DefaultSearchSelectors returns the selectors for the catalog's current
// search-result markup.
func DefaultSearchSelectors() SearchSelectors {
	return SearchSelectors{
		Card:       "a.listing-result",
		Title:      "div.listing-result__title",
		Price:      "div.listing-result__price",
		Suburb:     "span.listing-result__desktop-suburb",
		AgentName:  "span.listing-result__agent-name",
		AgencyLogo: "img.listing-result__logo",
		Features:   "div.listing-result__features span",
	}
}

// DefaultDetailSelectors returns the selectors for the catalog's current
// detail-page markup.
func DefaultDetailSelectors() DetailSelectors {
	return DetailSelectors{
		Description:     "div.listing-description__text",
		DetailItem:      "div.listing-details__item",
		DetailLabel:     "span.listing-details__label",
		PriceAdditional: "div.listing-price-display__additional-details",
	}
}
