package store

import (
	"time"

	"rental-harvester/config"
)

// Listing is the full reconciled record for one rental listing. Raw site
// text and normalized integer projections are kept side by side; nil
// projections mean the site text carried no number.
type Listing struct {
	ID           string `json:"id"`
	URL          string `json:"url"`
	Title        string `json:"title"`
	Price        string `json:"price,omitempty"`
	Suburb       string `json:"suburb,omitempty"`
	AgentName    string `json:"agent_name,omitempty"`
	EstateAgency string `json:"estate_agency,omitempty"`
	Bedrooms     string `json:"bedrooms,omitempty"`
	Bathrooms    string `json:"bathrooms,omitempty"`
	Parking      string `json:"parking,omitempty"`
	FloorSize    string `json:"floor_size,omitempty"`
	Description  string `json:"description,omitempty"`
	PropertyType string `json:"property_type,omitempty"`
	ListingDate  string `json:"listing_date,omitempty"`
	Deposit      string `json:"deposit,omitempty"`

	// Location labels stamped from the traversal area
	Province string `json:"province"`
	City     string `json:"city"`
	Area     string `json:"area"`

	// Normalized projections
	PriceZAR      *int `json:"price_zar,omitempty"`
	DepositZAR    *int `json:"deposit_zar,omitempty"`
	BedroomCount  *int `json:"bedroom_count,omitempty"`
	BathroomCount *int `json:"bathroom_count,omitempty"`
	ParkingCount  *int `json:"parking_count,omitempty"`
	FloorSizeSQM  *int `json:"floor_size_sqm,omitempty"`

	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
}

// PriceObservation is one row of the append-only price log.
type PriceObservation struct {
	ID         int64
	ListingID  string
	Price      string
	RecordedAt time.Time
}

// UpsertResult reports what an upsert did, for event publishing.
type UpsertResult struct {
	Created      bool
	PriceChanged bool
}

// AreaSummary is one aggregate row for the report job.
type AreaSummary struct {
	Area       string
	Listings   int
	AvgRentZAR *int
}

// Store persists listings and their price history.
type Store interface {
	// Upsert reconciles one harvested listing. An existing record keeps
	// its first_seen and has every other field overwritten; a new record
	// gets first_seen = last_seen = now. Every call appends one price
	// observation.
	Upsert(listing *Listing, area config.Area) (UpsertResult, error)

	// Get returns the stored listing, with found=false when absent.
	Get(listingID string) (*Listing, bool, error)

	// PriceHistory returns the price log for a listing, oldest first.
	PriceHistory(listingID string) ([]PriceObservation, error)

	// AreaSummaries returns per-area listing counts and average rents.
	AreaSummaries() ([]AreaSummary, error)

	// Close releases the underlying database.
	Close() error
}
