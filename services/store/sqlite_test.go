package store

import (
	"testing"
	"time"

	"rental-harvester/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testArea = config.Area{
	Province: "western-cape",
	City:     "cape-town",
	Area:     "gardens",
	URL:      "https://www.example.co.za/to-rent/western-cape/cape-town/gardens/43",
}

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUpsertCreatesListing(t *testing.T) {
	s := newTestStore(t)

	listing := &Listing{
		ID:       "RR100001",
		URL:      "https://www.example.co.za/to-rent/western-cape/cape-town/gardens/RR100001",
		Title:    "Modern 2 Bedroom Apartment",
		Price:    "R 12 500",
		Bedrooms: "2",
		Deposit:  "R 25 000",
	}

	result, err := s.Upsert(listing, testArea)
	require.NoError(t, err)
	assert.True(t, result.Created)
	assert.False(t, result.PriceChanged)

	stored, found, err := s.Get("RR100001")
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, "Modern 2 Bedroom Apartment", stored.Title)
	assert.Equal(t, "gardens", stored.Area)
	assert.Equal(t, "cape-town", stored.City)
	assert.Equal(t, "western-cape", stored.Province)
	require.NotNil(t, stored.PriceZAR)
	assert.Equal(t, 12500, *stored.PriceZAR)
	require.NotNil(t, stored.DepositZAR)
	assert.Equal(t, 25000, *stored.DepositZAR)
	require.NotNil(t, stored.BedroomCount)
	assert.Equal(t, 2, *stored.BedroomCount)
	assert.Nil(t, stored.BathroomCount)
	assert.Equal(t, stored.FirstSeen, stored.LastSeen)
}

func TestUpsertPreservesFirstSeen(t *testing.T) {
	s := newTestStore(t)

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	_, err := s.Upsert(&Listing{ID: "RR100001", Price: "R 10 000"}, testArea)
	require.NoError(t, err)

	s.now = func() time.Time { return base.Add(48 * time.Hour) }

	result, err := s.Upsert(&Listing{ID: "RR100001", Price: "R 10 000"}, testArea)
	require.NoError(t, err)
	assert.False(t, result.Created)
	assert.False(t, result.PriceChanged)

	stored, found, err := s.Get("RR100001")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, base, stored.FirstSeen)
	assert.Equal(t, base.Add(48*time.Hour), stored.LastSeen)
}

func TestUpsertTotalOverwrite(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Upsert(&Listing{
		ID:          "RR100001",
		Title:       "With description",
		Price:       "R 9 000",
		Description: "Lovely flat",
		Deposit:     "R 18 000",
	}, testArea)
	require.NoError(t, err)

	// A later harvest where the detail fetch failed: absent fields clear
	// the stored ones.
	_, err = s.Upsert(&Listing{
		ID:    "RR100001",
		Title: "With description",
		Price: "R 9 000",
	}, testArea)
	require.NoError(t, err)

	stored, found, err := s.Get("RR100001")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "", stored.Description)
	assert.Equal(t, "", stored.Deposit)
	assert.Nil(t, stored.DepositZAR)
}

func TestUpsertDetectsPriceChange(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Upsert(&Listing{ID: "RR100001", Price: "R 10 000"}, testArea)
	require.NoError(t, err)

	result, err := s.Upsert(&Listing{ID: "RR100001", Price: "R 11 000"}, testArea)
	require.NoError(t, err)
	assert.True(t, result.PriceChanged)

	// Unparseable price counts as a change away from a known one
	result, err = s.Upsert(&Listing{ID: "RR100001", Price: "Price on application"}, testArea)
	require.NoError(t, err)
	assert.True(t, result.PriceChanged)
}

func TestPriceHistoryAppendsEveryUpsert(t *testing.T) {
	s := newTestStore(t)

	for _, price := range []string{"R 10 000", "R 10 000", "R 11 000"} {
		_, err := s.Upsert(&Listing{ID: "RR100001", Price: price}, testArea)
		require.NoError(t, err)
	}

	history, err := s.PriceHistory("RR100001")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "R 10 000", history[0].Price)
	assert.Equal(t, "R 10 000", history[1].Price)
	assert.Equal(t, "R 11 000", history[2].Price)
}

func TestGetMissingListing(t *testing.T) {
	s := newTestStore(t)

	_, found, err := s.Get("nope")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAreaSummaries(t *testing.T) {
	s := newTestStore(t)

	seaPoint := config.Area{Province: "western-cape", City: "cape-town", Area: "sea-point"}

	_, err := s.Upsert(&Listing{ID: "A1", Price: "R 10 000"}, testArea)
	require.NoError(t, err)
	_, err = s.Upsert(&Listing{ID: "A2", Price: "R 14 000"}, testArea)
	require.NoError(t, err)
	_, err = s.Upsert(&Listing{ID: "B1", Price: "R 20 000"}, seaPoint)
	require.NoError(t, err)

	summaries, err := s.AreaSummaries()
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, "gardens", summaries[0].Area)
	assert.Equal(t, 2, summaries[0].Listings)
	require.NotNil(t, summaries[0].AvgRentZAR)
	assert.Equal(t, 12000, *summaries[0].AvgRentZAR)

	assert.Equal(t, "sea-point", summaries[1].Area)
	assert.Equal(t, 1, summaries[1].Listings)
}
