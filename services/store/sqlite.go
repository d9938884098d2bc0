package store

import (
	"database/sql"
	"fmt"
	"time"

	"rental-harvester/config"
	"rental-harvester/helpers"
	"rental-harvester/logger"

	_ "github.com/mattn/go-sqlite3"
)

const timeFormat = time.RFC3339

const schema = `
CREATE TABLE IF NOT EXISTS listings (
	listing_id     TEXT PRIMARY KEY,
	url            TEXT,
	title          TEXT,
	price          TEXT,
	suburb         TEXT,
	agent_name     TEXT,
	estate_agency  TEXT,
	bedrooms       TEXT,
	bathrooms      TEXT,
	parking        TEXT,
	floor_size     TEXT,
	description    TEXT,
	property_type  TEXT,
	listing_date   TEXT,
	deposit        TEXT,
	province       TEXT,
	city           TEXT,
	area           TEXT,
	price_zar      INTEGER,
	deposit_zar    INTEGER,
	bedroom_count  INTEGER,
	bathroom_count INTEGER,
	parking_count  INTEGER,
	floor_size_sqm INTEGER,
	first_seen     TEXT NOT NULL,
	last_seen      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS price_history (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	listing_id  TEXT NOT NULL,
	price       TEXT,
	recorded_at TEXT NOT NULL,
	FOREIGN KEY (listing_id) REFERENCES listings (listing_id)
);

CREATE INDEX IF NOT EXISTS idx_price_history_listing ON price_history (listing_id);
`

// SQLiteStore implements Store on a single SQLite database file.
type SQLiteStore struct {
	db  *sql.DB
	log *logger.Logger
	now func() time.Time
}

// NewSQLiteStore opens (creating if necessary) the listings database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{
		db:  db,
		log: logger.ForStore(),
		now: time.Now,
	}, nil
}

// Upsert reconciles one listing inside a transaction and appends a price
// observation. Total overwrite: an absent field in the incoming record
// clears the stored one, only first_seen survives from the old row.
func (s *SQLiteStore) Upsert(listing *Listing, area config.Area) (UpsertResult, error) {
	var result UpsertResult

	listing.Province = area.Province
	listing.City = area.City
	listing.Area = area.Area

	listing.PriceZAR = helpers.ParseInt(listing.Price)
	listing.DepositZAR = helpers.ParseInt(listing.Deposit)
	listing.BedroomCount = helpers.ParseInt(listing.Bedrooms)
	listing.BathroomCount = helpers.ParseInt(listing.Bathrooms)
	listing.ParkingCount = helpers.ParseInt(listing.Parking)
	listing.FloorSizeSQM = helpers.ParseInt(listing.FloorSize)

	now := s.now().UTC()

	tx, err := s.db.Begin()
	if err != nil {
		return result, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var firstSeen string
	var oldPrice sql.NullInt64
	err = tx.QueryRow(
		"SELECT first_seen, price_zar FROM listings WHERE listing_id = ?",
		listing.ID,
	).Scan(&firstSeen, &oldPrice)

	switch {
	case err == sql.ErrNoRows:
		result.Created = true
		listing.FirstSeen = now
		listing.LastSeen = now
		_, err = tx.Exec(`
			INSERT INTO listings (
				listing_id, url, title, price, suburb, agent_name, estate_agency,
				bedrooms, bathrooms, parking, floor_size, description, property_type,
				listing_date, deposit, province, city, area,
				price_zar, deposit_zar, bedroom_count, bathroom_count, parking_count, floor_size_sqm,
				first_seen, last_seen
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			listing.ID, listing.URL, listing.Title, listing.Price, listing.Suburb,
			listing.AgentName, listing.EstateAgency, listing.Bedrooms, listing.Bathrooms,
			listing.Parking, listing.FloorSize, listing.Description, listing.PropertyType,
			listing.ListingDate, listing.Deposit, listing.Province, listing.City, listing.Area,
			nullInt(listing.PriceZAR), nullInt(listing.DepositZAR), nullInt(listing.BedroomCount),
			nullInt(listing.BathroomCount), nullInt(listing.ParkingCount), nullInt(listing.FloorSizeSQM),
			now.Format(timeFormat), now.Format(timeFormat),
		)
		if err != nil {
			return result, fmt.Errorf("failed to insert listing %s: %w", listing.ID, err)
		}

	case err != nil:
		return result, fmt.Errorf("failed to look up listing %s: %w", listing.ID, err)

	default:
		result.PriceChanged = priceChanged(oldPrice, listing.PriceZAR)
		if first, parseErr := time.Parse(timeFormat, firstSeen); parseErr == nil {
			listing.FirstSeen = first
		}
		listing.LastSeen = now
		_, err = tx.Exec(`
			UPDATE listings SET
				url = ?, title = ?, price = ?, suburb = ?, agent_name = ?, estate_agency = ?,
				bedrooms = ?, bathrooms = ?, parking = ?, floor_size = ?, description = ?,
				property_type = ?, listing_date = ?, deposit = ?, province = ?, city = ?, area = ?,
				price_zar = ?, deposit_zar = ?, bedroom_count = ?, bathroom_count = ?,
				parking_count = ?, floor_size_sqm = ?, last_seen = ?
			WHERE listing_id = ?`,
			listing.URL, listing.Title, listing.Price, listing.Suburb, listing.AgentName,
			listing.EstateAgency, listing.Bedrooms, listing.Bathrooms, listing.Parking,
			listing.FloorSize, listing.Description, listing.PropertyType, listing.ListingDate,
			listing.Deposit, listing.Province, listing.City, listing.Area,
			nullInt(listing.PriceZAR), nullInt(listing.DepositZAR), nullInt(listing.BedroomCount),
			nullInt(listing.BathroomCount), nullInt(listing.ParkingCount), nullInt(listing.FloorSizeSQM),
			now.Format(timeFormat), listing.ID,
		)
		if err != nil {
			return result, fmt.Errorf("failed to update listing %s: %w", listing.ID, err)
		}
	}

	_, err = tx.Exec(
		"INSERT INTO price_history (listing_id, price, recorded_at) VALUES (?, ?, ?)",
		listing.ID, listing.Price, now.Format(timeFormat),
	)
	if err != nil {
		return result, fmt.Errorf("failed to append price observation for %s: %w", listing.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return result, fmt.Errorf("failed to commit upsert for %s: %w", listing.ID, err)
	}

	s.log.Debug().
		Str("listing", listing.ID).
		Bool("created", result.Created).
		Bool("price_changed", result.PriceChanged).
		Msg("Listing reconciled")

	return result, nil
}

// Get returns the stored listing by id.
func (s *SQLiteStore) Get(listingID string) (*Listing, bool, error) {
	row := s.db.QueryRow(`
		SELECT listing_id, url, title, price, suburb, agent_name, estate_agency,
			bedrooms, bathrooms, parking, floor_size, description, property_type,
			listing_date, deposit, province, city, area,
			price_zar, deposit_zar, bedroom_count, bathroom_count, parking_count, floor_size_sqm,
			first_seen, last_seen
		FROM listings WHERE listing_id = ?`, listingID)

	var l Listing
	var priceZAR, depositZAR, bedrooms, bathrooms, parking, floorSize sql.NullInt64
	var firstSeen, lastSeen string

	err := row.Scan(
		&l.ID, &l.URL, &l.Title, &l.Price, &l.Suburb, &l.AgentName, &l.EstateAgency,
		&l.Bedrooms, &l.Bathrooms, &l.Parking, &l.FloorSize, &l.Description, &l.PropertyType,
		&l.ListingDate, &l.Deposit, &l.Province, &l.City, &l.Area,
		&priceZAR, &depositZAR, &bedrooms, &bathrooms, &parking, &floorSize,
		&firstSeen, &lastSeen,
	)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read listing %s: %w", listingID, err)
	}

	l.PriceZAR = intPtr(priceZAR)
	l.DepositZAR = intPtr(depositZAR)
	l.BedroomCount = intPtr(bedrooms)
	l.BathroomCount = intPtr(bathrooms)
	l.ParkingCount = intPtr(parking)
	l.FloorSizeSQM = intPtr(floorSize)
	l.FirstSeen, _ = time.Parse(timeFormat, firstSeen)
	l.LastSeen, _ = time.Parse(timeFormat, lastSeen)

	return &l, true, nil
}

// PriceHistory returns the append-only price log for a listing.
func (s *SQLiteStore) PriceHistory(listingID string) ([]PriceObservation, error) {
	rows, err := s.db.Query(
		"SELECT id, listing_id, price, recorded_at FROM price_history WHERE listing_id = ? ORDER BY id",
		listingID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read price history for %s: %w", listingID, err)
	}
	defer rows.Close()

	var observations []PriceObservation
	for rows.Next() {
		var o PriceObservation
		var recordedAt string
		if err := rows.Scan(&o.ID, &o.ListingID, &o.Price, &recordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan price observation: %w", err)
		}
		o.RecordedAt, _ = time.Parse(timeFormat, recordedAt)
		observations = append(observations, o)
	}

	return observations, rows.Err()
}

// AreaSummaries returns per-area counts and rounded average rents.
func (s *SQLiteStore) AreaSummaries() ([]AreaSummary, error) {
	rows, err := s.db.Query(`
		SELECT area, COUNT(*) AS listings, ROUND(AVG(price_zar)) AS avg_rent
		FROM listings
		GROUP BY area
		ORDER BY area`)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate areas: %w", err)
	}
	defer rows.Close()

	var summaries []AreaSummary
	for rows.Next() {
		var summary AreaSummary
		var avg sql.NullFloat64
		if err := rows.Scan(&summary.Area, &summary.Listings, &avg); err != nil {
			return nil, fmt.Errorf("failed to scan area summary: %w", err)
		}
		if avg.Valid {
			n := int(avg.Float64)
			summary.AvgRentZAR = &n
		}
		summaries = append(summaries, summary)
	}

	return summaries, rows.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func priceChanged(old sql.NullInt64, current *int) bool {
	switch {
	case !old.Valid && current == nil:
		return false
	case !old.Valid || current == nil:
		return true
	default:
		return int(old.Int64) != *current
	}
}
