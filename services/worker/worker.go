package worker

import (
	"context"
	"encoding/json"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"rental-harvester/config"
	"rental-harvester/helpers"
	"rental-harvester/internal/crawler"
	"rental-harvester/logger"
	"rental-harvester/services/cache"
	"rental-harvester/services/publisher"
	"rental-harvester/services/store"
)

// cycleDedupTTL garbage-collects dedup marks from a shared memcached.
// Marks are keyed by cycle id, so the TTL only bounds their lifetime,
// it never carries them into the next traversal.
const cycleDedupTTL = 2 * time.Hour

// PageSource renders search pages and exports the browser session.
type PageSource interface {
	RenderSearchPage(ctx context.Context, areaURL string, page int) (string, error)
	SessionSeed(ctx context.Context) (helpers.SessionSeed, error)
}

// DetailFetcher fetches one listing detail page.
type DetailFetcher interface {
	Fetch(url string) (*helpers.FetchResult, error)
}

// SessionFactory builds a detail fetcher from a browser session seed.
type SessionFactory func(seed helpers.SessionSeed, siteURL string) (DetailFetcher, error)

// Harvester drives the traversal: renders each area's pages in order,
// extracts and enriches listings, and reconciles them into the store.
type Harvester struct {
	cfg        *config.Config
	areas      []config.Area
	source     PageSource
	search     *crawler.SearchExtractor
	detail     *crawler.DetailExtractor
	store      store.Store
	cache      cache.CacheService
	publisher  publisher.Publisher
	newSession SessionFactory
	log        *logger.Logger
	rnd        *rand.Rand
	cycleID    string
}

// NewHarvester creates a harvester. publisher may be nil to disable
// event publishing.
func NewHarvester(
	cfg *config.Config,
	areas []config.Area,
	source PageSource,
	search *crawler.SearchExtractor,
	detail *crawler.DetailExtractor,
	st store.Store,
	cacheSvc cache.CacheService,
	pub publisher.Publisher,
	newSession SessionFactory,
) *Harvester {
	return &Harvester{
		cfg:        cfg,
		areas:      areas,
		source:     source,
		search:     search,
		detail:     detail,
		store:      st,
		cache:      cacheSvc,
		publisher:  pub,
		newSession: newSession,
		log:        logger.ForWorker(),
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run performs one full traversal over all configured areas. An area
// that fails is logged and the next one is attempted; only cancellation
// stops the cycle.
func (h *Harvester) Run(ctx context.Context) error {
	start := time.Now()

	// Dedup marks from earlier cycles must not suppress this one: every
	// observation advances last_seen and appends a price row, so the
	// marks are scoped to this run even on a shared cache backend.
	h.cycleID = strconv.FormatInt(time.Now().UnixNano(), 36) + "-" + strconv.FormatInt(h.rnd.Int63(), 36)

	for _, area := range h.areas {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := h.harvestArea(ctx, area); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			h.log.Error().Err(err).Str("area", area.Area).Msg("Area harvest failed")
		}
	}

	if h.publisher != nil {
		if err := h.publisher.TrimStream(); err != nil {
			h.log.Error().Err(err).Msg("Failed to trim listing stream")
		}
	}

	h.log.Info().Dur("elapsed", time.Since(start)).Msg("Harvest cycle complete")
	return ctx.Err()
}

// harvestArea walks one area's pages until the catalog is exhausted or a
// ceiling is hit. The detail session is built lazily from the browser on
// the first listing that needs it.
func (h *Harvester) harvestArea(ctx context.Context, area config.Area) error {
	log := logger.ForArea(area.Area)
	log.Info().Str("url", area.URL).Msg("Starting area harvest")

	maxPages := h.cfg.MaxPages
	maxListings := 0
	if h.cfg.TestMode {
		if h.cfg.TestMaxPages < maxPages {
			maxPages = h.cfg.TestMaxPages
		}
		maxListings = h.cfg.TestMaxListings
	}

	var session DetailFetcher
	sessionFailed := false
	processed := 0

	for page := 1; page <= maxPages; page++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		html, err := h.source.RenderSearchPage(ctx, area.URL, page)
		if err != nil {
			return err
		}

		stubs, err := h.search.ExtractListings(strings.NewReader(html))
		if err != nil {
			return err
		}

		// An empty page past the first one means the catalog is exhausted
		if len(stubs) == 0 && page > 1 {
			log.Info().Int("page", page).Msg("Empty page, area exhausted")
			break
		}

		log.Debug().Int("page", page).Int("listings", len(stubs)).Msg("Extracted page")

		for _, stub := range stubs {
			if err := ctx.Err(); err != nil {
				return err
			}

			if h.seenThisCycle(stub.ID) {
				log.Debug().Str("listing", stub.ID).Msg("Already reconciled this cycle, skipping")
				continue
			}

			if session == nil && !sessionFailed {
				session = h.buildSession(ctx, area, log)
				sessionFailed = session == nil
			}

			fields := h.fetchDetail(session, stub, log)
			record := buildListing(stub, fields)

			result, err := h.store.Upsert(record, area)
			if err != nil {
				log.Error().Err(err).Str("listing", stub.ID).Msg("Failed to reconcile listing")
				continue
			}

			h.markSeen(stub.ID)
			h.publishEvents(result, record, log)

			processed++
			if maxListings > 0 && processed >= maxListings {
				log.Info().Int("listings", processed).Msg("Test mode listing cap reached")
				return nil
			}

			h.pause(h.cfg.DetailDelayMin, h.cfg.DetailDelayMax)
		}

		h.pause(h.cfg.SearchDelayMin, h.cfg.SearchDelayMax)
	}

	log.Info().Int("listings", processed).Msg("Area harvest complete")
	return nil
}

// buildSession exports the browser session and wraps it in a detail
// fetcher. Failure degrades to no enrichment rather than aborting.
func (h *Harvester) buildSession(ctx context.Context, area config.Area, log *logger.Logger) DetailFetcher {
	seed, err := h.source.SessionSeed(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to export browser session, details will be skipped")
		return nil
	}

	session, err := h.newSession(seed, area.URL)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to build detail session, details will be skipped")
		return nil
	}
	return session
}

// fetchDetail enriches one stub from its detail page. Any failure yields
// empty fields; the listing is still reconciled.
func (h *Harvester) fetchDetail(session DetailFetcher, stub crawler.ListingStub, log *logger.Logger) crawler.DetailFields {
	if session == nil {
		return crawler.DetailFields{}
	}

	res, err := session.Fetch(stub.URL)
	if err != nil {
		log.Warn().Err(err).Str("listing", stub.ID).Msg("Detail fetch failed, keeping listing without enrichment")
		return crawler.DetailFields{}
	}

	fields, err := h.detail.ExtractDetail(res)
	if err != nil {
		log.Warn().Err(err).Str("listing", stub.ID).Msg("Detail parse failed, keeping listing without enrichment")
		return crawler.DetailFields{}
	}

	return fields
}

func (h *Harvester) dedupKey(listingID string) string {
	return "seen:" + h.cycleID + ":" + listingID
}

func (h *Harvester) seenThisCycle(listingID string) bool {
	if h.cache == nil {
		return false
	}
	_, err := h.cache.Get(h.dedupKey(listingID))
	return err == nil
}

func (h *Harvester) markSeen(listingID string) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Set(h.dedupKey(listingID), []byte("1"), cycleDedupTTL); err != nil {
		h.log.Warn().Err(err).Str("listing", listingID).Msg("Failed to mark listing as seen")
	}
}

// publishEvents emits lifecycle events for a reconciled listing.
func (h *Harvester) publishEvents(result store.UpsertResult, record *store.Listing, log *logger.Logger) {
	if h.publisher == nil {
		return
	}

	event := ""
	switch {
	case result.Created:
		event = publisher.EventListingNew
	case result.PriceChanged:
		event = publisher.EventListingPriceChanged
	default:
		return
	}

	payload, err := json.Marshal(record)
	if err != nil {
		log.Error().Err(err).Str("listing", record.ID).Msg("Failed to marshal listing event")
		return
	}
	if err := h.publisher.Publish(event, payload); err != nil {
		log.Error().Err(err).Str("listing", record.ID).Msg("Failed to publish listing event")
	}
}

// pause sleeps a random duration within [min, max]. The traversal is
// single-threaded; pacing between requests is a site courtesy.
func (h *Harvester) pause(min, max time.Duration) {
	if max <= 0 {
		return
	}
	d := min
	if max > min {
		d += time.Duration(h.rnd.Int63n(int64(max - min + 1)))
	}
	time.Sleep(d)
}

// buildListing merges a search stub and its detail enrichment into the
// record handed to the store.
func buildListing(stub crawler.ListingStub, fields crawler.DetailFields) *store.Listing {
	return &store.Listing{
		ID:           stub.ID,
		URL:          stub.URL,
		Title:        stub.Title,
		Price:        stub.Price,
		Suburb:       stub.Suburb,
		AgentName:    stub.AgentName,
		EstateAgency: stub.EstateAgency,
		Bedrooms:     stub.Bedrooms,
		Bathrooms:    stub.Bathrooms,
		Parking:      stub.ParkingSpaces,
		FloorSize:    stub.FloorSize,
		Description:  fields.Description,
		PropertyType: fields.PropertyType,
		ListingDate:  fields.ListingDate,
		Deposit:      fields.Deposit,
	}
}
