package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"rental-harvester/config"
	"rental-harvester/helpers"
	"rental-harvester/internal/browser"
	"rental-harvester/internal/crawler"
	"rental-harvester/logger"
	"rental-harvester/services/cache"
	"rental-harvester/services/publisher"
	"rental-harvester/services/store"
	"rental-harvester/services/worker"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	areas, err := config.LoadAreas(cfg.AreasFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load traversal areas")
	}
	if len(areas) == 0 {
		log.Fatal().Str("file", cfg.AreasFile).Msg("No traversal areas configured")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Int("areas", len(areas)).
		Bool("test_mode", cfg.TestMode).
		Msg("Starting harvester")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	// Initialize services
	services, err := initializeServices(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer services.Cleanup()

	// Start the headless browser
	b, err := browser.New(cfg, crawler.DefaultSearchSelectors().Card)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start browser")
	}
	defer b.Close()

	sessionFactory := func(seed helpers.SessionSeed, siteURL string) (worker.DetailFetcher, error) {
		return helpers.NewSession(seed, siteURL, cfg.DetailTimeout)
	}

	h := worker.NewHarvester(
		cfg,
		areas,
		b,
		crawler.NewSearchExtractor(siteBase(areas)),
		crawler.NewDetailExtractor(),
		services.Store,
		services.Cache,
		services.Publisher,
		sessionFactory,
	)

	if err := h.Run(ctx); err != nil && err != context.Canceled {
		log.Error().Err(err).Msg("Harvest run failed")
		os.Exit(1)
	}

	log.Info().Msg("Shutting down gracefully...")
}

// siteBase derives the scheme://host prefix for relative card links from
// the first configured area URL.
func siteBase(areas []config.Area) string {
	u := areas[0].URL
	// scheme://host is everything up to the third slash
	slashes := 0
	for i, r := range u {
		if r == '/' {
			slashes++
			if slashes == 3 {
				return u[:i]
			}
		}
	}
	return u
}

// Services holds all the initialized services
type Services struct {
	Store     store.Store
	Cache     cache.CacheService
	Publisher publisher.Publisher
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		s.Publisher.Close()
	}
	if s.Store != nil {
		s.Store.Close()
	}
}

// initializeServices initializes the store, cache, and publisher
func initializeServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	services := &Services{}

	st, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	services.Store = st
	logger.Info("Opened listing store at %s", cfg.DBPath)

	if cfg.MemcacheAddr != "" {
		services.Cache = cache.NewMemcacheService(cfg.MemcacheAddr)
		logger.Info("Using memcached dedup cache at %s", cfg.MemcacheAddr)
	} else {
		services.Cache = cache.NewMemoryService()
	}

	if cfg.RedisAddr != "" {
		services.Publisher = publisher.NewRedisPublisher(
			ctx,
			cfg.RedisAddr,
			cfg.RedisDB,
			cfg.RedisStream,
			cfg.RedisStreamMaxLength,
		)
		logger.Info("Publishing listing events to Redis at %s (stream: %s)",
			cfg.RedisAddr, cfg.RedisStream)
	}

	return services, nil
}
