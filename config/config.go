package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

// Area is one traversal target: a paginated search URL plus the location
// labels stamped onto every listing reconciled from it.
type Area struct {
	Province string `yaml:"province"`
	City     string `yaml:"city"`
	Area     string `yaml:"area"`
	URL      string `yaml:"url"`
}

// Config represents the application configuration
type Config struct {
	// Store configuration
	DBPath string

	// Traversal configuration
	AreasFile       string
	MaxPages        int
	CardWaitTimeout time.Duration
	SearchDelayMin  time.Duration
	SearchDelayMax  time.Duration
	DetailDelayMin  time.Duration
	DetailDelayMax  time.Duration
	DetailTimeout   time.Duration

	// Test mode caps the traversal for fast verification runs
	TestMode        bool
	TestMaxPages    int
	TestMaxListings int

	// Browser configuration
	ChromeBin string
	Headless  bool

	// Cache configuration (empty addr falls back to the in-process cache)
	MemcacheAddr string

	// Publisher configuration (empty addr disables publishing)
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamMaxLength int

	// Report job configuration
	ReportOutput     string
	SMTPHost         string
	SMTPPort         int
	SMTPUser         string
	SMTPPass         string
	ReportRecipients string

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	return &Config{
		DBPath:               getEnv("DB_PATH", "privateproperty.db"),
		AreasFile:            getEnv("AREAS_FILE", "config/areas.yaml"),
		MaxPages:             getEnvInt("MAX_PAGES", 999),
		CardWaitTimeout:      time.Duration(getEnvInt("CARD_WAIT_TIMEOUT_SECONDS", 10)) * time.Second,
		SearchDelayMin:       time.Duration(getEnvInt("SEARCH_DELAY_MIN_MS", 500)) * time.Millisecond,
		SearchDelayMax:       time.Duration(getEnvInt("SEARCH_DELAY_MAX_MS", 1000)) * time.Millisecond,
		DetailDelayMin:       time.Duration(getEnvInt("DETAIL_DELAY_MIN_MS", 800)) * time.Millisecond,
		DetailDelayMax:       time.Duration(getEnvInt("DETAIL_DELAY_MAX_MS", 1500)) * time.Millisecond,
		DetailTimeout:        time.Duration(getEnvInt("DETAIL_TIMEOUT_SECONDS", 20)) * time.Second,
		TestMode:             getEnvBool("TEST_MODE", false),
		TestMaxPages:         getEnvInt("TEST_MAX_PAGES", 3),
		TestMaxListings:      getEnvInt("TEST_MAX_LISTINGS", 5),
		ChromeBin:            getEnv("CHROME_BIN", ""),
		Headless:             getEnvBool("HEADLESS", true),
		MemcacheAddr:         getEnv("MEMCACHE_ADDR", ""),
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisDB:              getEnvInt("REDIS_DB", 0),
		RedisStream:          getEnv("REDIS_STREAM", "listings"),
		RedisStreamMaxLength: getEnvInt("REDIS_STREAM_MAX_LENGTH", 500),
		ReportOutput:         getEnv("REPORT_OUTPUT", "weekly_summary.csv"),
		SMTPHost:             getEnv("SMTP_HOST", ""),
		SMTPPort:             getEnvInt("SMTP_PORT", 587),
		SMTPUser:             getEnv("SMTP_USER", ""),
		SMTPPass:             getEnv("SMTP_PASS", ""),
		ReportRecipients:     getEnv("REPORT_RECIPIENTS", ""),
		Environment:          getEnv("ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration for values the traversal cannot run with
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH must not be empty")
	}
	if c.MaxPages < 1 {
		return fmt.Errorf("MAX_PAGES must be at least 1, got %d", c.MaxPages)
	}
	if c.CardWaitTimeout <= 0 {
		return fmt.Errorf("CARD_WAIT_TIMEOUT_SECONDS must be positive")
	}
	if c.SearchDelayMin < 0 || c.SearchDelayMax < c.SearchDelayMin {
		return fmt.Errorf("search delay range [%v, %v] is invalid", c.SearchDelayMin, c.SearchDelayMax)
	}
	if c.DetailDelayMin < 0 || c.DetailDelayMax < c.DetailDelayMin {
		return fmt.Errorf("detail delay range [%v, %v] is invalid", c.DetailDelayMin, c.DetailDelayMax)
	}
	if c.TestMode && (c.TestMaxPages < 1 || c.TestMaxListings < 1) {
		return fmt.Errorf("test mode caps must be at least 1")
	}
	return nil
}

// LoadAreas reads the traversal area list from a YAML file. Areas are
// traversed in file order.
func LoadAreas(path string) ([]Area, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read areas file %s: %w", path, err)
	}

	var areas []Area
	if err := yaml.Unmarshal(data, &areas); err != nil {
		return nil, fmt.Errorf("failed to parse areas file %s: %w", path, err)
	}

	for i, a := range areas {
		if a.Area == "" || a.URL == "" {
			return nil, fmt.Errorf("areas file %s: entry %d is missing area or url", path, i)
		}
	}

	return areas, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

// getEnvBool retrieves a boolean environment variable or returns a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}
