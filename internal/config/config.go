package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// ErrHERECredentials is returned by RequireHERE when the HERE app id or code
// is missing.
var ErrHERECredentials = errors.New("HEREMAPS_APP_ID and HEREMAPS_APP_CODE must be set")

// Geocoder providers accepted by GEOCODER.
const (
	GeocoderNominatim = "nominatim"
	GeocoderHERE      = "here"
)

// Config holds all settings, populated from environment variables.
type Config struct {
	DataDir   string
	FirstYear int
	LastYear  int

	PlaneCrashBaseURL string
	ScrapeTimeout     time.Duration
	ScrapeConcurrency int

	Geocoder           string
	NominatimURL       string
	NominatimUserAgent string
	NominatimRate      float64
	GeocodeTimeout     time.Duration
	GeocodeCacheSize   int

	// HERE Maps credentials. Optional unless a HERE command runs.
	HEREAppID   string
	HEREAppCode string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	SQLitePath string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	scrapeTimeout, err := parseDuration("SCRAPE_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	geocodeTimeout, err := parseDuration("GEOCODE_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	firstYear, err := parsePositiveInt("FIRST_YEAR", 1921)
	if err != nil {
		return nil, err
	}
	lastYear, err := parsePositiveInt("LAST_YEAR", 2016)
	if err != nil {
		return nil, err
	}
	concurrency, err := parsePositiveInt("SCRAPE_CONCURRENCY", 4)
	if err != nil {
		return nil, err
	}
	cacheSize, err := parsePositiveInt("GEOCODE_CACHE_SIZE", 5000)
	if err != nil {
		return nil, err
	}

	rate, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("NOMINATIM_RATE", "1"), 64)
	if err != nil || rate <= 0 {
		return nil, errors.New("invalid NOMINATIM_RATE")
	}

	dataDir := sharedcfg.EnvOrDefault("DATA_DIR", "data")

	cfg := &Config{
		DataDir:   dataDir,
		FirstYear: firstYear,
		LastYear:  lastYear,

		PlaneCrashBaseURL: strings.TrimRight(sharedcfg.EnvOrDefault("PLANECRASH_BASE_URL", "http://www.planecrashinfo.com"), "/"),
		ScrapeTimeout:     scrapeTimeout,
		ScrapeConcurrency: concurrency,

		Geocoder:           strings.ToLower(sharedcfg.EnvOrDefault("GEOCODER", GeocoderNominatim)),
		NominatimURL:       strings.TrimRight(sharedcfg.EnvOrDefault("NOMINATIM_URL", "https://nominatim.openstreetmap.org"), "/"),
		NominatimUserAgent: sharedcfg.EnvOrDefault("NOMINATIM_USER_AGENT", "planecrash-geodata/1.0"),
		NominatimRate:      rate,
		GeocodeTimeout:     geocodeTimeout,
		GeocodeCacheSize:   cacheSize,

		HEREAppID:   os.Getenv("HEREMAPS_APP_ID"),
		HEREAppCode: os.Getenv("HEREMAPS_APP_CODE"),

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KafkaBrokers: parseList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "planecrash-accidents"),

		SQLitePath: sharedcfg.EnvOrDefault("SQLITE_PATH", filepath.Join(dataDir, "planecrash.db")),
	}

	if cfg.FirstYear > cfg.LastYear {
		return nil, fmt.Errorf("FIRST_YEAR (%d) is after LAST_YEAR (%d)", cfg.FirstYear, cfg.LastYear)
	}
	if cfg.Geocoder != GeocoderNominatim && cfg.Geocoder != GeocoderHERE {
		return nil, fmt.Errorf("invalid GEOCODER %q: want %q or %q", cfg.Geocoder, GeocoderNominatim, GeocoderHERE)
	}
	if cfg.NominatimUserAgent == "" {
		return nil, errors.New("NOMINATIM_USER_AGENT is required")
	}

	return cfg, nil
}

// Years returns the configured year range, inclusive.
func (c *Config) Years() []int {
	years := make([]int, 0, c.LastYear-c.FirstYear+1)
	for y := c.FirstYear; y <= c.LastYear; y++ {
		years = append(years, y)
	}
	return years
}

// RequireHERE returns ErrHERECredentials unless both HERE credentials are set.
func (c *Config) RequireHERE() error {
	if c.HEREAppID == "" || c.HEREAppCode == "" {
		return ErrHERECredentials
	}
	return nil
}

// RequireKafka returns an error unless KAFKA_BROKERS is set.
func (c *Config) RequireKafka() error {
	if len(c.KafkaBrokers) == 0 {
		return errors.New("KAFKA_BROKERS is required")
	}
	if c.KafkaTopic == "" {
		return errors.New("KAFKA_TOPIC is required")
	}
	return nil
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
