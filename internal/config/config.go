package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all service configuration. Every key maps to an upper-case
// environment variable of the same name (e.g. geocode_timeout -> GEOCODE_TIMEOUT).
type Config struct {
	Port      string `mapstructure:"port"`
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	HTTPWriteTimeout time.Duration `mapstructure:"http_write_timeout"`

	DatabaseURL      string `mapstructure:"database_url"`
	DatabaseMaxConns int    `mapstructure:"database_max_conns"`
	SeedPath         string `mapstructure:"seed_path"`

	RedisURL string        `mapstructure:"redis_url"`
	RouteTTL time.Duration `mapstructure:"route_ttl"`

	GeocoderEnabled     bool          `mapstructure:"geocoder_enabled"`
	NominatimURL        string        `mapstructure:"nominatim_url"`
	GeocoderUserAgent   string        `mapstructure:"geocoder_user_agent"`
	GeocodeTimeout      time.Duration `mapstructure:"geocode_timeout"`
	GeocodeRatePerSec   float64       `mapstructure:"geocode_rate_per_sec"`
	GeocodeConcurrency  int           `mapstructure:"geocode_concurrency"`
	GeocoderMaxAttempts int           `mapstructure:"geocoder_max_attempts"`

	MaxDeliveriesPerRoute int     `mapstructure:"max_deliveries_per_route"`
	FallbackWarnRatio     float64 `mapstructure:"fallback_warn_ratio"`

	DefaultStartLatitude  float64 `mapstructure:"default_start_latitude"`
	DefaultStartLongitude float64 `mapstructure:"default_start_longitude"`
	DefaultStartAddress   string  `mapstructure:"default_start_address"`
}

// Time reserved at the end of a request for building routes, writing them
// back and encoding the response. Geocoding gets the rest of the write
// timeout.
const ResponseHeadroom = 15 * time.Second

// MinHTTPWriteTimeout leaves geocoding at least 15s after the headroom.
const MinHTTPWriteTimeout = 2 * ResponseHeadroom

// GeocodeBudget is how long one request may spend geocoding so the
// response still goes out before the server's write timeout.
func (c *Config) GeocodeBudget() time.Duration {
	return c.HTTPWriteTimeout - ResponseHeadroom
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("http_write_timeout", "120s")

	v.SetDefault("database_url", "")
	v.SetDefault("database_max_conns", 10)
	v.SetDefault("seed_path", "data/seeds/deliveries.json")

	v.SetDefault("redis_url", "")
	v.SetDefault("route_ttl", "24h")

	v.SetDefault("geocoder_enabled", true)
	v.SetDefault("nominatim_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocoder_user_agent", "meal-route-service/1.0")
	v.SetDefault("geocode_timeout", "10s")
	v.SetDefault("geocode_rate_per_sec", 1.0)
	v.SetDefault("geocode_concurrency", 4)
	v.SetDefault("geocoder_max_attempts", 1)

	v.SetDefault("max_deliveries_per_route", 15)
	v.SetDefault("fallback_warn_ratio", 0.5)

	v.SetDefault("default_start_latitude", 49.1042)
	v.SetDefault("default_start_longitude", -122.6604)
	v.SetDefault("default_start_address", "Langley, BC, Canada")
}

// Load reads an optional .env file, then defaults overridden by environment
// variables, and validates the result.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("load config: unmarshal: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that configuration values are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if strings.TrimSpace(c.Port) == "" {
		errs = append(errs, "PORT is required")
	}
	if c.HTTPWriteTimeout < MinHTTPWriteTimeout {
		errs = append(errs, fmt.Sprintf("HTTP_WRITE_TIMEOUT must be at least %s", MinHTTPWriteTimeout))
	}
	if c.GeocodeTimeout <= 0 {
		errs = append(errs, "GEOCODE_TIMEOUT must be positive")
	}
	if c.GeocodeRatePerSec <= 0 {
		errs = append(errs, "GEOCODE_RATE_PER_SEC must be positive")
	}
	if c.GeocodeConcurrency < 1 {
		errs = append(errs, "GEOCODE_CONCURRENCY must be at least 1")
	}
	if c.GeocoderMaxAttempts < 1 {
		errs = append(errs, "GEOCODER_MAX_ATTEMPTS must be at least 1")
	}
	if c.GeocoderEnabled && strings.TrimSpace(c.NominatimURL) == "" {
		errs = append(errs, "NOMINATIM_URL is required when the geocoder is enabled")
	}
	if c.MaxDeliveriesPerRoute < 1 {
		errs = append(errs, "MAX_DELIVERIES_PER_ROUTE must be at least 1")
	}
	if c.FallbackWarnRatio <= 0 || c.FallbackWarnRatio > 1 {
		errs = append(errs, fmt.Sprintf("FALLBACK_WARN_RATIO must be in (0, 1], got %v", c.FallbackWarnRatio))
	}
	if c.RouteTTL <= 0 {
		errs = append(errs, "ROUTE_TTL must be positive")
	}
	if c.DefaultStartLatitude < -90 || c.DefaultStartLatitude > 90 {
		errs = append(errs, "DEFAULT_START_LATITUDE must be within [-90, 90]")
	}
	if c.DefaultStartLongitude < -180 || c.DefaultStartLongitude > 180 {
		errs = append(errs, "DEFAULT_START_LONGITUDE must be within [-180, 180]")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
