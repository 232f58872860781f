// Package config loads and validates crawler configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Catalog CatalogConfig `mapstructure:"catalog"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// CatalogConfig governs frontier discovery behavior.
type CatalogConfig struct {
	BaseURL           string  `mapstructure:"base_url"`
	Seed              string  `mapstructure:"seed"`
	Concurrency       int     `mapstructure:"concurrency"`
	MaxIterations     int     `mapstructure:"max_iterations"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
}

// HTTPConfig configures the page fetcher.
type HTTPConfig struct {
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent"`
}

// MetricsConfig controls the optional Prometheus endpoint.
type MetricsConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("WEBBOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("catalog.base_url", "https://webbook.nist.gov")
	v.SetDefault("catalog.seed", "/cgi/formula/")
	v.SetDefault("catalog.concurrency", 40)
	v.SetDefault("catalog.max_iterations", 100)
	v.SetDefault("catalog.requests_per_second", 0)
	v.SetDefault("http.timeout_seconds", 10)
	v.SetDefault("http.user_agent", "webbook-crawler/1.0")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Catalog.BaseURL == "" {
		return fmt.Errorf("catalog.base_url must be set")
	}
	if !strings.HasPrefix(c.Catalog.Seed, "/") {
		return fmt.Errorf("catalog.seed must be a relative path starting with /")
	}
	if c.Catalog.Concurrency <= 0 {
		return fmt.Errorf("catalog.concurrency must be > 0")
	}
	if c.Catalog.MaxIterations <= 0 {
		return fmt.Errorf("catalog.max_iterations must be > 0")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	return nil
}

// Timeout converts the HTTP timeout config into a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}
