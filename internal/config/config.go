package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Env         string
	DatabaseURL string

	OpenAIAPIKey string
	OpenAIModel  string

	AllowedOrigins string

	// Report snapshot cache
	SnapshotTTL         time.Duration
	SnapshotRefreshCron string

	// Route analysis
	RouteScoring     string
	RouteReportLimit int

	// Per-client rate limit; RateLimitRPS <= 0 disables it
	RateLimitRPS   float64
	RateLimitBurst int

	// Warnings collects values that were ignored while loading
	Warnings []string
}

// fileConfig mirrors Config in the optional YAML file
type fileConfig struct {
	Port                string  `yaml:"port"`
	Env                 string  `yaml:"env"`
	DatabaseURL         string  `yaml:"database_url"`
	OpenAIModel         string  `yaml:"openai_model"`
	AllowedOrigins      string  `yaml:"allowed_origins"`
	SnapshotTTL         string  `yaml:"snapshot_ttl"`
	SnapshotRefreshCron *string `yaml:"snapshot_refresh_cron"`
	RouteScoring        string  `yaml:"route_scoring"`
	RouteReportLimit    int     `yaml:"route_report_limit"`
	RateLimitRPS        float64 `yaml:"rate_limit_rps"`
	RateLimitBurst      int     `yaml:"rate_limit_burst"`
}

// Load reads .env, the optional CONFIG_FILE and the environment, in that
// order of increasing precedence
func Load() *Config {
	_ = godotenv.Load()
	return load(os.LookupEnv, os.ReadFile)
}

func defaults() *Config {
	return &Config{
		Port:                "8080",
		Env:                 "development",
		AllowedOrigins:      "*",
		SnapshotTTL:         30 * time.Second,
		SnapshotRefreshCron: "@every 1m",
		RouteScoring:        "fixed",
		RouteReportLimit:    100,
		RateLimitRPS:        20,
		RateLimitBurst:      40,
	}
}

func load(lookup func(string) (string, bool), readFile func(string) ([]byte, error)) *Config {
	cfg := defaults()

	if path, ok := lookup("CONFIG_FILE"); ok && path != "" {
		if err := cfg.applyFile(path, readFile); err != nil {
			cfg.warn("config file ignored: %v", err)
		}
	}

	cfg.applyEnv(lookup)
	return cfg
}

func (c *Config) applyFile(path string, readFile func(string) ([]byte, error)) error {
	data, err := readFile(path)
	if err != nil {
		return fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	setString(&c.Port, fc.Port)
	setString(&c.Env, fc.Env)
	setString(&c.DatabaseURL, fc.DatabaseURL)
	setString(&c.OpenAIModel, fc.OpenAIModel)
	setString(&c.AllowedOrigins, fc.AllowedOrigins)
	setString(&c.RouteScoring, fc.RouteScoring)
	if fc.SnapshotTTL != "" {
		c.SnapshotTTL = c.parseDuration("snapshot_ttl", fc.SnapshotTTL, c.SnapshotTTL)
	}
	if fc.SnapshotRefreshCron != nil {
		c.SnapshotRefreshCron = *fc.SnapshotRefreshCron
	}
	if fc.RouteReportLimit > 0 {
		c.RouteReportLimit = fc.RouteReportLimit
	}
	if fc.RateLimitRPS != 0 {
		c.RateLimitRPS = fc.RateLimitRPS
	}
	if fc.RateLimitBurst > 0 {
		c.RateLimitBurst = fc.RateLimitBurst
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		return v, ok && v != ""
	}

	if v, ok := get("PORT"); ok {
		c.Port = v
	}
	if v, ok := get("GO_ENV"); ok {
		c.Env = v
	}
	if v, ok := get("DATABASE_URL"); ok {
		c.DatabaseURL = v
	}
	if v, ok := get("OPENAI_API_KEY"); ok {
		c.OpenAIAPIKey = v
	}
	if v, ok := get("OPENAI_MODEL"); ok {
		c.OpenAIModel = v
	}
	if v, ok := get("ALLOWED_ORIGINS"); ok {
		c.AllowedOrigins = v
	}
	if v, ok := get("SNAPSHOT_TTL"); ok {
		c.SnapshotTTL = c.parseDuration("SNAPSHOT_TTL", v, c.SnapshotTTL)
	}
	// An explicitly empty SNAPSHOT_REFRESH_CRON disables the refresh job
	if v, ok := lookup("SNAPSHOT_REFRESH_CRON"); ok {
		c.SnapshotRefreshCron = strings.TrimSpace(v)
	}
	if v, ok := get("ROUTE_SCORING"); ok {
		c.RouteScoring = strings.ToLower(v)
	}
	if v, ok := get("ROUTE_REPORT_LIMIT"); ok {
		c.RouteReportLimit = c.parseInt("ROUTE_REPORT_LIMIT", v, c.RouteReportLimit)
	}
	if v, ok := get("RATE_LIMIT_RPS"); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RateLimitRPS = f
		} else {
			c.warn("invalid float for RATE_LIMIT_RPS, defaulting to %v", c.RateLimitRPS)
		}
	}
	if v, ok := get("RATE_LIMIT_BURST"); ok {
		c.RateLimitBurst = c.parseInt("RATE_LIMIT_BURST", v, c.RateLimitBurst)
	}

	if c.RouteScoring != "fixed" && c.RouteScoring != "corridor" {
		c.warn("unknown route scoring %q, defaulting to fixed", c.RouteScoring)
		c.RouteScoring = "fixed"
	}
}

// IsProduction reports whether the service runs with production settings
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) parseDuration(key, value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		c.warn("invalid duration for %s, defaulting to %v", key, fallback)
		return fallback
	}
	return d
}

func (c *Config) parseInt(key, value string, fallback int) int {
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		c.warn("invalid int for %s, defaulting to %v", key, fallback)
		return fallback
	}
	return n
}

func (c *Config) warn(format string, args ...interface{}) {
	c.Warnings = append(c.Warnings, fmt.Sprintf(format, args...))
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
