package config

import (
	"time"

	"canasta/internal/domain/model"
)

const (
	ModeLive = "live"
	ModeDemo = "demo"

	CacheMemory = "memory"
	CacheRedis  = "redis"
)

type Config struct {
	Server struct {
		Port               int           `yaml:"port"`
		ReadTimeoutStr     string        `yaml:"read_timeout"`
		WriteTimeoutStr    string        `yaml:"write_timeout"`
		ShutdownTimeoutStr string        `yaml:"shutdown_timeout"`
		RequestTimeoutStr  string        `yaml:"request_timeout"`
		ReadTimeout        time.Duration `yaml:"-"`
		WriteTimeout       time.Duration `yaml:"-"`
		ShutdownTimeout    time.Duration `yaml:"-"`
		RequestTimeout     time.Duration `yaml:"-"`
	} `yaml:"server"`

	// Mode is "live" (real supermarket sites) or "demo" (fixture prices).
	Mode string `yaml:"mode"`

	Cache struct {
		Backend string        `yaml:"backend"`
		TTLStr  string        `yaml:"ttl"`
		TTL     time.Duration `yaml:"-"`
	} `yaml:"cache"`

	Redis struct {
		Host         string `yaml:"host"`
		Port         int    `yaml:"port"`
		Password     string `yaml:"password"`
		DB           int    `yaml:"db"`
		PoolSize     int    `yaml:"pool_size"`
		MinIdleConns int    `yaml:"min_idle_conns"`
	} `yaml:"redis"`

	PostgreSQL struct {
		Host               string        `yaml:"host"`
		Port               int           `yaml:"port"`
		User               string        `yaml:"user"`
		Password           string        `yaml:"password"`
		Database           string        `yaml:"database"`
		SSLMode            string        `yaml:"sslmode"`
		MaxOpenConns       int           `yaml:"max_open_conns"`
		MaxIdleConns       int           `yaml:"max_idle_conns"`
		ConnMaxLifetimeStr string        `yaml:"conn_max_lifetime"`
		ConnMaxLifetime    time.Duration `yaml:"-"`
	} `yaml:"postgresql"`

	// Catalog switches source definitions from this file to the Postgres
	// sources table. Seed copies Sources into an empty table on startup.
	Catalog struct {
		Enabled bool `yaml:"enabled"`
		Seed    bool `yaml:"seed"`
	} `yaml:"catalog"`

	Sources     []model.SourceDefinition `yaml:"sources"`
	DemoSources []model.SourceDefinition `yaml:"demo_sources"`

	// DefaultSource breaks ties for the globally cheapest source.
	DefaultSource string `yaml:"default_source"`
	// ScrapeSource serves /precios/scrape; empty means the first source.
	ScrapeSource string `yaml:"scrape_source"`

	RateLimit struct {
		Limit     int           `yaml:"limit"`
		WindowStr string        `yaml:"window"`
		Window    time.Duration `yaml:"-"`
	} `yaml:"rate_limit"`

	Limits struct {
		MaxBatch         int `yaml:"max_batch"`
		BatchConcurrency int `yaml:"batch_concurrency"`
		MaxItems         int `yaml:"max_items"`
		Parallelism      int `yaml:"parallelism"`
	} `yaml:"limits"`

	Fetch struct {
		TimeoutStr string        `yaml:"timeout"`
		UserAgent  string        `yaml:"user_agent"`
		Timeout    time.Duration `yaml:"-"`
	} `yaml:"fetch"`

	Browser struct {
		Enabled    bool   `yaml:"enabled"`
		ControlURL string `yaml:"control_url"`
	} `yaml:"browser"`

	Janitor struct {
		IntervalStr string        `yaml:"interval"`
		Interval    time.Duration `yaml:"-"`
	} `yaml:"janitor"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
}

// ActiveSources are the source definitions for the configured mode.
func (c *Config) ActiveSources() []model.SourceDefinition {
	if c.Mode == ModeDemo {
		return c.DemoSources
	}
	return c.Sources
}
