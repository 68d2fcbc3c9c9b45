package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML file at path, applies environment overrides, fills
// defaults and parses durations.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Environment wins over the file.
	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	if err := parseDurations(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	setDefault(&cfg.Server.Port, 8080)
	setDefaultStr(&cfg.Server.ReadTimeoutStr, "10s")
	setDefaultStr(&cfg.Server.WriteTimeoutStr, "30s")
	setDefaultStr(&cfg.Server.ShutdownTimeoutStr, "15s")
	setDefaultStr(&cfg.Server.RequestTimeoutStr, "25s")

	setDefaultStr(&cfg.Mode, ModeLive)
	setDefaultStr(&cfg.Cache.Backend, CacheMemory)
	setDefaultStr(&cfg.Cache.TTLStr, "15m")

	setDefaultStr(&cfg.Redis.Host, "localhost")
	setDefault(&cfg.Redis.Port, 6379)

	setDefaultStr(&cfg.PostgreSQL.Host, "localhost")
	setDefault(&cfg.PostgreSQL.Port, 5432)
	setDefaultStr(&cfg.PostgreSQL.SSLMode, "disable")
	setDefaultStr(&cfg.PostgreSQL.ConnMaxLifetimeStr, "5m")

	setDefault(&cfg.RateLimit.Limit, 30)
	setDefaultStr(&cfg.RateLimit.WindowStr, "1m")

	setDefault(&cfg.Limits.MaxBatch, 10)
	setDefault(&cfg.Limits.BatchConcurrency, 5)
	setDefault(&cfg.Limits.MaxItems, 50)
	setDefault(&cfg.Limits.Parallelism, 8)

	setDefaultStr(&cfg.Fetch.TimeoutStr, "15s")
	setDefaultStr(&cfg.Fetch.UserAgent, "canasta/1.0 (+price comparison)")
	setDefaultStr(&cfg.Janitor.IntervalStr, "1m")

	setDefaultStr(&cfg.Logging.Level, "info")
	setDefaultStr(&cfg.Logging.Format, "json")
}

func parseDurations(cfg *Config) error {
	fields := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"server.read_timeout", cfg.Server.ReadTimeoutStr, &cfg.Server.ReadTimeout},
		{"server.write_timeout", cfg.Server.WriteTimeoutStr, &cfg.Server.WriteTimeout},
		{"server.shutdown_timeout", cfg.Server.ShutdownTimeoutStr, &cfg.Server.ShutdownTimeout},
		{"server.request_timeout", cfg.Server.RequestTimeoutStr, &cfg.Server.RequestTimeout},
		{"cache.ttl", cfg.Cache.TTLStr, &cfg.Cache.TTL},
		{"postgresql.conn_max_lifetime", cfg.PostgreSQL.ConnMaxLifetimeStr, &cfg.PostgreSQL.ConnMaxLifetime},
		{"rate_limit.window", cfg.RateLimit.WindowStr, &cfg.RateLimit.Window},
		{"fetch.timeout", cfg.Fetch.TimeoutStr, &cfg.Fetch.Timeout},
		{"janitor.interval", cfg.Janitor.IntervalStr, &cfg.Janitor.Interval},
	}
	for _, f := range fields {
		d, err := time.ParseDuration(f.raw)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", f.name, err)
		}
		if d <= 0 {
			return fmt.Errorf("invalid %s: must be positive", f.name)
		}
		*f.dst = d
	}
	return nil
}

func (c *Config) validate() error {
	switch c.Mode {
	case ModeLive, ModeDemo:
	default:
		return fmt.Errorf("invalid mode %q: want %q or %q", c.Mode, ModeLive, ModeDemo)
	}
	switch c.Cache.Backend {
	case CacheMemory, CacheRedis:
	default:
		return fmt.Errorf("invalid cache.backend %q: want %q or %q", c.Cache.Backend, CacheMemory, CacheRedis)
	}
	if c.RateLimit.Limit <= 0 {
		return fmt.Errorf("invalid rate_limit.limit %d", c.RateLimit.Limit)
	}
	if c.Mode == ModeDemo && len(c.DemoSources) == 0 {
		return fmt.Errorf("demo mode needs demo_sources")
	}
	if c.Mode == ModeLive && !c.Catalog.Enabled && len(c.Sources) == 0 {
		return fmt.Errorf("live mode needs sources or catalog.enabled")
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	// Server
	envInt("SERVER_PORT", &cfg.Server.Port)
	envStr("MODE", &cfg.Mode)

	// Cache / Redis
	envStr("CACHE_BACKEND", &cfg.Cache.Backend)
	envStr("REDIS_HOST", &cfg.Redis.Host)
	envInt("REDIS_PORT", &cfg.Redis.Port)
	envStr("REDIS_PASSWORD", &cfg.Redis.Password)

	// PostgreSQL
	envStr("POSTGRES_HOST", &cfg.PostgreSQL.Host)
	envInt("POSTGRES_PORT", &cfg.PostgreSQL.Port)
	envStr("POSTGRES_USER", &cfg.PostgreSQL.User)
	envStr("POSTGRES_PASSWORD", &cfg.PostgreSQL.Password)
	envStr("POSTGRES_DB", &cfg.PostgreSQL.Database)

	envInt("RATE_LIMIT", &cfg.RateLimit.Limit)
	envStr("BROWSER_CONTROL_URL", &cfg.Browser.ControlURL)
	envStr("LOG_LEVEL", &cfg.Logging.Level)
}

func envStr(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setDefault(dst *int, v int) {
	if *dst == 0 {
		*dst = v
	}
}

func setDefaultStr(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host, c.PostgreSQL.Port, c.PostgreSQL.User,
		c.PostgreSQL.Password, c.PostgreSQL.Database, c.PostgreSQL.SSLMode,
	)
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
