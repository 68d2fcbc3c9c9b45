package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"canasta/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
server:
  port: 9090
  request_timeout: 5s
mode: live
cache:
  backend: redis
  ttl: 10m
redis:
  host: cache
  port: 6380
rate_limit:
  limit: 5
  window: 30s
default_source: lider
sources:
  - name: lider
    kind: vtex
    base_url: https://www.lider.cl
    enabled: true
  - name: unimarc
    kind: html
    search_url: https://www.unimarc.cl/search?q={query}
    selectors:
      item: product-card
      price: price
    rps: 2
    enabled: true
demo_sources:
  - name: demo
    kind: fixture
    enabled: true
    prices:
      arroz: 1190
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, CacheRedis, cfg.Cache.Backend)
	assert.Equal(t, "cache:6380", cfg.RedisAddr())
	assert.Equal(t, 5, cfg.RateLimit.Limit)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
	assert.Equal(t, 10, cfg.Limits.MaxBatch)
	assert.Equal(t, 5, cfg.Limits.BatchConcurrency)

	active := cfg.ActiveSources()
	require.Len(t, active, 2)
	assert.Equal(t, model.SourceVTEX, active[0].Kind)
	assert.Equal(t, "product-card", active[1].Selectors.Item)
	assert.Equal(t, 2.0, active[1].RPS)
}

func TestParse_DemoMode(t *testing.T) {
	t.Setenv("MODE", "demo")
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	active := cfg.ActiveSources()
	require.Len(t, active, 1)
	assert.Equal(t, 1190.0, active[0].Prices["arroz"])
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "7000")
	t.Setenv("REDIS_HOST", "redis.internal")
	t.Setenv("RATE_LIMIT", "100")
	t.Setenv("CACHE_BACKEND", "memory")
	t.Setenv("POSTGRES_DB", "canasta")

	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "redis.internal", cfg.Redis.Host)
	assert.Equal(t, 100, cfg.RateLimit.Limit)
	assert.Equal(t, CacheMemory, cfg.Cache.Backend)
	assert.Contains(t, cfg.PostgresDSN(), "dbname=canasta")
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"unknown field":   "bogus: 1\n" + sample,
		"bad duration":    "cache:\n  ttl: soon\nsources: [{name: a, kind: fixture, enabled: true}]\n",
		"bad mode":        "mode: offline\nsources: [{name: a, kind: fixture, enabled: true}]\n",
		"bad backend":     "cache:\n  backend: disk\nsources: [{name: a, kind: fixture, enabled: true}]\n",
		"no sources":      "mode: live\n",
		"demo no sources": "mode: demo\n",
	}
	for name, doc := range cases {
		_, err := Parse([]byte(doc))
		assert.Error(t, err, name)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "lider", cfg.DefaultSource)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
