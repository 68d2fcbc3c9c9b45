package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"canasta/internal/domain/model"

	_ "github.com/lib/pq"
)

// PostgresCatalog reads supermarket source definitions from the sources
// table, so sources can be changed without redeploying.
type PostgresCatalog struct {
	db *sql.DB
}

type PoolOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func NewPostgresCatalog(connStr string, pool PoolOptions) (*PostgresCatalog, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return newCatalog(db, pool)
}

func newCatalog(db *sql.DB, pool PoolOptions) (*PostgresCatalog, error) {
	if pool.MaxOpenConns > 0 {
		db.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		db.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresCatalog{db: db}, nil
}

func (c *PostgresCatalog) InitSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS sources (
		id SERIAL PRIMARY KEY,
		name VARCHAR(64) NOT NULL UNIQUE,
		kind VARCHAR(16) NOT NULL,
		base_url TEXT NOT NULL DEFAULT '',
		search_url TEXT NOT NULL DEFAULT '',
		browser BOOLEAN NOT NULL DEFAULT FALSE,
		selectors JSONB NOT NULL DEFAULT '{}',
		rps DOUBLE PRECISION NOT NULL DEFAULT 0,
		enabled BOOLEAN NOT NULL DEFAULT TRUE,
		priority INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT NOW()
	);
	`
	if _, err := c.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create sources table: %w", err)
	}
	return nil
}

// ListSources returns every source, enabled or not, in priority order.
// Priority order is registration order, which the engines use to break ties.
func (c *PostgresCatalog) ListSources(ctx context.Context) ([]model.SourceDefinition, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT name, kind, base_url, search_url, browser, selectors, rps, enabled
		FROM sources
		ORDER BY priority, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sources: %w", err)
	}
	defer rows.Close()

	var defs []model.SourceDefinition
	for rows.Next() {
		var (
			def       model.SourceDefinition
			kind      string
			selectors []byte
		)
		if err := rows.Scan(&def.Name, &kind, &def.BaseURL, &def.SearchURL, &def.Browser, &selectors, &def.RPS, &def.Enabled); err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		def.Kind = model.SourceKind(kind)
		if len(selectors) > 0 {
			if err := json.Unmarshal(selectors, &def.Selectors); err != nil {
				return nil, fmt.Errorf("source %q: bad selectors: %w", def.Name, err)
			}
		}
		defs = append(defs, def)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sources: %w", err)
	}
	return defs, nil
}

// SaveSource inserts or replaces a source definition by name.
func (c *PostgresCatalog) SaveSource(ctx context.Context, def model.SourceDefinition, priority int) error {
	selectors, err := json.Marshal(def.Selectors)
	if err != nil {
		return fmt.Errorf("failed to encode selectors: %w", err)
	}
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO sources (name, kind, base_url, search_url, browser, selectors, rps, enabled, priority)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (name) DO UPDATE SET
			kind = EXCLUDED.kind,
			base_url = EXCLUDED.base_url,
			search_url = EXCLUDED.search_url,
			browser = EXCLUDED.browser,
			selectors = EXCLUDED.selectors,
			rps = EXCLUDED.rps,
			enabled = EXCLUDED.enabled,
			priority = EXCLUDED.priority`,
		def.Name, string(def.Kind), def.BaseURL, def.SearchURL, def.Browser, selectors, def.RPS, def.Enabled, priority)
	if err != nil {
		return fmt.Errorf("failed to save source %q: %w", def.Name, err)
	}
	return nil
}

func (c *PostgresCatalog) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *PostgresCatalog) Close() error {
	return c.db.Close()
}
