package port

import (
	"context"
	"time"

	"canasta/internal/domain/model"
)

// QuotationCache stores the last quotations fetched for a normalized product key.
// Get reports a miss with ok=false for absent or expired entries.
type QuotationCache interface {
	Get(ctx context.Context, key string) (quotes []model.Quotation, ok bool, err error)
	Put(ctx context.Context, key string, quotes []model.Quotation, ttl time.Duration) error
	Ping(ctx context.Context) error
	Close() error
}
