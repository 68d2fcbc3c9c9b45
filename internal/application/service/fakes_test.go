package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"canasta/internal/adapter/cache"
	"canasta/internal/adapter/source"
	"canasta/internal/domain/model"
	"canasta/internal/domain/port"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeSource quotes from a map and counts calls. Missing products are
// reported as not found; err, when set, is returned for everything.
type fakeSource struct {
	name   string
	prices map[string]float64
	err    error
	delay  time.Duration
	calls  atomic.Int64
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Fetch(ctx context.Context, product string) (model.Quotation, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return model.Quotation{}, ctx.Err()
		case <-time.After(f.delay):
		}
	}
	if f.err != nil {
		return model.Quotation{}, f.err
	}
	p, ok := f.prices[model.NormalizeKey(product)]
	if !ok {
		return model.Quotation{}, source.ErrNotFound
	}
	return model.NewQuotation(f.name, product, p, "", time.Now())
}

var errBoom = errors.New("connection reset")

func newAggregator(srcs ...port.SourcePort) (*Aggregator, *cache.Memory) {
	c := cache.NewMemory(time.Minute)
	return NewAggregator(srcs, c, AggregatorConfig{CacheTTL: time.Minute, FetchTimeout: time.Second}, discardLogger()), c
}
