package service

import (
	"context"
	"log/slog"
	"time"

	"canasta/internal/adapter/source"
	"canasta/internal/concurrency/fanin"
	"canasta/internal/domain/model"
	"canasta/internal/domain/port"

	"golang.org/x/sync/singleflight"
)

// Aggregator builds price summaries for single products from every
// registered source, going through the quotation cache.
type Aggregator struct {
	sources      []port.SourcePort
	cache        port.QuotationCache
	logger       *slog.Logger
	ttl          time.Duration
	fetchTimeout time.Duration
	group        singleflight.Group
}

type AggregatorConfig struct {
	// CacheTTL is how long fetched quotations are reused.
	CacheTTL time.Duration
	// FetchTimeout bounds one round of source fetches. It is applied to a
	// context detached from the request, so late results still reach the cache.
	FetchTimeout time.Duration
}

func NewAggregator(sources []port.SourcePort, cache port.QuotationCache, cfg AggregatorConfig, logger *slog.Logger) *Aggregator {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 15 * time.Minute
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 15 * time.Second
	}
	return &Aggregator{
		sources:      sources,
		cache:        cache,
		logger:       logger,
		ttl:          cfg.CacheTTL,
		fetchTimeout: cfg.FetchTimeout,
	}
}

// Sources returns source names in registration order.
func (a *Aggregator) Sources() []string {
	return source.Names(a.sources)
}

// Search returns the price summary for name × quantity. Sources that fail
// simply contribute nothing; when all fail the summary is empty. The only
// error is ctx's own when the caller gives up first.
func (a *Aggregator) Search(ctx context.Context, name string, quantity float64) (model.PriceSummary, error) {
	q, err := model.NewProductQuery(name, quantity)
	if err != nil {
		return model.PriceSummary{}, err
	}
	quotes, err := a.quotations(ctx, q.Key)
	if err != nil {
		return model.PriceSummary{}, err
	}
	return model.NewPriceSummary(q, quotes), nil
}

// quotations serves key from the cache or fetches it from every source.
// Concurrent misses for one key share a single fetch.
func (a *Aggregator) quotations(ctx context.Context, key string) ([]model.Quotation, error) {
	cached, ok, err := a.cache.Get(ctx, key)
	if err != nil {
		a.logger.Warn("cache read failed, fetching from sources", "key", key, "error", err)
	}
	if ok {
		a.logger.Debug("cache hit", "key", key, "quotations", len(cached))
		return cached, nil
	}

	ch := a.group.DoChan(key, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.fetchTimeout)
		defer cancel()

		quotes := a.fetchAll(fetchCtx, key)
		if len(quotes) > 0 {
			if err := a.cache.Put(fetchCtx, key, quotes, a.ttl); err != nil {
				a.logger.Warn("cache write failed", "key", key, "error", err)
			}
		}
		return quotes, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val.([]model.Quotation), nil
	}
}

type sourceResult struct {
	index  int
	result model.FetchResult
}

// fetchAll queries every source concurrently and returns the quotations in
// registration order, whatever order they arrived in.
func (a *Aggregator) fetchAll(ctx context.Context, key string) []model.Quotation {
	start := time.Now()
	channels := make([]<-chan sourceResult, len(a.sources))
	for i, src := range a.sources {
		ch := make(chan sourceResult, 1)
		channels[i] = ch
		go func(i int, src port.SourcePort) {
			defer close(ch)
			ch <- sourceResult{index: i, result: source.Lookup(ctx, src, key, a.logger)}
		}(i, src)
	}

	bySource := make([]*model.Quotation, len(a.sources))
	failed := 0
	for r := range fanin.FanIn(channels...) {
		if !r.result.Found {
			failed++
			continue
		}
		bySource[r.index] = r.result.Quotation
	}

	quotes := make([]model.Quotation, 0, len(a.sources))
	for _, q := range bySource {
		if q != nil {
			quotes = append(quotes, *q)
		}
	}

	if len(quotes) == 0 {
		a.logger.Warn("no source returned a price", "key", key, "sources", len(a.sources), "duration", time.Since(start))
	} else {
		a.logger.Info("quotations fetched", "key", key, "found", len(quotes), "failed", failed, "duration", time.Since(start))
	}
	return quotes
}
