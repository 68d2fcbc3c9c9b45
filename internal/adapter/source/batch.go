package source

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"canasta/internal/concurrency/worker"
	"canasta/internal/domain/model"
	"canasta/internal/domain/port"
)

const (
	DefaultMaxBatch    = 10
	DefaultConcurrency = 5
)

type BatchOptions struct {
	MaxBatch    int
	Concurrency int
}

func (o BatchOptions) withDefaults() BatchOptions {
	if o.MaxBatch <= 0 {
		o.MaxBatch = DefaultMaxBatch
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	return o
}

// Lookup fetches one product and folds any failure into a not-found result.
func Lookup(ctx context.Context, src port.SourcePort, product string, log *slog.Logger) model.FetchResult {
	q, err := src.Fetch(ctx, product)
	if err != nil {
		log.Debug("source lookup failed", "source", src.Name(), "product", product, "reason", Reason(err), "error", err)
		return model.FetchResult{Reason: Reason(err)}
	}
	return model.FetchResult{Found: true, Quotation: &q}
}

type batchResult struct {
	product string
	result  model.FetchResult
}

// FetchMany looks up every product on src with at most opts.Concurrency
// requests in flight. Batches larger than opts.MaxBatch are rejected whole.
// Products still pending when ctx ends are reported with reason "timeout".
func FetchMany(ctx context.Context, src port.SourcePort, products []string, opts BatchOptions, log *slog.Logger) (map[string]model.FetchResult, error) {
	opts = opts.withDefaults()
	if len(products) > opts.MaxBatch {
		return nil, fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, len(products), opts.MaxBatch)
	}

	var jobs []string
	seen := make(map[string]bool, len(products))
	for _, p := range products {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		jobs = append(jobs, p)
	}

	pool := worker.NewPool(opts.Concurrency, func(ctx context.Context, product string) batchResult {
		return batchResult{product: product, result: Lookup(ctx, src, product, log)}
	}, log)

	results, err := pool.Run(ctx, jobs)
	out := make(map[string]model.FetchResult, len(jobs))
	for _, r := range results {
		out[r.product] = r.result
	}
	if err != nil {
		for _, p := range jobs {
			if _, ok := out[p]; !ok {
				out[p] = model.FetchResult{Reason: Reason(err)}
			}
		}
		log.Warn("batch fetch cut short", "source", src.Name(), "done", len(results), "total", len(jobs), "error", err)
	}
	return out, nil
}
