package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"canasta/internal/adapter/source"
	"canasta/internal/application/service"
	"canasta/internal/domain/model"
	"canasta/internal/domain/port"
)

// ErrInvalidInput marks request data the engines refuse to work with.
var ErrInvalidInput = errors.New("invalid input")

type Options struct {
	// RequestTimeout bounds how long a caller waits for any operation.
	RequestTimeout time.Duration
	// MaxItems caps the items accepted by Compare and Optimize.
	MaxItems int
	Batch    source.BatchOptions
}

// PriceUseCase is the entry point the HTTP layer talks to. It normalizes
// input, applies the request timeout and hands off to the engines.
type PriceUseCase struct {
	aggregator *service.Aggregator
	comparator *service.Comparator
	optimizer  *service.Optimizer
	scraper    port.SourcePort
	opts       Options
	logger     *slog.Logger
}

func NewPriceUseCase(
	aggregator *service.Aggregator,
	comparator *service.Comparator,
	optimizer *service.Optimizer,
	scraper port.SourcePort,
	opts Options,
	logger *slog.Logger,
) *PriceUseCase {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 25 * time.Second
	}
	if opts.MaxItems <= 0 {
		opts.MaxItems = 50
	}
	return &PriceUseCase{
		aggregator: aggregator,
		comparator: comparator,
		optimizer:  optimizer,
		scraper:    scraper,
		opts:       opts,
		logger:     logger,
	}
}

func (uc *PriceUseCase) Sources() []string {
	return uc.aggregator.Sources()
}

func (uc *PriceUseCase) MaxItems() int { return uc.opts.MaxItems }

func (uc *PriceUseCase) MaxBatch() int {
	if uc.opts.Batch.MaxBatch <= 0 {
		return source.DefaultMaxBatch
	}
	return uc.opts.Batch.MaxBatch
}

// ScrapeSource names the source used by the raw scrape operations.
func (uc *PriceUseCase) ScrapeSource() string {
	return uc.scraper.Name()
}

// Search returns the price summary for one product.
func (uc *PriceUseCase) Search(ctx context.Context, name string, quantity float64) (model.PriceSummary, error) {
	q, err := model.NewProductQuery(name, quantity)
	if err != nil {
		return model.PriceSummary{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	ctx, cancel := context.WithTimeout(ctx, uc.opts.RequestTimeout)
	defer cancel()
	return uc.aggregator.Search(ctx, q.Name, q.Quantity)
}

// Compare compares a list of product names. Blank names are dropped.
func (uc *PriceUseCase) Compare(ctx context.Context, items []string) (model.ComparisonReport, error) {
	names := cleanNames(items)
	if err := uc.checkCount(len(names)); err != nil {
		return model.ComparisonReport{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, uc.opts.RequestTimeout)
	defer cancel()
	return uc.comparator.Compare(ctx, names)
}

// Optimize builds a purchase plan. An empty list gives an empty plan.
func (uc *PriceUseCase) Optimize(ctx context.Context, items []model.ProductQuery) (model.OptimizationPlan, error) {
	if len(items) > uc.opts.MaxItems {
		return model.OptimizationPlan{}, fmt.Errorf("%w: at most %d items", ErrInvalidInput, uc.opts.MaxItems)
	}

	ctx, cancel := context.WithTimeout(ctx, uc.opts.RequestTimeout)
	defer cancel()
	return uc.optimizer.Optimize(ctx, items)
}

// Scrape asks the scrape source for one product, bypassing the cache.
func (uc *PriceUseCase) Scrape(ctx context.Context, product string) (model.FetchResult, error) {
	product = strings.TrimSpace(product)
	if product == "" {
		return model.FetchResult{}, fmt.Errorf("%w: %w", ErrInvalidInput, model.ErrEmptyProduct)
	}

	ctx, cancel := context.WithTimeout(ctx, uc.opts.RequestTimeout)
	defer cancel()
	return source.Lookup(ctx, uc.scraper, product, uc.logger), nil
}

// ScrapeMany asks the scrape source for a batch of products.
func (uc *PriceUseCase) ScrapeMany(ctx context.Context, products []string) (map[string]model.FetchResult, error) {
	if len(products) > uc.MaxBatch() {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, source.ErrBatchTooLarge)
	}
	if len(cleanNames(products)) == 0 {
		return nil, fmt.Errorf("%w: no products", ErrInvalidInput)
	}

	ctx, cancel := context.WithTimeout(ctx, uc.opts.RequestTimeout)
	defer cancel()
	return source.FetchMany(ctx, uc.scraper, products, uc.opts.Batch, uc.logger)
}

func (uc *PriceUseCase) checkCount(n int) error {
	if n == 0 {
		return fmt.Errorf("%w: no items", ErrInvalidInput)
	}
	if n > uc.opts.MaxItems {
		return fmt.Errorf("%w: at most %d items", ErrInvalidInput, uc.opts.MaxItems)
	}
	return nil
}

func cleanNames(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out
}
