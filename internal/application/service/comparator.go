package service

import (
	"context"
	"log/slog"

	"canasta/internal/domain/model"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Searcher is the part of the Aggregator the engines depend on.
type Searcher interface {
	Search(ctx context.Context, name string, quantity float64) (model.PriceSummary, error)
	Sources() []string
}

// Comparator compares prices for a list of products across sources.
type Comparator struct {
	searcher      Searcher
	defaultSource string
	parallelism   int
	logger        *slog.Logger
}

// NewComparator uses defaultSource to break ties for the best global source;
// an empty value means the first registered source.
func NewComparator(searcher Searcher, defaultSource string, parallelism int, logger *slog.Logger) *Comparator {
	if parallelism <= 0 {
		parallelism = 8
	}
	return &Comparator{
		searcher:      searcher,
		defaultSource: defaultSource,
		parallelism:   parallelism,
		logger:        logger,
	}
}

// Compare searches every item concurrently and returns results in request
// order plus global statistics.
func (c *Comparator) Compare(ctx context.Context, items []string) (model.ComparisonReport, error) {
	summaries, err := searchAll(ctx, c.searcher, c.parallelism, queriesOf(items))
	if err != nil {
		return model.ComparisonReport{}, err
	}

	report := model.ComparisonReport{Comparisons: make([]model.ComparisonResult, len(summaries))}
	wins := make(map[string]int)
	savings := decimal.Zero
	for i, s := range summaries {
		r := model.NewComparisonResult(s)
		report.Comparisons[i] = r
		savings = savings.Add(decimal.NewFromFloat(r.MaxSavings))
		if r.CheapestSource != nil {
			wins[*r.CheapestSource]++
		}
	}

	report.Stats = model.ComparisonStats{
		TotalItems:           len(items),
		BestGlobalSource:     c.bestGlobal(wins),
		TotalPossibleSavings: model.Amount(savings),
	}
	c.logger.Debug("comparison done", "items", len(items), "sources_winning", len(wins), "savings", report.Stats.TotalPossibleSavings)
	return report, nil
}

// bestGlobal picks the source that is cheapest most often. Ties go to the
// default source when it is among them, else to the earliest registered.
func (c *Comparator) bestGlobal(wins map[string]int) *string {
	if len(wins) == 0 {
		return nil
	}
	top := 0
	for _, n := range wins {
		if n > top {
			top = n
		}
	}

	order := c.searcher.Sources()
	def := c.defaultSource
	if def == "" && len(order) > 0 {
		def = order[0]
	}
	if wins[def] == top {
		return &def
	}
	for _, name := range order {
		if wins[name] == top {
			name := name
			return &name
		}
	}
	// Source absent from the registry (e.g. stale cache entry): fall back
	// to a deterministic choice among the winners.
	var best string
	for name, n := range wins {
		if n == top && (best == "" || name < best) {
			best = name
		}
	}
	return &best
}

func queriesOf(items []string) []model.ProductQuery {
	qs := make([]model.ProductQuery, len(items))
	for i, it := range items {
		qs[i] = model.ProductQuery{Name: it, Key: model.NormalizeKey(it), Quantity: 1}
	}
	return qs
}

// searchAll runs Search for every query with bounded parallelism and keeps
// the input order.
func searchAll(ctx context.Context, s Searcher, limit int, queries []model.ProductQuery) ([]model.PriceSummary, error) {
	out := make([]model.PriceSummary, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			summary, err := s.Search(gctx, q.Name, q.Quantity)
			if err != nil {
				return err
			}
			out[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
