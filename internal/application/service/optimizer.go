package service

import (
	"context"
	"log/slog"
	"sort"

	"canasta/internal/domain/model"

	"github.com/shopspring/decimal"
)

// Optimizer assigns each shopping-list item to its cheapest source and
// measures the saving against buying everything at one source.
//
// Baseline policy: a source is a baseline candidate only if it quotes every
// item that has at least one quotation. Items nobody quotes are left out of
// both totals.
type Optimizer struct {
	searcher    Searcher
	parallelism int
	logger      *slog.Logger
}

func NewOptimizer(searcher Searcher, parallelism int, logger *slog.Logger) *Optimizer {
	if parallelism <= 0 {
		parallelism = 8
	}
	return &Optimizer{searcher: searcher, parallelism: parallelism, logger: logger}
}

type sourceTotals struct {
	total    decimal.Decimal
	covered  int
	products []string
}

func (o *Optimizer) Optimize(ctx context.Context, items []model.ProductQuery) (model.OptimizationPlan, error) {
	plan := model.EmptyPlan()
	if len(items) == 0 {
		return plan, nil
	}

	summaries, err := searchAll(ctx, o.searcher, o.parallelism, items)
	if err != nil {
		return model.OptimizationPlan{}, err
	}

	total := decimal.Zero
	available := 0
	chosen := make(map[string]*sourceTotals) // per-item cheapest allocation
	single := make(map[string]*sourceTotals) // everything from one source

	for i, s := range summaries {
		item := items[i]
		pi := model.PlanItem{Product: item.Name, Quantity: item.Quantity}
		if s.Best == nil {
			plan.Items = append(plan.Items, pi)
			continue
		}
		available++

		// Best is the first lowest quotation in registration order, which
		// is the tie-break the plan promises.
		best := *s.Best
		line := model.LineTotal(best.UnitPrice, item.Quantity)
		src, price := best.Source, best.UnitPrice
		pi.Source, pi.UnitPrice = &src, &price
		pi.LineTotal = model.Amount(line)
		pi.Available = true
		plan.Items = append(plan.Items, pi)

		total = total.Add(line)
		acc(chosen, src).add(line, item.Name)

		for _, q := range s.Quotations {
			acc(single, q.Source).add(model.LineTotal(q.UnitPrice, item.Quantity), item.Name)
		}
	}

	plan.TotalCost = model.Amount(total)
	plan.Purchases = o.purchases(chosen)

	if name, cost, ok := o.baseline(single, available); ok {
		c := model.Amount(cost)
		plan.BaselineSource, plan.BaselineCost = &name, &c
		if savings := cost.Sub(total); savings.IsPositive() {
			plan.TotalSavings = model.Amount(savings)
		}
	}

	o.logger.Debug("optimization done",
		"items", len(items),
		"available", available,
		"total", plan.TotalCost,
		"savings", plan.TotalSavings)
	return plan, nil
}

func acc(m map[string]*sourceTotals, source string) *sourceTotals {
	t, ok := m[source]
	if !ok {
		t = &sourceTotals{total: decimal.Zero}
		m[source] = t
	}
	return t
}

func (t *sourceTotals) add(line decimal.Decimal, product string) {
	t.total = t.total.Add(line)
	t.covered++
	t.products = append(t.products, product)
}

// baseline returns the cheapest source quoting all available items.
// Ties go to the earlier registered source.
func (o *Optimizer) baseline(single map[string]*sourceTotals, available int) (string, decimal.Decimal, bool) {
	if available == 0 {
		return "", decimal.Zero, false
	}
	var (
		best  string
		cost  decimal.Decimal
		found bool
	)
	for _, name := range o.ordered(single) {
		t := single[name]
		if t.covered < available {
			continue
		}
		if !found || t.total.LessThan(cost) {
			best, cost, found = name, t.total, true
		}
	}
	return best, cost, found
}

func (o *Optimizer) purchases(chosen map[string]*sourceTotals) []model.Purchase {
	out := make([]model.Purchase, 0, len(chosen))
	for _, name := range o.ordered(chosen) {
		t := chosen[name]
		out = append(out, model.Purchase{
			Source:   name,
			Products: t.products,
			Subtotal: model.Amount(t.total),
		})
	}
	return out
}

// ordered lists the keys of m in registration order; unknown sources
// follow alphabetically.
func (o *Optimizer) ordered(m map[string]*sourceTotals) []string {
	var names []string
	seen := make(map[string]bool, len(m))
	for _, name := range o.searcher.Sources() {
		if _, ok := m[name]; ok {
			names = append(names, name)
			seen[name] = true
		}
	}
	var rest []string
	for name := range m {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}
