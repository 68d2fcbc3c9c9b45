package source

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"canasta/internal/domain/model"
	"canasta/internal/domain/port"
)

// FixtureSource answers from a fixed price list. It backs demo mode and
// tests, where no external site should be contacted.
type FixtureSource struct {
	name   string
	prices map[string]float64 // normalized product key -> unit price
	keys   []string
	now    func() time.Time
	log    *slog.Logger
}

func NewFixtureSource(name string, prices map[string]float64, log *slog.Logger) port.SourcePort {
	f := &FixtureSource{
		name:   name,
		prices: make(map[string]float64, len(prices)),
		now:    time.Now,
		log:    log,
	}
	for product, price := range prices {
		key := model.NormalizeKey(product)
		f.prices[key] = price
		f.keys = append(f.keys, key)
	}
	sort.Strings(f.keys)
	return f
}

func (f *FixtureSource) Name() string { return f.name }

// Fetch matches the normalized product exactly, then falls back to the
// first catalog entry (alphabetically) that contains it.
func (f *FixtureSource) Fetch(ctx context.Context, product string) (model.Quotation, error) {
	if err := ctx.Err(); err != nil {
		return model.Quotation{}, err
	}

	key := model.NormalizeKey(product)
	match, ok := key, false
	if _, ok = f.prices[key]; !ok {
		for _, k := range f.keys {
			if strings.Contains(k, key) {
				match, ok = k, true
				break
			}
		}
	}
	if !ok || key == "" {
		return model.Quotation{}, fmt.Errorf("%w: %q on %s", ErrNotFound, product, f.name)
	}

	q, err := model.NewQuotation(f.name, match, f.prices[match], ParseUnit(match), f.now())
	if err != nil {
		return model.Quotation{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	f.log.Debug("fixture quotation", "source", f.name, "product", match, "price", q.UnitPrice)
	return q, nil
}
