package usecase

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"canasta/internal/adapter/cache"
	"canasta/internal/adapter/source"
	"canasta/internal/application/service"
	"canasta/internal/domain/model"
	"canasta/internal/domain/port"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUseCase(t *testing.T, opts Options) *PriceUseCase {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	sources := []port.SourcePort{
		source.NewFixtureSource("lider", map[string]float64{"arroz": 100, "leche": 700}, log),
		source.NewFixtureSource("jumbo", map[string]float64{"arroz": 120, "leche": 650}, log),
	}
	agg := service.NewAggregator(sources, cache.NewMemory(time.Minute), service.AggregatorConfig{}, log)
	return NewPriceUseCase(
		agg,
		service.NewComparator(agg, "lider", 4, log),
		service.NewOptimizer(agg, 4, log),
		sources[0],
		opts,
		log,
	)
}

func TestSearch(t *testing.T) {
	uc := newUseCase(t, Options{})

	s, err := uc.Search(context.Background(), "  Leche ", 2)
	require.NoError(t, err)
	assert.Equal(t, "jumbo", s.Best.Source)
	assert.Equal(t, 1300.0, *s.BestTotal)

	_, err = uc.Search(context.Background(), " ", 1)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = uc.Search(context.Background(), "pan", -1)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCompare_Validation(t *testing.T) {
	uc := newUseCase(t, Options{MaxItems: 2})

	_, err := uc.Compare(context.Background(), []string{" ", ""})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Compare(context.Background(), []string{"a", "b", "c"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	r, err := uc.Compare(context.Background(), []string{"arroz", " leche "})
	require.NoError(t, err)
	assert.Equal(t, 2, r.Stats.TotalItems)
	assert.Equal(t, "lider", *r.Stats.BestGlobalSource)
}

func TestOptimize(t *testing.T) {
	uc := newUseCase(t, Options{})

	arroz, _ := model.NewProductQuery("arroz", 2)
	leche, _ := model.NewProductQuery("leche", 1)
	plan, err := uc.Optimize(context.Background(), []model.ProductQuery{arroz, leche})
	require.NoError(t, err)
	assert.Equal(t, 850.0, plan.TotalCost)
	assert.Equal(t, 890.0, *plan.BaselineCost)
	assert.Equal(t, 40.0, plan.TotalSavings)

	plan, err = uc.Optimize(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, plan.TotalCost)
}

func TestScrape(t *testing.T) {
	uc := newUseCase(t, Options{})
	assert.Equal(t, "lider", uc.ScrapeSource())

	r, err := uc.Scrape(context.Background(), "arroz")
	require.NoError(t, err)
	assert.True(t, r.Found)
	assert.Equal(t, 100.0, r.Quotation.UnitPrice)

	r, err = uc.Scrape(context.Background(), "caviar")
	require.NoError(t, err)
	assert.False(t, r.Found)
	assert.Equal(t, "not_found", r.Reason)

	_, err = uc.Scrape(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestScrapeMany_BatchCap(t *testing.T) {
	uc := newUseCase(t, Options{})

	eleven := make([]string, 11)
	for i := range eleven {
		eleven[i] = "arroz"
	}
	_, err := uc.ScrapeMany(context.Background(), eleven)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, source.ErrBatchTooLarge)

	res, err := uc.ScrapeMany(context.Background(), eleven[:10])
	require.NoError(t, err)
	assert.Len(t, res, 1)

	_, err = uc.ScrapeMany(context.Background(), []string{" "})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
