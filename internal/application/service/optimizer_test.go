package service

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"canasta/internal/domain/model"
	"canasta/internal/domain/port"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func query(t *testing.T, name string, qty float64) model.ProductQuery {
	t.Helper()
	q, err := model.NewProductQuery(name, qty)
	require.NoError(t, err)
	return q
}

func TestOptimizer_PicksCheapestPerItem(t *testing.T) {
	a := &fakeSource{name: "A", prices: map[string]float64{"arroz": 100, "leche": 700}}
	b := &fakeSource{name: "B", prices: map[string]float64{"arroz": 120, "leche": 650}}
	agg, _ := newAggregator(a, b)
	o := NewOptimizer(agg, 4, discardLogger())

	plan, err := o.Optimize(context.Background(), []model.ProductQuery{
		query(t, "arroz", 2),
		query(t, "leche", 1),
	})
	require.NoError(t, err)
	require.Len(t, plan.Items, 2)

	assert.Equal(t, "A", *plan.Items[0].Source)
	assert.Equal(t, 100.0, *plan.Items[0].UnitPrice)
	assert.Equal(t, 200.0, plan.Items[0].LineTotal)
	assert.Equal(t, "B", *plan.Items[1].Source)
	assert.Equal(t, 650.0, plan.Items[1].LineTotal)

	assert.Equal(t, 850.0, plan.TotalCost)
	// A-only: 200+700=900, B-only: 240+650=890.
	require.NotNil(t, plan.BaselineSource)
	assert.Equal(t, "B", *plan.BaselineSource)
	assert.Equal(t, 890.0, *plan.BaselineCost)
	assert.Equal(t, 40.0, plan.TotalSavings)

	require.Len(t, plan.Purchases, 2)
	assert.Equal(t, model.Purchase{Source: "A", Products: []string{"arroz"}, Subtotal: 200}, plan.Purchases[0])
	assert.Equal(t, model.Purchase{Source: "B", Products: []string{"leche"}, Subtotal: 650}, plan.Purchases[1])
}

func TestOptimizer_TieGoesToFirstSource(t *testing.T) {
	a := &fakeSource{name: "A", prices: map[string]float64{"pan": 100}}
	b := &fakeSource{name: "B", prices: map[string]float64{"pan": 100}}
	agg, _ := newAggregator(a, b)

	plan, err := NewOptimizer(agg, 4, discardLogger()).Optimize(context.Background(), []model.ProductQuery{query(t, "pan", 3)})
	require.NoError(t, err)
	assert.Equal(t, "A", *plan.Items[0].Source)
	assert.Equal(t, "A", *plan.BaselineSource)
	assert.Zero(t, plan.TotalSavings)
}

func TestOptimizer_UnavailableItem(t *testing.T) {
	a := &fakeSource{name: "A", prices: map[string]float64{"pan": 100}}
	agg, _ := newAggregator(a)

	plan, err := NewOptimizer(agg, 4, discardLogger()).Optimize(context.Background(), []model.ProductQuery{
		query(t, "caviar", 1),
		query(t, "pan", 2),
	})
	require.NoError(t, err)
	require.Len(t, plan.Items, 2)

	missing := plan.Items[0]
	assert.Equal(t, "caviar", missing.Product)
	assert.Nil(t, missing.Source)
	assert.Nil(t, missing.UnitPrice)
	assert.False(t, missing.Available)
	assert.Zero(t, missing.LineTotal)

	assert.Equal(t, 200.0, plan.TotalCost)
	assert.Equal(t, 200.0, *plan.BaselineCost)
}

func TestOptimizer_NoFullyCoveringSource(t *testing.T) {
	a := &fakeSource{name: "A", prices: map[string]float64{"arroz": 100}}
	b := &fakeSource{name: "B", prices: map[string]float64{"leche": 650}}
	agg, _ := newAggregator(a, b)

	plan, err := NewOptimizer(agg, 4, discardLogger()).Optimize(context.Background(), []model.ProductQuery{
		query(t, "arroz", 1),
		query(t, "leche", 1),
	})
	require.NoError(t, err)
	assert.Equal(t, 750.0, plan.TotalCost)
	assert.Nil(t, plan.BaselineSource)
	assert.Nil(t, plan.BaselineCost)
	assert.Zero(t, plan.TotalSavings)
}

func TestOptimizer_EmptyList(t *testing.T) {
	agg, _ := newAggregator(&fakeSource{name: "A"})
	plan, err := NewOptimizer(agg, 4, discardLogger()).Optimize(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, plan.Items)
	assert.NotNil(t, plan.Items)
	assert.Zero(t, plan.TotalCost)
	assert.Zero(t, plan.TotalSavings)
	assert.Nil(t, plan.BaselineCost)
}

func TestOptimizer_NeverWorseThanAnySingleSource(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	products := []string{"arroz", "leche", "pan", "huevos", "aceite", "azucar"}

	for round := 0; round < 50; round++ {
		var srcs []port.SourcePort
		var fakes []*fakeSource
		for s := 0; s < 3; s++ {
			f := &fakeSource{name: fmt.Sprintf("S%d", s), prices: map[string]float64{}}
			for _, p := range products {
				if r.Intn(4) > 0 {
					f.prices[p] = float64(100 + r.Intn(3000))
				}
			}
			srcs = append(srcs, f)
			fakes = append(fakes, f)
		}
		agg, _ := newAggregator(srcs...)

		var items []model.ProductQuery
		for _, p := range products {
			items = append(items, query(t, p, float64(1+r.Intn(4))))
		}

		plan, err := NewOptimizer(agg, 4, discardLogger()).Optimize(context.Background(), items)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, plan.TotalSavings, 0.0)

		for _, f := range fakes {
			total, covers := 0.0, true
			for i, it := range items {
				if !plan.Items[i].Available {
					continue
				}
				p, ok := f.prices[it.Key]
				if !ok {
					covers = false
					break
				}
				total += p * it.Quantity
			}
			if covers {
				assert.LessOrEqual(t, plan.TotalCost, total, "round %d source %s", round, f.name)
			}
		}
	}
}
