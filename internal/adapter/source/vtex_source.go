package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"canasta/internal/domain/model"
	"canasta/internal/domain/port"
)

const vtexSearchPath = "/api/catalog_system/pub/products/search"

// VTEXSource queries the public catalog API of VTEX storefronts, which many
// supermarket chains run on.
type VTEXSource struct {
	name     string
	baseURL  string
	renderer Renderer
	now      func() time.Time
	log      *slog.Logger
}

func NewVTEXSource(def model.SourceDefinition, renderer Renderer, log *slog.Logger) port.SourcePort {
	return &VTEXSource{
		name:     def.Name,
		baseURL:  strings.TrimRight(def.BaseURL, "/"),
		renderer: renderer,
		now:      time.Now,
		log:      log,
	}
}

func (s *VTEXSource) Name() string {
	return s.name
}

type vtexProduct struct {
	ProductName string     `json:"productName"`
	Link        string     `json:"link"`
	Items       []vtexItem `json:"items"`
}

type vtexItem struct {
	Name            string       `json:"name"`
	MeasurementUnit string       `json:"measurementUnit"`
	UnitMultiplier  float64      `json:"unitMultiplier"`
	Sellers         []vtexSeller `json:"sellers"`
}

type vtexSeller struct {
	CommertialOffer struct {
		Price             *float64 `json:"Price"`
		AvailableQuantity int      `json:"AvailableQuantity"`
	} `json:"commertialOffer"`
}

func (s *VTEXSource) Fetch(ctx context.Context, product string) (model.Quotation, error) {
	q := url.Values{}
	q.Set("ft", strings.TrimSpace(product))
	q.Set("_from", "0")
	q.Set("_to", "9")
	target := s.baseURL + vtexSearchPath + "?" + q.Encode()

	body, err := s.renderer.Render(ctx, target)
	if err != nil {
		return model.Quotation{}, err
	}

	var products []vtexProduct
	if err := json.Unmarshal(body, &products); err != nil {
		return model.Quotation{}, fmt.Errorf("%w: vtex json: %v", ErrParse, err)
	}
	if len(products) == 0 {
		return model.Quotation{}, fmt.Errorf("%w: %q on %s", ErrNotFound, product, s.name)
	}

	for _, p := range products {
		for _, item := range p.Items {
			price, ok := firstOffer(item.Sellers)
			if !ok {
				continue
			}
			unit := ParseUnit(item.Name)
			if unit == "" && item.MeasurementUnit != "" {
				unit = vtexUnit(item.UnitMultiplier, item.MeasurementUnit)
			}
			quote, err := model.NewQuotation(s.name, p.ProductName, price, unit, s.now())
			if err != nil {
				s.log.Debug("vtex offer rejected", "source", s.name, "product", p.ProductName, "error", err)
				continue
			}
			return quote.WithURL(p.Link), nil
		}
	}

	return model.Quotation{}, fmt.Errorf("%w: no available offer for %q on %s", ErrNotFound, product, s.name)
}

// firstOffer returns the first in-stock seller price. A missing price field
// is not an offer; it is never read as zero.
func firstOffer(sellers []vtexSeller) (float64, bool) {
	for _, sl := range sellers {
		o := sl.CommertialOffer
		if o.Price == nil || o.AvailableQuantity <= 0 || *o.Price <= 0 {
			continue
		}
		return *o.Price, true
	}
	return 0, false
}

func vtexUnit(multiplier float64, unit string) string {
	if multiplier <= 0 {
		multiplier = 1
	}
	return strings.TrimSpace(fmt.Sprintf("%g %s", multiplier, canonicalUnit(unit)))
}
