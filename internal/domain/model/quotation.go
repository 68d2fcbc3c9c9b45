package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// DefaultCurrency is the single local currency every source quotes in.
const DefaultCurrency = "CLP"

// DefaultUnit is used when a source does not report a unit of measure.
const DefaultUnit = "un"

var ErrInvalidPrice = errors.New("invalid price")

// Quotation is one price observation for a product from one source.
// Values are never mutated after NewQuotation; newer fetches supersede them.
type Quotation struct {
	Source      string    `json:"supermercado"`
	Product     string    `json:"producto"`
	UnitPrice   float64   `json:"precio"`
	Unit        string    `json:"unidad"`
	Currency    string    `json:"moneda"`
	URL         string    `json:"url,omitempty"`
	RetrievedAt time.Time `json:"obtenidoEn"`
}

// NewQuotation validates the price and fills defaults.
func NewQuotation(source, product string, unitPrice float64, unit string, retrievedAt time.Time) (Quotation, error) {
	if math.IsNaN(unitPrice) || math.IsInf(unitPrice, 0) || unitPrice < 0 {
		return Quotation{}, fmt.Errorf("%w: %v", ErrInvalidPrice, unitPrice)
	}
	if source == "" {
		return Quotation{}, errors.New("quotation source is required")
	}
	unit = strings.TrimSpace(unit)
	if unit == "" {
		unit = DefaultUnit
	}
	return Quotation{
		Source:      source,
		Product:     strings.TrimSpace(product),
		UnitPrice:   unitPrice,
		Unit:        unit,
		Currency:    DefaultCurrency,
		RetrievedAt: retrievedAt,
	}, nil
}

// WithURL returns a copy pointing at the listing the price came from.
func (q Quotation) WithURL(url string) Quotation {
	q.URL = url
	return q
}

// FetchResult is the outcome of one source lookup: a quotation or the
// reason there is none.
type FetchResult struct {
	Found     bool       `json:"encontrado"`
	Quotation *Quotation `json:"cotizacion"`
	Reason    string     `json:"motivo,omitempty"`
}
