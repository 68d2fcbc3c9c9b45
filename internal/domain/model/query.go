package model

import (
	"errors"
	"math"
	"strings"
)

var (
	ErrEmptyProduct    = errors.New("product name is empty")
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

// ProductQuery is one requested product. Key is the normalized cache key.
type ProductQuery struct {
	Name     string  `json:"nombre"`
	Key      string  `json:"-"`
	Quantity float64 `json:"cantidad"`
}

// NewProductQuery trims the name and defaults a missing quantity to 1.
// A zero quantity is read as absent; negative or non-finite ones are rejected.
func NewProductQuery(name string, quantity float64) (ProductQuery, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return ProductQuery{}, ErrEmptyProduct
	}
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 || math.IsNaN(quantity) || math.IsInf(quantity, 0) {
		return ProductQuery{}, ErrInvalidQuantity
	}
	return ProductQuery{Name: name, Key: NormalizeKey(name), Quantity: quantity}, nil
}

// NormalizeKey lowercases, trims and collapses inner whitespace so textual
// variants of one product share a key.
func NormalizeKey(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
