package model

// ComparisonResult is the price summary of one item plus the maximum saving
// available between its most and least expensive sources.
type ComparisonResult struct {
	Product        string       `json:"producto"`
	Summary        PriceSummary `json:"resumen"`
	MaxSavings     float64      `json:"ahorroMaximo"`
	CheapestSource *string      `json:"supermercadoMasBarato"`
}

// NewComparisonResult derives savings and cheapest source from a summary.
func NewComparisonResult(s PriceSummary) ComparisonResult {
	r := ComparisonResult{
		Product:    s.Product,
		Summary:    s,
		MaxSavings: s.Spread(),
	}
	if s.Best != nil {
		src := s.Best.Source
		r.CheapestSource = &src
	}
	return r
}

type ComparisonStats struct {
	TotalItems           int     `json:"totalItems"`
	BestGlobalSource     *string `json:"mejorSupermercadoGlobal"`
	TotalPossibleSavings float64 `json:"ahorroTotalPosible"`
}

type ComparisonReport struct {
	Comparisons []ComparisonResult `json:"comparaciones"`
	Stats       ComparisonStats    `json:"estadisticas"`
}
