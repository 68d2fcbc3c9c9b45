package model

// PriceSummary aggregates every quotation for one product query.
// Best and Worst are nil when no source returned a price.
type PriceSummary struct {
	Product    string      `json:"producto"`
	Key        string      `json:"clave"`
	Quantity   float64     `json:"cantidad"`
	Quotations []Quotation `json:"cotizaciones"`
	Best       *Quotation  `json:"mejor"`
	Worst      *Quotation  `json:"peor"`
	BestTotal  *float64    `json:"totalMejor"`
	WorstTotal *float64    `json:"totalPeor"`
	Available  bool        `json:"disponible"`
}

// NewPriceSummary computes best/worst over quotations. The first quotation
// wins ties, so callers control tie-breaking through ordering.
func NewPriceSummary(q ProductQuery, quotations []Quotation) PriceSummary {
	s := PriceSummary{
		Product:    q.Name,
		Key:        q.Key,
		Quantity:   q.Quantity,
		Quotations: append([]Quotation{}, quotations...),
	}
	if len(quotations) == 0 {
		return s
	}

	best, worst := 0, 0
	for i, qt := range quotations {
		if qt.UnitPrice < quotations[best].UnitPrice {
			best = i
		}
		if qt.UnitPrice > quotations[worst].UnitPrice {
			worst = i
		}
	}

	b, w := s.Quotations[best], s.Quotations[worst]
	bt, wt := roundMoney(b.UnitPrice*q.Quantity), roundMoney(w.UnitPrice*q.Quantity)
	s.Best, s.Worst = &b, &w
	s.BestTotal, s.WorstTotal = &bt, &wt
	s.Available = true
	return s
}

// Spread is worst minus best unit price, 0 for empty summaries.
func (s PriceSummary) Spread() float64 {
	if s.Best == nil || s.Worst == nil {
		return 0
	}
	d := s.Worst.UnitPrice - s.Best.UnitPrice
	if d < 0 {
		return 0
	}
	return roundMoney(d)
}

// Quote returns the quotation from source, if any.
func (s PriceSummary) Quote(source string) (Quotation, bool) {
	for _, q := range s.Quotations {
		if q.Source == source {
			return q, true
		}
	}
	return Quotation{}, false
}
