package model

// PlanItem is one shopping-list line with the source chosen for it.
// Source and UnitPrice are nil when no source quoted the item.
type PlanItem struct {
	Product   string   `json:"producto"`
	Quantity  float64  `json:"cantidad"`
	Source    *string  `json:"supermercado"`
	UnitPrice *float64 `json:"precioUnitario"`
	LineTotal float64  `json:"total"`
	Available bool     `json:"disponible"`
}

// Purchase groups the items bought at one source.
type Purchase struct {
	Source   string   `json:"supermercado"`
	Products []string `json:"productos"`
	Subtotal float64  `json:"subtotal"`
}

// OptimizationPlan allocates each item to its cheapest source and compares
// the total with buying everything from the best single source.
type OptimizationPlan struct {
	Items          []PlanItem `json:"items"`
	Purchases      []Purchase `json:"compras"`
	TotalCost      float64    `json:"costoTotal"`
	BaselineSource *string    `json:"supermercadoBase"`
	BaselineCost   *float64   `json:"costoBase"`
	TotalSavings   float64    `json:"ahorroTotal"`
}

// EmptyPlan is the plan for an empty shopping list.
func EmptyPlan() OptimizationPlan {
	return OptimizationPlan{Items: []PlanItem{}, Purchases: []Purchase{}}
}
