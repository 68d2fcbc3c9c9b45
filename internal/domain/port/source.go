package port

import (
	"context"

	"canasta/internal/domain/model"
)

// SourcePort fetches a quotation for a product name from one external source.
// Implementations classify failures; callers treat any error as "no quotation
// from this source this round".
type SourcePort interface {
	Name() string
	Fetch(ctx context.Context, product string) (model.Quotation, error)
}
