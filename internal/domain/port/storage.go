package port

import (
	"context"

	"canasta/internal/domain/model"
)

// SourceCatalog lists the external sources the service should query.
type SourceCatalog interface {
	ListSources(ctx context.Context) ([]model.SourceDefinition, error)
	Ping(ctx context.Context) error
	Close() error
}
