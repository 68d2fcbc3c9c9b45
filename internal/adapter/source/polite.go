package source

import (
	"context"
	"fmt"

	"canasta/internal/domain/model"
	"canasta/internal/domain/port"

	"golang.org/x/time/rate"
)

// PoliteSource spaces outbound requests to one source with a token bucket.
type PoliteSource struct {
	port.SourcePort
	limiter *rate.Limiter
}

// NewPoliteSource wraps src with rps requests per second and a burst of 1.
// A non-positive rps returns src unchanged.
func NewPoliteSource(src port.SourcePort, rps float64) port.SourcePort {
	if rps <= 0 {
		return src
	}
	return &PoliteSource{SourcePort: src, limiter: rate.NewLimiter(rate.Limit(rps), 1)}
}

func (p *PoliteSource) Fetch(ctx context.Context, product string) (model.Quotation, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return model.Quotation{}, fmt.Errorf("%w: waiting for %s: %w", ErrUnavailable, p.Name(), err)
	}
	return p.SourcePort.Fetch(ctx, product)
}
