package pricing

import (
	"context"

	"github.com/plugpoint/plugpoint/core/model"
)

// SpotPriceSource yields the current per-kWh electricity rate. Implemented
// by the mock generator and by cache-backed wrappers.
type SpotPriceSource interface {
	SpotPrice(ctx context.Context) (model.SpotPrice, error)
}

// SourceFunc adapts a function to SpotPriceSource.
type SourceFunc func(ctx context.Context) (model.SpotPrice, error)

func (f SourceFunc) SpotPrice(ctx context.Context) (model.SpotPrice, error) { return f(ctx) }
