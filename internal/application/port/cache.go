package port

import (
	"context"
	"time"

	"assetwatch/internal/domain/model"
)

// QuoteCache is a TTL-bounded quote store keyed by PriceQuery.
// Get returns false for absent or expired entries; Put replaces any prior
// entry for the same query. Backends degrade failures to a miss rather
// than surfacing them.
type QuoteCache interface {
	Get(ctx context.Context, q model.PriceQuery) (model.Quote, bool)
	Put(ctx context.Context, q model.PriceQuery, quote model.Quote, ttl time.Duration)
}
