package port

import (
	"context"

	"assetwatch/internal/domain/model"
)

// Source fetches the current quote for one asset identifier from one
// external endpoint. Implementations never retry; retry policy belongs to
// the price service.
type Source interface {
	Name() string
	Fetch(ctx context.Context, symbol string) (model.Quote, error)
}
