package port

import (
	"context"

	"assetwatch/internal/domain/model"
)

// AssetStore is the persistence collaborator. The price core never owns
// storage: it reads the tracked assets and hands finished snapshot
// records back.
type AssetStore interface {
	ListTrackedAssets(ctx context.Context) ([]model.TrackedAsset, error)
	WriteSnapshot(ctx context.Context, rec model.SnapshotRecord) error
	Close() error
}
