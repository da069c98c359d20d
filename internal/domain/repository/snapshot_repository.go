package repository

import (
	"context"

	"github.com/wekeepgrowing/entitlement-service/internal/domain/entity"
)

// SnapshotRepository is the keyed snapshot store. Get returns (nil, nil) for
// both a missing key and an undecodable value; implementations must never
// surface a decode failure as an error. Upsert unconditionally overwrites.
type SnapshotRepository interface {
	Get(ctx context.Context, customerID string) (*entity.SubscriptionSnapshot, error)
	Upsert(ctx context.Context, customerID string, snapshot *entity.SubscriptionSnapshot) error
}
