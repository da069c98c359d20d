package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wekeepgrowing/entitlement-service/internal/domain/entity"
	domainRepo "github.com/wekeepgrowing/entitlement-service/internal/domain/repository"
	"go.uber.org/zap"
)

const snapshotKeyPrefix = "sub:customer:"

type snapshotRepository struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration
}

// NewSnapshotRepository creates a redis-backed snapshot store. A ttl of zero
// keeps entries until the next overwrite.
func NewSnapshotRepository(client *redis.Client, logger *zap.Logger, ttl time.Duration) domainRepo.SnapshotRepository {
	return &snapshotRepository{
		client: client,
		logger: logger,
		ttl:    ttl,
	}
}

func snapshotKey(customerID string) string {
	return snapshotKeyPrefix + customerID
}

// decodeSnapshot parses a stored snapshot value. A value that cannot be
// decoded is indistinguishable from an absent one.
func decodeSnapshot(raw []byte) *entity.SubscriptionSnapshot {
	var snapshot entity.SubscriptionSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil
	}
	if snapshot.Status == "" {
		return nil
	}
	return &snapshot
}

func (r *snapshotRepository) Get(ctx context.Context, customerID string) (*entity.SubscriptionSnapshot, error) {
	value, err := r.client.Get(ctx, snapshotKey(customerID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	snapshot := decodeSnapshot([]byte(value))
	if snapshot == nil {
		r.logger.Warn("Discarding undecodable cached snapshot",
			zap.String("customer_id", customerID))
		return nil, nil
	}
	return snapshot, nil
}

func (r *snapshotRepository) Upsert(ctx context.Context, customerID string, snapshot *entity.SubscriptionSnapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, snapshotKey(customerID), payload, r.ttl).Err()
}
