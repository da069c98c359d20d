package usecase

import (
	"context"
	"time"

	"github.com/wekeepgrowing/entitlement-service/internal/domain/entity"
	"github.com/wekeepgrowing/entitlement-service/internal/domain/provider"
	"github.com/wekeepgrowing/entitlement-service/internal/domain/repository"
	"go.uber.org/zap"
)

// subscriptionListLimit bounds the provider page size on cache-miss fallback.
const subscriptionListLimit = 10

// EntitlementService answers whether a customer currently holds paid access,
// reading the snapshot cache first and falling back to the billing provider.
type EntitlementService struct {
	snapshots repository.SnapshotRepository
	billing   provider.BillingProvider
	logger    *zap.Logger
}

// NewEntitlementService creates a new entitlement service instance. Both the
// snapshot store and the billing provider may be nil; a missing dependency
// degrades the corresponding path instead of failing it.
func NewEntitlementService(
	snapshots repository.SnapshotRepository,
	billing provider.BillingProvider,
	logger *zap.Logger,
) *EntitlementService {
	return &EntitlementService{
		snapshots: snapshots,
		billing:   billing,
		logger:    logger,
	}
}

// Evaluate is the entitlement rule: access is granted iff the status is an
// entitled state (active or trialing) and at least one temporal window, paid
// period or trial, is still open. A snapshot without any time boundary is
// insufficient evidence of access. Total and side-effect-free.
func Evaluate(snapshot *entity.SubscriptionSnapshot, now time.Time) bool {
	if snapshot == nil {
		return false
	}
	if snapshot.Status != entity.StatusActive && snapshot.Status != entity.StatusTrialing {
		return false
	}

	withinPeriod := snapshot.CurrentPeriodEnd != nil && snapshot.CurrentPeriodEnd.After(now)
	withinTrial := snapshot.TrialEnd != nil && snapshot.TrialEnd.After(now)

	return withinPeriod || withinTrial
}

// Resolve returns the access decision for a customer. It never returns an
// error: the access check is polled on every protected page load, so every
// failure mode collapses to denial.
func (s *EntitlementService) Resolve(ctx context.Context, customerID string) entity.AccessDecision {
	if customerID == "" {
		return entity.AccessDecision{}
	}

	now := time.Now()

	if s.snapshots != nil {
		snapshot, err := s.snapshots.Get(ctx, customerID)
		if err != nil {
			s.logger.Warn("Snapshot cache lookup failed, falling through to provider",
				zap.String("customer_id", customerID),
				zap.Error(err))
		} else if snapshot != nil {
			return entity.AccessDecision{HasAccess: Evaluate(snapshot, now), Snapshot: snapshot}
		}
	}

	if s.billing == nil {
		return entity.AccessDecision{}
	}

	subs, err := s.billing.ListSubscriptions(ctx, customerID, subscriptionListLimit)
	if err != nil {
		s.logger.Warn("Failed to list subscriptions from provider",
			zap.String("customer_id", customerID),
			zap.Error(err))
		return entity.AccessDecision{}
	}
	if len(subs) == 0 {
		return entity.AccessDecision{}
	}

	// Prefer an entitled subscription; otherwise take the first in provider
	// order. Provider ordering is unspecified, so this is best effort.
	best := subs[0]
	for _, sub := range subs {
		if sub.Status == entity.StatusActive || sub.Status == entity.StatusTrialing {
			best = sub
			break
		}
	}

	snapshot := snapshotFromSubscription(best)

	if s.snapshots != nil {
		if err := s.snapshots.Upsert(ctx, customerID, snapshot); err != nil {
			s.logger.Warn("Failed to repopulate snapshot cache",
				zap.String("customer_id", customerID),
				zap.Error(err))
		}
	}

	return entity.AccessDecision{HasAccess: Evaluate(snapshot, now), Snapshot: snapshot}
}
