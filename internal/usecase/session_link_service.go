package usecase

import (
	"context"
	"fmt"

	"github.com/wekeepgrowing/entitlement-service/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/entitlement-service/internal/domain/errors"
	"github.com/wekeepgrowing/entitlement-service/internal/domain/provider"
	"github.com/wekeepgrowing/entitlement-service/internal/domain/repository"
	"go.uber.org/zap"
)

// SessionLinkService resolves a completed checkout session to its customer
// and primes the snapshot cache from the session's subscription.
type SessionLinkService struct {
	snapshots repository.SnapshotRepository
	billing   provider.BillingProvider
	logger    *zap.Logger
}

// NewSessionLinkService creates a new session link service instance
func NewSessionLinkService(
	snapshots repository.SnapshotRepository,
	billing provider.BillingProvider,
	logger *zap.Logger,
) *SessionLinkService {
	return &SessionLinkService{
		snapshots: snapshots,
		billing:   billing,
		logger:    logger,
	}
}

// Link retrieves the checkout session, normalizes its customer reference,
// and, when the session carries a subscription, derives and caches a snapshot.
// The subscription sub-step is non-fatal: the customer binding succeeds even
// when the subscription cannot be retrieved or the cache cannot be written.
func (s *SessionLinkService) Link(ctx context.Context, sessionID string) (*entity.SessionLink, error) {
	if s.billing == nil {
		return nil, domainErrors.ErrBillingNotConfigured
	}

	session, err := s.billing.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve checkout session: %w", err)
	}
	if session == nil || session.CustomerID == "" {
		return nil, domainErrors.ErrInvalidSession
	}

	link := &entity.SessionLink{CustomerID: session.CustomerID}

	if session.SubscriptionID != "" {
		sub, err := s.billing.GetSubscription(ctx, session.SubscriptionID)
		if err != nil {
			s.logger.Warn("Failed to retrieve subscription for linked session",
				zap.String("session_id", sessionID),
				zap.String("subscription_id", session.SubscriptionID),
				zap.Error(err))
		} else {
			link.Snapshot = snapshotFromSubscription(sub)
			s.upsertSnapshot(ctx, session.CustomerID, link.Snapshot)
		}
	}

	s.logger.Info("Checkout session linked",
		zap.String("session_id", sessionID),
		zap.String("customer_id", session.CustomerID),
		zap.Bool("snapshot_cached", link.Snapshot != nil))

	return link, nil
}

func (s *SessionLinkService) upsertSnapshot(ctx context.Context, customerID string, snapshot *entity.SubscriptionSnapshot) {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.Upsert(ctx, customerID, snapshot); err != nil {
		s.logger.Warn("Failed to cache snapshot during session link",
			zap.String("customer_id", customerID),
			zap.Error(err))
	}
}
