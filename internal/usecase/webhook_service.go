package usecase

import (
	"context"
	"encoding/json"

	"github.com/stripe/stripe-go/v79"
	"github.com/wekeepgrowing/entitlement-service/internal/adapter/repository"
	"github.com/wekeepgrowing/entitlement-service/internal/domain/entity"
	"github.com/wekeepgrowing/entitlement-service/internal/domain/provider"
	domainRepo "github.com/wekeepgrowing/entitlement-service/internal/domain/repository"
	"go.uber.org/zap"
)

// WebhookService converts verified billing events into snapshot upserts.
// Every upsert is a full overwrite from the event's own fields, so
// redelivered events leave the cache unchanged.
type WebhookService struct {
	snapshots domainRepo.SnapshotRepository
	billing   provider.BillingProvider
	events    repository.EventLogRepository
	logger    *zap.Logger
}

// NewWebhookService creates a new webhook service instance. The event log is
// optional; when nil, events are processed without being recorded.
func NewWebhookService(
	snapshots domainRepo.SnapshotRepository,
	billing provider.BillingProvider,
	events repository.EventLogRepository,
	logger *zap.Logger,
) *WebhookService {
	return &WebhookService{
		snapshots: snapshots,
		billing:   billing,
		events:    events,
		logger:    logger,
	}
}

// Ingest dispatches a signature-verified event. Only the subscription
// lifecycle subset is acted upon; anything else is acknowledged untouched.
// Upstream failures inside a handled event are swallowed; a later direct
// subscription event corrects the cache.
func (s *WebhookService) Ingest(ctx context.Context, event stripe.Event) error {
	if s.events != nil {
		if err := s.events.SaveEvent(ctx, event.ID, string(event.Type), event.Created, event.Data.Raw); err != nil {
			s.logger.Warn("Failed to record webhook event",
				zap.String("event_id", event.ID),
				zap.Error(err))
		}
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			s.logger.Error("Failed to parse checkout session payload",
				zap.String("event_id", event.ID),
				zap.Error(err))
			s.markFailed(ctx, event.ID, err)
			return err
		}
		s.handleCheckoutCompleted(ctx, &session)

	case stripe.EventTypeCustomerSubscriptionCreated,
		stripe.EventTypeCustomerSubscriptionUpdated,
		stripe.EventTypeCustomerSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			s.logger.Error("Failed to parse subscription payload",
				zap.String("event_id", event.ID),
				zap.Error(err))
			s.markFailed(ctx, event.ID, err)
			return err
		}
		s.upsertFromSubscription(ctx, subscriptionFromStripe(&sub))

	default:
		s.logger.Debug("Ignoring unhandled event type",
			zap.String("event_id", event.ID),
			zap.String("type", string(event.Type)))
	}

	if s.events != nil {
		if err := s.events.MarkProcessed(ctx, event.ID); err != nil {
			s.logger.Warn("Failed to mark webhook event processed",
				zap.String("event_id", event.ID),
				zap.Error(err))
		}
	}

	return nil
}

// handleCheckoutCompleted fetches the session's subscription from the
// provider. The extra round-trip is needed because the checkout payload does
// not carry the subscription's period fields.
func (s *WebhookService) handleCheckoutCompleted(ctx context.Context, session *stripe.CheckoutSession) {
	if session.Subscription == nil || session.Subscription.ID == "" {
		return
	}
	if s.billing == nil {
		s.logger.Warn("Billing provider not configured, skipping subscription fetch",
			zap.String("session_id", session.ID))
		return
	}

	sub, err := s.billing.GetSubscription(ctx, session.Subscription.ID)
	if err != nil {
		s.logger.Warn("Failed to retrieve subscription for completed checkout",
			zap.String("session_id", session.ID),
			zap.String("subscription_id", session.Subscription.ID),
			zap.Error(err))
		return
	}
	s.upsertFromSubscription(ctx, sub)
}

func (s *WebhookService) upsertFromSubscription(ctx context.Context, sub *provider.Subscription) {
	if sub.CustomerID == "" {
		s.logger.Warn("Subscription event without customer reference, skipping",
			zap.String("subscription_id", sub.ID))
		return
	}

	snapshot := snapshotFromSubscription(sub)

	s.logger.Info("Upserting subscription snapshot",
		zap.String("customer_id", sub.CustomerID),
		zap.String("subscription_id", sub.ID),
		zap.String("status", snapshot.Status))

	s.upsertSnapshot(ctx, sub.CustomerID, snapshot)
}

func (s *WebhookService) upsertSnapshot(ctx context.Context, customerID string, snapshot *entity.SubscriptionSnapshot) {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.Upsert(ctx, customerID, snapshot); err != nil {
		s.logger.Warn("Failed to upsert snapshot from webhook",
			zap.String("customer_id", customerID),
			zap.Error(err))
	}
}

func (s *WebhookService) markFailed(ctx context.Context, eventID string, cause error) {
	if s.events == nil {
		return
	}
	if err := s.events.MarkFailed(ctx, eventID, cause); err != nil {
		s.logger.Warn("Failed to mark webhook event failed",
			zap.String("event_id", eventID),
			zap.Error(err))
	}
}
