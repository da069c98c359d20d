package stripe

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v79"
	checkoutsession "github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/subscription"
	"github.com/wekeepgrowing/entitlement-service/internal/domain/provider"
	"go.uber.org/zap"
)

// StripeProvider implements the BillingProvider interface for Stripe
type StripeProvider struct {
	logger *zap.Logger
}

// NewStripeProvider creates a new Stripe provider. The secret key is set on
// the package-level client; stripe-go clients are safe for concurrent use.
func NewStripeProvider(secretKey string, logger *zap.Logger) *StripeProvider {
	stripe.Key = secretKey
	return &StripeProvider{
		logger: logger,
	}
}

// GetProviderName returns the provider name
func (s *StripeProvider) GetProviderName() string {
	return string(provider.ProviderTypeStripe)
}

// GetCheckoutSession retrieves a checkout session by ID
func (s *StripeProvider) GetCheckoutSession(ctx context.Context, sessionID string) (*provider.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := checkoutsession.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve checkout session: %w", err)
	}

	out := &provider.CheckoutSession{ID: sess.ID}
	if sess.Customer != nil {
		out.CustomerID = sess.Customer.ID
	}
	if sess.Subscription != nil {
		out.SubscriptionID = sess.Subscription.ID
	}
	return out, nil
}

// GetSubscription retrieves a single subscription by ID
func (s *StripeProvider) GetSubscription(ctx context.Context, subscriptionID string) (*provider.Subscription, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx

	sub, err := subscription.Get(subscriptionID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve subscription: %w", err)
	}

	return fromStripeSubscription(sub), nil
}

// ListSubscriptions returns up to limit subscriptions for the customer across
// all statuses, in Stripe's own ordering (newest first).
func (s *StripeProvider) ListSubscriptions(ctx context.Context, customerID string, limit int64) ([]*provider.Subscription, error) {
	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerID),
		Status:   stripe.String("all"),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(limit)

	var subs []*provider.Subscription
	iter := subscription.List(params)
	for iter.Next() {
		subs = append(subs, fromStripeSubscription(iter.Subscription()))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("error listing subscriptions: %w", err)
	}

	return subs, nil
}

func fromStripeSubscription(sub *stripe.Subscription) *provider.Subscription {
	out := &provider.Subscription{
		ID:               sub.ID,
		Status:           string(sub.Status),
		CurrentPeriodEnd: sub.CurrentPeriodEnd,
		TrialEnd:         sub.TrialEnd,
	}
	if sub.Customer != nil {
		out.CustomerID = sub.Customer.ID
	}
	return out
}
