package provider

import "context"

// BillingProvider defines the read-only surface of the billing provider that
// this service depends on. The provider is the authoritative source of
// subscription records; the snapshot cache is only an optimization over it.
type BillingProvider interface {
	// GetCheckoutSession retrieves a checkout session by ID.
	GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error)

	// GetSubscription retrieves a single subscription by ID.
	GetSubscription(ctx context.Context, subscriptionID string) (*Subscription, error)

	// ListSubscriptions returns up to limit subscriptions for the customer,
	// across all statuses, in provider order (typically newest first).
	ListSubscriptions(ctx context.Context, customerID string, limit int64) ([]*Subscription, error)

	// GetProviderName returns the provider name
	GetProviderName() string
}

// CheckoutSession is a provider-agnostic view of a checkout session. Customer
// and subscription references are normalized to plain IDs regardless of
// whether the provider returned them as IDs or expanded objects.
type CheckoutSession struct {
	ID             string `json:"id"`
	CustomerID     string `json:"customer_id"`
	SubscriptionID string `json:"subscription_id,omitempty"`
}

// Subscription is a provider-agnostic view of a subscription record.
// Timestamps are provider-given epoch seconds; zero means absent.
type Subscription struct {
	ID               string `json:"id"`
	CustomerID       string `json:"customer_id"`
	Status           string `json:"status"`
	CurrentPeriodEnd int64  `json:"current_period_end"`
	TrialEnd         int64  `json:"trial_end"`
}

// ProviderType represents the type of billing provider
type ProviderType string

const (
	ProviderTypeStripe ProviderType = "stripe"
)

// ProviderError carries a provider-level error code alongside the message.
type ProviderError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *ProviderError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}
