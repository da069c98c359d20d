package usecase

import (
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/wekeepgrowing/entitlement-service/internal/domain/entity"
	"github.com/wekeepgrowing/entitlement-service/internal/domain/provider"
)

// snapshotFromSubscription derives the canonical cached snapshot from a
// provider subscription record. Epoch seconds of zero map to nil timestamps.
func snapshotFromSubscription(sub *provider.Subscription) *entity.SubscriptionSnapshot {
	return &entity.SubscriptionSnapshot{
		Status:           sub.Status,
		CurrentPeriodEnd: unixOrNil(sub.CurrentPeriodEnd),
		TrialEnd:         unixOrNil(sub.TrialEnd),
	}
}

// subscriptionFromStripe normalizes a Stripe subscription object, as carried
// in a webhook payload, into the provider-agnostic form. The customer field
// arrives as either a bare ID or an expanded object; stripe-go decodes both
// into a Customer with at least the ID set.
func subscriptionFromStripe(sub *stripe.Subscription) *provider.Subscription {
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

func unixOrNil(sec int64) *time.Time {
	if sec <= 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}
