package entity

import "time"

// Entitled subscription lifecycle states. The status set itself is open and
// provider-defined; only these two confer access.
const (
	StatusActive   = "active"
	StatusTrialing = "trialing"
)

// SubscriptionSnapshot is the canonical cached summary of a customer's
// subscription, keyed by provider customer ID. Writes always overwrite the
// previous snapshot; the cache holds no history. A nil timestamp means "not
// applicable", not "unknown".
type SubscriptionSnapshot struct {
	Status           string     `json:"status"`
	CurrentPeriodEnd *time.Time `json:"currentPeriodEnd"`
	TrialEnd         *time.Time `json:"trialEnd"`
}

// AccessDecision is the outcome of resolving a customer's entitlement.
// Snapshot is nil when no subscription state could be found.
type AccessDecision struct {
	HasAccess bool
	Snapshot  *SubscriptionSnapshot
}

// SessionLink is the result of linking a completed checkout session to a
// customer. Snapshot is nil when the session carried no subscription.
type SessionLink struct {
	CustomerID string
	Snapshot   *SubscriptionSnapshot
}
