package errors

import "errors"

var (
	// ErrInvalidSession indicates the checkout session does not exist or
	// carries no customer reference
	ErrInvalidSession = errors.New("invalid checkout session")

	// ErrBillingNotConfigured indicates no billing provider API key is set
	ErrBillingNotConfigured = errors.New("billing provider is not configured")
)
