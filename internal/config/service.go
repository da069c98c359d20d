package config

type ServiceConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
	ClientURL   string `yaml:"client_url"`

	// Billing provider credentials. Either may be absent: a missing secret
	// key disables the provider fallback, a missing webhook secret makes the
	// webhook endpoint acknowledge without verifying.
	StripeSecretKey     string `yaml:"stripe_secret_key"`
	StripeWebhookSecret string `yaml:"stripe_webhook_secret"`

	// InternalJWTSecret guards the operator-facing internal endpoints.
	InternalJWTSecret string `yaml:"internal_jwt_secret"`
}
