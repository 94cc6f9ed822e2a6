package payment

import (
	"fmt"

	"github.com/airosofts/licensor/config"
	"github.com/airosofts/licensor/ports"
)

// NewProvider creates a payment provider based on configuration.
func NewProvider(cfg config.PaymentConfig) (ports.PaymentProvider, error) {
	switch cfg.Provider {
	case "stripe":
		if cfg.StripeSecretKey == "" {
			return nil, fmt.Errorf("stripe secret key is required")
		}
		return NewStripeProvider(StripeConfig{
			SecretKey:     cfg.StripeSecretKey,
			WebhookSecret: cfg.StripeWebhookSecret,
		}), nil

	case "dummy", "test":
		// Dummy provider for development/testing - simulates successful payments
		email := cfg.DummyEmail
		if email == "" {
			email = "buyer@example.com"
		}
		return NewDummyProvider(email), nil

	case "none", "":
		return NewNoopProvider(), nil

	default:
		return nil, fmt.Errorf("unknown payment provider: %s", cfg.Provider)
	}
}
