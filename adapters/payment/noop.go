package payment

import (
	"context"
	"errors"

	"github.com/airosofts/licensor/domain/checkout"
	"github.com/airosofts/licensor/ports"
)

var (
	// ErrPaymentsDisabled is returned when payments are not configured.
	ErrPaymentsDisabled = errors.New("payments are not configured")
)

// NoopProvider is a no-op payment provider for when payments are disabled.
type NoopProvider struct{}

// NewNoopProvider creates a new no-op payment provider.
func NewNoopProvider() *NoopProvider {
	return &NoopProvider{}
}

// Name returns the provider name.
func (p *NoopProvider) Name() string {
	return "none"
}

// CreateCheckoutSession returns an error as payments are disabled.
func (p *NoopProvider) CreateCheckoutSession(ctx context.Context, priceID, successURL, cancelURL string) (string, error) {
	return "", ErrPaymentsDisabled
}

// GetCheckout returns an error as payments are disabled.
func (p *NoopProvider) GetCheckout(ctx context.Context, sessionID string) (checkout.Payload, error) {
	return checkout.Payload{}, ErrPaymentsDisabled
}

// CreatePortalSession returns an error as payments are disabled.
func (p *NoopProvider) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	return "", ErrPaymentsDisabled
}

// ParseWebhook returns an error as payments are disabled.
func (p *NoopProvider) ParseWebhook(payload []byte, signature string) (ports.WebhookEvent, error) {
	return ports.WebhookEvent{}, ErrPaymentsDisabled
}

var _ ports.PaymentProvider = (*NoopProvider)(nil)
