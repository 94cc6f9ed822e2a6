package email

import (
	"context"

	"github.com/airosofts/licensor/ports"
)

// NoopSender is a no-op email sender for when email is disabled.
type NoopSender struct{}

// NewNoopSender creates a new no-op email sender.
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// Send does nothing.
func (s *NoopSender) Send(ctx context.Context, msg ports.EmailMessage) error {
	return nil
}

// SendCredentials does nothing.
func (s *NoopSender) SendCredentials(ctx context.Context, to, password string) error {
	return nil
}

// SendPurchaseConfirmation does nothing.
func (s *NoopSender) SendPurchaseConfirmation(ctx context.Context, to string) error {
	return nil
}

var _ ports.EmailSender = (*NoopSender)(nil)
