package app

import (
	"context"
	"errors"
	"time"

	"github.com/airosofts/licensor/domain/billing"
	"github.com/airosofts/licensor/ports"
	"github.com/rs/zerolog"
)

// ErrInvalidSignature is returned when a webhook payload fails verification.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// PaymentWebhookService handles incoming webhooks from the payment provider.
// Completed checkouts take the same idempotent path as the success redirect,
// so whichever arrives second converges on the rows the first one wrote.
type PaymentWebhookService struct {
	payments      ports.PaymentProvider
	checkout      *CheckoutService
	subscriptions ports.SubscriptionStore
	metrics       ports.MetricsRecorder
	logger        zerolog.Logger
}

// NewPaymentWebhookService creates a new payment webhook service.
func NewPaymentWebhookService(
	payments ports.PaymentProvider,
	checkout *CheckoutService,
	subscriptions ports.SubscriptionStore,
	metrics ports.MetricsRecorder,
	logger zerolog.Logger,
) *PaymentWebhookService {
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &PaymentWebhookService{
		payments:      payments,
		checkout:      checkout,
		subscriptions: subscriptions,
		metrics:       metrics,
		logger:        logger,
	}
}

// Handle verifies payload and dispatches the event.
// Only a verification failure returns ErrInvalidSignature.
func (s *PaymentWebhookService) Handle(ctx context.Context, payload []byte, signature string) error {
	ev, err := s.payments.ParseWebhook(payload, signature)
	if err != nil {
		s.logger.Warn().Err(err).Msg("rejected webhook")
		s.metrics.RecordWebhook("unverified", "failure")
		return errors.Join(ErrInvalidSignature, err)
	}

	switch ev.Type {
	case ports.EventCheckoutCompleted:
		err = s.HandleCheckoutCompleted(ctx, ev.CheckoutSessionID)
	case ports.EventSubscriptionUpdated:
		err = s.HandleSubscriptionUpdated(ctx, ev.SubscriptionID, ev.Status, ev.CurrentPeriodEnd)
	case ports.EventSubscriptionDeleted:
		err = s.HandleSubscriptionCancelled(ctx, ev.SubscriptionID)
	default:
		s.logger.Debug().Str("type", ev.Type).Msg("ignoring webhook event")
		s.metrics.RecordWebhook(ev.Type, "ignored")
		return nil
	}

	if err != nil {
		s.metrics.RecordWebhook(ev.Type, "failure")
		return err
	}
	s.metrics.RecordWebhook(ev.Type, "success")
	return nil
}

// HandleCheckoutCompleted reconciles the completed checkout session.
func (s *PaymentWebhookService) HandleCheckoutCompleted(ctx context.Context, sessionID string) error {
	s.logger.Info().
		Str("session_id", sessionID).
		Msg("handling checkout completed webhook")

	out, err := s.checkout.Complete(ctx, sessionID)
	if err != nil {
		s.logger.Error().Err(err).
			Str("session_id", sessionID).
			Msg("failed to provision checkout from webhook")
		return err
	}

	s.logger.Info().
		Str("session_id", sessionID).
		Str("subscription_id", out.SubscriptionID).
		Str("branch", out.Branch).
		Msg("checkout completed: provisioned from webhook")
	return nil
}

// HandleSubscriptionUpdated records a subscription's new status and period end.
// Subscriptions never provisioned here are ignored.
func (s *PaymentWebhookService) HandleSubscriptionUpdated(
	ctx context.Context,
	subscriptionID string,
	status billing.SubscriptionStatus,
	periodEnd *time.Time,
) error {
	s.logger.Info().
		Str("subscription_id", subscriptionID).
		Str("status", string(status)).
		Msg("handling subscription updated webhook")

	if err := s.subscriptions.UpdateStatus(ctx, subscriptionID, status, periodEnd); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			s.logger.Warn().
				Str("subscription_id", subscriptionID).
				Msg("webhook for unknown subscription, ignoring")
			return nil
		}
		s.logger.Error().Err(err).
			Str("subscription_id", subscriptionID).
			Msg("failed to update subscription")
		return &UpstreamError{Op: "update subscription status", Err: err}
	}

	s.logger.Info().
		Str("subscription_id", subscriptionID).
		Str("status", string(status)).
		Msg("subscription status updated")
	return nil
}

// HandleSubscriptionCancelled marks a subscription canceled.
func (s *PaymentWebhookService) HandleSubscriptionCancelled(ctx context.Context, subscriptionID string) error {
	return s.HandleSubscriptionUpdated(ctx, subscriptionID, billing.SubscriptionStatusCanceled, nil)
}
