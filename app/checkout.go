package app

import (
	"context"
	"strings"

	"github.com/airosofts/licensor/domain/plan"
	"github.com/airosofts/licensor/ports"
	"github.com/rs/zerolog"
)

// SessionIDPlaceholder is substituted by the payment provider with the checkout session id.
const SessionIDPlaceholder = "{CHECKOUT_SESSION_ID}"

// CatalogSource returns the current plan catalog.
// config.Holder-backed closures let the catalog change on reload.
type CatalogSource func() *plan.Catalog

// CheckoutService starts hosted checkouts and completes them through the engine.
type CheckoutService struct {
	payments ports.PaymentProvider
	engine   *ProvisioningService
	catalog  CatalogSource
	baseURL  string
	logger   zerolog.Logger
}

// NewCheckoutService creates a new checkout service.
// baseURL is this server's public URL, used for the success and cancel redirects.
func NewCheckoutService(
	payments ports.PaymentProvider,
	engine *ProvisioningService,
	catalog CatalogSource,
	baseURL string,
	logger zerolog.Logger,
) *CheckoutService {
	return &CheckoutService{
		payments: payments,
		engine:   engine,
		catalog:  catalog,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		logger:   logger,
	}
}

// Subscribe creates a hosted checkout for planID and returns its URL.
// Unknown plans are rejected before the provider is called.
func (s *CheckoutService) Subscribe(ctx context.Context, planID string) (string, error) {
	p, ok := s.catalog().Lookup(planID)
	if !ok {
		s.logger.Warn().Str("plan_id", planID).Msg("subscribe with unknown plan")
		return "", ErrUnknownPlan
	}

	url, err := s.payments.CreateCheckoutSession(ctx, p.PriceID, s.SuccessURL(), s.CancelURL())
	if err != nil {
		s.logger.Error().Err(err).
			Str("plan_id", planID).
			Str("provider", s.payments.Name()).
			Msg("failed to create checkout session")
		return "", &UpstreamError{Op: "create checkout session", Err: err}
	}

	s.logger.Info().Str("plan_id", planID).Msg("checkout session created")
	return url, nil
}

// Complete fetches a finished checkout session and reconciles it.
func (s *CheckoutService) Complete(ctx context.Context, sessionID string) (Outcome, error) {
	if sessionID == "" {
		return Outcome{}, ErrIncompleteCheckoutData
	}

	payload, err := s.payments.GetCheckout(ctx, sessionID)
	if err != nil {
		s.logger.Error().Err(err).
			Str("session_id", sessionID).
			Msg("failed to retrieve checkout session")
		return Outcome{}, &UpstreamError{Op: "retrieve checkout session", Err: err}
	}

	return s.engine.Reconcile(ctx, payload)
}

// SuccessURL is where the provider sends the buyer after paying.
func (s *CheckoutService) SuccessURL() string {
	return s.baseURL + "/success?session_id=" + SessionIDPlaceholder
}

// CancelURL is where the provider sends the buyer after abandoning checkout.
func (s *CheckoutService) CancelURL() string {
	return s.baseURL + "/cancel"
}
