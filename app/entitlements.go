package app

import (
	"context"
	"errors"

	"github.com/airosofts/licensor/domain/billing"
	"github.com/airosofts/licensor/domain/entitlement"
	"github.com/airosofts/licensor/ports"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// EntitlementStores groups the stores the entitlement queries read.
type EntitlementStores struct {
	Subscriptions ports.SubscriptionStore
	Licenses      ports.LicenseStore
	Accounts      ports.AccountStore
	Software      ports.SoftwareStore
}

// EntitlementService answers "what do I own" for a verified email.
// It never writes.
type EntitlementService struct {
	subscriptions ports.SubscriptionStore
	licenses      ports.LicenseStore
	accounts      ports.AccountStore
	software      ports.SoftwareStore
	logger        zerolog.Logger
}

// NewEntitlementService creates a new entitlement service.
func NewEntitlementService(stores EntitlementStores, logger zerolog.Logger) *EntitlementService {
	return &EntitlementService{
		subscriptions: stores.Subscriptions,
		licenses:      stores.Licenses,
		accounts:      stores.Accounts,
		software:      stores.Software,
		logger:        logger,
	}
}

// Subscriptions lists the subscriptions licensed to email with their quota usage.
// It returns ErrNotFound when email holds no licenses or none of their
// subscriptions exist. Subscriptions whose product is missing from the
// catalog are left out.
func (s *EntitlementService) Subscriptions(ctx context.Context, email string) ([]entitlement.SubscriptionSummary, error) {
	licenses, err := s.licenses.ListByEmail(ctx, email)
	if err != nil {
		return nil, s.upstream("list licenses", email, err)
	}
	if len(licenses) == 0 {
		return nil, ErrNotFound
	}

	subs, err := s.subscriptions.ListByIDs(ctx, entitlement.SubscriptionIDs(licenses))
	if err != nil {
		return nil, s.upstream("list subscriptions", email, err)
	}
	if len(subs) == 0 {
		return nil, ErrNotFound
	}

	productIDs := lo.Uniq(lo.Map(subs, func(sub billing.Subscription, _ int) string {
		return sub.ProductID
	}))
	catalog, err := s.catalogFor(ctx, productIDs)
	if err != nil {
		return nil, s.upstream("list software", email, err)
	}

	summaries := entitlement.Summarize(subs, licenses, catalog)
	if skipped := len(subs) - len(summaries); skipped > 0 {
		s.logger.Warn().
			Str("email", email).
			Int("skipped", skipped).
			Msg("subscriptions without catalog metadata left out")
	}
	return summaries, nil
}

// AvailableSoftware lists each actively subscribed product with the licenses
// email holds for it. It returns ErrNotFound when email has no login, no active
// subscription, no catalog entry for those products, or no licenses.
func (s *EntitlementService) AvailableSoftware(ctx context.Context, email string) ([]entitlement.SoftwareBundle, error) {
	account, err := s.accounts.Get(ctx, email)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, s.upstream("get account", email, err)
	}

	subs, err := s.subscriptions.ListByCustomer(ctx, account.CustomerID)
	if err != nil {
		return nil, s.upstream("list subscriptions", email, err)
	}
	productIDs := entitlement.ActiveProductIDs(subs)
	if len(productIDs) == 0 {
		return nil, ErrNotFound
	}

	catalog, err := s.catalogFor(ctx, productIDs)
	if err != nil {
		return nil, s.upstream("list software", email, err)
	}
	if len(catalog) == 0 {
		return nil, ErrNotFound
	}

	licenses, err := s.licenses.ListByEmail(ctx, email)
	if err != nil {
		return nil, s.upstream("list licenses", email, err)
	}
	if len(licenses) == 0 {
		return nil, ErrNotFound
	}

	return entitlement.Bundle(email, productIDs, catalog, licenses), nil
}

func (s *EntitlementService) catalogFor(ctx context.Context, productIDs []string) (map[string]entitlement.Software, error) {
	entries, err := s.software.ListByProductIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	return lo.KeyBy(entries, func(sw entitlement.Software) string {
		return sw.ProductID
	}), nil
}

func (s *EntitlementService) upstream(op, email string, err error) error {
	s.logger.Error().Err(err).Str("email", email).Msg(op + " failed")
	return &UpstreamError{Op: op, Err: err}
}
