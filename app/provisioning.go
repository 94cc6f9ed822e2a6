// Package app contains the services that implement licensor's use cases.
package app

import (
	"context"
	"time"

	"github.com/airosofts/licensor/domain/auth"
	"github.com/airosofts/licensor/domain/billing"
	"github.com/airosofts/licensor/domain/checkout"
	"github.com/airosofts/licensor/domain/license"
	"github.com/airosofts/licensor/domain/secret"
	"github.com/airosofts/licensor/ports"
	"github.com/rs/zerolog"
)

// Provisioning branches.
const (
	BranchExistingCustomer = "existing_customer"
	BranchNewCustomer      = "new_customer"
)

// Defaults applied to customer and subscription rows.
const (
	DefaultCustomerName = "Unknown"
	DefaultProductName  = "Unknown Product"
)

// Notification templates.
const (
	TemplateCredentials          = "credentials"
	TemplatePurchaseConfirmation = "purchase_confirmation"
)

// Outcome describes what a reconciliation did.
type Outcome struct {
	Branch         string
	CustomerID     string // owner of the subscription row
	SubscriptionID string
	LicenseKey     string
}

// ProvisioningStores groups the stores the engine writes to.
type ProvisioningStores struct {
	Customers     ports.CustomerStore
	Subscriptions ports.SubscriptionStore
	Licenses      ports.LicenseStore
	Accounts      ports.AccountStore
}

// ProvisioningService turns a confirmed checkout into customer, subscription,
// license and site-login records, then notifies the buyer.
//
// Writes are per-entity upserts keyed by stable ids and are not wrapped in a
// transaction. Rows written before a failing stage stay, and the branch is
// chosen from the customer rows on every attempt. A new-customer checkout that
// fails after its customer row is written is therefore retried down the
// existing-customer branch, which records the subscription and license but
// never creates the site login or sends credentials.
type ProvisioningService struct {
	customers     ports.CustomerStore
	subscriptions ports.SubscriptionStore
	licenses      ports.LicenseStore
	accounts      ports.AccountStore
	secrets       *secret.Generator
	hasher        ports.Hasher
	idGen         ports.IDGenerator
	clock         ports.Clock
	notifier      ports.EmailSender
	metrics       ports.MetricsRecorder
	logger        zerolog.Logger
}

// NewProvisioningService creates a new provisioning service.
// A nil metrics recorder disables metrics.
func NewProvisioningService(
	stores ProvisioningStores,
	secrets *secret.Generator,
	hasher ports.Hasher,
	idGen ports.IDGenerator,
	clock ports.Clock,
	notifier ports.EmailSender,
	metrics ports.MetricsRecorder,
	logger zerolog.Logger,
) *ProvisioningService {
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &ProvisioningService{
		customers:     stores.Customers,
		subscriptions: stores.Subscriptions,
		licenses:      stores.Licenses,
		accounts:      stores.Accounts,
		secrets:       secrets,
		hasher:        hasher,
		idGen:         idGen,
		clock:         clock,
		notifier:      notifier,
		metrics:       metrics,
		logger:        logger,
	}
}

// Reconcile provisions everything a confirmed checkout grants.
//
// A buyer whose email already has a customer row gets the subscription and a
// fresh license and is sent a purchase confirmation; their login is left alone.
// Anyone else gets a customer row, a generated password, the license and the
// subscription, and is emailed their credentials.
func (s *ProvisioningService) Reconcile(ctx context.Context, p checkout.Payload) (Outcome, error) {
	if err := p.Validate(); err != nil {
		s.logger.Warn().Err(err).
			Str("subscription_id", p.SubscriptionID).
			Msg("rejecting incomplete checkout")
		return Outcome{}, err
	}

	existing, err := s.customers.FindByEmail(ctx, p.CustomerEmail)
	if err != nil {
		s.logger.Error().Err(err).
			Str("email", p.CustomerEmail).
			Msg("failed to look up customer")
		return Outcome{}, &LookupError{Email: p.CustomerEmail, Err: err}
	}

	start := s.clock.Now()
	var (
		out    Outcome
		branch string
	)
	if len(existing) > 0 {
		branch = BranchExistingCustomer
		out, err = s.provisionExisting(ctx, p, existing[0])
	} else {
		branch = BranchNewCustomer
		out, err = s.provisionNew(ctx, p)
	}

	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	s.metrics.RecordProvisioning(branch, outcome, s.clock.Now().Sub(start))

	if err != nil {
		s.logger.Error().Err(err).
			Str("branch", branch).
			Str("email", p.CustomerEmail).
			Str("subscription_id", p.SubscriptionID).
			Msg("provisioning failed")
		return out, err
	}

	s.logger.Info().
		Str("branch", branch).
		Str("customer_id", out.CustomerID).
		Str("subscription_id", out.SubscriptionID).
		Str("product_id", p.ProductID).
		Msg("checkout provisioned")
	return out, nil
}

func (s *ProvisioningService) provisionExisting(ctx context.Context, p checkout.Payload, c billing.Customer) (Outcome, error) {
	out := Outcome{
		Branch:         BranchExistingCustomer,
		CustomerID:     c.ID,
		SubscriptionID: p.SubscriptionID,
	}
	now := s.clock.Now().UTC()

	if err := s.subscriptions.Upsert(ctx, subscriptionFrom(p, c.ID, now)); err != nil {
		return out, s.failed(StageSubscription, p, err)
	}

	key, err := s.grantLicense(ctx, p, now)
	if err != nil {
		return out, err
	}
	out.LicenseKey = key

	if err := s.notifier.SendPurchaseConfirmation(ctx, p.CustomerEmail); err != nil {
		s.metrics.RecordNotification(TemplatePurchaseConfirmation, "failure")
		return out, s.failed(StageNotification, p, err)
	}
	s.metrics.RecordNotification(TemplatePurchaseConfirmation, "success")

	return out, nil
}

func (s *ProvisioningService) provisionNew(ctx context.Context, p checkout.Payload) (Outcome, error) {
	out := Outcome{
		Branch:         BranchNewCustomer,
		CustomerID:     p.CustomerID,
		SubscriptionID: p.SubscriptionID,
	}
	now := s.clock.Now().UTC()

	customer := billing.Customer{
		ID:        p.CustomerID,
		Name:      orDefault(p.CustomerName, DefaultCustomerName),
		Email:     p.CustomerEmail,
		Phone:     p.CustomerPhone,
		Country:   p.CustomerCountry,
		CreatedAt: now,
	}
	if err := s.customers.Create(ctx, customer); err != nil {
		return out, s.failed(StageCustomer, p, err)
	}

	password, err := s.secrets.Password()
	if err != nil {
		return out, s.failed(StageAccount, p, err)
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return out, s.failed(StageAccount, p, err)
	}
	account := auth.Account{
		Email:            p.CustomerEmail,
		PasswordHash:     hash,
		CustomerID:       p.CustomerID,
		RegistrationDate: now,
	}
	if err := s.accounts.Upsert(ctx, account); err != nil {
		return out, s.failed(StageAccount, p, err)
	}

	key, err := s.grantLicense(ctx, p, now)
	if err != nil {
		return out, err
	}
	out.LicenseKey = key

	if err := s.subscriptions.Upsert(ctx, subscriptionFrom(p, p.CustomerID, now)); err != nil {
		return out, s.failed(StageSubscription, p, err)
	}

	if err := s.notifier.SendCredentials(ctx, p.CustomerEmail, password); err != nil {
		s.metrics.RecordNotification(TemplateCredentials, "failure")
		return out, s.failed(StageNotification, p, err)
	}
	s.metrics.RecordNotification(TemplateCredentials, "success")

	return out, nil
}

// grantLicense upserts the license for the payload's subscription with a fresh key.
func (s *ProvisioningService) grantLicense(ctx context.Context, p checkout.Payload, now time.Time) (string, error) {
	key, err := s.secrets.LicenseKey()
	if err != nil {
		return "", s.failed(StageLicense, p, err)
	}

	l := license.New(license.Grant{
		ID:             s.idGen.New(),
		SubscriptionID: p.SubscriptionID,
		CustomerID:     p.CustomerID,
		Username:       p.CustomerName,
		Email:          p.CustomerEmail,
		Country:        p.CustomerCountry,
		ProductID:      p.ProductID,
		PlanNickname:   p.PlanNickname,
		Tier:           p.Tier,
		LicenseKey:     key,
		Now:            now,
	})
	if err := s.licenses.Upsert(ctx, l); err != nil {
		return "", s.failed(StageLicense, p, err)
	}
	return key, nil
}

func (s *ProvisioningService) failed(stage Stage, p checkout.Payload, err error) error {
	return &ProvisioningError{Stage: stage, SubscriptionID: p.SubscriptionID, Err: err}
}

// subscriptionFrom builds the subscription row owned by customerID.
func subscriptionFrom(p checkout.Payload, customerID string, now time.Time) billing.Subscription {
	return billing.Subscription{
		ID:               p.SubscriptionID,
		CustomerID:       customerID,
		ProductID:        p.ProductID,
		ProductName:      orDefault(p.ProductName, DefaultProductName),
		Price:            billing.PriceFromMinor(p.UnitAmountMinor),
		Status:           billing.ParseStatus(p.SubscriptionStatus),
		StartDate:        billing.UnixTime(p.SubscriptionStart),
		CurrentPeriodEnd: billing.UnixTime(p.SubscriptionPeriodEnd),
		UpdatedAt:        now,
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

type nopRecorder struct{}

func (nopRecorder) RecordProvisioning(string, string, time.Duration) {}
func (nopRecorder) RecordNotification(string, string)               {}
func (nopRecorder) RecordWebhook(string, string)                    {}
func (nopRecorder) RecordCatalogSync(int, error)                    {}
