// Package ports defines interfaces (contracts) between layers.
// These interfaces enable dependency injection and testability.
// Implementations live in adapters/.
package ports

import (
	"context"
	"errors"
	"time"

	"github.com/airosofts/licensor/domain/auth"
	"github.com/airosofts/licensor/domain/billing"
	"github.com/airosofts/licensor/domain/checkout"
	"github.com/airosofts/licensor/domain/entitlement"
	"github.com/airosofts/licensor/domain/license"
)

// -----------------------------------------------------------------------------
// Infrastructure Ports
// -----------------------------------------------------------------------------

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// Random abstracts randomness for testability.
type Random interface {
	// Bytes generates n random bytes.
	Bytes(n int) ([]byte, error)
	// String generates a random string of n characters.
	String(n int) (string, error)
}

// IDGenerator generates unique identifiers.
type IDGenerator interface {
	New() string
}

// Hasher provides password hashing.
type Hasher interface {
	// Hash generates a hash from a plaintext value.
	Hash(plaintext string) ([]byte, error)

	// Compare checks if plaintext matches hash. An empty hash never
	// matches but should cost about as much as a real comparison.
	Compare(hash []byte, plaintext string) bool
}

// -----------------------------------------------------------------------------
// Data Store Ports
// -----------------------------------------------------------------------------

// Errors shared by every store implementation.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

// CustomerStore persists customers.
type CustomerStore interface {
	// FindByEmail returns every customer registered under email, oldest first.
	// An empty slice (not an error) means no customer exists.
	FindByEmail(ctx context.Context, email string) ([]billing.Customer, error)

	// Create inserts a new customer.
	Create(ctx context.Context, c billing.Customer) error
}

// SubscriptionStore persists subscriptions.
type SubscriptionStore interface {
	// Upsert inserts a subscription or overwrites the one with the same id.
	Upsert(ctx context.Context, sub billing.Subscription) error

	// Get retrieves a subscription by id.
	Get(ctx context.Context, id string) (billing.Subscription, error)

	// ListByIDs returns the subscriptions with the given ids.
	ListByIDs(ctx context.Context, ids []string) ([]billing.Subscription, error)

	// ListByCustomer returns all subscriptions owned by a customer.
	ListByCustomer(ctx context.Context, customerID string) ([]billing.Subscription, error)

	// UpdateStatus changes status and period end of an existing subscription.
	UpdateStatus(ctx context.Context, id string, status billing.SubscriptionStatus, periodEnd *time.Time) error
}

// LicenseStore persists licensed users.
type LicenseStore interface {
	// Upsert inserts a license or overwrites the one with the same subscription id.
	Upsert(ctx context.Context, l license.LicensedUser) error

	// ListByEmail returns every license granted to email.
	ListByEmail(ctx context.Context, email string) ([]license.LicensedUser, error)
}

// AccountStore persists site-login accounts.
type AccountStore interface {
	// Upsert inserts an account or overwrites the one with the same email.
	Upsert(ctx context.Context, a auth.Account) error

	// Get retrieves an account by email.
	Get(ctx context.Context, email string) (auth.Account, error)

	// UpdatePassword replaces the password hash of an existing account.
	UpdatePassword(ctx context.Context, email string, hash []byte) error
}

// SoftwareStore persists the software catalog.
type SoftwareStore interface {
	// ListByProductIDs returns catalog entries for the given products.
	ListByProductIDs(ctx context.Context, productIDs []string) ([]entitlement.Software, error)

	// Replace makes the catalog exactly the given entries.
	Replace(ctx context.Context, entries []entitlement.Software) error
}

// HealthChecker reports whether a backing service is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// -----------------------------------------------------------------------------
// External Service Ports
// -----------------------------------------------------------------------------

// Payment webhook event types acted upon.
const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
)

// WebhookEvent is a verified payment-provider event reduced to what we act on.
type WebhookEvent struct {
	Type              string
	CheckoutSessionID string                     // checkout.session.* events
	SubscriptionID    string                     // customer.subscription.* events
	Status            billing.SubscriptionStatus // customer.subscription.* events
	CurrentPeriodEnd  *time.Time
}

// PaymentProvider interfaces with the payment processor.
type PaymentProvider interface {
	// Name returns the provider name (e.g., "stripe").
	Name() string

	// CreateCheckoutSession creates a hosted subscription checkout and returns its URL.
	CreateCheckoutSession(ctx context.Context, priceID, successURL, cancelURL string) (sessionURL string, err error)

	// GetCheckout retrieves a completed checkout session as a provisioning payload.
	GetCheckout(ctx context.Context, sessionID string) (checkout.Payload, error)

	// CreatePortalSession creates a billing portal session for managing subscriptions.
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (portalURL string, err error)

	// ParseWebhook verifies a webhook signature and decodes the event.
	ParseWebhook(payload []byte, signature string) (WebhookEvent, error)
}

// EmailMessage represents an email to be sent.
type EmailMessage struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
	Tag      string
}

// EmailSender sends emails.
type EmailSender interface {
	// Send sends an email.
	Send(ctx context.Context, msg EmailMessage) error

	// SendCredentials sends a first-time buyer their dashboard login.
	SendCredentials(ctx context.Context, to, password string) error

	// SendPurchaseConfirmation thanks a returning buyer; no credentials are included.
	SendPurchaseConfirmation(ctx context.Context, to string) error
}

// TokenService issues and verifies identity tokens.
type TokenService interface {
	GenerateToken(email, customerID string) (token string, expiresAt time.Time, err error)
	ValidateToken(token string) (Identity, error)
}

// Identity is the verified subject of a token.
type Identity struct {
	Email      string
	CustomerID string
}

// -----------------------------------------------------------------------------
// Observability Ports
// -----------------------------------------------------------------------------

// MetricsRecorder receives business outcomes from the services.
type MetricsRecorder interface {
	RecordProvisioning(branch, outcome string, duration time.Duration)
	RecordNotification(template, outcome string)
	RecordWebhook(eventType, outcome string)
	RecordCatalogSync(entries int, err error)
}
