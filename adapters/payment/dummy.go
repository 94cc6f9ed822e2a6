package payment

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/airosofts/licensor/domain/checkout"
	"github.com/airosofts/licensor/domain/plan"
	"github.com/airosofts/licensor/ports"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
)

// ErrUnknownSession is returned by the dummy provider for sessions it never created.
var ErrUnknownSession = errors.New("unknown checkout session")

// SessionIDPlaceholder is replaced with the session id in success URLs.
const SessionIDPlaceholder = "{CHECKOUT_SESSION_ID}"

// DummyProvider is a development payment provider that simulates successful payments.
// Checkout redirects straight to the success URL and every session reports a paid
// Basic subscription for the configured buyer email.
type DummyProvider struct {
	email string

	mu       sync.Mutex
	sessions map[string]string // session id -> price id
}

// NewDummyProvider creates a new dummy payment provider.
func NewDummyProvider(email string) *DummyProvider {
	return &DummyProvider{
		email:    email,
		sessions: make(map[string]string),
	}
}

// Name returns the provider name.
func (p *DummyProvider) Name() string {
	return "dummy"
}

// CreateCheckoutSession skips the hosted page and redirects directly to successURL.
func (p *DummyProvider) CreateCheckoutSession(ctx context.Context, priceID, successURL, cancelURL string) (string, error) {
	id := "cs_dummy_" + uuid.New().String()

	p.mu.Lock()
	p.sessions[id] = priceID
	p.mu.Unlock()

	return strings.ReplaceAll(successURL, SessionIDPlaceholder, id), nil
}

// GetCheckout reports a paid subscription for a session created by this provider.
func (p *DummyProvider) GetCheckout(ctx context.Context, sessionID string) (checkout.Payload, error) {
	p.mu.Lock()
	priceID, ok := p.sessions[sessionID]
	p.mu.Unlock()
	if !ok {
		return checkout.Payload{}, ErrUnknownSession
	}

	suffix := strings.TrimPrefix(sessionID, "cs_dummy_")
	now := time.Now().UTC()

	return checkout.Payload{
		CustomerID:            "cus_dummy_" + suffix[:8],
		CustomerEmail:         p.email,
		CustomerName:          "Dummy Buyer",
		CustomerCountry:       "US",
		SubscriptionID:        "sub_dummy_" + suffix,
		SubscriptionStatus:    "active",
		SubscriptionStart:     now.Unix(),
		SubscriptionPeriodEnd: now.AddDate(0, 1, 0).Unix(),
		PlanNickname:          plan.NicknameBasic,
		Tier:                  plan.TierBasic,
		ProductID:             "prod_dummy_" + priceID,
		ProductName:           "Dummy Product",
		UnitAmountMinor:       999,
	}, nil
}

// CreatePortalSession returns returnURL (no external portal).
func (p *DummyProvider) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	return returnURL, nil
}

// ParseWebhook decodes a Stripe-shaped event without checking any signature.
func (p *DummyProvider) ParseWebhook(payload []byte, signature string) (ports.WebhookEvent, error) {
	var event stripe.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return ports.WebhookEvent{}, err
	}
	return eventFromStripe(event)
}

var _ ports.PaymentProvider = (*DummyProvider)(nil)
