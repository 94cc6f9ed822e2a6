// Package payment provides payment provider adapters.
package payment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/airosofts/licensor/domain/billing"
	"github.com/airosofts/licensor/domain/checkout"
	"github.com/airosofts/licensor/domain/plan"
	"github.com/airosofts/licensor/ports"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"
)

// Webhook event types acted upon.
const (
	EventCheckoutCompleted   = ports.EventCheckoutCompleted
	EventSubscriptionUpdated = ports.EventSubscriptionUpdated
	EventSubscriptionDeleted = ports.EventSubscriptionDeleted
)

// StripeConfig holds Stripe configuration.
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
}

// StripeProvider implements ports.PaymentProvider for Stripe.
type StripeProvider struct {
	config StripeConfig
}

// NewStripeProvider creates a new Stripe payment provider.
func NewStripeProvider(config StripeConfig) *StripeProvider {
	stripe.Key = config.SecretKey
	return &StripeProvider{config: config}
}

// Name returns the provider name.
func (p *StripeProvider) Name() string {
	return "stripe"
}

// CreateCheckoutSession creates a hosted subscription checkout for one unit of priceID.
func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, priceID, successURL, cancelURL string) (string, error) {
	params := &stripe.CheckoutSessionParams{
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx

	s, err := checkoutsession.New(params)
	if err != nil {
		return "", err
	}
	return s.URL, nil
}

// GetCheckout retrieves a session with its subscription and purchased product expanded.
func (p *StripeProvider) GetCheckout(ctx context.Context, sessionID string) (checkout.Payload, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("subscription")
	params.AddExpand("line_items")
	params.AddExpand("line_items.data.price.product")

	s, err := checkoutsession.Get(sessionID, params)
	if err != nil {
		return checkout.Payload{}, err
	}
	return payloadFromSession(s), nil
}

// CreatePortalSession creates a customer portal session.
func (p *StripeProvider) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	s, err := session.New(params)
	if err != nil {
		return "", err
	}
	return s.URL, nil
}

// ParseWebhook verifies a Stripe signature and decodes the event.
// Events sent with an API version other than the library's are still accepted.
func (p *StripeProvider) ParseWebhook(payload []byte, signature string) (ports.WebhookEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, p.config.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return ports.WebhookEvent{}, err
	}
	return eventFromStripe(event)
}

// payloadFromSession flattens an expanded checkout session.
func payloadFromSession(s *stripe.CheckoutSession) checkout.Payload {
	var p checkout.Payload

	if s.Customer != nil {
		p.CustomerID = s.Customer.ID
	}
	p.CustomerEmail = s.CustomerEmail
	if d := s.CustomerDetails; d != nil {
		if d.Email != "" {
			p.CustomerEmail = d.Email
		}
		p.CustomerName = d.Name
		p.CustomerPhone = d.Phone
		if d.Address != nil {
			p.CustomerCountry = d.Address.Country
		}
	}

	if sub := s.Subscription; sub != nil {
		p.SubscriptionID = sub.ID
		p.SubscriptionStatus = string(sub.Status)
		p.SubscriptionStart = sub.StartDate
		p.SubscriptionPeriodEnd = sub.CurrentPeriodEnd
		p.PlanNickname = planNickname(sub)
		p.Tier = plan.ParseTier(p.PlanNickname)
	}

	if s.LineItems != nil && len(s.LineItems.Data) > 0 {
		if price := s.LineItems.Data[0].Price; price != nil {
			p.UnitAmountMinor = price.UnitAmount
			if price.Product != nil {
				p.ProductID = price.Product.ID
				p.ProductName = price.Product.Name
			}
		}
	}

	return p
}

// planNickname reads the nickname of the subscription's first item.
func planNickname(sub *stripe.Subscription) string {
	if sub.Items == nil || len(sub.Items.Data) == 0 {
		return ""
	}
	item := sub.Items.Data[0]
	if item.Plan != nil && item.Plan.Nickname != "" {
		return item.Plan.Nickname
	}
	if item.Price != nil {
		return item.Price.Nickname
	}
	return ""
}

// eventFromStripe reduces a Stripe event to the fields acted upon.
func eventFromStripe(event stripe.Event) (ports.WebhookEvent, error) {
	ev := ports.WebhookEvent{Type: string(event.Type)}
	if event.Data == nil {
		return ev, nil
	}

	switch ev.Type {
	case EventCheckoutCompleted:
		var s stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
			return ports.WebhookEvent{}, fmt.Errorf("decode checkout session: %w", err)
		}
		ev.CheckoutSessionID = s.ID

	case EventSubscriptionUpdated, EventSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return ports.WebhookEvent{}, fmt.Errorf("decode subscription: %w", err)
		}
		ev.SubscriptionID = sub.ID
		ev.Status = billing.ParseStatus(string(sub.Status))
		if ev.Type == EventSubscriptionDeleted {
			ev.Status = billing.SubscriptionStatusCanceled
		}
		ev.CurrentPeriodEnd = billing.UnixTime(sub.CurrentPeriodEnd)
	}

	return ev, nil
}

var _ ports.PaymentProvider = (*StripeProvider)(nil)
