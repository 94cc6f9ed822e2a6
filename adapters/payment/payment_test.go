package payment_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/airosofts/licensor/adapters/payment"
	"github.com/airosofts/licensor/config"
	"github.com/airosofts/licensor/domain/billing"
	"github.com/airosofts/licensor/domain/plan"
)

func TestNoopProvider(t *testing.T) {
	p := payment.NewNoopProvider()
	ctx := context.Background()

	if p.Name() != "none" {
		t.Errorf("Name() = %s, want none", p.Name())
	}
	if _, err := p.CreateCheckoutSession(ctx, "price_abc", "https://success.com", "https://cancel.com"); !errors.Is(err, payment.ErrPaymentsDisabled) {
		t.Errorf("CreateCheckoutSession: expected ErrPaymentsDisabled, got %v", err)
	}
	if _, err := p.GetCheckout(ctx, "cs_1"); !errors.Is(err, payment.ErrPaymentsDisabled) {
		t.Errorf("GetCheckout: expected ErrPaymentsDisabled, got %v", err)
	}
	if _, err := p.CreatePortalSession(ctx, "cus_123", "https://return.com"); !errors.Is(err, payment.ErrPaymentsDisabled) {
		t.Errorf("CreatePortalSession: expected ErrPaymentsDisabled, got %v", err)
	}
	if _, err := p.ParseWebhook([]byte("{}"), "sig"); !errors.Is(err, payment.ErrPaymentsDisabled) {
		t.Errorf("ParseWebhook: expected ErrPaymentsDisabled, got %v", err)
	}
}

func TestDummyProvider_CheckoutRoundTrip(t *testing.T) {
	p := payment.NewDummyProvider("buyer@example.com")
	ctx := context.Background()

	url, err := p.CreateCheckoutSession(ctx, "price_123",
		"http://localhost/success?session_id="+payment.SessionIDPlaceholder, "http://localhost/cancel")
	if err != nil {
		t.Fatalf("CreateCheckoutSession error: %v", err)
	}
	if !strings.HasPrefix(url, "http://localhost/success?session_id=cs_dummy_") {
		t.Fatalf("URL = %q, want success URL with session id", url)
	}

	sessionID := strings.TrimPrefix(url, "http://localhost/success?session_id=")
	payload, err := p.GetCheckout(ctx, sessionID)
	if err != nil {
		t.Fatalf("GetCheckout error: %v", err)
	}
	if err := payload.Validate(); err != nil {
		t.Errorf("dummy payload should be complete: %v", err)
	}
	if payload.CustomerEmail != "buyer@example.com" {
		t.Errorf("CustomerEmail = %s, want buyer@example.com", payload.CustomerEmail)
	}
	if payload.ProductID != "prod_dummy_price_123" {
		t.Errorf("ProductID = %s, want prod_dummy_price_123", payload.ProductID)
	}
	if payload.PlanNickname != "Basic" {
		t.Errorf("PlanNickname = %s, want Basic", payload.PlanNickname)
	}
	if payload.Tier != plan.TierBasic {
		t.Errorf("Tier = %v, want TierBasic", payload.Tier)
	}

	again, _ := p.GetCheckout(ctx, sessionID)
	if again.SubscriptionID != payload.SubscriptionID {
		t.Error("the same session should report the same subscription")
	}
}

func TestDummyProvider_UnknownSession(t *testing.T) {
	p := payment.NewDummyProvider("buyer@example.com")

	_, err := p.GetCheckout(context.Background(), "cs_never_created")
	if !errors.Is(err, payment.ErrUnknownSession) {
		t.Errorf("err = %v, want ErrUnknownSession", err)
	}
}

func TestDummyProvider_Portal(t *testing.T) {
	p := payment.NewDummyProvider("")

	url, err := p.CreatePortalSession(context.Background(), "cus_1", "http://localhost/")
	if err != nil {
		t.Fatalf("CreatePortalSession error: %v", err)
	}
	if url != "http://localhost/" {
		t.Errorf("URL = %s, want return URL", url)
	}
}

func TestDummyProvider_ParseWebhook(t *testing.T) {
	p := payment.NewDummyProvider("")

	ev, err := p.ParseWebhook([]byte(`{"type":"customer.subscription.deleted","data":{"object":{"id":"sub_1"}}}`), "")
	if err != nil {
		t.Fatalf("ParseWebhook error: %v", err)
	}
	if ev.SubscriptionID != "sub_1" {
		t.Errorf("SubscriptionID = %s, want sub_1", ev.SubscriptionID)
	}
	if ev.Status != billing.SubscriptionStatusCanceled {
		t.Errorf("Status = %s, want canceled", ev.Status)
	}

	if _, err := p.ParseWebhook([]byte("not json"), ""); err == nil {
		t.Error("expected error for malformed payload")
	}
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.PaymentConfig
		wantName string
		wantErr  bool
	}{
		{"stripe", config.PaymentConfig{Provider: "stripe", StripeSecretKey: "sk_test"}, "stripe", false},
		{"stripe without key", config.PaymentConfig{Provider: "stripe"}, "", true},
		{"dummy", config.PaymentConfig{Provider: "dummy"}, "dummy", false},
		{"test alias", config.PaymentConfig{Provider: "test"}, "dummy", false},
		{"none", config.PaymentConfig{Provider: "none"}, "none", false},
		{"empty", config.PaymentConfig{}, "none", false},
		{"unknown", config.PaymentConfig{Provider: "paypal"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := payment.NewProvider(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewProvider error: %v", err)
			}
			if p.Name() != tt.wantName {
				t.Errorf("Name() = %s, want %s", p.Name(), tt.wantName)
			}
		})
	}
}
