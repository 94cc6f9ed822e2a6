package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/airosofts/licensor/domain/billing"
	"github.com/airosofts/licensor/ports"
	"github.com/rs/zerolog"
)

type webhookFixture struct {
	payments *mockPaymentProvider
	subs     *mockSubscriptionStore
	metrics  *mockRecorder
	prov     *provisioningFixture
	service  *PaymentWebhookService
}

func newWebhookFixture(t *testing.T) *webhookFixture {
	t.Helper()
	payments := newMockPaymentProvider()
	checkout, prov := newTestCheckoutService(t, payments)
	metrics := newMockRecorder()
	return &webhookFixture{
		payments: payments,
		subs:     prov.subscriptions,
		metrics:  metrics,
		prov:     prov,
		service:  NewPaymentWebhookService(payments, checkout, prov.subscriptions, metrics, zerolog.Nop()),
	}
}

func TestPaymentWebhookService_InvalidSignature(t *testing.T) {
	f := newWebhookFixture(t)

	err := f.service.Handle(context.Background(), []byte(`{}`), "forged")
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("err = %v, want ErrInvalidSignature", err)
	}
	if f.metrics.webhooks["unverified/failure"] != 1 {
		t.Errorf("webhook metrics = %v", f.metrics.webhooks)
	}
}

func TestPaymentWebhookService_CheckoutCompleted(t *testing.T) {
	f := newWebhookFixture(t)
	f.payments.payloads["cs_1"] = scenarioPayload()
	f.payments.events["sig"] = ports.WebhookEvent{
		Type:              ports.EventCheckoutCompleted,
		CheckoutSessionID: "cs_1",
	}

	if err := f.service.Handle(context.Background(), []byte(`{}`), "sig"); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if f.subs.count() != 1 {
		t.Errorf("subscriptions = %d, want 1", f.subs.count())
	}
	if f.metrics.webhooks[ports.EventCheckoutCompleted+"/success"] != 1 {
		t.Errorf("webhook metrics = %v", f.metrics.webhooks)
	}
}

func TestPaymentWebhookService_CheckoutCompletedAfterRedirect(t *testing.T) {
	f := newWebhookFixture(t)
	f.payments.payloads["cs_1"] = scenarioPayload()
	f.payments.events["sig"] = ports.WebhookEvent{
		Type:              ports.EventCheckoutCompleted,
		CheckoutSessionID: "cs_1",
	}

	if _, err := f.prov.service.Reconcile(context.Background(), scenarioPayload()); err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if err := f.service.Handle(context.Background(), []byte(`{}`), "sig"); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	if f.subs.count() != 1 || f.prov.licenses.count() != 1 {
		t.Errorf("rows = %d subs, %d licenses, want 1/1", f.subs.count(), f.prov.licenses.count())
	}
	if len(f.prov.accounts.accounts) != 1 {
		t.Errorf("accounts = %d, want 1", len(f.prov.accounts.accounts))
	}
}

func TestPaymentWebhookService_CheckoutCompletedFailure(t *testing.T) {
	f := newWebhookFixture(t)
	f.payments.events["sig"] = ports.WebhookEvent{
		Type:              ports.EventCheckoutCompleted,
		CheckoutSessionID: "cs_missing",
	}

	err := f.service.Handle(context.Background(), []byte(`{}`), "sig")
	if err == nil {
		t.Fatal("expected error for unknown session")
	}
	if errors.Is(err, ErrInvalidSignature) {
		t.Error("processing failures must not be reported as bad signatures")
	}
	if f.metrics.webhooks[ports.EventCheckoutCompleted+"/failure"] != 1 {
		t.Errorf("webhook metrics = %v", f.metrics.webhooks)
	}
}

func TestPaymentWebhookService_SubscriptionUpdated(t *testing.T) {
	f := newWebhookFixture(t)
	f.subs.subs["sub_1"] = billing.Subscription{ID: "sub_1", Status: billing.SubscriptionStatusActive}
	periodEnd := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	f.payments.events["sig"] = ports.WebhookEvent{
		Type:             ports.EventSubscriptionUpdated,
		SubscriptionID:   "sub_1",
		Status:           billing.SubscriptionStatusPastDue,
		CurrentPeriodEnd: &periodEnd,
	}

	if err := f.service.Handle(context.Background(), []byte(`{}`), "sig"); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	sub := f.subs.subs["sub_1"]
	if sub.Status != billing.SubscriptionStatusPastDue {
		t.Errorf("Status = %s, want past_due", sub.Status)
	}
	if sub.CurrentPeriodEnd == nil || !sub.CurrentPeriodEnd.Equal(periodEnd) {
		t.Errorf("CurrentPeriodEnd = %v, want %v", sub.CurrentPeriodEnd, periodEnd)
	}
}

func TestPaymentWebhookService_SubscriptionDeleted(t *testing.T) {
	f := newWebhookFixture(t)
	end := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	f.subs.subs["sub_1"] = billing.Subscription{
		ID:               "sub_1",
		Status:           billing.SubscriptionStatusActive,
		CurrentPeriodEnd: &end,
	}
	f.payments.events["sig"] = ports.WebhookEvent{
		Type:           ports.EventSubscriptionDeleted,
		SubscriptionID: "sub_1",
	}

	if err := f.service.Handle(context.Background(), []byte(`{}`), "sig"); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	sub := f.subs.subs["sub_1"]
	if sub.Status != billing.SubscriptionStatusCanceled {
		t.Errorf("Status = %s, want canceled", sub.Status)
	}
	if sub.CurrentPeriodEnd == nil || !sub.CurrentPeriodEnd.Equal(end) {
		t.Error("cancellation should keep the stored period end")
	}
}

func TestPaymentWebhookService_UnknownSubscriptionIgnored(t *testing.T) {
	f := newWebhookFixture(t)
	f.payments.events["sig"] = ports.WebhookEvent{
		Type:           ports.EventSubscriptionUpdated,
		SubscriptionID: "sub_unknown",
		Status:         billing.SubscriptionStatusActive,
	}

	if err := f.service.Handle(context.Background(), []byte(`{}`), "sig"); err != nil {
		t.Errorf("Handle = %v, want nil for unknown subscription", err)
	}
	if f.subs.count() != 0 {
		t.Error("unknown subscription must not be created")
	}
}

func TestPaymentWebhookService_StoreError(t *testing.T) {
	f := newWebhookFixture(t)
	f.subs.updateErr = errors.New("disk full")

	err := f.service.HandleSubscriptionUpdated(context.Background(), "sub_1", billing.SubscriptionStatusActive, nil)

	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("err = %v, want *UpstreamError", err)
	}
}

func TestPaymentWebhookService_IgnoredEvent(t *testing.T) {
	f := newWebhookFixture(t)
	f.payments.events["sig"] = ports.WebhookEvent{Type: "invoice.paid"}

	if err := f.service.Handle(context.Background(), []byte(`{}`), "sig"); err != nil {
		t.Errorf("Handle = %v, want nil", err)
	}
	if f.metrics.webhooks["invoice.paid/ignored"] != 1 {
		t.Errorf("webhook metrics = %v", f.metrics.webhooks)
	}
}
