package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/airosofts/licensor/domain/plan"
	"github.com/rs/zerolog"
)

func newTestCheckoutService(t *testing.T, payments *mockPaymentProvider) (*CheckoutService, *provisioningFixture) {
	t.Helper()
	f := newProvisioningFixture(t)
	catalog := plan.NewCatalog(plan.DefaultPlans())
	svc := NewCheckoutService(
		payments,
		f.service,
		func() *plan.Catalog { return catalog },
		"https://pay.example.com/",
		zerolog.Nop(),
	)
	return svc, f
}

func TestCheckoutService_URLs(t *testing.T) {
	svc, _ := newTestCheckoutService(t, newMockPaymentProvider())

	if got, want := svc.SuccessURL(), "https://pay.example.com/success?session_id={CHECKOUT_SESSION_ID}"; got != want {
		t.Errorf("SuccessURL() = %s, want %s", got, want)
	}
	if got, want := svc.CancelURL(), "https://pay.example.com/cancel"; got != want {
		t.Errorf("CancelURL() = %s, want %s", got, want)
	}
}

func TestCheckoutService_Subscribe(t *testing.T) {
	payments := newMockPaymentProvider()
	svc, _ := newTestCheckoutService(t, payments)

	url, err := svc.Subscribe(context.Background(), "prod1_basic")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	want, _ := plan.NewCatalog(plan.DefaultPlans()).Lookup("prod1_basic")
	if payments.lastPriceID != want.PriceID {
		t.Errorf("price = %s, want %s", payments.lastPriceID, want.PriceID)
	}
	if !strings.HasSuffix(url, want.PriceID) {
		t.Errorf("url = %s, want checkout url for %s", url, want.PriceID)
	}
	if !strings.Contains(payments.lastSuccess, SessionIDPlaceholder) {
		t.Errorf("success url %s lacks the session placeholder", payments.lastSuccess)
	}
}

func TestCheckoutService_SubscribeUnknownPlan(t *testing.T) {
	payments := newMockPaymentProvider()
	svc, _ := newTestCheckoutService(t, payments)

	_, err := svc.Subscribe(context.Background(), "no_such_plan")
	if !errors.Is(err, ErrUnknownPlan) {
		t.Fatalf("err = %v, want ErrUnknownPlan", err)
	}
	if payments.checkoutCalls != 0 {
		t.Errorf("provider calls = %d, want 0", payments.checkoutCalls)
	}
}

func TestCheckoutService_SubscribeProviderError(t *testing.T) {
	payments := newMockPaymentProvider()
	payments.createErr = errors.New("stripe down")
	svc, _ := newTestCheckoutService(t, payments)

	_, err := svc.Subscribe(context.Background(), "prod1_basic")

	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("err = %v, want *UpstreamError", err)
	}
}

func TestCheckoutService_Complete(t *testing.T) {
	payments := newMockPaymentProvider()
	payments.payloads["cs_1"] = scenarioPayload()
	svc, f := newTestCheckoutService(t, payments)

	out, err := svc.Complete(context.Background(), "cs_1")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if out.SubscriptionID != "sub_1" {
		t.Errorf("SubscriptionID = %s, want sub_1", out.SubscriptionID)
	}
	if f.subscriptions.count() != 1 || f.licenses.count() != 1 {
		t.Error("expected subscription and license to be provisioned")
	}
}

func TestCheckoutService_CompleteErrors(t *testing.T) {
	t.Run("empty session id", func(t *testing.T) {
		svc, _ := newTestCheckoutService(t, newMockPaymentProvider())
		_, err := svc.Complete(context.Background(), "")
		if !errors.Is(err, ErrIncompleteCheckoutData) {
			t.Errorf("err = %v, want ErrIncompleteCheckoutData", err)
		}
	})

	t.Run("provider error", func(t *testing.T) {
		payments := newMockPaymentProvider()
		payments.getErr = errors.New("timeout")
		svc, f := newTestCheckoutService(t, payments)

		_, err := svc.Complete(context.Background(), "cs_1")
		var upstream *UpstreamError
		if !errors.As(err, &upstream) {
			t.Fatalf("err = %v, want *UpstreamError", err)
		}
		if f.mailer.Count() != 0 {
			t.Error("no email expected")
		}
	})

	t.Run("incomplete session", func(t *testing.T) {
		payments := newMockPaymentProvider()
		p := scenarioPayload()
		p.CustomerEmail = ""
		payments.payloads["cs_1"] = p
		svc, _ := newTestCheckoutService(t, payments)

		_, err := svc.Complete(context.Background(), "cs_1")
		if !errors.Is(err, ErrIncompleteCheckoutData) {
			t.Errorf("err = %v, want ErrIncompleteCheckoutData", err)
		}
	})
}
