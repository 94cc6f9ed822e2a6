package billing_test

import (
	"testing"
	"time"

	"github.com/airosofts/licensor/domain/billing"
)

func TestPriceFromMinor(t *testing.T) {
	tests := []struct {
		minor int64
		want  string
	}{
		{2000, "20"},
		{1999, "19.99"},
		{5, "0.05"},
		{0, "0"},
	}

	for _, tt := range tests {
		got := billing.PriceFromMinor(tt.minor)
		if got.String() != tt.want {
			t.Errorf("PriceFromMinor(%d) = %s, want %s", tt.minor, got.String(), tt.want)
		}
	}
}

func TestPriceFromMinor_StringFixed(t *testing.T) {
	if got := billing.PriceFromMinor(2000).StringFixed(2); got != "20.00" {
		t.Errorf("StringFixed(2) = %s, want 20.00", got)
	}
}

func TestParseStatus(t *testing.T) {
	if got := billing.ParseStatus(""); got != billing.SubscriptionStatusUnknown {
		t.Errorf("ParseStatus(\"\") = %s, want unknown", got)
	}
	if got := billing.ParseStatus("canceled"); got != billing.SubscriptionStatusCanceled {
		t.Errorf("ParseStatus(canceled) = %s, want canceled", got)
	}
	if got := billing.ParseStatus("incomplete_expired"); string(got) != "incomplete_expired" {
		t.Errorf("ParseStatus should keep provider statuses verbatim, got %s", got)
	}
}

func TestSubscription_IsActive(t *testing.T) {
	tests := []struct {
		status billing.SubscriptionStatus
		want   bool
	}{
		{billing.SubscriptionStatusActive, true},
		{billing.SubscriptionStatusTrialing, false},
		{billing.SubscriptionStatusCanceled, false},
		{billing.SubscriptionStatusUnknown, false},
	}

	for _, tt := range tests {
		s := billing.Subscription{Status: tt.status}
		if got := s.IsActive(); got != tt.want {
			t.Errorf("IsActive() for %s = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestUnixTime(t *testing.T) {
	if billing.UnixTime(0) != nil {
		t.Error("UnixTime(0) should be nil")
	}

	got := billing.UnixTime(1735689600)
	want := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	if got == nil || !got.Equal(want) {
		t.Errorf("UnixTime = %v, want %v", got, want)
	}
}
