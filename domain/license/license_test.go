package license_test

import (
	"testing"
	"time"

	"github.com/airosofts/licensor/domain/license"
	"github.com/airosofts/licensor/domain/plan"
)

func TestExpiry_OneCalendarMonth(t *testing.T) {
	tests := []struct {
		name       string
		registered time.Time
		want       time.Time
	}{
		{
			name:       "mid month",
			registered: time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC),
			want:       time.Date(2025, 4, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			name:       "year rollover",
			registered: time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC),
			want:       time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "31st into 30 day month",
			registered: time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
			want:       time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "31st into february",
			registered: time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
			want:       time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "31st into leap february",
			registered: time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			want:       time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := license.Expiry(tt.registered)
			if !got.Equal(tt.want) {
				t.Errorf("Expiry(%v) = %v, want %v", tt.registered, got, tt.want)
			}
		})
	}
}

func TestNew_QuotaByTier(t *testing.T) {
	tests := []struct {
		nickname string
		tier     plan.Tier
		want     int64
	}{
		{"Basic", plan.TierBasic, 10000},
		{"Pro", plan.TierPro, 50000},
		{"Professional", plan.TierProfessional, 250000},
		{"Gold", plan.TierUnknown, 0},
		{"", plan.TierUnknown, 0},
	}

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for _, tt := range tests {
		t.Run(tt.nickname, func(t *testing.T) {
			l := license.New(license.Grant{PlanNickname: tt.nickname, Tier: tt.tier, Now: now})
			if l.Quota != tt.want {
				t.Errorf("Quota = %d, want %d", l.Quota, tt.want)
			}
			if l.QuotaRemaining != l.Quota {
				t.Errorf("QuotaRemaining = %d, want %d", l.QuotaRemaining, l.Quota)
			}
			if l.QuotaUsed() != 0 {
				t.Errorf("QuotaUsed() = %d, want 0", l.QuotaUsed())
			}
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l := license.New(license.Grant{
		SubscriptionID: "sub_1",
		Email:          "a@x.com",
		Now:            now,
	})

	if l.Username != license.DefaultUsername {
		t.Errorf("Username = %s, want %s", l.Username, license.DefaultUsername)
	}
	if l.Country != license.DefaultCountry {
		t.Errorf("Country = %s, want %s", l.Country, license.DefaultCountry)
	}
	if l.PaymentPlan != license.DefaultPaymentPlan {
		t.Errorf("PaymentPlan = %s, want %s", l.PaymentPlan, license.DefaultPaymentPlan)
	}
	if l.Quota != 0 {
		t.Errorf("Quota = %d, want 0 without a tier", l.Quota)
	}
	if !l.RegistrationDate.Equal(now) {
		t.Errorf("RegistrationDate = %v, want %v", l.RegistrationDate, now)
	}
	if !l.ExpiryDate.Equal(time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("ExpiryDate = %v, want 2025-07-01", l.ExpiryDate)
	}
}

func TestNew_QuotaIgnoresNickname(t *testing.T) {
	// The tier decides the quota even when the display name disagrees.
	l := license.New(license.Grant{PlanNickname: "Basic", Tier: plan.TierProfessional, Now: time.Now()})
	if l.Quota != 250000 {
		t.Errorf("Quota = %d, want 250000", l.Quota)
	}
	if l.PaymentPlan != "Basic" {
		t.Errorf("PaymentPlan = %s, want Basic", l.PaymentPlan)
	}
}
