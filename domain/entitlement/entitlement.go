// Package entitlement provides the read models behind the dashboard and pure
// functions joining subscriptions, licenses and the software catalog.
package entitlement

import (
	"time"

	"github.com/airosofts/licensor/domain/billing"
	"github.com/airosofts/licensor/domain/license"
	"github.com/samber/lo"
)

// RecurringPlanLabel is shown for every subscription; all plans renew monthly.
const RecurringPlanLabel = "Recurring Plan"

// Software is catalog metadata for one product (immutable value type).
type Software struct {
	ProductID   string `json:"product_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	DownloadURL string `json:"download_url"`
}

// SubscriptionSummary is one row of the "my subscriptions" view.
type SubscriptionSummary struct {
	Name            string     `json:"name"`
	Logo            string     `json:"logo"`
	Plan            string     `json:"plan"`
	StartDate       *time.Time `json:"start_date"`
	NextBillingDate *time.Time `json:"next_billing_date"`
	Status          string     `json:"status"`
	AutoRenewal     bool       `json:"auto_renewal"`
	Limit           int64      `json:"limit"`
	LimitUsed       int64      `json:"limit_used"`
}

// LicenseInfo is the license detail exposed to the account holder.
type LicenseInfo struct {
	Email            string    `json:"email"`
	LicenseKey       string    `json:"license_key"`
	RegistrationDate time.Time `json:"registration_date"`
	ExpiryDate       time.Time `json:"expiry_date"`
	ProductID        string    `json:"product_id"`
}

// SoftwareBundle pairs an actively subscribed product with the caller's licenses for it.
type SoftwareBundle struct {
	Software *Software     `json:"software"`
	Licenses []LicenseInfo `json:"licenses"`
	Email    string        `json:"email"`
}

// SubscriptionIDs returns the distinct subscription ids referenced by licenses, in order.
func SubscriptionIDs(licenses []license.LicensedUser) []string {
	return lo.Uniq(lo.Map(licenses, func(l license.LicensedUser, _ int) string {
		return l.SubscriptionID
	}))
}

// Summarize joins subscriptions to catalog metadata and to the license sharing
// their subscription id. Subscriptions whose product has no catalog entry are skipped.
func Summarize(subs []billing.Subscription, licenses []license.LicensedUser, catalog map[string]Software) []SubscriptionSummary {
	bySub := lo.KeyBy(licenses, func(l license.LicensedUser) string {
		return l.SubscriptionID
	})

	return lo.FilterMap(subs, func(s billing.Subscription, _ int) (SubscriptionSummary, bool) {
		sw, ok := catalog[s.ProductID]
		if !ok {
			return SubscriptionSummary{}, false
		}

		summary := SubscriptionSummary{
			Name:            s.ProductName,
			Logo:            sw.Icon,
			Plan:            RecurringPlanLabel,
			StartDate:       s.StartDate,
			NextBillingDate: s.CurrentPeriodEnd,
			Status:          string(s.Status),
			AutoRenewal:     true,
		}
		if l, ok := bySub[s.ID]; ok {
			summary.Limit = l.Quota
			summary.LimitUsed = l.QuotaUsed()
		}
		return summary, true
	})
}

// ActiveProductIDs returns the distinct product ids of active subscriptions, in first-seen order.
func ActiveProductIDs(subs []billing.Subscription) []string {
	return lo.Uniq(lo.FilterMap(subs, func(s billing.Subscription, _ int) (string, bool) {
		return s.ProductID, s.IsActive()
	}))
}

// Bundle builds one entry per product id, pairing catalog metadata with the
// licenses held for that product. Software is nil when the catalog lacks the product.
func Bundle(email string, productIDs []string, catalog map[string]Software, licenses []license.LicensedUser) []SoftwareBundle {
	byProduct := lo.GroupBy(licenses, func(l license.LicensedUser) string {
		return l.ProductID
	})

	return lo.Map(productIDs, func(id string, _ int) SoftwareBundle {
		b := SoftwareBundle{
			Licenses: lo.Map(byProduct[id], func(l license.LicensedUser, _ int) LicenseInfo {
				return LicenseInfo{
					Email:            l.Email,
					LicenseKey:       l.LicenseKey,
					RegistrationDate: l.RegistrationDate,
					ExpiryDate:       l.ExpiryDate,
					ProductID:        l.ProductID,
				}
			}),
			Email: email,
		}
		if sw, ok := catalog[id]; ok {
			b.Software = &sw
		}
		return b
	})
}
