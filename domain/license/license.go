// Package license provides licensed-user value types and pure functions.
package license

import (
	"time"

	"github.com/airosofts/licensor/domain/plan"
)

// Defaults applied when the checkout carries no value.
const (
	DefaultUsername    = "Unknown User"
	DefaultCountry     = "Unknown"
	DefaultPaymentPlan = "Unknown Plan"
)

// LicensedUser is one entitlement grant, keyed by subscription id (value type).
type LicensedUser struct {
	ID               string
	SubscriptionID   string
	CustomerID       string
	Username         string
	Email            string
	Country          string
	LicenseKey       string
	RegistrationDate time.Time
	ExpiryDate       time.Time
	ProductID        string
	PaymentPlan      string // provider plan nickname
	Quota            int64
	QuotaRemaining   int64
}

// QuotaUsed returns how much of the quota has been consumed.
func (l LicensedUser) QuotaUsed() int64 {
	return l.Quota - l.QuotaRemaining
}

// Expiry returns registered plus one calendar month.
// Days past the end of the target month overflow into the next one,
// so Jan 31 expires Mar 3 (Mar 2 in leap years).
func Expiry(registered time.Time) time.Time {
	return registered.AddDate(0, 1, 0)
}

// Grant describes a new entitlement before it is stored.
type Grant struct {
	ID             string
	SubscriptionID string
	CustomerID     string
	Username       string
	Email          string
	Country        string
	ProductID      string
	PlanNickname   string
	Tier           plan.Tier
	LicenseKey     string
	Now            time.Time
}

// New builds a LicensedUser from a grant (pure function).
// Quota follows the grant's tier and starts fully unused.
func New(g Grant) LicensedUser {
	quota := g.Tier.Quota()

	return LicensedUser{
		ID:               g.ID,
		SubscriptionID:   g.SubscriptionID,
		CustomerID:       g.CustomerID,
		Username:         orDefault(g.Username, DefaultUsername),
		Email:            g.Email,
		Country:          orDefault(g.Country, DefaultCountry),
		LicenseKey:       g.LicenseKey,
		RegistrationDate: g.Now,
		ExpiryDate:       Expiry(g.Now),
		ProductID:        g.ProductID,
		PaymentPlan:      orDefault(g.PlanNickname, DefaultPaymentPlan),
		Quota:            quota,
		QuotaRemaining:   quota,
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
