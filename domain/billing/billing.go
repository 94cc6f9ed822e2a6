// Package billing provides customer and subscription value types.
package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// SubscriptionStatus mirrors the payment provider's subscription state.
type SubscriptionStatus string

const (
	SubscriptionStatusActive     SubscriptionStatus = "active"
	SubscriptionStatusTrialing   SubscriptionStatus = "trialing"
	SubscriptionStatusPastDue    SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled   SubscriptionStatus = "canceled"
	SubscriptionStatusUnpaid     SubscriptionStatus = "unpaid"
	SubscriptionStatusIncomplete SubscriptionStatus = "incomplete"
	SubscriptionStatusPaused     SubscriptionStatus = "paused"
	SubscriptionStatusUnknown    SubscriptionStatus = "unknown"
)

// ParseStatus returns the status for s, or SubscriptionStatusUnknown when s is empty.
// Provider statuses not listed above are kept verbatim.
func ParseStatus(s string) SubscriptionStatus {
	if s == "" {
		return SubscriptionStatusUnknown
	}
	return SubscriptionStatus(s)
}

// Customer is a paying customer, keyed by the provider customer id.
type Customer struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Country   string
	CreatedAt time.Time
}

// Subscription is a provider subscription, keyed by the provider subscription id.
type Subscription struct {
	ID               string
	CustomerID       string
	ProductID        string
	ProductName      string
	Price            decimal.Decimal // major currency units
	Status           SubscriptionStatus
	StartDate        *time.Time
	CurrentPeriodEnd *time.Time
	UpdatedAt        time.Time
}

// IsActive reports whether the subscription grants access to its product.
func (s Subscription) IsActive() bool {
	return s.Status == SubscriptionStatusActive
}

// PriceFromMinor converts an amount in minor currency units (cents) to major units.
func PriceFromMinor(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

// UnixTime converts provider epoch seconds to a time, treating 0 as absent.
func UnixTime(sec int64) *time.Time {
	if sec == 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}
