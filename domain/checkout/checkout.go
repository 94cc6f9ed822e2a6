// Package checkout provides the confirmed-checkout payload and its validation.
package checkout

import (
	"errors"
	"strings"

	"github.com/airosofts/licensor/domain/plan"
)

// ErrIncomplete is returned when a payload lacks a field provisioning needs.
var ErrIncomplete = errors.New("incomplete checkout data")

// Payload is a confirmed checkout as reported by the payment provider (value type).
// Optional fields are empty when the provider did not supply them.
type Payload struct {
	CustomerID      string
	CustomerEmail   string
	CustomerName    string
	CustomerPhone   string
	CustomerCountry string

	SubscriptionID        string
	SubscriptionStatus    string
	SubscriptionStart     int64 // epoch seconds, 0 = absent
	SubscriptionPeriodEnd int64 // epoch seconds, 0 = absent

	PlanNickname    string
	Tier            plan.Tier // resolved from PlanNickname by the provider adapter
	ProductID       string
	ProductName     string
	UnitAmountMinor int64
}

// MissingFields returns the names of required fields that are empty.
func (p Payload) MissingFields() []string {
	var missing []string
	if p.CustomerID == "" {
		missing = append(missing, "customer_id")
	}
	if p.CustomerEmail == "" {
		missing = append(missing, "customer_email")
	}
	if p.SubscriptionID == "" {
		missing = append(missing, "subscription_id")
	}
	if p.ProductID == "" {
		missing = append(missing, "product_id")
	}
	return missing
}

// Validate returns an error wrapping ErrIncomplete naming every missing field.
func (p Payload) Validate() error {
	missing := p.MissingFields()
	if len(missing) == 0 {
		return nil
	}
	return &IncompleteError{Fields: missing}
}

// IncompleteError lists the fields a payload was missing.
type IncompleteError struct {
	Fields []string
}

func (e *IncompleteError) Error() string {
	return "incomplete checkout data: missing " + strings.Join(e.Fields, ", ")
}

func (e *IncompleteError) Unwrap() error {
	return ErrIncomplete
}
