package app

import (
	"errors"
	"fmt"

	"github.com/airosofts/licensor/domain/checkout"
)

var (
	// ErrIncompleteCheckoutData is returned when a checkout lacks a field provisioning needs.
	// Nothing is written when it is returned.
	ErrIncompleteCheckoutData = checkout.ErrIncomplete

	// ErrNotFound is returned when a query matches no records.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized is returned for a missing, invalid or expired token.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnknownPlan is returned by Subscribe for a plan id not in the catalog.
	ErrUnknownPlan = errors.New("unknown plan")

	// ErrInvalidCredentials is returned by Login for a wrong email or password.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrPasswordMismatch is returned by ChangePassword when the current password does not verify.
	ErrPasswordMismatch = errors.New("current password is incorrect")

	// ErrWeakPassword is returned by ChangePassword for an unacceptable new password.
	ErrWeakPassword = errors.New("password does not meet requirements")
)

// LookupError reports that the customer lookup could not reach the store.
// The whole request is safe to retry.
type LookupError struct {
	Email string
	Err   error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("lookup customer %s: %v", e.Email, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

// UpstreamError reports that a store or provider call failed during a query.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Stage names the entity whose write failed during provisioning.
type Stage string

const (
	StageCustomer     Stage = "customer"
	StageSubscription Stage = "subscription"
	StageLicense      Stage = "license"
	StageAccount      Stage = "account"
	StageNotification Stage = "notification"
)

// ProvisioningError reports a failed write mid-branch.
// Writes completed before the failing stage are not rolled back.
type ProvisioningError struct {
	Stage          Stage
	SubscriptionID string
	Err            error
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("provisioning %s failed at %s: %v", e.SubscriptionID, e.Stage, e.Err)
}

func (e *ProvisioningError) Unwrap() error { return e.Err }
