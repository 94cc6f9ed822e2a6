// Package auth provides site-login account value types and pure validation functions.
package auth

import (
	"regexp"
	"strings"
	"time"
)

// Password length bounds accepted on change. The upper bound is bcrypt's
// input limit, counted in bytes.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
)

// Account is a dashboard login, keyed by email (value type).
// Only a hash of the password is ever held.
type Account struct {
	Email            string
	PasswordHash     []byte
	CustomerID       string // provider customer id
	RegistrationDate time.Time
}

// LoginRequest represents a login request (value type).
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ValidationResult represents the outcome of request validation.
type ValidationResult struct {
	Valid  bool
	Errors map[string]string // field -> error message
}

// ValidateLogin validates a login request (pure function).
func ValidateLogin(req LoginRequest) ValidationResult {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Email) == "" {
		errors["email"] = "Email is required"
	} else if !IsValidEmail(req.Email) {
		errors["email"] = "Invalid email format"
	}
	if req.Password == "" {
		errors["password"] = "Password is required"
	}

	return ValidationResult{
		Valid:  len(errors) == 0,
		Errors: errors,
	}
}

// ChangePasswordRequest represents a password change request (value type).
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ValidateChangePassword validates a password change request (pure function).
func ValidateChangePassword(req ChangePasswordRequest) ValidationResult {
	errors := make(map[string]string)

	if req.CurrentPassword == "" {
		errors["currentPassword"] = "Current password is required"
	}

	if req.NewPassword == "" {
		errors["newPassword"] = "New password is required"
	} else if len(req.NewPassword) < MinPasswordLength {
		errors["newPassword"] = "Password must be at least 8 characters"
	} else if len(req.NewPassword) > MaxPasswordLength {
		errors["newPassword"] = "Password must be at most 72 bytes"
	} else if req.NewPassword == req.CurrentPassword {
		errors["newPassword"] = "New password must be different from current password"
	}

	return ValidationResult{
		Valid:  len(errors) == 0,
		Errors: errors,
	}
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// IsValidEmail reports whether email looks like an address.
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(strings.TrimSpace(email))
}
