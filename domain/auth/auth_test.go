package auth

import (
	"strings"
	"testing"
)

func TestValidateLogin(t *testing.T) {
	tests := []struct {
		name       string
		req        LoginRequest
		wantValid  bool
		wantErrors []string
	}{
		{
			name:      "valid login",
			req:       LoginRequest{Email: "test@example.com", Password: "password123"},
			wantValid: true,
		},
		{
			name:       "missing email",
			req:        LoginRequest{Email: "", Password: "password123"},
			wantErrors: []string{"email"},
		},
		{
			name:       "malformed email",
			req:        LoginRequest{Email: "not-an-email", Password: "password123"},
			wantErrors: []string{"email"},
		},
		{
			name:       "missing password",
			req:        LoginRequest{Email: "test@example.com"},
			wantErrors: []string{"password"},
		},
		{
			name:       "both missing",
			req:        LoginRequest{},
			wantErrors: []string{"email", "password"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateLogin(tt.req)

			if result.Valid != tt.wantValid {
				t.Errorf("Valid = %v, want %v", result.Valid, tt.wantValid)
			}
			for _, field := range tt.wantErrors {
				if _, ok := result.Errors[field]; !ok {
					t.Errorf("Expected error for field %s", field)
				}
			}
			if len(result.Errors) != len(tt.wantErrors) {
				t.Errorf("Errors = %v, want fields %v", result.Errors, tt.wantErrors)
			}
		})
	}
}

func TestValidateChangePassword(t *testing.T) {
	tests := []struct {
		name       string
		req        ChangePasswordRequest
		wantValid  bool
		wantErrors []string
	}{
		{
			name:      "valid change",
			req:       ChangePasswordRequest{CurrentPassword: "aB3$xY9!qW2e", NewPassword: "new-password-1"},
			wantValid: true,
		},
		{
			name:       "missing current",
			req:        ChangePasswordRequest{NewPassword: "new-password-1"},
			wantErrors: []string{"currentPassword"},
		},
		{
			name:       "too short",
			req:        ChangePasswordRequest{CurrentPassword: "old-password", NewPassword: "short"},
			wantErrors: []string{"newPassword"},
		},
		{
			name:      "at byte limit",
			req:       ChangePasswordRequest{CurrentPassword: "old-password", NewPassword: strings.Repeat("x", MaxPasswordLength)},
			wantValid: true,
		},
		{
			name:       "over byte limit",
			req:        ChangePasswordRequest{CurrentPassword: "old-password", NewPassword: strings.Repeat("x", MaxPasswordLength+1)},
			wantErrors: []string{"newPassword"},
		},
		{
			// 25 three-byte runes: 25 characters but 75 bytes.
			name:       "multibyte over byte limit",
			req:        ChangePasswordRequest{CurrentPassword: "old-password", NewPassword: strings.Repeat("€", 25)},
			wantErrors: []string{"newPassword"},
		},
		{
			name:       "unchanged",
			req:        ChangePasswordRequest{CurrentPassword: "same-password", NewPassword: "same-password"},
			wantErrors: []string{"newPassword"},
		},
		{
			name:       "missing new",
			req:        ChangePasswordRequest{CurrentPassword: "old-password"},
			wantErrors: []string{"newPassword"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateChangePassword(tt.req)

			if result.Valid != tt.wantValid {
				t.Errorf("Valid = %v, want %v", result.Valid, tt.wantValid)
			}
			for _, field := range tt.wantErrors {
				if _, ok := result.Errors[field]; !ok {
					t.Errorf("Expected error for field %s", field)
				}
			}
		})
	}
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"a@x.com", "first.last+tag@example.co.uk", " padded@example.com "}
	for _, e := range valid {
		if !IsValidEmail(e) {
			t.Errorf("IsValidEmail(%q) = false, want true", e)
		}
	}

	invalid := []string{"", "plain", "a@b", "@example.com"}
	for _, e := range invalid {
		if IsValidEmail(e) {
			t.Errorf("IsValidEmail(%q) = true, want false", e)
		}
	}
}
