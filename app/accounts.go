package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/airosofts/licensor/domain/auth"
	"github.com/airosofts/licensor/domain/billing"
	"github.com/airosofts/licensor/ports"
	"github.com/rs/zerolog"
)

// Session is an issued login token.
type Session struct {
	Token       string
	ExpiresAt   time.Time
	RedirectURL string
}

// Profile is the customer record shown on the dashboard.
type Profile struct {
	Name    string         `json:"name"`
	Email   string         `json:"email"`
	Phone   string         `json:"phone"`
	Address ProfileAddress `json:"address"`
}

// ProfileAddress holds the parts of the address kept for a customer.
type ProfileAddress struct {
	Country string `json:"country"`
}

// AccountService handles dashboard logins and self-service requests.
type AccountService struct {
	accounts    ports.AccountStore
	customers   ports.CustomerStore
	hasher      ports.Hasher
	tokens      ports.TokenService
	payments    ports.PaymentProvider
	redirectURL string
	returnURL   string
	logger      zerolog.Logger
}

// AccountConfig holds the URLs the account service hands out.
type AccountConfig struct {
	LoginRedirectURL string // sent back with a successful login
	PortalReturnURL  string // where the billing portal returns to
}

// NewAccountService creates a new account service.
func NewAccountService(
	accounts ports.AccountStore,
	customers ports.CustomerStore,
	hasher ports.Hasher,
	tokens ports.TokenService,
	payments ports.PaymentProvider,
	cfg AccountConfig,
	logger zerolog.Logger,
) *AccountService {
	return &AccountService{
		accounts:    accounts,
		customers:   customers,
		hasher:      hasher,
		tokens:      tokens,
		payments:    payments,
		redirectURL: cfg.LoginRedirectURL,
		returnURL:   cfg.PortalReturnURL,
		logger:      logger,
	}
}

// Login verifies a password against the stored hash and issues a token.
// Malformed requests, unknown emails and wrong passwords all return
// ErrInvalidCredentials after one hash comparison.
func (s *AccountService) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.TrimSpace(email)

	if result := auth.ValidateLogin(auth.LoginRequest{Email: email, Password: password}); !result.Valid {
		s.hasher.Compare(nil, password)
		s.logger.Debug().Str("email", email).Interface("errors", result.Errors).Msg("malformed login")
		return Session{}, ErrInvalidCredentials
	}

	account, err := s.accounts.Get(ctx, email)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			s.hasher.Compare(nil, password)
			s.logger.Debug().Str("email", email).Msg("login for unknown account")
			return Session{}, ErrInvalidCredentials
		}
		s.logger.Error().Err(err).Str("email", email).Msg("failed to load account")
		return Session{}, &UpstreamError{Op: "get account", Err: err}
	}

	if !s.hasher.Compare(account.PasswordHash, password) {
		s.logger.Debug().Str("email", email).Msg("login with wrong password")
		return Session{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.GenerateToken(account.Email, account.CustomerID)
	if err != nil {
		return Session{}, err
	}

	s.logger.Info().Str("email", account.Email).Msg("user logged in")
	return Session{Token: token, ExpiresAt: expiresAt, RedirectURL: s.redirectURL}, nil
}

// Authenticate resolves a bearer token to its identity.
func (s *AccountService) Authenticate(token string) (ports.Identity, error) {
	if token == "" {
		return ports.Identity{}, ErrUnauthorized
	}
	id, err := s.tokens.ValidateToken(token)
	if err != nil {
		return ports.Identity{}, errors.Join(ErrUnauthorized, err)
	}
	return id, nil
}

// ChangePassword replaces the password after verifying the current one.
func (s *AccountService) ChangePassword(ctx context.Context, email, current, next string) error {
	result := auth.ValidateChangePassword(auth.ChangePasswordRequest{
		CurrentPassword: current,
		NewPassword:     next,
	})
	if msg, bad := result.Errors["newPassword"]; bad {
		return fmt.Errorf("%w: %s", ErrWeakPassword, msg)
	}
	if !result.Valid {
		return ErrPasswordMismatch
	}

	account, err := s.accounts.Get(ctx, email)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return ErrNotFound
		}
		return &UpstreamError{Op: "get account", Err: err}
	}

	if !s.hasher.Compare(account.PasswordHash, current) {
		s.logger.Info().Str("email", email).Msg("password change with wrong current password")
		return ErrPasswordMismatch
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return err
	}
	if err := s.accounts.UpdatePassword(ctx, email, hash); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return ErrNotFound
		}
		return &UpstreamError{Op: "update password", Err: err}
	}

	s.logger.Info().Str("email", email).Msg("password changed")
	return nil
}

// UserDetails returns the customer profile registered under email.
func (s *AccountService) UserDetails(ctx context.Context, email string) (Profile, error) {
	c, err := s.customer(ctx, email)
	if err != nil {
		return Profile{}, err
	}
	return Profile{
		Name:    c.Name,
		Email:   c.Email,
		Phone:   c.Phone,
		Address: ProfileAddress{Country: c.Country},
	}, nil
}

// PortalSession creates a billing-portal session for the customer registered under email.
func (s *AccountService) PortalSession(ctx context.Context, email string) (string, error) {
	c, err := s.customer(ctx, email)
	if err != nil {
		return "", err
	}

	url, err := s.payments.CreatePortalSession(ctx, c.ID, s.returnURL)
	if err != nil {
		s.logger.Error().Err(err).
			Str("customer_id", c.ID).
			Msg("failed to create billing portal session")
		return "", &UpstreamError{Op: "create portal session", Err: err}
	}
	return url, nil
}

// customer returns the oldest customer row for email.
func (s *AccountService) customer(ctx context.Context, email string) (billing.Customer, error) {
	customers, err := s.customers.FindByEmail(ctx, email)
	if err != nil {
		return billing.Customer{}, &UpstreamError{Op: "find customer", Err: err}
	}
	if len(customers) == 0 {
		return billing.Customer{}, ErrNotFound
	}
	return customers[0], nil
}
