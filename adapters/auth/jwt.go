// Package auth provides stateless dashboard identity tokens using JWT.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/airosofts/licensor/ports"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultExpiration is how long a dashboard token stays valid.
const DefaultExpiration = time.Hour

// ErrInvalidToken is returned for tokens that fail verification or lack an email.
var ErrInvalidToken = errors.New("invalid token")

// Claims represents the JWT claims for a dashboard session.
type Claims struct {
	Email            string `json:"email"`
	StripeCustomerID string `json:"stripe_customer_id"`
	jwt.RegisteredClaims
}

// TokenService provides stateless JWT token operations.
// Thread-safe and suitable for concurrent use.
type TokenService struct {
	secret     []byte
	issuer     string
	expiration time.Duration
}

// NewTokenService creates a new JWT token service.
// If secret is empty, a random 32-byte secret is generated and tokens
// will not survive a restart.
func NewTokenService(secret string, expiration time.Duration) *TokenService {
	var secretBytes []byte
	if secret == "" {
		secretBytes = make([]byte, 32)
		rand.Read(secretBytes)
	} else {
		secretBytes = []byte(secret)
	}

	if expiration == 0 {
		expiration = DefaultExpiration
	}

	return &TokenService{
		secret:     secretBytes,
		issuer:     "licensor",
		expiration: expiration,
	}
}

// GenerateToken creates a signed token for the given account.
func (s *TokenService) GenerateToken(email, customerID string) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(s.expiration)

	claims := Claims{
		Email:            email,
		StripeCustomerID: customerID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// ValidateToken verifies a token and returns the identity it carries.
func (s *TokenService) ValidateToken(tokenString string) (ports.Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer))
	if err != nil {
		return ports.Identity{}, errors.Join(ErrInvalidToken, err)
	}

	if !token.Valid || claims.Email == "" {
		return ports.Identity{}, ErrInvalidToken
	}

	return ports.Identity{Email: claims.Email, CustomerID: claims.StripeCustomerID}, nil
}

// GenerateSecret generates a random secret suitable for JWT signing.
func GenerateSecret() string {
	b := make([]byte, 32)
	rand.Read(b)
	return hex.EncodeToString(b)
}

var _ ports.TokenService = (*TokenService)(nil)
