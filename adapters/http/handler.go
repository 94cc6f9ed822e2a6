// Package http provides the HTTP surface of licensor.
package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/airosofts/licensor/adapters/metrics"
	"github.com/airosofts/licensor/app"
	"github.com/rs/zerolog"
)

// Messages returned to dashboard clients.
const (
	msgInvalidLogin    = "Invalid email or password."
	msgWrongPassword   = "Current password is incorrect."
	msgPasswordChanged = "Password changed successfully."
)

// maxWebhookBody caps webhook payloads read into memory.
const maxWebhookBody = 1 << 20

// ErrorResponse is the body of every JSON error.
type ErrorResponse struct {
	Error string `json:"error" example:"not found"`
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Email    string `json:"email" example:"buyer@example.com"`
	Password string `json:"password"`
}

// LoginResponse is returned by POST /login.
type LoginResponse struct {
	Success     bool   `json:"success"`
	Token       string `json:"token,omitempty"`
	RedirectURL string `json:"redirectUrl,omitempty"`
	Message     string `json:"message,omitempty"`
}

// ChangePasswordRequest is the body of POST /api/change-password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// MessageResponse carries a human-readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// PortalResponse carries a billing portal URL.
type PortalResponse struct {
	URL string `json:"url"`
}

// Services groups the application services the handlers call.
type Services struct {
	Checkout     *app.CheckoutService
	Webhooks     *app.PaymentWebhookService
	Accounts     *app.AccountService
	Entitlements *app.EntitlementService
}

// Redirects holds the external pages checkout redirects to.
type Redirects struct {
	ThankYouURL  string
	MarketingURL string
}

// Handler serves the checkout, account and entitlement endpoints.
type Handler struct {
	checkout     *app.CheckoutService
	webhooks     *app.PaymentWebhookService
	accounts     *app.AccountService
	entitlements *app.EntitlementService
	redirects    Redirects
	metrics      *metrics.Collector
	logger       zerolog.Logger
}

// NewHandler creates a new HTTP handler.
// m may be nil.
func NewHandler(svc Services, redirects Redirects, m *metrics.Collector, logger zerolog.Logger) *Handler {
	return &Handler{
		checkout:     svc.Checkout,
		webhooks:     svc.Webhooks,
		accounts:     svc.Accounts,
		entitlements: svc.Entitlements,
		redirects:    redirects,
		metrics:      m,
		logger:       logger,
	}
}

// Subscribe redirects the buyer to a hosted checkout for the plan.
//
//	@Summary		Start a subscription checkout
//	@Description	Creates a hosted checkout for the plan and redirects to it
//	@Tags			Checkout
//	@Param			planId	query	string	true	"Plan id"
//	@Success		302		"Redirect to hosted checkout"
//	@Failure		400		{object}	ErrorResponse	"Unknown plan"
//	@Failure		500		{object}	ErrorResponse	"Payment provider error"
//	@Router			/subscribe [get]
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	url, err := h.checkout.Subscribe(r.Context(), r.URL.Query().Get("planId"))
	if err != nil {
		writeError(w, err)
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

// Success provisions a paid checkout and redirects to the thank-you page.
//
//	@Summary		Complete a checkout
//	@Description	Provisions the customer, subscription, license and login for a paid checkout
//	@Tags			Checkout
//	@Param			session_id	query	string	true	"Checkout session id"
//	@Success		302			"Redirect to the thank-you page"
//	@Failure		400			{object}	ErrorResponse	"Incomplete checkout data"
//	@Failure		500			{object}	ErrorResponse	"Provisioning failed"
//	@Router			/success [get]
func (h *Handler) Success(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")

	if _, err := h.checkout.Complete(r.Context(), sessionID); err != nil {
		h.logger.Error().Err(err).
			Str("session_id", sessionID).
			Msg("checkout completion failed")
		writeError(w, err)
		return
	}
	http.Redirect(w, r, h.redirects.ThankYouURL, http.StatusFound)
}

// Cancel sends an abandoned checkout back to the marketing site.
//
//	@Summary	Abandon a checkout
//	@Tags		Checkout
//	@Success	302	"Redirect to the marketing site"
//	@Router		/cancel [get]
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.redirects.MarketingURL, http.StatusFound)
}

// Login exchanges dashboard credentials for a token.
//
//	@Summary	Log in to the dashboard
//	@Tags		Account
//	@Accept		json
//	@Produce	json
//	@Param		body	body		LoginRequest	true	"Credentials"
//	@Success	200		{object}	LoginResponse
//	@Failure	401		{object}	LoginResponse	"Invalid email or password"
//	@Router		/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	sess, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, app.ErrInvalidCredentials) {
			h.authFailure("invalid_credentials")
			writeJSON(w, http.StatusUnauthorized, LoginResponse{Success: false, Message: msgInvalidLogin})
			return
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Success:     true,
		Token:       sess.Token,
		RedirectURL: sess.RedirectURL,
	})
}

// ChangePassword replaces the caller's password.
//
//	@Summary	Change the dashboard password
//	@Tags		Account
//	@Accept		json
//	@Produce	json
//	@Param		body	body		ChangePasswordRequest	true	"Passwords"
//	@Success	200		{object}	MessageResponse
//	@Failure	400		{object}	ErrorResponse	"Current password incorrect or new password rejected"
//	@Failure	401		{object}	ErrorResponse
//	@Security	BearerAuth
//	@Router		/api/change-password [post]
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	err := h.accounts.ChangePassword(r.Context(), id.Email, req.CurrentPassword, req.NewPassword)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, MessageResponse{Message: msgPasswordChanged})
	case errors.Is(err, app.ErrPasswordMismatch):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msgWrongPassword})
	default:
		writeError(w, err)
	}
}

// UserDetails returns the caller's customer profile.
//
//	@Summary	Get the customer profile
//	@Tags		Account
//	@Produce	json
//	@Success	200	{object}	app.Profile
//	@Failure	401	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse	"No customer"
//	@Security	BearerAuth
//	@Router		/api/user-details [get]
func (h *Handler) UserDetails(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())

	profile, err := h.accounts.UserDetails(r.Context(), id.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// Customers creates a billing portal session for the caller.
//
//	@Summary	Create a billing portal session
//	@Tags		Account
//	@Produce	json
//	@Success	200	{object}	PortalResponse
//	@Failure	401	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse	"No customer"
//	@Security	BearerAuth
//	@Router		/customers [get]
func (h *Handler) Customers(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())

	url, err := h.accounts.PortalSession(r.Context(), id.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PortalResponse{URL: url})
}

// UserSubscriptions lists the caller's subscriptions with quota usage.
//
//	@Summary	List subscriptions with quota usage
//	@Tags		Entitlements
//	@Produce	json
//	@Success	200	{array}		entitlement.SubscriptionSummary
//	@Failure	401	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse	"No subscriptions"
//	@Security	BearerAuth
//	@Router		/api/user-subscriptions [get]
func (h *Handler) UserSubscriptions(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())

	subs, err := h.entitlements.Subscriptions(r.Context(), id.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

// AvailableSoftware lists the software the caller may download with their license keys.
//
//	@Summary	List downloadable software with license keys
//	@Tags		Entitlements
//	@Produce	json
//	@Success	200	{array}		entitlement.SoftwareBundle
//	@Failure	401	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse	"No software"
//	@Security	BearerAuth
//	@Router		/api/available-softwares [get]
func (h *Handler) AvailableSoftware(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())

	bundles, err := h.entitlements.AvailableSoftware(r.Context(), id.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bundles)
}

// StripeWebhook receives payment provider events.
// Once the signature verifies the response is always 200; failures are logged.
//
//	@Summary	Receive payment provider events
//	@Tags		Webhooks
//	@Accept		json
//	@Param		Stripe-Signature	header	string	true	"Provider signature"
//	@Success	200					"Accepted"
//	@Failure	400					{object}	ErrorResponse	"Invalid signature"
//	@Router		/webhooks/stripe [post]
func (h *Handler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to read webhook body")
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "failed to read body"})
		return
	}

	err = h.webhooks.Handle(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	if errors.Is(err, app.ErrInvalidSignature) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: app.ErrInvalidSignature.Error()})
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("webhook processing failed")
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) authFailure(reason string) {
	if h.metrics != nil {
		h.metrics.AuthFailures.WithLabelValues(reason).Inc()
	}
}
