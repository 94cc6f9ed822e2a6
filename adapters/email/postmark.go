package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/airosofts/licensor/ports"
	"github.com/mrz1836/postmark"
)

// ErrFailedToSendEmail wraps delivery failures reported by Postmark.
var ErrFailedToSendEmail = errors.New("failed to send email")

// PostmarkConfig holds Postmark configuration.
type PostmarkConfig struct {
	ServerToken  string
	AccountToken string
	From         string
	FromName     string

	DashboardURL string
	AppName      string
}

// postmarkAPI is the subset of the Postmark client used here.
type postmarkAPI interface {
	SendEmail(ctx context.Context, email postmark.Email) (postmark.EmailResponse, error)
}

// PostmarkSender implements ports.EmailSender using Postmark's transactional API.
type PostmarkSender struct {
	client    postmarkAPI
	config    PostmarkConfig
	templates *Templates
}

// NewPostmarkSender creates a Postmark-backed email sender.
func NewPostmarkSender(config PostmarkConfig) (*PostmarkSender, error) {
	if config.ServerToken == "" {
		return nil, fmt.Errorf("postmark server token is required")
	}
	if config.From == "" {
		return nil, fmt.Errorf("postmark sender address is required")
	}
	return newPostmarkSender(postmark.NewClient(config.ServerToken, config.AccountToken), config)
}

func newPostmarkSender(client postmarkAPI, config PostmarkConfig) (*PostmarkSender, error) {
	tmpl, err := NewTemplates(config.AppName, config.DashboardURL)
	if err != nil {
		return nil, err
	}
	return &PostmarkSender{client: client, config: config, templates: tmpl}, nil
}

// Send delivers msg with open tracking enabled.
func (s *PostmarkSender) Send(ctx context.Context, msg ports.EmailMessage) error {
	from := s.config.From
	if s.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.From)
	}

	resp, err := s.client.SendEmail(ctx, postmark.Email{
		From:       from,
		To:         msg.To,
		Subject:    msg.Subject,
		Tag:        msg.Tag,
		HTMLBody:   msg.HTMLBody,
		TextBody:   msg.TextBody,
		TrackOpens: true,
	})
	if err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}
	if resp.ErrorCode > 0 {
		return errors.Join(
			ErrFailedToSendEmail,
			fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message),
		)
	}
	return nil
}

// SendCredentials sends a first-time buyer their dashboard login.
func (s *PostmarkSender) SendCredentials(ctx context.Context, to, password string) error {
	msg, err := s.templates.Credentials(to, password)
	if err != nil {
		return err
	}
	return s.Send(ctx, msg)
}

// SendPurchaseConfirmation thanks a returning buyer.
func (s *PostmarkSender) SendPurchaseConfirmation(ctx context.Context, to string) error {
	msg, err := s.templates.PurchaseConfirmation(to)
	if err != nil {
		return err
	}
	return s.Send(ctx, msg)
}

var _ ports.EmailSender = (*PostmarkSender)(nil)
