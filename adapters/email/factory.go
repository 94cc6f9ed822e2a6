package email

import (
	"fmt"
	"time"

	"github.com/airosofts/licensor/config"
	"github.com/airosofts/licensor/ports"
)

// NewSender creates an email sender based on configuration.
func NewSender(cfg config.EmailConfig, urls config.URLsConfig) (ports.EmailSender, error) {
	appName := cfg.FromName
	if appName == "" {
		appName = "AiroSofts"
	}

	switch cfg.Provider {
	case "smtp":
		if cfg.SMTP.Host == "" {
			return nil, fmt.Errorf("SMTP host is required")
		}
		return NewSMTPSender(SMTPConfig{
			Host:         cfg.SMTP.Host,
			Port:         cfg.SMTP.Port,
			Username:     cfg.SMTP.Username,
			Password:     cfg.SMTP.Password,
			From:         cfg.From,
			FromName:     appName,
			UseTLS:       cfg.SMTP.UseTLS,
			UseImplicit:  cfg.SMTP.UseImplicit,
			SkipVerify:   cfg.SMTP.SkipVerify,
			Timeout:      30 * time.Second,
			DashboardURL: urls.DashboardURL,
			AppName:      appName,
		})

	case "postmark":
		return NewPostmarkSender(PostmarkConfig{
			ServerToken:  cfg.Postmark.ServerToken,
			AccountToken: cfg.Postmark.AccountToken,
			From:         cfg.From,
			FromName:     appName,
			DashboardURL: urls.DashboardURL,
			AppName:      appName,
		})

	case "mock":
		return NewMockSender(urls.DashboardURL, appName), nil

	case "none", "":
		return NewNoopSender(), nil

	default:
		return nil, fmt.Errorf("unknown email provider: %s", cfg.Provider)
	}
}
