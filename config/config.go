// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/airosofts/licensor/domain/entitlement"
	"github.com/airosofts/licensor/domain/plan"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig     `yaml:"server"`
	Database DatabaseConfig   `yaml:"database"`
	Payment  PaymentConfig    `yaml:"payment"`
	Email    EmailConfig      `yaml:"email"`
	Auth     AuthConfig       `yaml:"auth"`
	URLs     URLsConfig       `yaml:"urls"`
	Plans    []PlanConfig     `yaml:"plans"`
	Software []SoftwareConfig `yaml:"software"`
	Logging  LoggingConfig    `yaml:"logging"`
	Metrics  MetricsConfig    `yaml:"metrics"`
	OpenAPI  OpenAPIConfig    `yaml:"openapi"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DatabaseConfig configures the database.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "sqlite" or "postgres"
	DSN    string `yaml:"dsn"`
}

// PaymentConfig configures the payment provider.
// Use "stripe", "dummy" (local development), or "none".
type PaymentConfig struct {
	Provider            string `yaml:"provider"`
	StripeSecretKey     string `yaml:"stripe_secret_key,omitempty"`
	StripeWebhookSecret string `yaml:"stripe_webhook_secret,omitempty"`
	DummyEmail          string `yaml:"dummy_email,omitempty"` // buyer email reported by the dummy provider
}

// EmailConfig configures outgoing mail.
// Use "smtp", "postmark", "mock", or "none".
type EmailConfig struct {
	Provider string         `yaml:"provider"`
	From     string         `yaml:"from"`
	FromName string         `yaml:"from_name"`
	SMTP     SMTPConfig     `yaml:"smtp,omitempty"`
	Postmark PostmarkConfig `yaml:"postmark,omitempty"`
}

// SMTPConfig configures the SMTP sender.
type SMTPConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	UseTLS      bool   `yaml:"use_tls"`      // STARTTLS
	UseImplicit bool   `yaml:"use_implicit"` // implicit TLS, usually port 465
	SkipVerify  bool   `yaml:"skip_verify"`
}

// PostmarkConfig configures the Postmark API sender.
type PostmarkConfig struct {
	ServerToken  string `yaml:"server_token"`
	AccountToken string `yaml:"account_token,omitempty"`
}

// AuthConfig configures dashboard authentication.
type AuthConfig struct {
	JWTSecret  string        `yaml:"jwt_secret,omitempty"`
	TokenTTL   time.Duration `yaml:"token_ttl"`
	BcryptCost int           `yaml:"bcrypt_cost"`
}

// URLsConfig holds the public URLs the service redirects to or links from emails.
type URLsConfig struct {
	BaseURL          string `yaml:"base_url"`           // where this service is reachable
	ThankYouURL      string `yaml:"thank_you_url"`      // after a successful checkout
	MarketingURL     string `yaml:"marketing_url"`      // after a cancelled checkout
	DashboardURL     string `yaml:"dashboard_url"`      // linked from emails
	LoginRedirectURL string `yaml:"login_redirect_url"` // returned by a successful login
}

// PlanConfig maps a public plan id to a payment-provider price id.
type PlanConfig struct {
	ID      string `yaml:"id"`
	PriceID string `yaml:"price_id"`
}

// SoftwareConfig describes one downloadable product in the catalog.
type SoftwareConfig struct {
	ProductID   string `yaml:"product_id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Icon        string `yaml:"icon"`
	DownloadURL string `yaml:"download_url"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // Enable /metrics endpoint
	Path    string `yaml:"path"`    // Custom path (default: /metrics)
}

// OpenAPIConfig configures OpenAPI/Swagger documentation.
type OpenAPIConfig struct {
	Enabled bool `yaml:"enabled"` // Enable /swagger endpoints
}

// Catalog builds the plan catalog from the configured plans.
func (c *Config) Catalog() *plan.Catalog {
	plans := make([]plan.Plan, 0, len(c.Plans))
	for _, p := range c.Plans {
		plans = append(plans, plan.Plan{ID: p.ID, PriceID: p.PriceID})
	}
	return plan.NewCatalog(plans)
}

// SoftwareEntries returns the configured software catalog.
func (c *Config) SoftwareEntries() []entitlement.Software {
	entries := make([]entitlement.Software, 0, len(c.Software))
	for _, s := range c.Software {
		entries = append(entries, entitlement.Software{
			ProductID:   s.ProductID,
			Name:        s.Name,
			Description: s.Description,
			Icon:        s.Icon,
			DownloadURL: s.DownloadURL,
		})
	}
	return entries
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(&cfg)

	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadFromEnv creates configuration entirely from environment variables.
//
// Environment variables:
//
//	LICENSOR_SERVER_HOST             - Server host (default: 0.0.0.0)
//	LICENSOR_SERVER_PORT             - Server port (default: 8080)
//	LICENSOR_DATABASE_DRIVER         - sqlite or postgres (default: sqlite)
//	LICENSOR_DATABASE_DSN            - Database path or URL (default: licensor.db)
//	LICENSOR_PAYMENT_PROVIDER        - stripe, dummy or none (default: none)
//	LICENSOR_STRIPE_SECRET_KEY       - Stripe API key
//	LICENSOR_STRIPE_WEBHOOK_SECRET   - Stripe webhook signing secret
//	LICENSOR_EMAIL_PROVIDER          - smtp, postmark, mock or none (default: none)
//	LICENSOR_JWT_SECRET              - Token signing secret
//	LICENSOR_BASE_URL                - Public URL of this service
//	LICENSOR_LOG_LEVEL               - Log level: debug, info, warn, error (default: info)
//	LICENSOR_LOG_FORMAT              - Log format: json or console (default: json)
func LoadFromEnv() (*Config, error) {
	var cfg Config

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadWithFallback loads path when it exists and falls back to environment variables.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return LoadFromEnv()
}

// applyEnvOverrides applies LICENSOR_* environment variables to the config.
// Environment variables always override file-based configuration.
func applyEnvOverrides(cfg *Config) {
	// Server configuration
	if v := os.Getenv("LICENSOR_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("LICENSOR_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("LICENSOR_SERVER_READ_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if v := os.Getenv("LICENSOR_SERVER_WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}

	// Database configuration
	if v := os.Getenv("LICENSOR_DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("LICENSOR_DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}

	// Payment configuration
	if v := os.Getenv("LICENSOR_PAYMENT_PROVIDER"); v != "" {
		cfg.Payment.Provider = v
	}
	if v := os.Getenv("LICENSOR_STRIPE_SECRET_KEY"); v != "" {
		cfg.Payment.StripeSecretKey = v
	}
	if v := os.Getenv("LICENSOR_STRIPE_WEBHOOK_SECRET"); v != "" {
		cfg.Payment.StripeWebhookSecret = v
	}

	// Email configuration
	if v := os.Getenv("LICENSOR_EMAIL_PROVIDER"); v != "" {
		cfg.Email.Provider = v
	}
	if v := os.Getenv("LICENSOR_EMAIL_FROM"); v != "" {
		cfg.Email.From = v
	}
	if v := os.Getenv("LICENSOR_SMTP_HOST"); v != "" {
		cfg.Email.SMTP.Host = v
	}
	if v := os.Getenv("LICENSOR_SMTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Email.SMTP.Port = port
		}
	}
	if v := os.Getenv("LICENSOR_SMTP_USERNAME"); v != "" {
		cfg.Email.SMTP.Username = v
	}
	if v := os.Getenv("LICENSOR_SMTP_PASSWORD"); v != "" {
		cfg.Email.SMTP.Password = v
	}
	if v := os.Getenv("LICENSOR_POSTMARK_SERVER_TOKEN"); v != "" {
		cfg.Email.Postmark.ServerToken = v
	}
	if v := os.Getenv("LICENSOR_POSTMARK_ACCOUNT_TOKEN"); v != "" {
		cfg.Email.Postmark.AccountToken = v
	}

	// Auth configuration
	if v := os.Getenv("LICENSOR_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("LICENSOR_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Auth.TokenTTL = d
		}
	}

	// URLs
	if v := os.Getenv("LICENSOR_BASE_URL"); v != "" {
		cfg.URLs.BaseURL = v
	}
	if v := os.Getenv("LICENSOR_THANK_YOU_URL"); v != "" {
		cfg.URLs.ThankYouURL = v
	}
	if v := os.Getenv("LICENSOR_MARKETING_URL"); v != "" {
		cfg.URLs.MarketingURL = v
	}
	if v := os.Getenv("LICENSOR_DASHBOARD_URL"); v != "" {
		cfg.URLs.DashboardURL = v
	}

	// Logging configuration
	if v := os.Getenv("LICENSOR_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LICENSOR_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	// Metrics configuration
	if v := os.Getenv("LICENSOR_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
	if v := os.Getenv("LICENSOR_METRICS_PATH"); v != "" {
		cfg.Metrics.Path = v
	}

	// OpenAPI configuration
	if v := os.Getenv("LICENSOR_OPENAPI_ENABLED"); v != "" {
		cfg.OpenAPI.Enabled = parseBool(v)
	}
}

// parseBool parses a boolean from common string values.
func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func setDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60 * time.Second
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" && cfg.Database.Driver == "sqlite" {
		cfg.Database.DSN = "licensor.db"
	}

	if cfg.Payment.Provider == "" {
		cfg.Payment.Provider = "none"
	}
	if cfg.Payment.DummyEmail == "" {
		cfg.Payment.DummyEmail = "buyer@example.com"
	}

	if cfg.Email.Provider == "" {
		cfg.Email.Provider = "none"
	}
	if cfg.Email.FromName == "" {
		cfg.Email.FromName = "AiroSofts"
	}
	if cfg.Email.SMTP.Port == 0 {
		cfg.Email.SMTP.Port = 587
	}

	if cfg.Auth.TokenTTL == 0 {
		cfg.Auth.TokenTTL = time.Hour
	}
	if cfg.Auth.BcryptCost == 0 {
		cfg.Auth.BcryptCost = 10
	}

	if cfg.URLs.BaseURL == "" {
		cfg.URLs.BaseURL = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	}
	cfg.URLs.BaseURL = strings.TrimSuffix(cfg.URLs.BaseURL, "/")
	if cfg.URLs.ThankYouURL == "" {
		cfg.URLs.ThankYouURL = "https://www.airosofts.com/thank-you"
	}
	if cfg.URLs.MarketingURL == "" {
		cfg.URLs.MarketingURL = "https://www.airosofts.com/"
	}
	if cfg.URLs.DashboardURL == "" {
		cfg.URLs.DashboardURL = "https://dashboard.airosofts.com"
	}
	if cfg.URLs.LoginRedirectURL == "" {
		cfg.URLs.LoginRedirectURL = cfg.URLs.DashboardURL
	}

	if len(cfg.Plans) == 0 {
		for _, p := range plan.DefaultPlans() {
			cfg.Plans = append(cfg.Plans, PlanConfig{ID: p.ID, PriceID: p.PriceID})
		}
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}

func validate(cfg *Config) error {
	switch cfg.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("database.driver must be 'sqlite' or 'postgres', got %q", cfg.Database.Driver)
	}
	if cfg.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}

	switch cfg.Payment.Provider {
	case "stripe":
		if cfg.Payment.StripeSecretKey == "" {
			return fmt.Errorf("payment.stripe_secret_key is required when payment.provider is 'stripe'")
		}
	case "dummy", "none":
	default:
		return fmt.Errorf("payment.provider must be one of: stripe, dummy, none")
	}

	switch cfg.Email.Provider {
	case "smtp":
		if cfg.Email.SMTP.Host == "" {
			return fmt.Errorf("email.smtp.host is required when email.provider is 'smtp'")
		}
		if cfg.Email.From == "" {
			return fmt.Errorf("email.from is required when email.provider is 'smtp'")
		}
	case "postmark":
		if cfg.Email.Postmark.ServerToken == "" {
			return fmt.Errorf("email.postmark.server_token is required when email.provider is 'postmark'")
		}
		if cfg.Email.From == "" {
			return fmt.Errorf("email.from is required when email.provider is 'postmark'")
		}
	case "mock", "none":
	default:
		return fmt.Errorf("email.provider must be one of: smtp, postmark, mock, none")
	}

	if cfg.Auth.BcryptCost < 4 || cfg.Auth.BcryptCost > 31 {
		return fmt.Errorf("auth.bcrypt_cost must be between 4 and 31, got %d", cfg.Auth.BcryptCost)
	}

	seenPlans := make(map[string]bool)
	for i, p := range cfg.Plans {
		if p.ID == "" {
			return fmt.Errorf("plans[%d].id is required", i)
		}
		if p.PriceID == "" {
			return fmt.Errorf("plans[%d].price_id is required", i)
		}
		if seenPlans[p.ID] {
			return fmt.Errorf("plans[%d].id %q is duplicated", i, p.ID)
		}
		seenPlans[p.ID] = true
	}

	seenProducts := make(map[string]bool)
	for i, s := range cfg.Software {
		if s.ProductID == "" {
			return fmt.Errorf("software[%d].product_id is required", i)
		}
		if seenProducts[s.ProductID] {
			return fmt.Errorf("software[%d].product_id %q is duplicated", i, s.ProductID)
		}
		seenProducts[s.ProductID] = true
	}

	return nil
}
