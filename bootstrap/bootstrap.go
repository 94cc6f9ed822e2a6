// Package bootstrap wires the application together.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/airosofts/licensor/adapters/auth"
	"github.com/airosofts/licensor/adapters/clock"
	"github.com/airosofts/licensor/adapters/email"
	"github.com/airosofts/licensor/adapters/hasher"
	httpadapter "github.com/airosofts/licensor/adapters/http"
	"github.com/airosofts/licensor/adapters/idgen"
	"github.com/airosofts/licensor/adapters/metrics"
	"github.com/airosofts/licensor/adapters/payment"
	"github.com/airosofts/licensor/adapters/postgres"
	"github.com/airosofts/licensor/adapters/random"
	"github.com/airosofts/licensor/adapters/sqlite"
	"github.com/airosofts/licensor/app"
	"github.com/airosofts/licensor/config"
	"github.com/airosofts/licensor/domain/plan"
	"github.com/airosofts/licensor/domain/secret"
	"github.com/airosofts/licensor/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// ShutdownTimeout bounds a graceful shutdown.
const ShutdownTimeout = 30 * time.Second

// Options configure New.
type Options struct {
	// ConfigPath is a YAML file. When it does not exist, configuration
	// comes from LICENSOR_* environment variables.
	ConfigPath string

	// Watch reloads plans and software when the config file changes or on SIGHUP.
	Watch bool

	// Registry receives the metrics. Nil means the global registry.
	Registry *prometheus.Registry

	// Logger overrides the logger built from the logging config.
	Logger *zerolog.Logger
}

// App holds all application components.
type App struct {
	Config     *config.Config
	Logger     zerolog.Logger
	HTTPServer *http.Server
	Metrics    *metrics.Collector

	Catalog      *app.CatalogService
	Provisioning *app.ProvisioningService
	Checkout     *app.CheckoutService
	Webhooks     *app.PaymentWebhookService
	Accounts     *app.AccountService
	Entitlements *app.EntitlementService

	db     database
	holder *config.Holder
	plans  atomic.Pointer[plan.Catalog]
}

// database is the part of the sqlite and postgres handles the app manages.
type database interface {
	HealthCheck(ctx context.Context) error
	Close() error
}

type stores struct {
	customers     ports.CustomerStore
	subscriptions ports.SubscriptionStore
	licenses      ports.LicenseStore
	accounts      ports.AccountStore
	software      ports.SoftwareStore
}

// New loads configuration and creates a fully wired application.
func New(ctx context.Context, opts Options) (*App, error) {
	cfg, err := config.LoadWithFallback(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := NewLogger(cfg.Logging)
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	var holder *config.Holder
	if opts.Watch && fileExists(opts.ConfigPath) {
		holder, err = config.NewHolder(opts.ConfigPath, logger)
		if err != nil {
			return nil, err
		}
		cfg = holder.Get()
	}

	a, err := NewWithConfig(ctx, cfg, logger, opts.Registry)
	if err != nil {
		return nil, err
	}

	if holder != nil {
		a.holder = holder
		holder.OnChange(a.applyConfig)
		holder.OnError(func(error) {
			if a.Metrics != nil {
				a.Metrics.ConfigReloadErrors.Inc()
			}
		})
		if err := holder.WatchFile(); err != nil {
			logger.Warn().Err(err).Msg("config file watch unavailable, SIGHUP still reloads")
		}
		holder.WatchSignals()
	}

	return a, nil
}

// NewWithConfig creates a fully wired application from cfg.
// A nil registry registers metrics globally.
func NewWithConfig(ctx context.Context, cfg *config.Config, logger zerolog.Logger, registry *prometheus.Registry) (*App, error) {
	a := &App{Config: cfg, Logger: logger}
	a.plans.Store(cfg.Catalog())

	db, st, err := openDatabase(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	a.db = db

	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		if registry != nil {
			a.Metrics = metrics.NewWithRegistry(registry)
			metricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
		} else {
			a.Metrics = metrics.New()
		}
	}
	// A nil *Collector must not become a non-nil interface.
	var recorder ports.MetricsRecorder
	if a.Metrics != nil {
		recorder = a.Metrics
	}

	payments, err := payment.NewProvider(cfg.Payment)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("payment provider: %w", err)
	}

	mailer, err := email.NewSender(cfg.Email, cfg.URLs)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("email sender: %w", err)
	}

	jwtSecret := cfg.Auth.JWTSecret
	if jwtSecret == "" {
		jwtSecret = auth.GenerateSecret()
		logger.Warn().Msg("auth.jwt_secret not set, using a random secret; tokens will not survive a restart")
	}
	tokens := auth.NewTokenService(jwtSecret, cfg.Auth.TokenTTL)
	passwords := hasher.NewBcrypt(cfg.Auth.BcryptCost)

	a.Catalog = app.NewCatalogService(st.software, recorder, logger.With().Str("component", "catalog").Logger())
	if err := a.Catalog.Sync(ctx, cfg.SoftwareEntries()); err != nil {
		db.Close()
		return nil, err
	}

	a.Provisioning = app.NewProvisioningService(
		app.ProvisioningStores{
			Customers:     st.customers,
			Subscriptions: st.subscriptions,
			Licenses:      st.licenses,
			Accounts:      st.accounts,
		},
		secret.NewGenerator(random.Real{}),
		passwords,
		idgen.UUID{},
		clock.Real{},
		mailer,
		recorder,
		logger.With().Str("component", "provisioning").Logger(),
	)

	a.Checkout = app.NewCheckoutService(payments, a.Provisioning, a.plans.Load, cfg.URLs.BaseURL,
		logger.With().Str("component", "checkout").Logger())

	a.Webhooks = app.NewPaymentWebhookService(payments, a.Checkout, st.subscriptions, recorder,
		logger.With().Str("component", "webhooks").Logger())

	a.Accounts = app.NewAccountService(st.accounts, st.customers, passwords, tokens, payments,
		app.AccountConfig{
			LoginRedirectURL: cfg.URLs.LoginRedirectURL,
			PortalReturnURL:  cfg.URLs.DashboardURL,
		},
		logger.With().Str("component", "accounts").Logger())

	a.Entitlements = app.NewEntitlementService(app.EntitlementStores{
		Subscriptions: st.subscriptions,
		Licenses:      st.licenses,
		Accounts:      st.accounts,
		Software:      st.software,
	}, logger.With().Str("component", "entitlements").Logger())

	handler := httpadapter.NewHandler(
		httpadapter.Services{
			Checkout:     a.Checkout,
			Webhooks:     a.Webhooks,
			Accounts:     a.Accounts,
			Entitlements: a.Entitlements,
		},
		httpadapter.Redirects{
			ThankYouURL:  cfg.URLs.ThankYouURL,
			MarketingURL: cfg.URLs.MarketingURL,
		},
		a.Metrics,
		logger,
	)

	router := httpadapter.NewRouter(handler, httpadapter.NewHealthHandler(db), a.Accounts, logger, httpadapter.RouterConfig{
		Metrics:        a.Metrics,
		MetricsHandler: metricsHandler,
		MetricsPath:    cfg.Metrics.Path,
		EnableOpenAPI:  cfg.OpenAPI.Enabled,
	})

	a.HTTPServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	logger.Info().
		Str("database", cfg.Database.Driver).
		Str("payment", payments.Name()).
		Str("email", cfg.Email.Provider).
		Int("plans", len(cfg.Plans)).
		Int("software", len(cfg.Software)).
		Msg("application initialized")

	return a, nil
}

// Plans returns the plan catalog currently in effect.
func (a *App) Plans() *plan.Catalog {
	return a.plans.Load()
}

// applyConfig swaps in the reloadable parts of cfg.
func (a *App) applyConfig(cfg *config.Config) {
	a.plans.Store(cfg.Catalog())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := a.Catalog.Sync(ctx, cfg.SoftwareEntries())
	if a.Metrics != nil {
		if err != nil {
			a.Metrics.ConfigReloadErrors.Inc()
		} else {
			a.Metrics.ConfigReloads.Inc()
			a.Metrics.ConfigLastReload.SetToCurrentTime()
		}
	}
	if err != nil {
		a.Logger.Error().Err(err).Msg("catalog sync after reload failed")
		return
	}
	a.Logger.Info().Int("plans", len(cfg.Plans)).Msg("plans and software reloaded")
}

// Run starts the HTTP server and blocks until SIGINT or SIGTERM.
func (a *App) Run() error {
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().Str("addr", a.HTTPServer.Addr).Msg("starting HTTP server")
		if err := a.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-errCh:
		a.Shutdown()
		return fmt.Errorf("http server: %w", err)
	case sig := <-sigCh:
		a.Logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	return a.Shutdown()
}

// Shutdown gracefully stops the server and releases resources.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if a.holder != nil {
		a.holder.Stop()
		a.holder = nil
	}

	var errs []error
	if a.HTTPServer != nil {
		if err := a.HTTPServer.Shutdown(ctx); err != nil {
			a.Logger.Error().Err(err).Msg("http server shutdown error")
			errs = append(errs, err)
		}
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("database close error")
			errs = append(errs, err)
		}
		a.db = nil
	}

	a.Logger.Info().Msg("shutdown complete")
	return errors.Join(errs...)
}

// NewLogger builds the process logger from the logging config.
func NewLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var out io.Writer = os.Stdout
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func openDatabase(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (database, stores, error) {
	switch cfg.Driver {
	case "postgres":
		db, err := postgres.Open(ctx, postgres.DefaultConfig(cfg.DSN))
		if err != nil {
			return nil, stores{}, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.Migrate(ctx, logger); err != nil {
			db.Close()
			return nil, stores{}, fmt.Errorf("migrate postgres: %w", err)
		}
		return db, stores{
			customers:     postgres.NewCustomerStore(db),
			subscriptions: postgres.NewSubscriptionStore(db),
			licenses:      postgres.NewLicenseStore(db),
			accounts:      postgres.NewAccountStore(db),
			software:      postgres.NewSoftwareStore(db),
		}, nil

	default:
		db, err := sqlite.Open(cfg.DSN)
		if err != nil {
			return nil, stores{}, fmt.Errorf("open sqlite: %w", err)
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			return nil, stores{}, fmt.Errorf("migrate sqlite: %w", err)
		}
		return db, stores{
			customers:     sqlite.NewCustomerStore(db),
			subscriptions: sqlite.NewSubscriptionStore(db),
			licenses:      sqlite.NewLicenseStore(db),
			accounts:      sqlite.NewAccountStore(db),
			software:      sqlite.NewSoftwareStore(db),
		}, nil
	}
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
