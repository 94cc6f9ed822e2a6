// Package metrics provides Prometheus metrics collection for licensor.
package metrics

import (
	"time"

	"github.com/airosofts/licensor/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "licensor"

// Provisioning branches.
const (
	BranchExisting = "existing_customer"
	BranchNew      = "new_customer"
)

// Outcomes recorded on provisioning, notification and webhook counters.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeIgnored = "ignored"
)

// Collector holds all Prometheus metrics for licensor.
type Collector struct {
	// Request metrics
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	// Auth metrics
	AuthFailures *prometheus.CounterVec

	// Provisioning metrics
	ProvisioningTotal    *prometheus.CounterVec
	ProvisioningDuration *prometheus.HistogramVec
	NotificationsTotal   *prometheus.CounterVec
	WebhookEvents        *prometheus.CounterVec

	// Catalog metrics
	CatalogSyncs      prometheus.Counter
	CatalogSyncErrors prometheus.Counter
	CatalogEntries    prometheus.Gauge

	// Config metrics
	ConfigReloads      prometheus.Counter
	ConfigReloadErrors prometheus.Counter
	ConfigLastReload   prometheus.Gauge
}

// New creates a new metrics collector registered with the default registry.
func New() *Collector {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a new metrics collector with a custom registry.
// Useful for testing to avoid global state.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests processed",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path", "status"},
		),
		RequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Number of requests currently being processed",
			},
		),
		AuthFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "auth_failures_total",
				Help:      "Total number of authentication failures",
			},
			[]string{"reason"},
		),

		ProvisioningTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provisioning_total",
				Help:      "Checkout reconciliations by branch and outcome",
			},
			[]string{"branch", "outcome"},
		),
		ProvisioningDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "provisioning_duration_seconds",
				Help:      "Checkout reconciliation duration in seconds",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"branch"},
		),
		NotificationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notifications_total",
				Help:      "Provisioning emails by template and outcome",
			},
			[]string{"template", "outcome"},
		),
		WebhookEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "webhook_events_total",
				Help:      "Payment webhook events by type and outcome",
			},
			[]string{"type", "outcome"},
		),

		CatalogSyncs: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "catalog_syncs_total",
				Help:      "Total number of successful software catalog syncs",
			},
		),
		CatalogSyncErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "catalog_sync_errors_total",
				Help:      "Total number of failed software catalog syncs",
			},
		),
		CatalogEntries: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "catalog_entries",
				Help:      "Number of software catalog entries after the last sync",
			},
		),

		ConfigReloads: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "config_reloads_total",
				Help:      "Total number of successful config reloads",
			},
		),
		ConfigReloadErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "config_reload_errors_total",
				Help:      "Total number of config reload errors",
			},
		),
		ConfigLastReload: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "config_last_reload_timestamp",
				Help:      "Unix timestamp of last successful config reload",
			},
		),
	}
}

// NormalizePath reduces cardinality for requests that matched no route.
func NormalizePath(path string) string {
	if path == "" {
		return "unmatched"
	}
	if len(path) > 50 {
		return path[:50] + "..."
	}
	return path
}

// RecordProvisioning counts one reconciliation and observes its duration.
func (c *Collector) RecordProvisioning(branch, outcome string, duration time.Duration) {
	c.ProvisioningTotal.WithLabelValues(branch, outcome).Inc()
	c.ProvisioningDuration.WithLabelValues(branch).Observe(duration.Seconds())
}

// RecordNotification counts one provisioning email.
func (c *Collector) RecordNotification(template, outcome string) {
	c.NotificationsTotal.WithLabelValues(template, outcome).Inc()
}

// RecordWebhook counts one payment webhook event.
func (c *Collector) RecordWebhook(eventType, outcome string) {
	c.WebhookEvents.WithLabelValues(eventType, outcome).Inc()
}

// RecordCatalogSync counts a catalog sync and tracks the resulting size.
func (c *Collector) RecordCatalogSync(entries int, err error) {
	if err != nil {
		c.CatalogSyncErrors.Inc()
		return
	}
	c.CatalogSyncs.Inc()
	c.CatalogEntries.Set(float64(entries))
}

var _ ports.MetricsRecorder = (*Collector)(nil)
