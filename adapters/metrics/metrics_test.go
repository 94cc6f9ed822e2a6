package metrics_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/airosofts/licensor/adapters/metrics"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func gather(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather error: %v", err)
	}
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	return nil
}

func TestNew(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	if m == nil {
		t.Fatal("NewWithRegistry returned nil")
	}
	if m.RequestsTotal == nil {
		t.Error("RequestsTotal is nil")
	}
	if m.RequestDuration == nil {
		t.Error("RequestDuration is nil")
	}
	if m.ProvisioningTotal == nil {
		t.Error("ProvisioningTotal is nil")
	}
	if m.NotificationsTotal == nil {
		t.Error("NotificationsTotal is nil")
	}
	if m.CatalogSyncs == nil {
		t.Error("CatalogSyncs is nil")
	}
	if m.ConfigReloads == nil {
		t.Error("ConfigReloads is nil")
	}
}

func TestRequestsTotal(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	m.RequestsTotal.WithLabelValues("GET", "/health", "200").Inc()
	m.RequestsTotal.WithLabelValues("POST", "/login", "401").Add(3)

	f := gather(t, reg, "licensor_http_requests_total")
	if f == nil {
		t.Fatal("licensor_http_requests_total metric not found")
	}
	if len(f.GetMetric()) != 2 {
		t.Errorf("expected 2 metric series, got %d", len(f.GetMetric()))
	}
}

func TestProvisioningTotal(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	m.ProvisioningTotal.WithLabelValues(metrics.BranchNew, metrics.OutcomeSuccess).Inc()
	m.ProvisioningTotal.WithLabelValues(metrics.BranchNew, metrics.OutcomeSuccess).Inc()
	m.ProvisioningTotal.WithLabelValues(metrics.BranchExisting, metrics.OutcomeFailure).Inc()
	m.ProvisioningDuration.WithLabelValues(metrics.BranchNew).Observe(0.2)

	f := gather(t, reg, "licensor_provisioning_total")
	if f == nil {
		t.Fatal("licensor_provisioning_total metric not found")
	}
	if len(f.GetMetric()) != 2 {
		t.Fatalf("expected 2 metric series, got %d", len(f.GetMetric()))
	}

	var total float64
	for _, metric := range f.GetMetric() {
		total += metric.GetCounter().GetValue()
	}
	if total != 3 {
		t.Errorf("total = %v, want 3", total)
	}

	if gather(t, reg, "licensor_provisioning_duration_seconds") == nil {
		t.Error("licensor_provisioning_duration_seconds metric not found")
	}
}

func TestNotificationsTotal(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	m.NotificationsTotal.WithLabelValues("credentials", metrics.OutcomeFailure).Inc()

	f := gather(t, reg, "licensor_notifications_total")
	if f == nil {
		t.Fatal("licensor_notifications_total metric not found")
	}
	labels := f.GetMetric()[0].GetLabel()
	if len(labels) != 2 {
		t.Fatalf("expected 2 labels, got %d", len(labels))
	}
}

func TestCatalogMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	m.CatalogSyncs.Inc()
	m.CatalogEntries.Set(4)

	f := gather(t, reg, "licensor_catalog_entries")
	if f == nil {
		t.Fatal("licensor_catalog_entries metric not found")
	}
	if got := f.GetMetric()[0].GetGauge().GetValue(); got != 4 {
		t.Errorf("catalog_entries = %v, want 4", got)
	}
}

func TestConfigReloads(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	m.ConfigReloads.Inc()
	m.ConfigReloadErrors.Inc()
	m.ConfigLastReload.SetToCurrentTime()

	for _, name := range []string{
		"licensor_config_reloads_total",
		"licensor_config_reload_errors_total",
		"licensor_config_last_reload_timestamp",
	} {
		if gather(t, reg, name) == nil {
			t.Errorf("%s metric not found", name)
		}
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"/login", "/login"},
		{"", "unmatched"},
		{"/" + strings.Repeat("a", 60), "/" + strings.Repeat("a", 49) + "..."},
	}

	for _, tt := range tests {
		if got := metrics.NormalizePath(tt.input); got != tt.want {
			t.Errorf("NormalizePath(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestRecorderMethods(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	m.RecordProvisioning(metrics.BranchNew, metrics.OutcomeSuccess, 150*time.Millisecond)
	m.RecordNotification("credentials", metrics.OutcomeSuccess)
	m.RecordWebhook("checkout.session.completed", metrics.OutcomeSuccess)
	m.RecordCatalogSync(3, nil)
	m.RecordCatalogSync(0, errors.New("db down"))

	for _, name := range []string{
		"licensor_provisioning_total",
		"licensor_provisioning_duration_seconds",
		"licensor_notifications_total",
		"licensor_webhook_events_total",
		"licensor_catalog_syncs_total",
		"licensor_catalog_sync_errors_total",
	} {
		if gather(t, reg, name) == nil {
			t.Errorf("%s metric not found", name)
		}
	}

	f := gather(t, reg, "licensor_catalog_entries")
	if f == nil || f.GetMetric()[0].GetGauge().GetValue() != 3 {
		t.Error("catalog_entries should keep the last successful size")
	}
}
