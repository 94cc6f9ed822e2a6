package bootstrap_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/airosofts/licensor/bootstrap"
	"github.com/airosofts/licensor/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

func testConfig(dbPath string, plans string) string {
	return `
database:
  driver: sqlite
  dsn: "` + dbPath + `"
payment:
  provider: dummy
  dummy_email: buyer@example.com
email:
  provider: mock
auth:
  jwt_secret: test-secret
  bcrypt_cost: 4
urls:
  base_url: "https://licensor.example.com"
  thank_you_url: "https://example.com/thanks"
  marketing_url: "https://example.com/"
metrics:
  enabled: true
plans:
` + plans + `
software:
  - product_id: prod_dummy_price_basic
    name: "Basic Tool"
    download_url: "https://example.com/basic.zip"
`
}

const basicPlans = `  - id: basic
    price_id: price_basic
`

func newTestApp(t *testing.T, watch bool) (*bootstrap.App, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "licensor.yaml")
	if err := os.WriteFile(path, []byte(testConfig(filepath.Join(dir, "test.db"), basicPlans)), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	logger := zerolog.Nop()
	a, err := bootstrap.New(context.Background(), bootstrap.Options{
		ConfigPath: path,
		Watch:      watch,
		Registry:   prometheus.NewRegistry(),
		Logger:     &logger,
	})
	if err != nil {
		t.Fatalf("create app: %v", err)
	}
	t.Cleanup(func() { a.Shutdown() })
	return a, path
}

func TestBootstrap_Integration(t *testing.T) {
	a, _ := newTestApp(t, false)

	if a.HTTPServer == nil {
		t.Fatal("HTTPServer should not be nil")
	}
	if a.Metrics == nil {
		t.Error("Metrics should not be nil when enabled")
	}
	if a.HTTPServer.Addr != "0.0.0.0:8080" {
		t.Errorf("Addr = %s, want 0.0.0.0:8080", a.HTTPServer.Addr)
	}
	if _, ok := a.Plans().Lookup("basic"); !ok {
		t.Error("plan basic should be in the catalog")
	}

	handler := a.HTTPServer.Handler

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("readiness status = %d, want 200", rec.Code)
	}

	// Checkout through the dummy provider lands back on /success.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/subscribe?planId=basic", nil))
	if rec.Code != http.StatusFound {
		t.Fatalf("subscribe status = %d, want 302", rec.Code)
	}
	loc := rec.Header().Get("Location")
	if !strings.HasPrefix(loc, "https://licensor.example.com/success?session_id=cs_dummy_") {
		t.Fatalf("subscribe Location = %s", loc)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, strings.TrimPrefix(loc, "https://licensor.example.com"), nil))
	if rec.Code != http.StatusFound {
		t.Fatalf("success status = %d, want 302: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Location"); got != "https://example.com/thanks" {
		t.Errorf("success Location = %s, want thank-you page", got)
	}

	subs, err := a.Entitlements.Subscriptions(context.Background(), "buyer@example.com")
	if err != nil {
		t.Fatalf("Subscriptions error: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("len(subs) = %d, want 1", len(subs))
	}

	bundles, err := a.Entitlements.AvailableSoftware(context.Background(), "buyer@example.com")
	if err != nil {
		t.Fatalf("AvailableSoftware error: %v", err)
	}
	if len(bundles) != 1 || bundles[0].Software == nil || bundles[0].Software.Name != "Basic Tool" {
		t.Errorf("bundles = %+v, want Basic Tool", bundles)
	}
}

func TestBootstrap_WatchReloadsPlans(t *testing.T) {
	a, path := newTestApp(t, true)

	updated := testConfig(filepath.Join(filepath.Dir(path), "test.db"), basicPlans+`  - id: gold
    price_id: price_gold
`)
	if err := os.WriteFile(path, []byte(updated), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := a.Plans().Lookup("gold"); ok {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Error("plan gold not picked up after config change")
}

func TestBootstrap_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "licensor.yaml")
	content := `
payment:
  provider: stripe
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, err := bootstrap.New(context.Background(), bootstrap.Options{ConfigPath: path})
	if err == nil {
		t.Fatal("expected error for stripe without a secret key")
	}
}

func TestBootstrap_ShutdownTwice(t *testing.T) {
	a, _ := newTestApp(t, false)

	if err := a.Shutdown(); err != nil {
		t.Fatalf("first Shutdown error: %v", err)
	}
	if err := a.Shutdown(); err != nil {
		t.Errorf("second Shutdown error: %v", err)
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"loud", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger := bootstrap.NewLogger(config.LoggingConfig{Level: tt.level, Format: "console"})
			if got := logger.GetLevel(); got != tt.want {
				t.Errorf("level = %v, want %v", got, tt.want)
			}
		})
	}
}
