// Package e2e provides end-to-end testing infrastructure for ipo-radar. The
// full router runs against the real Anthropic SDK pointed at a mock Messages
// API.
package e2e

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"ipo-radar/config"
	"ipo-radar/e2e/mocks"
	"ipo-radar/internal/api"
	"ipo-radar/internal/app"
	"ipo-radar/observability"
	"ipo-radar/services"
)

// TestAPIKey is the credential the harness configures
const TestAPIKey = "sk-ant-test-key"

// TestHarness provides the infrastructure for running E2E tests.
type TestHarness struct {
	t          *testing.T
	ctx        context.Context
	cancel     context.CancelFunc
	mockServer *mocks.MockServer
	app        *app.App
	router     http.Handler
	config     *config.Config
	metrics    *observability.Metrics
}

// NewTestHarness creates a new test harness.
func NewTestHarness(t *testing.T) *TestHarness {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)

	return &TestHarness{
		t:      t,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Setup initializes all test dependencies. configure may adjust the config
// before the app is built.
func (h *TestHarness) Setup(configure ...func(*config.Config)) error {
	h.mockServer = mocks.NewMockServer(time.Now())

	h.config = h.createTestConfig()
	for _, fn := range configure {
		fn(h.config)
	}
	if err := h.config.Validate(); err != nil {
		return err
	}

	// Fresh breaker and metric state per harness
	services.SetGlobalRegistry(nil)
	h.metrics = observability.NewMetrics(prometheus.NewRegistry())
	observability.SetMetrics(h.metrics)

	h.app = app.NewFromConfig(h.config)
	h.app.Startup(h.ctx)

	handler := api.NewHandler(h.app, h.config)
	h.router = api.NewRouter(handler, h.config)

	return nil
}

// Teardown cleans up all test resources.
func (h *TestHarness) Teardown() {
	if h.cancel != nil {
		h.cancel()
	}

	if h.app != nil {
		h.app.Shutdown(context.Background())
	}

	if h.mockServer != nil {
		h.mockServer.Close()
	}
}

// Context returns the test context.
func (h *TestHarness) Context() context.Context {
	return h.ctx
}

// MockServer returns the mock server for configuring responses.
func (h *TestHarness) MockServer() *mocks.MockServer {
	return h.mockServer
}

// App returns the application instance.
func (h *TestHarness) App() *app.App {
	return h.app
}

// Router returns the HTTP router for making requests.
func (h *TestHarness) Router() http.Handler {
	return h.router
}

// Config returns the test configuration.
func (h *TestHarness) Config() *config.Config {
	return h.config
}

// Metrics returns the metrics registered for this harness.
func (h *TestHarness) Metrics() *observability.Metrics {
	return h.metrics
}

// DoRequest performs an HTTP request and returns the response.
func (h *TestHarness) DoRequest(method, path string, body string) *httptest.ResponseRecorder {
	return h.do(method, path, body, false)
}

// DoHTMXRequest performs an HTMX request and returns the response.
func (h *TestHarness) DoHTMXRequest(method, path string, body string) *httptest.ResponseRecorder {
	return h.do(method, path, body, true)
}

func (h *TestHarness) do(method, path, body string, htmx bool) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	req = req.WithContext(h.ctx)

	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func (h *TestHarness) createTestConfig() *config.Config {
	cfg := config.NewTestConfig()
	cfg.Anthropic.APIKey = TestAPIKey
	cfg.Anthropic.BaseURL = h.mockServer.URL()
	cfg.Upstream.TimeoutSeconds = 5
	cfg.Upstream.RatePerMinute = 600
	return cfg
}
