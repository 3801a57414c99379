package scenarios

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"ipo-radar/config"
	"ipo-radar/e2e/mocks"
	"ipo-radar/envelope"
)

func decodeError(t *testing.T, body string) string {
	t.Helper()
	var resp map[string]string
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("failed to decode error response %q: %v", body, err)
	}
	if len(resp) != 1 {
		t.Errorf("expected only the error key, got %v", resp)
	}
	return resp["error"]
}

func TestUpstreamErrors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		domain mocks.Domain
		status int
	}{
		{"ipos overloaded", "/api/ipos", mocks.DomainIPOs, 529},
		{"ipos unauthorized", "/api/ipos", mocks.DomainIPOs, http.StatusUnauthorized},
		{"stocks rate limited", "/api/stocks?sector=Energy", mocks.DomainStocks, http.StatusTooManyRequests},
		{"stocks server error", "/api/stocks", mocks.DomainStocks, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			harness := setup(t)
			harness.MockServer().SetError(tt.domain, tt.status)

			resp := harness.DoRequest(http.MethodGet, tt.path, "")
			if resp.Code != tt.status {
				t.Errorf("expected upstream status %d, got %d", tt.status, resp.Code)
			}
			if msg := decodeError(t, resp.Body.String()); msg != envelope.MsgUpstreamFailed {
				t.Errorf("unexpected error message: %s", msg)
			}
			if n := len(harness.MockServer().GetRequestLog()); n != 1 {
				t.Errorf("expected no retries, got %d upstream calls", n)
			}
		})
	}
}

func TestNoValidData(t *testing.T) {
	tests := []struct {
		name   string
		blocks []string
		reason string
	}{
		{"prose only", []string{"I could not find any reliable listings."}, "no_array_found"},
		{"broken json", []string{`[{"company": "Acme",, }]`}, "malformed_json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			harness := setup(t)
			harness.MockServer().SetReply(mocks.DomainIPOs, tt.blocks...)

			resp := harness.DoRequest(http.MethodGet, "/api/ipos", "")
			if resp.Code != http.StatusInternalServerError {
				t.Errorf("expected status 500, got %d", resp.Code)
			}
			if msg := decodeError(t, resp.Body.String()); msg != envelope.MsgNoValidData {
				t.Errorf("unexpected error message: %s", msg)
			}

			got := testutil.ToFloat64(harness.Metrics().ExtractionFailures.WithLabelValues("ipos", tt.reason))
			if got != 1 {
				t.Errorf("expected extraction failure %s to be counted, got %f", tt.reason, got)
			}
		})
	}
}

func TestNotConfigured(t *testing.T) {
	harness := setup(t, func(c *config.Config) {
		c.Anthropic.APIKey = ""
	})

	for _, path := range []string{"/api/ipos", "/api/stocks?sector=Finance"} {
		resp := harness.DoRequest(http.MethodGet, path, "")
		if resp.Code != http.StatusInternalServerError {
			t.Errorf("%s: expected status 500, got %d", path, resp.Code)
		}
		if msg := decodeError(t, resp.Body.String()); msg != envelope.MsgNotConfigured {
			t.Errorf("%s: unexpected error message: %s", path, msg)
		}
	}

	if n := len(harness.MockServer().GetRequestLog()); n != 0 {
		t.Errorf("expected no upstream calls without a key, got %d", n)
	}

	resp := harness.DoRequest(http.MethodGet, "/api/health", "")
	if !strings.Contains(resp.Body.String(), `"not_configured"`) {
		t.Error("expected health to report the missing key")
	}
}

func TestUpstreamTimeout(t *testing.T) {
	harness := setup(t, func(c *config.Config) {
		c.Upstream.TimeoutSeconds = 1
	})
	harness.MockServer().SetDelay(3 * time.Second)

	start := time.Now()
	resp := harness.DoRequest(http.MethodGet, "/api/ipos", "")
	if elapsed := time.Since(start); elapsed > 2500*time.Millisecond {
		t.Errorf("expected the call to be cut off at the budget, took %s", elapsed)
	}
	if resp.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", resp.Code)
	}
	if msg := decodeError(t, resp.Body.String()); msg != envelope.MsgInternal {
		t.Errorf("unexpected error message: %s", msg)
	}
}

func TestHTMXErrorState(t *testing.T) {
	harness := setup(t)
	harness.MockServer().SetError(mocks.DomainStocks, 529)

	resp := harness.DoHTMXRequest(http.MethodGet, "/api/stocks?sector=Consumer", "")
	if resp.Code != http.StatusOK {
		t.Errorf("expected HTMX error state to render with 200, got %d", resp.Code)
	}

	body := resp.Body.String()
	if !strings.Contains(body, envelope.MsgUpstreamFailed) {
		t.Error("expected error message in error box")
	}
	if !strings.Contains(body, `hx-get="/api/stocks?sector=Consumer"`) {
		t.Error("expected retry to replay the request")
	}
}

func TestCircuitBreakerOpens(t *testing.T) {
	harness := setup(t)
	harness.MockServer().SetError(mocks.DomainIPOs, http.StatusInternalServerError)

	for i := 0; i < 5; i++ {
		harness.DoRequest(http.MethodGet, "/api/ipos", "")
	}

	resp := harness.DoRequest(http.MethodGet, "/api/ipos", "")
	if resp.Code != http.StatusServiceUnavailable {
		t.Errorf("expected open breaker to answer 503, got %d", resp.Code)
	}
	if msg := decodeError(t, resp.Body.String()); msg != envelope.MsgUnavailable {
		t.Errorf("unexpected error message: %s", msg)
	}
	if n := len(harness.MockServer().GetRequestLog()); n != 5 {
		t.Errorf("expected the open breaker to short-circuit, got %d upstream calls", n)
	}

	health := harness.DoRequest(http.MethodGet, "/api/health", "")
	if !strings.Contains(health.Body.String(), `"degraded"`) {
		t.Error("expected health to report degraded while the breaker is open")
	}
}
