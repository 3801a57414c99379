// Package mocks provides an HTTP mock of the Anthropic Messages API used in
// E2E tests and by the e2e-server binary.
package mocks

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"
)

// Domain identifies which prompt a request carried
type Domain string

const (
	DomainIPOs   Domain = "ipos"
	DomainStocks Domain = "stocks"
)

// MockServer answers POST /v1/messages with canned replies per domain.
type MockServer struct {
	mu     sync.RWMutex
	server *httptest.Server

	// Reply text blocks per domain. Each entry becomes one text block.
	replies map[Domain][]string

	// Error injection
	errStatus map[Domain]int
	delay     time.Duration

	// Request tracking for assertions
	requestLog []RequestLog
}

// RequestLog records incoming requests for test assertions.
type RequestLog struct {
	Method  string
	Path    string
	APIKey  string
	Domain  Domain
	Request MessageRequest
}

// NewMockServer creates a new mock server with default replies dated
// relative to now.
func NewMockServer(now time.Time) *MockServer {
	m := NewHandler(now)
	m.server = httptest.NewServer(m)
	return m
}

// NewHandler creates the mock without starting a listener, for callers that
// serve it themselves.
func NewHandler(now time.Time) *MockServer {
	m := &MockServer{
		replies:    make(map[Domain][]string),
		errStatus:  make(map[Domain]int),
		requestLog: make([]RequestLog, 0),
	}
	m.SetIPOs(DefaultIPOs(now))
	m.SetStockPicks(DefaultStockPicks())
	return m
}

// URL returns the mock server's base URL.
func (m *MockServer) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockServer) Close() {
	if m.server != nil {
		m.server.Close()
	}
}

// ServeHTTP implements http.Handler.
func (m *MockServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || r.URL.Path != "/v1/messages" {
		writeAPIError(w, http.StatusNotFound, "not_found_error", "not found")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_request_error", err.Error())
		return
	}
	var req MessageRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_request_error", err.Error())
		return
	}

	domain := classify(req.Prompt())

	m.mu.Lock()
	m.requestLog = append(m.requestLog, RequestLog{
		Method:  r.Method,
		Path:    r.URL.Path,
		APIKey:  r.Header.Get("X-Api-Key"),
		Domain:  domain,
		Request: req,
	})
	delay := m.delay
	status := m.errStatus[domain]
	blocks := append([]string(nil), m.replies[domain]...)
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	if status != 0 {
		writeAPIError(w, status, errorType(status), fmt.Sprintf("mock %s failure", domain))
		return
	}

	content := []ContentBlock{{
		Type:  "server_tool_use",
		ID:    "srvtoolu_mock",
		Name:  "web_search",
		Input: map[string]any{"query": string(domain)},
	}}
	for _, text := range blocks {
		content = append(content, ContentBlock{Type: "text", Text: text})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(Message{
		ID:         "msg_mock",
		Type:       "message",
		Role:       "assistant",
		Model:      req.Model,
		Content:    content,
		StopReason: "end_turn",
		Usage:      Usage{InputTokens: 100, OutputTokens: 200},
	})
}

// classify tells the IPO prompt from the stock screening prompt
func classify(prompt string) Domain {
	if strings.Contains(prompt, "stock screening assistant") {
		return DomainStocks
	}
	return DomainIPOs
}

func errorType(status int) string {
	switch {
	case status == http.StatusTooManyRequests:
		return "rate_limit_error"
	case status == http.StatusUnauthorized:
		return "authentication_error"
	case status == 529:
		return "overloaded_error"
	case status >= 500:
		return "api_error"
	default:
		return "invalid_request_error"
	}
}

func writeAPIError(w http.ResponseWriter, status int, typ, message string) {
	var body APIError
	body.Type = "error"
	body.Error.Type = typ
	body.Error.Message = message

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// GetRequestLog returns all logged requests for assertions.
func (m *MockServer) GetRequestLog() []RequestLog {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]RequestLog{}, m.requestLog...)
}

// ClearRequestLog clears the request log.
func (m *MockServer) ClearRequestLog() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestLog = make([]RequestLog, 0)
}

// SetReply replaces the text blocks returned for domain verbatim.
func (m *MockServer) SetReply(domain Domain, blocks ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies[domain] = blocks
}

// SetIPOs replies to the IPO prompt with listings wrapped in a short preamble
// and a code fence, the way the model usually answers.
func (m *MockServer) SetIPOs(listings []IPO) {
	m.SetReply(DomainIPOs, "I searched several sources for upcoming IPOs.", fenced(listings))
}

// SetStockPicks replies to the stock prompt with picks.
func (m *MockServer) SetStockPicks(picks []StockPick) {
	m.SetReply(DomainStocks, fenced(picks))
}

// SetError makes requests for domain fail with status. Zero clears it.
func (m *MockServer) SetError(domain Domain, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if status == 0 {
		delete(m.errStatus, domain)
		return
	}
	m.errStatus[domain] = status
}

// SetDelay holds every reply for d before answering.
func (m *MockServer) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

func fenced(v any) string {
	data, _ := json.MarshalIndent(v, "", "  ")
	return "```json\n" + string(data) + "\n```"
}

func str(s string) *string {
	return &s
}

// DefaultIPOs returns one listing per dashboard window relative to now.
func DefaultIPOs(now time.Time) []IPO {
	date := func(days int) *string {
		return str(now.AddDate(0, 0, days).Format("2006-01-02"))
	}
	return []IPO{
		{
			Company:      "Horizon Robotics",
			Ticker:       str("HZRB"),
			ExpectedDate: date(45),
			PriceRange:   str("$18-$21"),
			Exchange:     str("NASDAQ"),
			Sector:       str("Technology"),
			Description:  str("Autonomous driving compute platforms."),
		},
		{
			Company:      "Cedar Health",
			Ticker:       str("CDRH"),
			ExpectedDate: date(2),
			PriceRange:   str("$14-$16"),
			Exchange:     str("NYSE"),
			Sector:       str("Healthcare"),
			Description:  str("Primary care clinics across the Midwest."),
		},
		{
			Company:      "Northwind Energy",
			ExpectedDate: date(12),
			Exchange:     str("NYSE"),
			Sector:       str("Energy"),
		},
		{
			Company:     "Quiet Ledger",
			Sector:      str("Finance"),
			Description: str("Filed confidentially; timing not announced."),
		},
	}
}

// DefaultStockPicks returns a small screen across signals.
func DefaultStockPicks() []StockPick {
	return []StockPick{
		{
			Ticker: "AVGO", Company: "Broadcom", Sector: "Technology", Price: "$172.40",
			MomentumScore: 74, Signal: "Buy",
			FundamentalsScore: 78, TechnicalsScore: 72, SentimentScore: 70, SectorScore: 80,
			KeyReasons:  []string{"Custom accelerator wins", "Software margin expansion"},
			Risks:       []string{"Customer concentration"},
			PriceTarget: "$195", Timeframe: "3-6 months", PERatio: "34.1", RSI: "58",
		},
		{
			Ticker: "LLY", Company: "Eli Lilly", Sector: "Healthcare", Price: "812.00",
			MomentumScore: 88, Signal: "Strong Buy",
			FundamentalsScore: 90, TechnicalsScore: 85, SentimentScore: 88, SectorScore: 82,
			KeyReasons:       []string{"GLP-1 supply ramp", "Raised guidance"},
			Risks:            []string{"Pricing pressure", "Trial readouts"},
			PriceTarget:      "$950",
			Timeframe:        "6-12 months",
			RevenueGrowth:    "+36% YoY",
			AnalystConsensus: "Strong Buy",
		},
		{
			Ticker: "CAT", Company: "Caterpillar", Sector: "Industrial", Price: "$351.10",
			MomentumScore: 63, Signal: "Watch",
			FundamentalsScore: 66, TechnicalsScore: 60, SentimentScore: 62, SectorScore: 64,
			KeyReasons: []string{"Infrastructure backlog"},
			Risks:      []string{"Cyclical demand"},
		},
	}
}
