package envelope

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ipo-radar/extract"
	"ipo-radar/models"
	"ipo-radar/services"
)

var fetchedAt = time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)

func TestSuccess_IPOs(t *testing.T) {
	body := Success([]models.IPOListing{{Company: "Acme"}}, fetchedAt)

	data, err := json.Marshal(body)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Contains(t, decoded, "ipos")
	assert.NotContains(t, decoded, "stocks")
	assert.JSONEq(t, `"2026-10-14T09:30:00.000Z"`, string(decoded["fetchedAt"]))

	var listings []models.IPOListing
	require.NoError(t, json.Unmarshal(decoded["ipos"], &listings))
	require.Len(t, listings, 1)
	assert.Equal(t, models.Text("Acme"), listings[0].Company)
}

func TestSuccess_Stocks(t *testing.T) {
	body := Success([]models.StockPick{{Ticker: "NVDA"}}, fetchedAt)
	assert.Equal(t, "stocks", body.Key())

	data, err := json.Marshal(body)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"stocks":[`)
}

func TestSuccess_NilBecomesEmptyArray(t *testing.T) {
	data, err := json.Marshal(Success[models.IPOListing](nil, fetchedAt))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"ipos":[]`)
}

func TestSuccess_FetchedAtIsUTC(t *testing.T) {
	local := time.Date(2026, 10, 14, 11, 30, 0, 0, time.FixedZone("CEST", 2*3600))
	data, err := json.Marshal(Success([]models.StockPick{}, local))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"fetchedAt":"2026-10-14T09:30:00.000Z"`)
}

func TestFailure(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantMsg    string
		wantStatus int
		wantKind   string
	}{
		{
			name:       "not configured",
			err:        services.ErrNotConfigured,
			wantMsg:    "ANTHROPIC_API_KEY not configured",
			wantStatus: http.StatusInternalServerError,
			wantKind:   "configuration",
		},
		{
			name:       "upstream status passes through",
			err:        &services.UpstreamError{StatusCode: http.StatusTooManyRequests},
			wantMsg:    "Failed to fetch from Anthropic API",
			wantStatus: http.StatusTooManyRequests,
			wantKind:   "upstream",
		},
		{
			name:       "wrapped upstream",
			err:        fmt.Errorf("fetching ipos: %w", &services.UpstreamError{StatusCode: 529}),
			wantMsg:    "Failed to fetch from Anthropic API",
			wantStatus: 529,
			wantKind:   "upstream",
		},
		{
			name:       "no array",
			err:        extract.ErrNoArrayFound,
			wantMsg:    "No valid data found",
			wantStatus: http.StatusInternalServerError,
			wantKind:   "extraction",
		},
		{
			name:       "no text",
			err:        extract.ErrNoTextContent,
			wantMsg:    "No valid data found",
			wantStatus: http.StatusInternalServerError,
			wantKind:   "extraction",
		},
		{
			name:       "malformed",
			err:        fmt.Errorf("%w: bad", extract.ErrMalformedJSON),
			wantMsg:    "No valid data found",
			wantStatus: http.StatusInternalServerError,
			wantKind:   "extraction",
		},
		{
			name:       "breaker open",
			err:        fmt.Errorf("service anthropic unavailable: %w", services.ErrBreakerOpen),
			wantMsg:    "Service temporarily unavailable",
			wantStatus: http.StatusServiceUnavailable,
			wantKind:   "unavailable",
		},
		{
			name:       "transport",
			err:        &services.TransportError{Err: errors.New("connection reset")},
			wantMsg:    "Internal server error",
			wantStatus: http.StatusInternalServerError,
			wantKind:   "transport",
		},
		{
			name:       "anything else",
			err:        errors.New("boom"),
			wantMsg:    "Internal server error",
			wantStatus: http.StatusInternalServerError,
			wantKind:   "internal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Failure(tt.err)
			assert.Equal(t, tt.wantMsg, got.Message)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.wantKind, Kind(tt.err))
		})
	}
}

func TestFailure_JSONShape(t *testing.T) {
	data, err := json.Marshal(Failure(extract.ErrNoArrayFound))
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"No valid data found"}`, string(data))
}

func TestFailure_OddUpstreamStatus(t *testing.T) {
	got := Failure(&services.UpstreamError{StatusCode: 0})
	assert.Equal(t, http.StatusBadGateway, got.Status)
}
