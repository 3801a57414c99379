// Package envelope shapes fetch outcomes into the JSON bodies served to
// clients: {"ipos"|"stocks": [...], "fetchedAt": ...} on success and
// {"error": ...} with a status code on failure.
package envelope

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"ipo-radar/extract"
	"ipo-radar/models"
	"ipo-radar/services"
)

// TimestampLayout matches JavaScript's Date.toISOString
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// User-facing failure messages
const (
	MsgNotConfigured  = "ANTHROPIC_API_KEY not configured"
	MsgUpstreamFailed = "Failed to fetch from Anthropic API"
	MsgNoValidData    = "No valid data found"
	MsgInternal       = "Internal server error"
	MsgUnavailable    = "Service temporarily unavailable"
)

// Record is a type that can be carried in a success envelope
type Record interface {
	models.IPOListing | models.StockPick
}

// Body is a success envelope
type Body[T Record] struct {
	Items     []T
	FetchedAt time.Time
}

// Success wraps items fetched at fetchedAt. A nil slice is sent as [].
func Success[T Record](items []T, fetchedAt time.Time) Body[T] {
	if items == nil {
		items = []T{}
	}
	return Body[T]{Items: items, FetchedAt: fetchedAt}
}

// Key returns the JSON member holding the items
func (b Body[T]) Key() string {
	var zero T
	switch any(zero).(type) {
	case models.IPOListing:
		return "ipos"
	default:
		return "stocks"
	}
}

// MarshalJSON implements json.Marshaler
func (b Body[T]) MarshalJSON() ([]byte, error) {
	items := b.Items
	if items == nil {
		items = []T{}
	}
	return json.Marshal(map[string]any{
		b.Key():     items,
		"fetchedAt": b.FetchedAt.UTC().Format(TimestampLayout),
	})
}

// Error is a failure envelope. Status is the HTTP status to send with it.
type Error struct {
	Message string `json:"error"`
	Status  int    `json:"-"`
}

func (e Error) Error() string {
	return e.Message
}

// Failure maps a fetch error to its user-facing message and status
func Failure(err error) Error {
	var upErr *services.UpstreamError

	switch {
	case errors.Is(err, services.ErrNotConfigured):
		return Error{Message: MsgNotConfigured, Status: http.StatusInternalServerError}
	case errors.As(err, &upErr):
		status := upErr.StatusCode
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		return Error{Message: MsgUpstreamFailed, Status: status}
	case errors.Is(err, extract.ErrNoValidData):
		return Error{Message: MsgNoValidData, Status: http.StatusInternalServerError}
	case services.IsUnavailable(err):
		return Error{Message: MsgUnavailable, Status: http.StatusServiceUnavailable}
	default:
		return Error{Message: MsgInternal, Status: http.StatusInternalServerError}
	}
}

// Kind returns a short label for err used in logs and metrics
func Kind(err error) string {
	var upErr *services.UpstreamError
	var transportErr *services.TransportError

	switch {
	case err == nil:
		return "none"
	case errors.Is(err, services.ErrNotConfigured):
		return "configuration"
	case errors.As(err, &upErr):
		return "upstream"
	case errors.Is(err, extract.ErrNoValidData):
		return "extraction"
	case services.IsUnavailable(err):
		return "unavailable"
	case errors.As(err, &transportErr):
		return "transport"
	default:
		return "internal"
	}
}
