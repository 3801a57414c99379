package view

import (
	"strings"
	"time"

	"ipo-radar/models"
)

// SignalAll disables the signal filter
const SignalAll = "all"

// ParseSignal maps a query value to a known signal, defaulting to SignalAll
func ParseSignal(s string) string {
	if sig := models.Signal(strings.TrimSpace(s)); models.IsValidSignal(sig) {
		return string(sig)
	}
	return SignalAll
}

// FilterIPOs keeps listings in window w whose company, ticker or sector
// contains query, ignoring case. The input slice is not modified.
func FilterIPOs(listings []models.IPOListing, w Window, query string, now time.Time) []models.IPOListing {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.IPOListing, 0, len(listings))
	for _, l := range listings {
		if !InWindow(DaysUntil(l, now), w) {
			continue
		}
		if q != "" && !matches(q, string(l.Company), models.Value(l.Ticker), models.Value(l.Sector)) {
			continue
		}
		out = append(out, l)
	}
	return out
}

// FilterStockPicks keeps picks with the given signal ("all" or "" for any)
// whose company, ticker or sector contains query, ignoring case.
func FilterStockPicks(picks []models.StockPick, signal string, query string) []models.StockPick {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.StockPick, 0, len(picks))
	for _, p := range picks {
		if signal != "" && signal != SignalAll && string(p.Signal) != signal {
			continue
		}
		if q != "" && !matches(q, string(p.Company), string(p.Ticker), string(p.Sector)) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matches(q string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
