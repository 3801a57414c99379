// Package view holds the pure functions behind the dashboard: date
// bucketing, filters, summary stats, the tracked-IPO set and notification
// planning. Nothing here performs I/O; every function takes the current time
// explicitly.
package view

import (
	"math"
	"strconv"
	"strings"
	"time"

	"ipo-radar/models"
)

// Window selects IPOs by how soon they list
type Window string

const (
	WindowAll   Window = "all"
	WindowWeek  Window = "week"
	WindowMonth Window = "month"
	WindowLater Window = "later"
)

// Windows lists the windows in display order
var Windows = []Window{WindowAll, WindowWeek, WindowMonth, WindowLater}

// ParseWindow maps a query value to a Window, defaulting to WindowAll
func ParseWindow(s string) Window {
	switch w := Window(strings.ToLower(strings.TrimSpace(s))); w {
	case WindowWeek, WindowMonth, WindowLater:
		return w
	default:
		return WindowAll
	}
}

// Label is the button text for the window
func (w Window) Label() string {
	switch w {
	case WindowWeek:
		return "This Week"
	case WindowMonth:
		return "This Month"
	case WindowLater:
		return "Later"
	default:
		return "All"
	}
}

const day = 24 * time.Hour

// DaysUntil returns the whole days from now until the listing's expected
// date, rounded up. It is nil when the date is missing or unparseable and
// negative once the date has passed.
func DaysUntil(listing models.IPOListing, now time.Time) *int {
	date, ok := listing.ExpectedTime()
	if !ok {
		return nil
	}
	d := int(math.Ceil(float64(date.Sub(now)) / float64(day)))
	return &d
}

// InWindow reports whether a listing d days out belongs to w. Past dates
// belong to no window but all; undated listings fall under later.
func InWindow(d *int, w Window) bool {
	switch w {
	case WindowWeek:
		return d != nil && *d >= 0 && *d <= 7
	case WindowMonth:
		return d != nil && *d >= 0 && *d <= 30
	case WindowLater:
		return d == nil || *d > 30
	default:
		return true
	}
}

// UrgencyLabel renders d as TBD, Passed, Today, Tomorrow or "N days"
func UrgencyLabel(d *int) string {
	switch {
	case d == nil:
		return "TBD"
	case *d < 0:
		return "Passed"
	case *d == 0:
		return "Today"
	case *d == 1:
		return "Tomorrow"
	default:
		return strconv.Itoa(*d) + " days"
	}
}

// Urgency levels used as CSS modifiers
const (
	UrgencyUnknown = "unknown"
	UrgencyHigh    = "high"
	UrgencyMedium  = "medium"
	UrgencyLow     = "low"
)

// Urgency grades d: three days or less is high, a week or less is medium
func Urgency(d *int) string {
	switch {
	case d == nil:
		return UrgencyUnknown
	case *d <= 3:
		return UrgencyHigh
	case *d <= 7:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}
