package view

import (
	"fmt"
	"sort"
	"time"

	"ipo-radar/models"
)

// NotifiedSet is an immutable set of tracked keys. Every mutation returns a
// new set and leaves the receiver untouched.
type NotifiedSet[K comparable] struct {
	keys map[K]struct{}
}

// NewNotifiedSet builds a set holding keys
func NewNotifiedSet[K comparable](keys ...K) NotifiedSet[K] {
	m := make(map[K]struct{}, len(keys))
	for _, k := range keys {
		m[k] = struct{}{}
	}
	return NotifiedSet[K]{keys: m}
}

// Has reports whether k is tracked
func (s NotifiedSet[K]) Has(k K) bool {
	_, ok := s.keys[k]
	return ok
}

// Len returns the number of tracked keys
func (s NotifiedSet[K]) Len() int {
	return len(s.keys)
}

// Toggle returns a copy of s with k added, or removed if already present
func (s NotifiedSet[K]) Toggle(k K) NotifiedSet[K] {
	next := make(map[K]struct{}, len(s.keys)+1)
	for key := range s.keys {
		next[key] = struct{}{}
	}
	if _, ok := next[k]; ok {
		delete(next, k)
	} else {
		next[k] = struct{}{}
	}
	return NotifiedSet[K]{keys: next}
}

// Keys returns the tracked keys in no particular order
func (s NotifiedSet[K]) Keys() []K {
	out := make([]K, 0, len(s.keys))
	for k := range s.keys {
		out = append(out, k)
	}
	return out
}

// CompanySet tracks listings by company name. Two listings with the same
// company share one entry, so toggling either flips both.
type CompanySet = NotifiedSet[string]

// ToggleListing flips the listing's company in s
func ToggleListing(s CompanySet, l models.IPOListing) CompanySet {
	return s.Toggle(l.NaturalKey())
}

// SortedKeys returns the company names in s in lexical order
func SortedKeys(s CompanySet) []string {
	keys := s.Keys()
	sort.Strings(keys)
	return keys
}

// NotificationLead is how long before listing day the alert fires
const NotificationLead = 7

// minAlertDelay keeps a just-in-range alert from firing synchronously
const minAlertDelay = time.Second

// Plan describes the browser notifications for a newly tracked IPO
type Plan struct {
	// Notify is false when the listing has no expected date; nothing is shown.
	Notify        bool   `json:"notify"`
	Schedule      bool   `json:"schedule"`
	DelayMs       int64  `json:"delay_ms,omitempty"`
	AlertTitle    string `json:"alert_title,omitempty"`
	AlertBody     string `json:"alert_body,omitempty"`
	TrackingTitle string `json:"tracking_title,omitempty"`
	TrackingBody  string `json:"tracking_body,omitempty"`
}

// PlanNotification computes the notifications for tracking l at now. An
// alert is deferred until seven days before listing when at least seven days
// remain; a tracking confirmation is shown immediately either way.
func PlanNotification(l models.IPOListing, now time.Time) Plan {
	if models.Value(l.ExpectedDate) == "" {
		return Plan{}
	}

	company := string(l.Company)
	p := Plan{
		Notify:        true,
		TrackingTitle: "Tracking: " + company,
		TrackingBody:  fmt.Sprintf("You'll be notified %d days before the IPO.", NotificationLead),
	}

	d := DaysUntil(l, now)
	if d == nil || *d < NotificationLead {
		return p
	}

	delay := time.Duration(*d-NotificationLead) * day
	if delay < minAlertDelay {
		delay = minAlertDelay
	}
	p.Schedule = true
	p.DelayMs = delay.Milliseconds()
	p.AlertTitle = "IPO Alert: " + company
	p.AlertBody = fmt.Sprintf("%s goes public in %d days!", company, NotificationLead)
	return p
}
