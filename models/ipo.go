package models

import (
	"time"

	"github.com/google/uuid"
)

// ExpectedDateLayout is the date format requested from the model
const ExpectedDateLayout = "2006-01-02"

// IPOListing is an upcoming U.S. IPO as reported by the model
type IPOListing struct {
	ID           uuid.UUID `json:"id"`
	Company      Text      `json:"company" validate:"required"`
	Ticker       *Text     `json:"ticker"`
	ExpectedDate *Text     `json:"expected_date" validate:"omitempty,datetime=2006-01-02"`
	PriceRange   *Text     `json:"price_range"`
	Exchange     *Text     `json:"exchange"`
	Sector       *Text     `json:"sector"`
	Description  *Text     `json:"description"`
}

// NaturalKey returns the company name. It is not guaranteed to be unique
// within a batch.
func (l IPOListing) NaturalKey() string {
	return string(l.Company)
}

// ExpectedTime parses expected_date. The second return value is false when
// the date is absent or not in YYYY-MM-DD form.
func (l IPOListing) ExpectedTime() (time.Time, bool) {
	if l.ExpectedDate == nil || *l.ExpectedDate == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(ExpectedDateLayout, string(*l.ExpectedDate))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// SetID stamps the synthetic identifier
func (l *IPOListing) SetID(id uuid.UUID) {
	l.ID = id
}
