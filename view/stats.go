package view

import (
	"math"
	"time"

	"ipo-radar/models"
)

// IPOSummary counts listings per window over the full list
type IPOSummary struct {
	ThisWeek  int `json:"this_week"`
	ThisMonth int `json:"this_month"`
	Later     int `json:"later"`
	Total     int `json:"total"`
}

// IPOStats summarises the unfiltered listing list. Later counts only dated
// listings beyond 30 days, unlike the later filter which also shows
// undated ones.
func IPOStats(listings []models.IPOListing, now time.Time) IPOSummary {
	s := IPOSummary{Total: len(listings)}
	for _, l := range listings {
		d := DaysUntil(l, now)
		if d == nil {
			continue
		}
		if *d >= 0 && *d <= 7 {
			s.ThisWeek++
		}
		if *d >= 0 && *d <= 30 {
			s.ThisMonth++
		}
		if *d > 30 {
			s.Later++
		}
	}
	return s
}

// StockSummary counts picks per signal and averages momentum
type StockSummary struct {
	StrongBuy   int `json:"strong_buy"`
	Buy         int `json:"buy"`
	Watch       int `json:"watch"`
	AvgMomentum int `json:"avg_momentum"`
}

// StockStats summarises the unfiltered pick list. The mean is rounded half
// away from zero and is 0 for an empty list.
func StockStats(picks []models.StockPick) StockSummary {
	var s StockSummary
	if len(picks) == 0 {
		return s
	}

	var total float64
	for _, p := range picks {
		switch p.Signal {
		case models.SignalStrongBuy:
			s.StrongBuy++
		case models.SignalBuy:
			s.Buy++
		case models.SignalWatch:
			s.Watch++
		}
		total += p.MomentumScore.Float()
	}
	s.AvgMomentum = int(math.Round(total / float64(len(picks))))
	return s
}

// Score bands used for colouring
const (
	BandStrong = "strong"
	BandGood   = "good"
	BandFair   = "fair"
	BandWeak   = "weak"
)

// ScoreBand grades a 0-100 score at 80, 70 and 60
func ScoreBand(score models.Score) string {
	switch {
	case score >= 80:
		return BandStrong
	case score >= 70:
		return BandGood
	case score >= 60:
		return BandFair
	default:
		return BandWeak
	}
}
