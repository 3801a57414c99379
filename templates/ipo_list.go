package templates

import (
	"context"
	"time"

	"github.com/a-h/templ"

	"ipo-radar/models"
	"ipo-radar/view"
)

// IPOListData is everything the IPO results partial needs
type IPOListData struct {
	// All is the unfiltered list; stats are computed over it.
	All       []models.IPOListing
	Listings  []models.IPOListing
	Window    view.Window
	Query     string
	Tracked   view.CompanySet
	Now       time.Time
	FetchedAt time.Time
}

// NewIPOListData filters all for display
func NewIPOListData(all []models.IPOListing, w view.Window, query string, tracked view.CompanySet, now, fetchedAt time.Time) IPOListData {
	return IPOListData{
		All:       all,
		Listings:  view.FilterIPOs(all, w, query, now),
		Window:    w,
		Query:     query,
		Tracked:   tracked,
		Now:       now,
		FetchedAt: fetchedAt,
	}
}

// IPOList renders the IPO stats grid and cards
func IPOList(data IPOListData) templ.Component {
	return component(func(ctx context.Context, b *buffer) {
		if len(data.All) == 0 {
			b.render(ctx, EmptyState("No upcoming IPOs found."))
			return
		}

		s := view.IPOStats(data.All, data.Now)
		b.render(ctx, StatGrid([]Stat{
			{Label: "This Week", Value: s.ThisWeek, Variant: "danger"},
			{Label: "This Month", Value: s.ThisMonth, Variant: "warn"},
			{Label: "Later", Value: s.Later, Variant: "accent"},
			{Label: "Total", Value: s.Total},
		}))

		fetched(b, data.FetchedAt)

		if len(data.Listings) == 0 {
			b.render(ctx, EmptyState("No IPOs match your filters."))
			return
		}

		b.raw(`<div class="cards">`)
		for _, l := range data.Listings {
			b.render(ctx, IPOCard(l, data.Now, data.Tracked.Has(l.NaturalKey())))
		}
		b.raw(`</div>`)
	})
}

// IPOCard renders a single listing with its countdown and notify button
func IPOCard(l models.IPOListing, now time.Time, tracked bool) templ.Component {
	return component(func(ctx context.Context, b *buffer) {
		d := view.DaysUntil(l, now)

		b.raw(`<article`)
		b.attr("class", classes("card", "ipo-card", "urgency-"+view.Urgency(d)))
		b.attr("data-id", l.ID.String())
		b.raw(`><div class="card-head"><div class="card-title"><h3>`)
		b.text(string(l.Company))
		b.raw(`</h3>`)
		if t := models.Value(l.Ticker); t != "" {
			b.raw(`<span class="ticker">`)
			b.text(t)
			b.raw(`</span>`)
		}
		if sector := models.Value(l.Sector); sector != "" {
			b.raw(`<span class="muted">`)
			b.text(sector)
			b.raw(`</span>`)
		}
		b.raw(`</div><span class="countdown"><span class="dot"></span>`)
		b.text(view.UrgencyLabel(d))
		b.raw(`</span></div><div class="meta">`)
		for _, m := range []string{models.Value(l.ExpectedDate), models.Value(l.PriceRange), models.Value(l.Exchange)} {
			if m == "" {
				continue
			}
			b.raw(`<span>`)
			b.text(m)
			b.raw(`</span>`)
		}
		b.raw(`</div>`)
		if desc := models.Value(l.Description); desc != "" {
			b.raw(`<p class="description">`)
			b.text(desc)
			b.raw(`</p>`)
		}

		b.raw(`<button type="button" onclick="toggleTrack(this)"`)
		b.attr("class", classes("notify-btn", activeClass(tracked)))
		b.attr("data-company", string(l.Company))
		b.attr("data-expected-date", models.Value(l.ExpectedDate))
		b.raw(`>`)
		if tracked {
			b.raw(`Notified &#10003;`)
		} else {
			b.raw(`Notify Me`)
		}
		b.raw(`</button></article>`)
	})
}

func activeClass(on bool) string {
	if on {
		return "active"
	}
	return ""
}

func fetched(b *buffer, at time.Time) {
	if at.IsZero() {
		return
	}
	b.raw(`<p class="fetched-at">Updated <time`)
	b.attr("datetime", at.UTC().Format(time.RFC3339))
	b.raw(`>`)
	b.text(at.UTC().Format("Jan 2, 15:04 MST"))
	b.raw(`</time></p>`)
}
