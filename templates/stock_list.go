package templates

import (
	"context"
	"strings"
	"time"

	"github.com/a-h/templ"

	"ipo-radar/models"
	"ipo-radar/view"
)

// StockListData is everything the stock results partial needs
type StockListData struct {
	All       []models.StockPick
	Picks     []models.StockPick
	Sector    string
	Signal    string
	Query     string
	FetchedAt time.Time
}

// NewStockListData filters all for display
func NewStockListData(all []models.StockPick, sector, signal, query string, fetchedAt time.Time) StockListData {
	return StockListData{
		All:       all,
		Picks:     view.FilterStockPicks(all, signal, query),
		Sector:    sector,
		Signal:    signal,
		Query:     query,
		FetchedAt: fetchedAt,
	}
}

// StockList renders the signal stats grid and pick cards
func StockList(data StockListData) templ.Component {
	return component(func(ctx context.Context, b *buffer) {
		if len(data.All) == 0 {
			b.render(ctx, EmptyState("No momentum picks found."))
			return
		}

		s := view.StockStats(data.All)
		b.render(ctx, StatGrid([]Stat{
			{Label: "Strong Buy", Value: s.StrongBuy, Variant: "accent"},
			{Label: "Buy", Value: s.Buy, Variant: "blue"},
			{Label: "Watch", Value: s.Watch, Variant: "warn"},
			{Label: "Avg Score", Value: s.AvgMomentum, Variant: view.ScoreBand(models.Score(s.AvgMomentum))},
		}))

		fetched(b, data.FetchedAt)

		if len(data.Picks) == 0 {
			b.render(ctx, EmptyState("No stocks match your filters."))
			return
		}

		b.raw(`<div class="cards">`)
		for _, p := range data.Picks {
			b.render(ctx, StockCard(p))
		}
		b.raw(`</div>`)
	})
}

// signalClass maps a signal to its CSS modifier
func signalClass(s models.Signal) string {
	switch s {
	case models.SignalStrongBuy:
		return "signal-strong-buy"
	case models.SignalBuy:
		return "signal-buy"
	default:
		return "signal-watch"
	}
}

// StockCard renders one pick with an expandable score breakdown
func StockCard(p models.StockPick) templ.Component {
	return component(func(ctx context.Context, b *buffer) {
		b.raw(`<article`)
		b.attr("class", classes("card", "stock-card", signalClass(p.Signal)))
		b.attr("data-id", p.ID.String())
		b.raw(`><div class="card-head"><div`)
		b.attr("class", classes("momentum-ring", view.ScoreBand(p.MomentumScore)))
		b.raw(`>`)
		b.int(clampScore(p.MomentumScore))
		b.raw(`</div><div class="card-title"><h3>`)
		b.text(string(p.Company))
		b.raw(`</h3><span class="ticker">$`)
		b.text(string(p.Ticker))
		b.raw(`</span><span class="signal">`)
		b.text(strings.ToUpper(string(p.Signal)))
		b.raw(`</span></div></div><div class="meta">`)
		if p.Sector != "" {
			b.raw(`<span class="muted">`)
			b.text(string(p.Sector))
			b.raw(`</span>`)
		}
		if price := view.DisplayPrice(p.Price); price != "" {
			b.raw(`<span class="price">`)
			b.text(price)
			b.raw(`</span>`)
		}
		if target := models.Value(p.PriceTarget); target != "" {
			b.raw(`<span class="target">Target: `)
			b.text(target)
			if up, ok := view.Upside(p); ok {
				b.raw(` (`)
				if up.IsPositive() {
					b.raw(`+`)
				}
				b.text(up.StringFixed(1))
				b.raw(`%)`)
			}
			b.raw(`</span>`)
		}
		if tf := models.Value(p.Timeframe); tf != "" {
			b.raw(`<span class="muted">`)
			b.text(tf)
			b.raw(`</span>`)
		}
		b.raw(`</div>`)

		b.render(ctx, Chips(p.KeyReasons, "reason"))

		b.raw(`<details class="breakdown"><summary>Full breakdown</summary><div class="score-bars">`)
		b.render(ctx, ScoreBar("Fundamentals", p.FundamentalsScore))
		b.render(ctx, ScoreBar("Technicals", p.TechnicalsScore))
		b.render(ctx, ScoreBar("Sentiment", p.SentimentScore))
		b.render(ctx, ScoreBar("Sector", p.SectorScore))
		b.raw(`</div><div class="metrics">`)
		for _, m := range []struct {
			label string
			value *models.Text
		}{
			{"Rev Growth", p.RevenueGrowth},
			{"P/E", p.PERatio},
			{"RSI", p.RSI},
			{"Analysts", p.AnalystConsensus},
		} {
			v := models.Value(m.value)
			if v == "" {
				continue
			}
			b.raw(`<div><span class="muted">`)
			b.text(m.label)
			b.raw(`: </span><strong>`)
			b.text(v)
			b.raw(`</strong></div>`)
		}
		b.raw(`</div>`)
		if len(p.Risks) > 0 {
			b.raw(`<div class="risks"><span class="risks-label">Risks</span>`)
			b.render(ctx, Chips(p.Risks, "risk"))
			b.raw(`</div>`)
		}
		b.raw(`</details></article>`)
	})
}
