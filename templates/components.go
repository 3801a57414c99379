package templates

import (
	"context"
	"strconv"

	"github.com/a-h/templ"

	"ipo-radar/models"
	"ipo-radar/view"
)

// Stat is one tile in a summary grid
type Stat struct {
	Label   string
	Value   int
	Variant string
}

// StatGrid renders the summary tiles above a result list
func StatGrid(stats []Stat) templ.Component {
	return component(func(ctx context.Context, b *buffer) {
		b.raw(`<div class="stat-grid">`)
		for _, s := range stats {
			b.raw(`<div`)
			b.attr("class", classes("stat", s.Variant))
			b.raw(`><span class="stat-value">`)
			b.int(s.Value)
			b.raw(`</span><span class="stat-label">`)
			b.text(s.Label)
			b.raw(`</span></div>`)
		}
		b.raw(`</div>`)
	})
}

// ErrorState renders an error box with a Retry button that re-requests
// retryURL into the enclosing results container.
func ErrorState(message, retryURL string) templ.Component {
	return component(func(ctx context.Context, b *buffer) {
		b.raw(`<div class="error-box" role="alert"><span>`)
		b.text(message)
		b.raw(`</span>`)
		if retryURL != "" {
			b.raw(`<button type="button" class="retry"`)
			b.attr("hx-get", retryURL)
			b.raw(` hx-target="closest .results" hx-swap="innerHTML">Retry</button>`)
		}
		b.raw(`</div>`)
	})
}

// EmptyState renders the no-match message
func EmptyState(message string) templ.Component {
	return component(func(ctx context.Context, b *buffer) {
		b.raw(`<div class="empty">`)
		b.text(message)
		b.raw(`</div>`)
	})
}

// ScoreBar renders one labelled 0-100 sub-score
func ScoreBar(label string, score models.Score) templ.Component {
	return component(func(ctx context.Context, b *buffer) {
		pct := clampScore(score)
		b.raw(`<div`)
		b.attr("class", classes("score-bar", view.ScoreBand(score)))
		b.raw(`><div class="score-bar-head"><span>`)
		b.text(label)
		b.raw(`</span><span>`)
		b.int(pct)
		b.raw(`</span></div><div class="score-bar-track"><div class="score-bar-fill"`)
		b.attr("style", "width: "+strconv.Itoa(pct)+"%")
		b.raw(`></div></div></div>`)
	})
}

// Chips renders a list of short tags
func Chips(items models.TextList, variant string) templ.Component {
	return component(func(ctx context.Context, b *buffer) {
		if len(items) == 0 {
			return
		}
		b.raw(`<div class="chips">`)
		for _, item := range items {
			b.raw(`<span`)
			b.attr("class", classes("chip", variant))
			b.raw(`>`)
			b.text(string(item))
			b.raw(`</span>`)
		}
		b.raw(`</div>`)
	})
}

func clampScore(s models.Score) int {
	n := int(s.Float() + 0.5)
	switch {
	case n < 0:
		return 0
	case n > 100:
		return 100
	}
	return n
}
