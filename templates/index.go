package templates

import (
	"context"
	"strings"

	"github.com/a-h/templ"

	"ipo-radar/models"
	"ipo-radar/view"
)

// trackedVals sends the browser's tracked companies with every partial request
const trackedVals = `js:{tracked: trackedList()}`

// Index renders the dashboard page. sectors are offered as stock filters;
// the first entry is the all-sectors choice.
func Index(sectors []string) templ.Component {
	return component(func(ctx context.Context, b *buffer) {
		b.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		b.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		b.raw(`<title>IPO Radar</title>`)
		b.raw(`<script src="https://unpkg.com/htmx.org@1.9.12"></script>`)
		b.raw(`<style>` + pageCSS + `</style></head><body><main class="container">`)

		b.raw(`<header><h1>IPO Radar</h1><p class="muted">U.S. market intelligence &amp; IPO tracking</p></header>`)
		b.raw(`<nav class="tabs">`)
		b.raw(`<button type="button" class="tab active" data-tab="ipos" onclick="showTab('ipos')">IPO Tracker</button>`)
		b.raw(`<button type="button" class="tab" data-tab="stocks" onclick="showTab('stocks')">Stock Picks</button>`)
		b.raw(`</nav>`)

		ipoPanel(b)
		stockPanel(b, sectors)

		b.raw(`<footer class="note">Data sourced via AI-powered web search from SEC filings, financial news &amp; market data providers. Subject to change.</footer>`)
		b.raw(`</main><script>` + pageJS + `</script></body></html>`)
	})
}

func ipoPanel(b *buffer) {
	b.raw(`<section id="panel-ipos" class="panel">`)
	b.raw(`<div id="notify-banner" class="banner" hidden><span>Enable notifications for 7-day advance alerts</span>`)
	b.raw(`<button type="button" onclick="ensurePermission()">Enable</button></div>`)

	b.raw(`<form id="ipo-controls" class="controls" hx-get="/api/ipos" hx-target="#ipo-results" hx-indicator="#ipo-loading"`)
	b.raw(` hx-trigger="load, change, input changed delay:300ms from:#ipo-q, submit"`)
	b.attr("hx-vals", trackedVals)
	b.raw(`><input id="ipo-q" type="search" name="q" placeholder="Search company, ticker or sector" autocomplete="off">`)
	b.raw(`<div class="segmented">`)
	for i, w := range view.Windows {
		radio(b, "window", string(w), w.Label(), i == 0)
	}
	b.raw(`</div><button type="submit" name="refresh" value="true" class="refresh">Refresh</button></form>`)
	b.raw(`<div id="ipo-loading" class="htmx-indicator loading">Scanning...</div>`)
	b.raw(`<div id="ipo-results" class="results"></div></section>`)
}

func stockPanel(b *buffer, sectors []string) {
	b.raw(`<section id="panel-stocks" class="panel" hidden>`)
	b.raw(`<form id="stock-controls" class="controls" hx-get="/api/stocks" hx-target="#stock-results" hx-indicator="#stock-loading"`)
	b.raw(` hx-trigger="intersect once, change, input changed delay:300ms from:#stock-q, submit">`)
	b.raw(`<input id="stock-q" type="search" name="q" placeholder="Search company, ticker or sector" autocomplete="off">`)
	b.raw(`<button type="submit" name="refresh" value="true" class="refresh">Refresh</button>`)
	b.raw(`<div class="segmented sectors">`)
	for i, s := range sectors {
		value := s
		if i == 0 {
			value = "all"
		}
		radio(b, "sector", value, s, i == 0)
	}
	b.raw(`</div><div class="segmented">`)
	radio(b, "signal", view.SignalAll, "All", true)
	for _, s := range models.Signals {
		radio(b, "signal", string(s), string(s), false)
	}
	b.raw(`</div></form>`)
	b.raw(`<div id="stock-loading" class="htmx-indicator loading">Analyzing fundamentals, technicals, sentiment &amp; sector momentum...</div>`)
	b.raw(`<div id="stock-results" class="results"></div>`)
	b.raw(`<p class="disclaimer">Educational purposes only. Not financial advice. Scores are AI-generated estimates based on publicly available data. Always do your own research before investing. Past performance does not guarantee future results.</p>`)
	b.raw(`</section>`)
}

func radio(b *buffer, name, value, label string, checked bool) {
	b.raw(`<label class="seg"><input type="radio"`)
	b.attr("name", name)
	b.attr("value", value)
	if checked {
		b.raw(` checked`)
	}
	b.raw(`><span>`)
	b.text(label)
	b.raw(`</span></label>`)
}

var pageCSS = strings.TrimSpace(`
:root { --bg:#0A0E17; --card:#111827; --card-hover:#1a2235; --accent:#00E599; --warn:#FFBA08; --danger:#FF4D6D; --blue:#3B82F6; --text:#E2E8F0; --dim:#94A3B8; --border:#1E293B; }
* { box-sizing:border-box; margin:0; }
body { background:var(--bg); color:var(--text); font-family:'DM Sans',system-ui,sans-serif; }
.container { max-width:960px; margin:0 auto; padding:32px 20px; }
h1 { font-size:32px; font-weight:800; }
.muted { color:var(--dim); font-size:13px; }
.tabs { display:flex; gap:8px; margin:24px 0; }
.tab, .refresh, .banner button, .retry, .notify-btn { cursor:pointer; border-radius:10px; border:1px solid var(--border); background:transparent; color:var(--dim); padding:8px 16px; font-weight:600; }
.tab.active { background:var(--accent); color:var(--bg); }
.controls { display:flex; flex-wrap:wrap; gap:10px; margin-bottom:16px; }
.controls input[type=search] { flex:1; min-width:200px; background:var(--card); border:1px solid var(--border); color:var(--text); border-radius:10px; padding:10px 14px; }
.segmented { display:flex; flex-wrap:wrap; gap:6px; }
.seg input { display:none; }
.seg span { display:inline-block; padding:6px 12px; border-radius:8px; border:1px solid var(--border); color:var(--dim); font-size:13px; cursor:pointer; }
.seg input:checked + span { background:var(--accent); color:var(--bg); }
.banner { display:flex; justify-content:space-between; align-items:center; padding:12px 16px; border-radius:12px; border:1px solid var(--warn); color:var(--warn); margin-bottom:16px; }
.loading { color:var(--dim); padding:12px 0; }
.htmx-indicator { display:none; }
.htmx-request.htmx-indicator, .htmx-request .htmx-indicator { display:block; }
.stat-grid { display:grid; grid-template-columns:repeat(4,1fr); gap:12px; margin-bottom:12px; }
.stat { background:var(--card); border:1px solid var(--border); border-radius:14px; padding:16px; text-align:center; }
.stat-value { display:block; font-size:26px; font-weight:800; }
.stat-label { font-size:12px; color:var(--dim); }
.stat.danger .stat-value, .stat.weak .stat-value { color:var(--danger); }
.stat.warn .stat-value, .stat.fair .stat-value { color:var(--warn); }
.stat.accent .stat-value, .stat.strong .stat-value { color:var(--accent); }
.stat.blue .stat-value, .stat.good .stat-value { color:var(--blue); }
.fetched-at { font-size:12px; color:var(--dim); margin-bottom:12px; }
.cards { display:grid; gap:14px; }
.card { background:var(--card); border:1px solid var(--border); border-left:4px solid var(--dim); border-radius:16px; padding:24px; }
.card:hover { background:var(--card-hover); }
.card-head { display:flex; justify-content:space-between; gap:16px; margin-bottom:12px; }
.card-title { display:flex; flex-wrap:wrap; align-items:center; gap:10px; flex:1; }
.card h3 { font-size:18px; }
.ticker { font-family:monospace; font-size:12px; padding:2px 8px; border-radius:6px; background:#00E59933; color:var(--accent); }
.meta { display:flex; flex-wrap:wrap; gap:16px; font-size:13px; color:var(--dim); margin-bottom:12px; }
.description { font-size:13px; color:var(--dim); line-height:1.5; margin-bottom:16px; }
.countdown { font-size:13px; font-weight:600; }
.urgency-high { border-left-color:var(--danger); } .urgency-high .countdown { color:var(--danger); }
.urgency-medium { border-left-color:var(--warn); } .urgency-medium .countdown { color:var(--warn); }
.urgency-low { border-left-color:var(--accent); } .urgency-low .countdown { color:var(--accent); }
.notify-btn.active { border-color:var(--accent); color:var(--accent); background:#00E59933; }
.signal-strong-buy { border-left-color:var(--accent); } .signal-buy { border-left-color:var(--blue); } .signal-watch { border-left-color:var(--warn); }
.signal { font-size:11px; font-weight:600; letter-spacing:.5px; }
.momentum-ring { width:56px; height:56px; border-radius:50%; border:3px solid var(--dim); display:flex; align-items:center; justify-content:center; font-weight:800; }
.momentum-ring.strong { border-color:var(--accent); } .momentum-ring.good { border-color:var(--blue); } .momentum-ring.fair { border-color:var(--warn); } .momentum-ring.weak { border-color:var(--danger); }
.price { color:var(--text); font-weight:600; } .target { color:var(--accent); }
.chips { display:flex; flex-wrap:wrap; gap:8px; margin-top:12px; }
.chip { font-size:12px; padding:4px 10px; border-radius:8px; }
.chip.reason { background:#00E59933; color:var(--accent); } .chip.risk { background:#FF4D6D22; color:var(--danger); }
.breakdown { margin-top:14px; } .breakdown summary { cursor:pointer; font-size:12px; color:var(--dim); }
.score-bars { display:grid; grid-template-columns:repeat(auto-fit,minmax(160px,1fr)); gap:12px; padding:16px 0; }
.score-bar-head { display:flex; justify-content:space-between; font-size:12px; color:var(--dim); }
.score-bar-track { height:6px; background:var(--border); border-radius:3px; margin-top:4px; }
.score-bar-fill { height:100%; border-radius:3px; background:var(--danger); }
.score-bar.strong .score-bar-fill { background:var(--accent); } .score-bar.good .score-bar-fill { background:var(--blue); } .score-bar.fair .score-bar-fill { background:var(--warn); }
.metrics { display:flex; flex-wrap:wrap; gap:20px; font-size:13px; }
.risks { margin-top:14px; } .risks-label { font-size:12px; color:var(--danger); font-weight:600; text-transform:uppercase; }
.error-box { display:flex; align-items:center; padding:14px 18px; border-radius:12px; border:1px solid var(--danger); color:var(--danger); margin-bottom:16px; }
.error-box .retry { margin-left:12px; background:var(--danger); color:#fff; border:none; }
.empty { text-align:center; padding:60px 20px; color:var(--dim); }
.disclaimer { margin-top:32px; padding:20px; border-radius:14px; border:1px solid #FFBA0822; color:var(--warn); font-size:12px; text-align:center; }
.note { margin-top:32px; padding:20px; border-radius:14px; background:var(--card); color:var(--dim); font-size:12px; text-align:center; }
`)

var pageJS = strings.TrimSpace(`
const TRACKED_KEY = 'ipo-radar:tracked';
const MAX_TIMEOUT = 2147483647;

function trackedList() {
  try { return JSON.parse(localStorage.getItem(TRACKED_KEY)) || []; } catch (e) { return []; }
}

function showTab(name) {
  document.querySelectorAll('.tab').forEach(t => t.classList.toggle('active', t.dataset.tab === name));
  document.getElementById('panel-ipos').hidden = name !== 'ipos';
  document.getElementById('panel-stocks').hidden = name !== 'stocks';
}

function updateBanner() {
  const banner = document.getElementById('notify-banner');
  banner.hidden = !('Notification' in window) || Notification.permission !== 'default';
}

async function ensurePermission() {
  if (!('Notification' in window)) return false;
  if (Notification.permission === 'granted') return true;
  const p = await Notification.requestPermission();
  updateBanner();
  return p === 'granted';
}

// setTimeout overflows past ~24.8 days, so long delays are chained.
function later(fn, ms) {
  if (ms > MAX_TIMEOUT) { setTimeout(() => later(fn, ms - MAX_TIMEOUT), MAX_TIMEOUT); return; }
  setTimeout(fn, ms);
}

async function toggleTrack(btn) {
  const res = await fetch('/api/notify', {
    method: 'POST',
    headers: { 'Content-Type': 'application/json' },
    body: JSON.stringify({ company: btn.dataset.company, expected_date: btn.dataset.expectedDate || null, tracked: trackedList() }),
  });
  if (!res.ok) return;
  const out = await res.json();
  localStorage.setItem(TRACKED_KEY, JSON.stringify(out.tracked));
  btn.classList.toggle('active', out.tracking);
  btn.innerHTML = out.tracking ? 'Notified &#10003;' : 'Notify Me';
  if (!out.tracking) return;
  const granted = await ensurePermission();
  if (!granted || !out.plan.notify) return;
  if (out.plan.schedule) {
    later(() => new Notification(out.plan.alert_title, { body: out.plan.alert_body }), out.plan.delay_ms);
  }
  new Notification(out.plan.tracking_title, { body: out.plan.tracking_body });
}

updateBanner();
`)
