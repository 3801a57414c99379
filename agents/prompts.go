package agents

import "strings"

const ipoPrompt = `Search for all upcoming IPOs in the United States that are expected in 2025 and 2026. Find as many as possible from reliable financial sources like SEC filings, Nasdaq, NYSE, Renaissance Capital, IPO Monitor, MarketWatch, etc.

For each IPO, provide:
- Company name
- Ticker symbol (if announced)
- Expected IPO date or date range
- Price range (if available)
- Exchange (NYSE/NASDAQ)
- Sector/Industry
- Brief description (1 sentence)

Respond ONLY with a JSON array, no markdown, no backticks, no preamble. Each object must have these exact keys:
{
  "company": "string",
  "ticker": "string or null",
  "expected_date": "YYYY-MM-DD or null if unknown",
  "price_range": "string or null",
  "exchange": "string or null",
  "sector": "string or null",
  "description": "string or null"
}

Include ALL IPOs you can find — recently filed, upcoming, rumored. Sort by expected date ascending (soonest first, nulls last).`

const stockPickPromptTemplate = `You are a stock screening assistant. Search the web for current stock market data and identify 10-15 of the most promising U.S. stocks right now{{scope}}.

For each stock, research and evaluate using these criteria:

FUNDAMENTALS (30% weight):
- Revenue growth (YoY)
- Earnings surprise (last quarter beat/miss)
- P/E ratio vs sector average
- Debt-to-equity ratio

TECHNICALS (30% weight):
- RSI (relative strength index) - is it oversold (<30) or overbought (>70)?
- Price vs 50-day and 200-day moving averages
- Recent MACD signal (bullish/bearish crossover)
- 1-month and 3-month price performance

SENTIMENT (25% weight):
- Recent analyst upgrades or downgrades
- News sentiment (positive/negative headlines)
- Insider buying/selling activity
- Institutional ownership changes

SECTOR MOMENTUM (15% weight):
- Is the sector outperforming the S&P 500?
- Recent sector catalysts (regulation, earnings season, macro trends)

Give each stock a MOMENTUM SCORE from 0-100 based on the weighted criteria above.

Respond ONLY with a JSON array (no markdown, no backticks, no preamble). Each object:
{
  "ticker": "string",
  "company": "string",
  "sector": "string",
  "price": "string (current price)",
  "momentum_score": number (0-100),
  "signal": "Strong Buy" | "Buy" | "Watch",
  "fundamentals_score": number (0-100),
  "technicals_score": number (0-100),
  "sentiment_score": number (0-100),
  "sector_score": number (0-100),
  "key_reasons": ["string", "string", "string"],
  "risks": ["string"],
  "price_target": "string or null",
  "timeframe": "string (e.g. '1-3 months')",
  "revenue_growth": "string or null",
  "pe_ratio": "string or null",
  "rsi": "string or null",
  "analyst_consensus": "string or null"
}

Only include stocks scoring 60+. Sort by momentum_score descending.`

// SectorAll asks for picks across every sector
const SectorAll = "all"

// Sectors offered by the dashboard, "All" first
var Sectors = []string{"All", "Technology", "Healthcare", "Finance", "Energy", "Consumer", "Industrial"}

// IPOPrompt returns the instruction for the upcoming-IPO search
func IPOPrompt() string {
	return ipoPrompt
}

// StockPickPrompt returns the screening instruction scoped to sector. The
// sector is embedded as given; "all" (any case) or "" widens the search.
func StockPickPrompt(sector string) string {
	return strings.Replace(stockPickPromptTemplate, "{{scope}}", sectorScope(sector), 1)
}

func sectorScope(sector string) string {
	sector = strings.TrimSpace(sector)
	if IsAllSectors(sector) {
		return " across all sectors"
	}
	return " in the " + sector + " sector"
}

// IsAllSectors reports whether sector means no sector restriction
func IsAllSectors(sector string) bool {
	sector = strings.TrimSpace(sector)
	return sector == "" || strings.EqualFold(sector, SectorAll)
}
