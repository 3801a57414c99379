package models

import (
	"bytes"

	"github.com/google/uuid"
)

// Signal is the model's recommendation for a stock pick
type Signal string

const (
	SignalStrongBuy Signal = "Strong Buy"
	SignalBuy       Signal = "Buy"
	SignalWatch     Signal = "Watch"
)

// Signals lists the signals in display order
var Signals = []Signal{SignalStrongBuy, SignalBuy, SignalWatch}

// UnmarshalJSON accepts any JSON kind the way Text does. Unknown values are
// kept and left for validation to flag.
func (s *Signal) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	*s = Signal(literal(data))
	return nil
}

// StockPick is a momentum pick scored by the model
type StockPick struct {
	ID                uuid.UUID `json:"id"`
	Ticker            Text      `json:"ticker" validate:"required"`
	Company           Text      `json:"company" validate:"required"`
	Sector            Text      `json:"sector"`
	Price             Text      `json:"price"`
	MomentumScore     Score     `json:"momentum_score" validate:"gte=0,lte=100"`
	Signal            Signal    `json:"signal" validate:"oneof='Strong Buy' 'Buy' 'Watch'"`
	FundamentalsScore Score     `json:"fundamentals_score" validate:"gte=0,lte=100"`
	TechnicalsScore   Score     `json:"technicals_score" validate:"gte=0,lte=100"`
	SentimentScore    Score     `json:"sentiment_score" validate:"gte=0,lte=100"`
	SectorScore       Score     `json:"sector_score" validate:"gte=0,lte=100"`
	KeyReasons        TextList  `json:"key_reasons"`
	Risks             TextList  `json:"risks"`
	PriceTarget       *Text     `json:"price_target"`
	Timeframe         *Text     `json:"timeframe"`
	RevenueGrowth     *Text     `json:"revenue_growth"`
	PERatio           *Text     `json:"pe_ratio"`
	RSI               *Text     `json:"rsi"`
	AnalystConsensus  *Text     `json:"analyst_consensus"`
}

// NaturalKey returns the ticker. It is not guaranteed to be unique within a
// batch.
func (p StockPick) NaturalKey() string {
	return string(p.Ticker)
}

// IsValidSignal reports whether s is one of the known signals
func IsValidSignal(s Signal) bool {
	for _, known := range Signals {
		if s == known {
			return true
		}
	}
	return false
}

// SetID stamps the synthetic identifier
func (p *StockPick) SetID(id uuid.UUID) {
	p.ID = id
}
