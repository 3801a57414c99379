package agents

import (
	"context"

	"ipo-radar/models"
	"ipo-radar/observability"
	"ipo-radar/screener"
)

// StockPickAgent asks the model to screen momentum stocks
type StockPickAgent struct {
	llm        LLMService
	normalizer *screener.Normalizer
	maxTokens  int
}

// NewStockPickAgent creates a new StockPickAgent
func NewStockPickAgent(llm LLMService, normalizer *screener.Normalizer, maxTokens int) *StockPickAgent {
	return &StockPickAgent{
		llm:        llm,
		normalizer: normalizer,
		maxTokens:  maxTokens,
	}
}

// Name returns the agent's name
func (a *StockPickAgent) Name() string {
	return "Momentum Screener"
}

// IsAvailable reports whether the upstream has credentials
func (a *StockPickAgent) IsAvailable() bool {
	return a.llm != nil && a.llm.Configured()
}

// Fetch returns normalized picks for sector, highest momentum first
func (a *StockPickAgent) Fetch(ctx context.Context, sector string) ([]models.StockPick, error) {
	observability.WithContext(ctx).Debug("screening stocks", "sector", sector)

	picks, err := fetchRecords[models.StockPick](ctx, a.llm, screener.DomainStocks, StockPickPrompt(sector), a.maxTokens)
	if err != nil {
		return nil, err
	}
	return a.normalizer.StockPicks(picks), nil
}
