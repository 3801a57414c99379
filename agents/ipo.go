package agents

import (
	"context"

	"ipo-radar/models"
	"ipo-radar/screener"
)

// IPOAgent finds upcoming U.S. IPOs through the model's web search
type IPOAgent struct {
	llm        LLMService
	normalizer *screener.Normalizer
	maxTokens  int
}

// NewIPOAgent creates a new IPOAgent
func NewIPOAgent(llm LLMService, normalizer *screener.Normalizer, maxTokens int) *IPOAgent {
	return &IPOAgent{
		llm:        llm,
		normalizer: normalizer,
		maxTokens:  maxTokens,
	}
}

// Name returns the agent's name
func (a *IPOAgent) Name() string {
	return "IPO Scout"
}

// IsAvailable reports whether the upstream has credentials
func (a *IPOAgent) IsAvailable() bool {
	return a.llm != nil && a.llm.Configured()
}

// Fetch returns normalized listings, soonest first
func (a *IPOAgent) Fetch(ctx context.Context) ([]models.IPOListing, error) {
	listings, err := fetchRecords[models.IPOListing](ctx, a.llm, screener.DomainIPOs, IPOPrompt(), a.maxTokens)
	if err != nil {
		return nil, err
	}
	return a.normalizer.IPOs(listings), nil
}
