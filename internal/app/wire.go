package app

import (
	"ipo-radar/agents"
	"ipo-radar/config"
	"ipo-radar/screener"
	"ipo-radar/services"
)

// NewFromConfig wires the Anthropic client, the normalizer and both agents
// into an App
func NewFromConfig(cfg *config.Config, opts ...Option) *App {
	llm := services.NewAnthropicService(cfg)
	normalizer := screener.NewNormalizer(&cfg.Screener)

	return New(cfg,
		agents.NewIPOAgent(llm, normalizer, cfg.Anthropic.IPOMaxTokens),
		agents.NewStockPickAgent(llm, normalizer, cfg.Anthropic.StockMaxTokens),
		opts...,
	)
}
