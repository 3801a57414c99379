package mocks

// IPO is one listing as the model writes it in its reply.
type IPO struct {
	Company      string  `json:"company"`
	Ticker       *string `json:"ticker"`
	ExpectedDate *string `json:"expected_date"`
	PriceRange   *string `json:"price_range"`
	Exchange     *string `json:"exchange"`
	Sector       *string `json:"sector"`
	Description  *string `json:"description"`
}

// StockPick is one screened stock as the model writes it in its reply.
type StockPick struct {
	Ticker            string   `json:"ticker"`
	Company           string   `json:"company"`
	Sector            string   `json:"sector"`
	Price             string   `json:"price"`
	MomentumScore     float64  `json:"momentum_score"`
	Signal            string   `json:"signal"`
	FundamentalsScore float64  `json:"fundamentals_score"`
	TechnicalsScore   float64  `json:"technicals_score"`
	SentimentScore    float64  `json:"sentiment_score"`
	SectorScore       float64  `json:"sector_score"`
	KeyReasons        []string `json:"key_reasons"`
	Risks             []string `json:"risks"`
	PriceTarget       string   `json:"price_target,omitempty"`
	Timeframe         string   `json:"timeframe,omitempty"`
	RevenueGrowth     string   `json:"revenue_growth,omitempty"`
	PERatio           string   `json:"pe_ratio,omitempty"`
	RSI               string   `json:"rsi,omitempty"`
	AnalystConsensus  string   `json:"analyst_consensus,omitempty"`
}

// MessageRequest is the part of a Messages API request the mock inspects.
type MessageRequest struct {
	Model     string `json:"model"`
	MaxTokens int    `json:"max_tokens"`
	Messages  []struct {
		Role    string `json:"role"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"messages"`
	Tools []struct {
		Type string `json:"type"`
		Name string `json:"name"`
	} `json:"tools"`
}

// Prompt returns the concatenated text of all user messages.
func (r MessageRequest) Prompt() string {
	var out string
	for _, m := range r.Messages {
		for _, c := range m.Content {
			out += c.Text
		}
	}
	return out
}

// ContentBlock is one block of a Messages API reply.
type ContentBlock struct {
	Type  string         `json:"type"`
	Text  string         `json:"text,omitempty"`
	ID    string         `json:"id,omitempty"`
	Name  string         `json:"name,omitempty"`
	Input map[string]any `json:"input,omitempty"`
}

// Message is a Messages API reply.
type Message struct {
	ID           string         `json:"id"`
	Type         string         `json:"type"`
	Role         string         `json:"role"`
	Model        string         `json:"model"`
	Content      []ContentBlock `json:"content"`
	StopReason   string         `json:"stop_reason"`
	StopSequence *string        `json:"stop_sequence"`
	Usage        Usage          `json:"usage"`
}

// Usage reports token counts.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// APIError is the Messages API error body.
type APIError struct {
	Type  string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}
