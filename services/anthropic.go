package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/time/rate"

	appconfig "ipo-radar/config"
	"ipo-radar/observability"
)

// ErrNotConfigured is returned by every call when no API key is set
var ErrNotConfigured = errors.New("ANTHROPIC_API_KEY not configured")

// UpstreamError is a non-2xx reply from the Messages API
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("anthropic API returned status %d", e.StatusCode)
}

// TransportError wraps failures that produced no HTTP reply: DNS, connection
// resets, deadlines.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "anthropic request failed: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Segment is one content block of the model's reply
type Segment struct {
	Type string
	Text string
}

// CompletionResponse holds the reply content blocks in order
type CompletionResponse struct {
	Model      string
	StopReason string
	Segments   []Segment
}

// messagesClient is the slice of the SDK used here (for testing)
type messagesClient interface {
	NewMessage(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error)
}

type anthropicClientWrapper struct {
	client anthropic.Client
}

func (w *anthropicClientWrapper) NewMessage(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	return w.client.Messages.New(ctx, params)
}

// AnthropicService sends single-turn prompts with the web search tool enabled
type AnthropicService struct {
	client  messagesClient
	model   string
	timeout time.Duration
	limiter *rate.Limiter
}

// NewAnthropicService builds the service. A missing API key is not an error
// here; Complete reports ErrNotConfigured instead so the server can start.
func NewAnthropicService(cfg *appconfig.Config) *AnthropicService {
	s := &AnthropicService{
		model:   cfg.Anthropic.Model,
		timeout: cfg.UpstreamTimeout(),
		limiter: newLimiter(cfg.Upstream.RatePerMinute),
	}
	if !cfg.HasAnthropic() {
		observability.Warn("ANTHROPIC_API_KEY not set, data endpoints will fail")
		return s
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.Anthropic.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.Anthropic.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.Anthropic.BaseURL))
	}
	s.client = &anthropicClientWrapper{client: anthropic.NewClient(opts...)}
	return s
}

// newAnthropicServiceWithClient creates a service around a custom client (for testing)
func newAnthropicServiceWithClient(client messagesClient, model string, timeout time.Duration) *AnthropicService {
	return &AnthropicService{
		client:  client,
		model:   model,
		timeout: timeout,
		limiter: newLimiter(0),
	}
}

func newLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
}

// Configured reports whether an API key was supplied
func (s *AnthropicService) Configured() bool {
	return s.client != nil
}

// Complete sends prompt as a single user message and returns the reply blocks
func (s *AnthropicService) Complete(ctx context.Context, prompt string, maxTokens int) (*CompletionResponse, error) {
	if s.client == nil {
		return nil, ErrNotConfigured
	}

	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest(BreakerAnthropic, "messages")
	timer := metrics.NewTimer()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.limiter.Wait(ctx); err != nil {
		metrics.RecordExternalAPIError(BreakerAnthropic, "messages", "rate_limit")
		return nil, &TransportError{Err: fmt.Errorf("waiting for rate limiter: %w", err)}
	}

	result, err := WithCircuitBreaker(ctx, BreakerAnthropic, func() (*CompletionResponse, error) {
		params := anthropic.MessageNewParams{
			Model:     anthropic.Model(s.model),
			MaxTokens: int64(maxTokens),
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
			},
			Tools: []anthropic.ToolUnionParam{
				{OfWebSearchTool20250305: &anthropic.WebSearchTool20250305Param{}},
			},
		}

		msg, err := s.client.NewMessage(ctx, params)
		if err != nil {
			return nil, classifyError(err)
		}

		resp := &CompletionResponse{
			Model:      string(msg.Model),
			StopReason: string(msg.StopReason),
			Segments:   make([]Segment, 0, len(msg.Content)),
		}
		for _, block := range msg.Content {
			resp.Segments = append(resp.Segments, Segment{Type: block.Type, Text: block.Text})
		}
		return resp, nil
	})

	timer.ObserveExternalAPI(BreakerAnthropic, "messages")
	if err != nil {
		metrics.RecordExternalAPIError(BreakerAnthropic, "messages", categorizeAPIError(err))

		var upErr *UpstreamError
		if errors.As(err, &upErr) {
			observability.Error("anthropic API error",
				"status", upErr.StatusCode,
				"body", upErr.Body)
		} else {
			observability.Error("anthropic request failed", "error", err)
		}
		return nil, err
	}

	observability.Debug("anthropic reply received",
		"model", result.Model,
		"stop_reason", result.StopReason,
		"segments", len(result.Segments),
		"duration_ms", timer.Duration().Milliseconds())
	return result, nil
}

// classifyError splits SDK errors into upstream replies and transport failures
func classifyError(err error) error {
	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		return &UpstreamError{
			StatusCode: apierr.StatusCode,
			Body:       string(apierr.DumpResponse(true)),
		}
	}
	return &TransportError{Err: err}
}

// categorizeAPIError categorizes an error for metrics purposes
func categorizeAPIError(err error) string {
	if err == nil {
		return "none"
	}

	var upErr *UpstreamError
	if errors.As(err, &upErr) {
		switch {
		case upErr.StatusCode == 429:
			return "rate_limit"
		case upErr.StatusCode == 401 || upErr.StatusCode == 403:
			return "auth_error"
		case upErr.StatusCode >= 500:
			return "server_error"
		default:
			return "client_error"
		}
	}

	switch {
	case IsUnavailable(err):
		return "circuit_open"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case strings.Contains(err.Error(), "connection"):
		return "connection_error"
	default:
		return "unknown"
	}
}
