package extract

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/company-profiler/pkg/anthropic"
)

// AnthropicExtractor extracts fields with the Anthropic Messages API.
type AnthropicExtractor struct {
	client      anthropic.Client
	model       string
	maxTokens   int64
	temperature float64
}

// AnthropicConfig holds the call parameters for AnthropicExtractor.
type AnthropicConfig struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

// NewAnthropicExtractor creates an extractor. A nil client yields an
// extractor whose calls fail with ErrNoCredential.
func NewAnthropicExtractor(client anthropic.Client, cfg AnthropicConfig) *AnthropicExtractor {
	return &AnthropicExtractor{
		client:      client,
		model:       cfg.Model,
		maxTokens:   int64(cfg.MaxTokens),
		temperature: cfg.Temperature,
	}
}

func (a *AnthropicExtractor) Name() string { return "anthropic" }

// Extract sends one user message and returns the concatenated text answer.
func (a *AnthropicExtractor) Extract(ctx context.Context, req Request) (string, error) {
	if a.client == nil {
		return "", ErrNoCredential
	}

	temp := a.temperature
	resp, err := a.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       a.model,
		MaxTokens:   a.maxTokens,
		System:      systemPrompt,
		Messages:    []anthropic.Message{{Role: "user", Content: BuildPrompt(req)}},
		Temperature: &temp,
	})
	if err != nil {
		return "", eris.Wrapf(err, "extract: anthropic %s", req.Source)
	}
	resp.Usage.LogCost(a.model, string(req.Source))

	text := resp.Text()
	if text == "" {
		return "", eris.Errorf("extract: anthropic %s: empty answer", req.Source)
	}
	return text, nil
}
