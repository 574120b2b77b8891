package extract

import (
	"context"

	"github.com/rotisserie/eris"
	"google.golang.org/genai"
)

// GenerateContenter is the subset of *genai.Models used by GeminiExtractor.
type GenerateContenter interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiExtractor extracts fields with Google Gemini.
type GeminiExtractor struct {
	models      GenerateContenter
	model       string
	maxTokens   int32
	temperature float32
}

// GeminiConfig holds the call parameters for GeminiExtractor.
type GeminiConfig struct {
	Model       string
	MaxTokens   int
	Temperature float64
	// BaseURL overrides the Gemini API endpoint.
	BaseURL string
}

// NewGeminiExtractor creates a Gemini-backed extractor. An empty apiKey
// yields an extractor whose calls fail with ErrNoCredential.
func NewGeminiExtractor(ctx context.Context, apiKey string, cfg GeminiConfig) (*GeminiExtractor, error) {
	g := newGeminiExtractor(nil, cfg)
	if apiKey == "" {
		return g, nil
	}

	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, eris.Wrap(err, "extract: create gemini client")
	}
	g.models = client.Models
	return g, nil
}

func newGeminiExtractor(models GenerateContenter, cfg GeminiConfig) *GeminiExtractor {
	return &GeminiExtractor{
		models:      models,
		model:       cfg.Model,
		maxTokens:   int32(cfg.MaxTokens),
		temperature: float32(cfg.Temperature),
	}
}

func (g *GeminiExtractor) Name() string { return "gemini" }

// Extract sends the prompt as a single user turn and returns the text answer.
func (g *GeminiExtractor) Extract(ctx context.Context, req Request) (string, error) {
	if g.models == nil {
		return "", ErrNoCredential
	}

	temp := g.temperature
	resp, err := g.models.GenerateContent(ctx, g.model,
		[]*genai.Content{genai.NewContentFromText(BuildPrompt(req), genai.RoleUser)},
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
			Temperature:       &temp,
			MaxOutputTokens:   g.maxTokens,
			ResponseMIMEType:  "application/json",
		},
	)
	if err != nil {
		return "", eris.Wrapf(err, "extract: gemini %s", req.Source)
	}

	text := resp.Text()
	if text == "" {
		return "", eris.Errorf("extract: gemini %s: empty answer", req.Source)
	}
	return text, nil
}
