package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const (
	geminiModel            = "gemini-2.0-flash"
	geminiEmptyContentText = "[⚠️ No content returned from Gemini]"
)

type GeminiOption func(*genai.ClientConfig)

// WithGeminiBaseURL points the client at another endpoint, such as a test server.
func WithGeminiBaseURL(baseURL string) GeminiOption {
	return func(cfg *genai.ClientConfig) {
		cfg.HTTPOptions.BaseURL = baseURL
	}
}

type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, apiKey string, opts ...GeminiOption) (*GeminiClient, error) {
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: geminiModel}, nil
}

func (c *GeminiClient) Name() string {
	return "Gemini"
}

func (c *GeminiClient) AnalyzeChart(ctx context.Context, input ChartInput) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(input.Image, input.mediaType()),
			genai.NewPartFromText(ChartPrompt(input.Profile)),
		}, genai.RoleUser),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini API error: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return geminiEmptyContentText, nil
	}
	if text := resp.Candidates[0].Content.Parts[0].Text; text != "" {
		return text, nil
	}
	return geminiEmptyContentText, nil
}
