package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	anthropicChartMaxTokens   = 1000
	anthropicChatMaxTokens    = 1024
	anthropicChartTemperature = 0.5
	anthropicChatTemperature  = 0.7
	anthropicEmptyContentText = "[⚠️ No content returned from Claude]"
)

type AnthropicClient struct {
	client *anthropic.Client
	model  anthropic.Model
}

func NewAnthropicClient(apiKey string, opts ...option.RequestOption) *AnthropicClient {
	opts = append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}, opts...)
	client := anthropic.NewClient(opts...)
	return &AnthropicClient{
		client: &client,
		model:  anthropic.ModelClaudeSonnet4_20250514,
	}
}

func (c *AnthropicClient) Name() string {
	return "Claude"
}

func (c *AnthropicClient) AnalyzeChart(ctx context.Context, input ChartInput) (string, error) {
	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       c.model,
		MaxTokens:   anthropicChartMaxTokens,
		Temperature: anthropic.Float(anthropicChartTemperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewImageBlockBase64(input.mediaType(), input.Base64()),
				anthropic.NewTextBlock(ChartPrompt(input.Profile)),
			),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API error: %w", err)
	}

	if text := firstText(resp); text != "" {
		return text, nil
	}
	return anthropicEmptyContentText, nil
}

func (c *AnthropicClient) Chat(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       c.model,
		MaxTokens:   anthropicChatMaxTokens,
		Temperature: anthropic.Float(anthropicChatTemperature),
		System: []anthropic.TextBlockParam{
			{Text: prompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock("Reply to my latest message.")),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API error: %w", err)
	}

	text := firstText(resp)
	if text == "" {
		return "", fmt.Errorf("no response from anthropic")
	}
	return strings.TrimSpace(text), nil
}

func firstText(resp *anthropic.Message) string {
	if resp == nil || len(resp.Content) == 0 {
		return ""
	}
	return resp.Content[0].Text
}
