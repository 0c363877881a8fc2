package llm

import (
	"context"
	"encoding/base64"
)

// ChartInput is one chart screenshot plus the raw profile JSON it is analyzed for.
type ChartInput struct {
	Image     []byte
	MediaType string
	Profile   string
}

func (in ChartInput) Base64() string {
	return base64.StdEncoding.EncodeToString(in.Image)
}

func (in ChartInput) DataURL() string {
	return "data:" + in.mediaType() + ";base64," + in.Base64()
}

func (in ChartInput) mediaType() string {
	if in.MediaType == "" {
		return "image/png"
	}
	return in.MediaType
}

// ChartAnalyzer sends a chart to one vendor and returns the model's raw text.
type ChartAnalyzer interface {
	Name() string
	AnalyzeChart(ctx context.Context, input ChartInput) (string, error)
}

// CoachClient answers a fully rendered coach prompt.
type CoachClient interface {
	Name() string
	Chat(ctx context.Context, prompt string) (string, error)
}
