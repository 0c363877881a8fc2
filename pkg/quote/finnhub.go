package quote

import (
	"context"
	"fmt"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"
)

type FinnHubClient struct {
	client *finnhub.DefaultApiService
}

func NewFinnHubClient(apiKey string) *FinnHubClient {
	cfg := finnhub.NewConfiguration()
	cfg.AddDefaultHeader("X-Finnhub-Token", apiKey)
	client := finnhub.NewAPIClient(cfg).DefaultApi
	return &FinnHubClient{client: client}
}

func (c *FinnHubClient) Name() string {
	return "FinnHub"
}

func (c *FinnHubClient) Quote(ctx context.Context, symbol string) (float64, error) {
	res, _, err := c.client.Quote(ctx).Symbol(symbol).Execute()
	if err != nil {
		return 0, fmt.Errorf("finnhub quote %s: %w", symbol, err)
	}

	// unknown symbols come back as an all-zero quote
	if res.C == nil || *res.C == 0 {
		return 0, fmt.Errorf("finnhub quote %s: no price", symbol)
	}

	return float64(*res.C), nil
}
