package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/assert/v2"
)

type geminiWireRequest struct {
	Contents []struct {
		Role  string `json:"role"`
		Parts []struct {
			Text       string `json:"text"`
			InlineData *struct {
				MimeType string `json:"mimeType"`
				Data     string `json:"data"`
			} `json:"inlineData"`
		} `json:"parts"`
	} `json:"contents"`
}

func newGeminiTestClient(t *testing.T, handler http.HandlerFunc) *GeminiClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewGeminiClient(context.Background(), "test-key", WithGeminiBaseURL(srv.URL))
	if err != nil {
		t.Fatal(err)
	}
	return client
}

func TestGeminiAnalyzeChart(t *testing.T) {
	var got geminiWireRequest
	var path, apiKey string

	client := newGeminiTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		apiKey = r.Header.Get("x-goog-api-key")
		json.NewDecoder(r.Body).Decode(&got)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"role":  "model",
					"parts": []map[string]interface{}{{"text": "Ticker: BTCUSD\nRecommendation: HOLD"}},
				}},
			},
		})
	})

	text, err := client.AnalyzeChart(context.Background(), ChartInput{
		Image:     []byte("jpeg"),
		MediaType: "image/jpeg",
		Profile:   `{"asset":["Crypto"]}`,
	})

	assert.Equal(t, nil, err)
	assert.Equal(t, "Ticker: BTCUSD\nRecommendation: HOLD", text)
	assert.Equal(t, true, strings.HasSuffix(path, "/models/gemini-2.0-flash:generateContent"))
	assert.Equal(t, "test-key", apiKey)

	assert.Equal(t, 1, len(got.Contents))
	assert.Equal(t, "user", got.Contents[0].Role)
	parts := got.Contents[0].Parts
	assert.Equal(t, 2, len(parts))
	assert.Equal(t, "image/jpeg", parts[0].InlineData.MimeType)
	assert.Equal(t, "anBlZw==", parts[0].InlineData.Data)
	assert.Equal(t, true, strings.Contains(parts[1].Text, "Crypto"))
}

func TestGeminiAnalyzeChartEmptyCandidates(t *testing.T) {
	client := newGeminiTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[]}`))
	})

	text, err := client.AnalyzeChart(context.Background(), ChartInput{Image: []byte("x")})

	assert.Equal(t, nil, err)
	assert.Equal(t, "[⚠️ No content returned from Gemini]", text)
}

func TestGeminiAnalyzeChartNon2xx(t *testing.T) {
	client := newGeminiTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`))
	})

	_, err := client.AnalyzeChart(context.Background(), ChartInput{Image: []byte("x")})

	assert.NotEqual(t, nil, err)
	assert.Equal(t, true, strings.Contains(err.Error(), "gemini API error"))
	assert.Equal(t, true, strings.Contains(err.Error(), "429"))
	assert.Equal(t, true, strings.Contains(err.Error(), "quota exceeded"))
}
