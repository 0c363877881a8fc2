package handler

import (
	"encoding/json"

	"tradingcoach/internal/model"
)

type AnalysesResponse struct {
	Analyses []model.AnalysisRecord `json:"analyses"`
	Errors   []model.VendorError    `json:"errors"`
}

type SingleAnalysisResponse struct {
	Analysis model.AnalysisRecord `json:"analysis"`
}

type ChatRequest struct {
	Profile      json.RawMessage     `json:"profile"`
	History      []model.ChatMessage `json:"history"`
	PastAnalyses []PastAnalysis      `json:"pastAnalyses"`
	Message      string              `json:"message"`
}

// PastAnalysis accepts either a stored history entry (with nested analyses)
// or a single flattened analysis record.
type PastAnalysis struct {
	ID             string               `json:"id"`
	Date           string               `json:"date"`
	Ticker         string               `json:"ticker"`
	Timeframe      string               `json:"timeframe"`
	Recommendation string               `json:"recommendation"`
	Reasoning      string               `json:"reasoning"`
	Analyses       []PastAnalysisRecord `json:"analyses"`
}

type PastAnalysisRecord struct {
	Source         string `json:"source"`
	Ticker         string `json:"ticker"`
	Timeframe      string `json:"timeframe"`
	Recommendation string `json:"recommendation"`
	Reasoning      string `json:"reasoning"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
}

type HealthResponse struct {
	Status  string   `json:"status"`
	Storage string   `json:"storage"`
	Vendors []string `json:"vendors"`
}
