package model

import (
	"encoding/json"
	"time"
)

type Recommendation string

const (
	RecommendationBuy  Recommendation = "BUY"
	RecommendationSell Recommendation = "SELL"
	RecommendationHold Recommendation = "HOLD"
)

// ParseRecommendation returns the matching recommendation, or "" when word is
// not one of BUY, SELL or HOLD. Matching is exact; callers uppercase first.
func ParseRecommendation(word string) Recommendation {
	switch r := Recommendation(word); r {
	case RecommendationBuy, RecommendationSell, RecommendationHold:
		return r
	}
	return ""
}

type SupportResistance struct {
	Type   string `json:"type"`
	Level  string `json:"level"`
	Reason string `json:"reason"`
}

type ChartAnalysis struct {
	Source            string              `json:"source"`
	Ticker            string              `json:"ticker"`
	Price             string              `json:"price"`
	Timeframe         string              `json:"timeframe"`
	Recommendation    Recommendation      `json:"recommendation"`
	Reasoning         string              `json:"reasoning"`
	SupportResistance []SupportResistance `json:"supportResistance"`
	MarketPrice       *float64            `json:"marketPrice,omitempty"`
}

// AnalysisRecord is one vendor's analysis as delivered to the client.
type AnalysisRecord struct {
	ID              string          `json:"id"`
	Date            time.Time       `json:"date"`
	ChartImage      string          `json:"chartImage,omitempty"`
	ProfileSnapshot json.RawMessage `json:"profileSnapshot,omitempty"`
	ChartAnalysis
}

type VendorError struct {
	Error  string `json:"error"`
	Source string `json:"source"`
}

type AnalysisEntry struct {
	ID              string           `json:"id"`
	Date            time.Time        `json:"date"`
	ChartImage      string           `json:"chartImage"`
	ProfileSnapshot json.RawMessage  `json:"profileSnapshot"`
	Analyses        []AnalysisRecord `json:"analyses"`
}
