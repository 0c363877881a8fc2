package analysis

import (
	"testing"

	"github.com/go-playground/assert/v2"

	"tradingcoach/internal/model"
)

const sampleReply = `Ticker: AAPL
Current price: 154.20
Timeframe: 1D
Recommendation: BUY on a retest of support
Reasoning: Price broke out of a four-week range on rising volume.
Patterns: bull flag
Support: 152.30 – tested multiple times
Resistance: 158.00 – recent highs`

func TestExtractField(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		label string
		want  string
	}{
		{name: "ticker", text: sampleReply, label: LabelTicker, want: "AAPL"},
		{name: "price label with space", text: sampleReply, label: LabelPrice, want: "154.20"},
		{name: "reasoning runs to end of line", text: sampleReply, label: LabelReasoning, want: "Price broke out of a four-week range on rising volume."},
		{name: "case insensitive label", text: "TIMEFRAME: 4H", label: LabelTimeframe, want: "4H"},
		{name: "dash separator", text: "Ticker - EURUSD\n", label: LabelTicker, want: "EURUSD"},
		{name: "windows line endings", text: "Ticker: MSFT\r\nTimeframe: 1W\r\n", label: LabelTicker, want: "MSFT"},
		{name: "missing label", text: "Timeframe: 1D\nRecommendation: HOLD", label: LabelTicker, want: ""},
		{name: "empty text", text: "", label: LabelTicker, want: ""},
		{name: "label with regex metacharacters", text: "Current price (USD): 10", label: "Current price (USD)", want: "10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractField(tt.text, tt.label))
		})
	}
}

func TestExtractFieldRecommendation(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{text: "Recommendation: BUY", want: "BUY"},
		{text: "Recommendation: sell", want: "SELL"},
		{text: "recommendation: Hold for now", want: "HOLD"},
		{text: "Recommendation - BUY with a tight stop", want: "BUY"},
		{text: "Recommendation: Strong BUY", want: ""},
		{text: "Recommendation: WAIT", want: ""},
		{text: "Recommendation: BUY.", want: ""},
		{text: "No call today.", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractField(tt.text, LabelRecommendation))
		})
	}
}

func TestExtractFieldIsIdempotent(t *testing.T) {
	first := ExtractField(sampleReply, LabelRecommendation)
	second := ExtractField(sampleReply, LabelRecommendation)

	assert.Equal(t, first, second)
	assert.Equal(t, "BUY", first)
}

func TestExtractSupportResistance(t *testing.T) {
	got := ExtractSupportResistance("Support: 152.30 – tested multiple times\nResistance: 158.00 – recent highs")

	assert.Equal(t, []model.SupportResistance{
		{Type: "Support", Level: "152.30", Reason: "tested multiple times"},
		{Type: "Resistance", Level: "158.00", Reason: "recent highs"},
	}, got)
}

func TestExtractSupportResistanceVariants(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []model.SupportResistance
	}{
		{
			name: "hyphen and dollar sign",
			text: "Resistance: $1.0950 - prior swing high",
			want: []model.SupportResistance{{Type: "Resistance", Level: "1.0950", Reason: "prior swing high"}},
		},
		{
			name: "lowercase keyword normalized",
			text: "support 98 – 200-day moving average",
			want: []model.SupportResistance{{Type: "Support", Level: "98", Reason: "200-day moving average"}},
		},
		{
			name: "order preserved",
			text: "Resistance: 3 – a\nSupport: 1 – b\nSupport: 2 – c",
			want: []model.SupportResistance{
				{Type: "Resistance", Level: "3", Reason: "a"},
				{Type: "Support", Level: "1", Reason: "b"},
				{Type: "Support", Level: "2", Reason: "c"},
			},
		},
		{
			name: "no levels",
			text: "Key support and resistance levels are unclear on this chart.",
			want: []model.SupportResistance{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractSupportResistance(tt.text))
		})
	}
}

func TestParse(t *testing.T) {
	got := Parse("Claude", sampleReply)

	assert.Equal(t, "Claude", got.Source)
	assert.Equal(t, "AAPL", got.Ticker)
	assert.Equal(t, "154.20", got.Price)
	assert.Equal(t, "1D", got.Timeframe)
	assert.Equal(t, model.RecommendationBuy, got.Recommendation)
	assert.Equal(t, 2, len(got.SupportResistance))
}

func TestParseEmptyReply(t *testing.T) {
	got := Parse("OpenAI", "")

	assert.Equal(t, "", got.Ticker)
	assert.Equal(t, model.Recommendation(""), got.Recommendation)
	assert.Equal(t, 0, len(got.SupportResistance))
}
