package analysis

import (
	"regexp"
	"strings"
	"sync"

	"tradingcoach/internal/model"
)

// Labels the chart prompt asks every vendor to answer with.
const (
	LabelTicker         = "Ticker"
	LabelPrice          = "Current price"
	LabelTimeframe      = "Timeframe"
	LabelRecommendation = "Recommendation"
	LabelReasoning      = "Reasoning"
)

var supportResistancePattern = regexp.MustCompile(`(?i)(Support|Resistance)[:\s]*\$?([0-9.]+)\s*[–-]\s*(.+)`)

var fieldPatterns sync.Map // label -> *regexp.Regexp

func fieldPattern(label string) *regexp.Regexp {
	if re, ok := fieldPatterns.Load(label); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(label) + `[:\-\s]+([^\r\n]+)`)
	fieldPatterns.Store(label, re)
	return re
}

// ExtractField returns the value written after "label:" (or "label -") on the
// first matching line of text, or "" when there is none. For recommendation
// labels only the first word is kept, and only if it is BUY, SELL or HOLD.
func ExtractField(text, label string) string {
	m := fieldPattern(label).FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	value := strings.TrimSpace(m[1])

	if strings.Contains(strings.ToLower(label), "recommendation") {
		words := strings.Fields(value)
		if len(words) == 0 {
			return ""
		}
		return string(model.ParseRecommendation(strings.ToUpper(words[0])))
	}
	return value
}

// ExtractSupportResistance returns every "Support: LEVEL – REASON" and
// "Resistance: LEVEL – REASON" line in text order.
func ExtractSupportResistance(text string) []model.SupportResistance {
	matches := supportResistancePattern.FindAllStringSubmatch(text, -1)
	levels := make([]model.SupportResistance, 0, len(matches))
	for _, m := range matches {
		kind := "Support"
		if strings.EqualFold(m[1], "resistance") {
			kind = "Resistance"
		}
		levels = append(levels, model.SupportResistance{
			Type:   kind,
			Level:  m[2],
			Reason: strings.TrimSpace(m[3]),
		})
	}
	return levels
}

// Parse builds a ChartAnalysis from one vendor's raw reply. Fields the model
// did not write in the expected shape are left empty.
func Parse(source, raw string) model.ChartAnalysis {
	return model.ChartAnalysis{
		Source:            source,
		Ticker:            ExtractField(raw, LabelTicker),
		Price:             ExtractField(raw, LabelPrice),
		Timeframe:         ExtractField(raw, LabelTimeframe),
		Recommendation:    model.Recommendation(ExtractField(raw, LabelRecommendation)),
		Reasoning:         ExtractField(raw, LabelReasoning),
		SupportResistance: ExtractSupportResistance(raw),
	}
}
