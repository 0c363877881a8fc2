package llm

import (
	"fmt"
	"strings"
)

const chartPromptTemplate = `You are a trading coach assistant. Analyze the chart image and return:
- Ticker (if visible)
- Current price (if visible)
- Timeframe (e.g., 1D, 4H)
- Recommendation: BUY, SELL or HOLD
- Short reasoning for the decision
- Any patterns or signals observed (e.g., breakouts, consolidations, candle formations)
- Key support and resistance levels:

Format support and resistance as follows:
Support: [LEVEL] – [REASON]
Resistance: [LEVEL] – [REASON]

Do not use parentheses or any other format. Always return Support/Resistance levels in this exact format so they can be extracted reliably.

It is important to consider the user's profile: %s.
Imagine you're coaching this type of trader and adapt your analysis accordingly.
Please return the response in plain text format only, without Markdown, bold, bullet points, or any additional formatting.`

const coachPromptHeader = `You are a professional trading coach.
You help the user improve their trading decisions using their own profile, analysis history, and conversation context.
Only respond to trading-related questions. If the user asks about anything else, kindly remind them this coach is only for trading.
Do not prefix your messages with "Coach:" or similar labels. Just speak directly to the user in a natural tone.

If the user asks how to analyze a chart, or requests a chart analysis, tell the user:
"Sure! To analyze a chart, please upload a screenshot of your trading chart (e.g. from TradingView) using ` + UploadLinkPlaceholder + `. Once uploaded, I'll give you a personalized breakdown."

Use ` + UploadLinkPlaceholder + ` exactly like that; the frontend will replace it with the real URL.

Consider the user's emotional state and trading psychology: offer encouragement for successes or advice to manage fear/greed based on their history. Suggest strategy tweaks if past trades show patterns (e.g., losses from poor timing). Provide performance feedback (e.g., win rate, trends) when relevant, and encourage goal-setting.`

// UploadLinkPlaceholder is left in coach replies for the frontend to swap for a link.
const UploadLinkPlaceholder = "_UPLOAD_LINK_"

func ChartPrompt(profile string) string {
	return fmt.Sprintf(chartPromptTemplate, profile)
}

type Turn struct {
	Role string
	Text string
}

type PastAnalysis struct {
	Ticker         string
	Timeframe      string
	Date           string
	Recommendation string
	Reasoning      string
}

// CoachInput carries everything the coach sees. Profile is pre-rendered JSON.
type CoachInput struct {
	Profile      string
	History      []Turn
	PastAnalyses []PastAnalysis
	Message      string
}

func CoachPrompt(in CoachInput) string {
	var sb strings.Builder
	sb.WriteString(coachPromptHeader)

	sb.WriteString("\n\nUser profile:\n")
	sb.WriteString(in.Profile)

	sb.WriteString("\n\nConversation history:\n")
	sb.WriteString(formatHistory(in.History))

	sb.WriteString("\n\nPast chart analyses:\n")
	sb.WriteString(formatPastAnalyses(in.PastAnalyses))

	sb.WriteString(fmt.Sprintf("\n\nLatest user message:\n\"%s\"", in.Message))
	return sb.String()
}

func formatHistory(turns []Turn) string {
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		speaker := "Coach"
		if t.Role == "user" {
			speaker = "User"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", speaker, t.Text))
	}
	return strings.Join(lines, "\n")
}

func formatPastAnalyses(analyses []PastAnalysis) string {
	if len(analyses) == 0 {
		return "None"
	}

	blocks := make([]string, 0, len(analyses))
	for i, a := range analyses {
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("Analysis %d – %s (%s) on %s:\n", i+1, a.Ticker, a.Timeframe, a.Date))
		sb.WriteString(fmt.Sprintf("Recommendation: %s\n", a.Recommendation))
		sb.WriteString(fmt.Sprintf("Reasoning: %s", a.Reasoning))
		blocks = append(blocks, sb.String())
	}
	return strings.Join(blocks, "\n\n")
}
