package advisor

import (
	"fmt"
	"strings"
	"time"

	"crypto-weather/internal/domain"
)

const presenterPhilosophy = `You are a crypto market weather presenter bot. You interpret derived market indicators (volatility, sentiment, fear & greed, dominance, trends) that are handed to you, you do NOT compute or invent them.

Rules:
- Always reference the specific indicator values when making observations.
- Never fabricate data. If the report is unavailable, say so.
- Explain the weather metaphor briefly when it helps (storms = high volatility, sunshine = broad gains, fog = a quiet directionless market).
- Keep responses concise. You are talking via Telegram.
- Do not provide financial advice disclaimers on every message. The user understands this is informational.
- When asked about the outlook, summarize: current condition, the forecast, and any active alerts.
- If alerts are active, mention them first.`

func BuildSystemPrompt(weatherContext string) string {
	var sb strings.Builder
	sb.WriteString(presenterPhilosophy)
	sb.WriteString("\n\n--- CURRENT WEATHER REPORT (as of ")
	sb.WriteString(time.Now().UTC().Format(time.RFC822))
	sb.WriteString(") ---\n")
	sb.WriteString(weatherContext)
	return sb.String()
}

// FormatReportContext renders a weather report as plain text for the
// system prompt.
func FormatReportContext(r *domain.WeatherReport) string {
	if r == nil {
		return "No weather report currently available."
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Condition: %s %s (%s) %s\n",
		r.Condition.Icon, r.Condition.Condition, r.Condition.Temperature, r.Condition.Description))
	sb.WriteString(fmt.Sprintf("Indicators: volatility %.1f, sentiment %.1f, fear & greed %.1f\n",
		r.Metrics.Volatility, r.Metrics.Sentiment, r.Metrics.FearGreed))
	sb.WriteString(fmt.Sprintf("Dominance: BTC %.1f%%, ETH %.1f%%. Total market cap: $%.0f\n",
		r.Metrics.Dominance.BTC, r.Metrics.Dominance.ETH, r.TotalMarketCapUSD))
	sb.WriteString(fmt.Sprintf("Trend split: %d bullish, %d bearish, %d mixed\n",
		r.Metrics.Trends.Bullish, r.Metrics.Trends.Bearish, r.Metrics.Trends.Mixed))

	if len(r.Forecast) > 0 {
		sb.WriteString("Forecast:")
		for _, day := range r.Forecast {
			sb.WriteString(fmt.Sprintf(" %s=%s", day.Day, day.Desc))
		}
		sb.WriteString("\n")
	}

	if len(r.Alerts) > 0 {
		sb.WriteString("Active alerts:\n")
		for _, alert := range r.Alerts {
			sb.WriteString("  " + alert + "\n")
		}
	} else {
		sb.WriteString("No active alerts.\n")
	}

	return sb.String()
}
