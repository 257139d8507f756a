package forecaster

import (
	"fmt"
	"strings"

	"crypto-weather/internal/domain"
	"crypto-weather/internal/weather"
)

// BuildForecastPrompt renders the metric snapshot into a single-turn
// prompt asking for a strict JSON forecast. The allowed descriptions are
// spelled out so the parser's keyword matching rarely has to guess.
func BuildForecastPrompt(m domain.MetricSnapshot) string {
	var sb strings.Builder

	sb.WriteString("You are a crypto market analyst who presents conditions as a weather forecast.\n")
	sb.WriteString("Current market indicators:\n")
	sb.WriteString(fmt.Sprintf("- Volatility index: %.1f / 100\n", m.Volatility))
	sb.WriteString(fmt.Sprintf("- Sentiment (share of gainers): %.1f / 100\n", m.Sentiment))
	sb.WriteString(fmt.Sprintf("- Fear & Greed: %.1f / 100\n", m.FearGreed))
	sb.WriteString(fmt.Sprintf("- BTC dominance: %.1f%%, ETH dominance: %.1f%%\n", m.Dominance.BTC, m.Dominance.ETH))
	sb.WriteString(fmt.Sprintf("- Trend split: %d bullish, %d bearish, %d mixed\n",
		m.Trends.Bullish, m.Trends.Bearish, m.Trends.Mixed))

	if len(m.Trending) > 0 {
		// Only the top five trending names; the full list can run to
		// fifteen entries and drowns the indicators.
		top := m.Trending
		if len(top) > 5 {
			top = top[:5]
		}
		names := make([]string, 0, len(top))
		for _, entry := range top {
			names = append(names, entry.Name)
		}
		sb.WriteString("- Trending coins: " + strings.Join(names, ", ") + "\n")
	}

	sb.WriteString("\nProduce a 5-day market weather forecast for the days ")
	sb.WriteString(strings.Join(weather.ForecastDayLabels[:], ", "))
	sb.WriteString(".\n")
	sb.WriteString("Return ONLY a JSON array of exactly 5 objects, each with keys \"day\" and \"desc\".\n")
	sb.WriteString(fmt.Sprintf("The desc value must be one of: %s, %s, %s, %s, %s, %s.\n",
		weather.ForecastStormy, weather.ForecastShowers, weather.ForecastPartlySunny,
		weather.ForecastCloudy, weather.ForecastSunny, weather.ForecastFoggy))
	sb.WriteString("No markdown, no commentary.")

	return sb.String()
}
