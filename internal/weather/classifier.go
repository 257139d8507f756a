package weather

import "crypto-weather/internal/domain"

// The eight sky states. Temperatures are display labels only.
var (
	conditionHurricane = domain.WeatherCondition{Icon: "🌪️", Temperature: "98°", Condition: "Crypto Hurricane", Description: "Extreme bullish volatility"}
	conditionSevere    = domain.WeatherCondition{Icon: "⛈️", Temperature: "32°", Condition: "Severe Storms", Description: "High volatility, bearish"}
	conditionShowers   = domain.WeatherCondition{Icon: "🌦️", Temperature: "75°", Condition: "Scattered Showers", Description: "Moderate volatility, mixed"}
	conditionPartly    = domain.WeatherCondition{Icon: "⛅", Temperature: "55°", Condition: "Partly Cloudy", Description: "Some uncertainty"}
	conditionMostly    = domain.WeatherCondition{Icon: "🌤️", Temperature: "78°", Condition: "Mostly Sunny", Description: "Stable with upward bias"}
	conditionOvercast  = domain.WeatherCondition{Icon: "☁️", Temperature: "45°", Condition: "Overcast", Description: "Stable but bearish"}
	conditionClear     = domain.WeatherCondition{Icon: "☀️", Temperature: "85°", Condition: "Clear Skies", Description: "Low volatility, bullish"}
	conditionFoggy     = domain.WeatherCondition{Icon: "🌫️", Temperature: "40°", Condition: "Foggy", Description: "Low volatility, unclear direction"}
)

// Classify maps (volatility, sentiment) onto a sky state. The brackets use
// strict > comparisons, so boundary values belong to the lower bracket:
// (80, 70) is Scattered Showers, not a hurricane.
func Classify(volatility, sentiment float64) domain.WeatherCondition {
	switch {
	case volatility > 80:
		if sentiment > 70 {
			return conditionHurricane
		}
		return conditionSevere
	case volatility > 60:
		if sentiment > 60 {
			return conditionShowers
		}
		return conditionPartly
	case volatility > 40:
		if sentiment > 60 {
			return conditionMostly
		}
		return conditionOvercast
	default:
		if sentiment > 60 {
			return conditionClear
		}
		return conditionFoggy
	}
}
