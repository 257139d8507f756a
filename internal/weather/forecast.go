package weather

import "crypto-weather/internal/domain"

// Rand is the random source for forecast perturbation. *math/rand.Rand
// satisfies it; tests inject fixed sequences.
type Rand interface {
	Float64() float64
}

// ForecastDayLabels are the five fixed slots, in order, used unless an
// AI forecast supplies its own labels.
var ForecastDayLabels = [5]string{"Today", "Tomorrow", "Wed", "Thu", "Fri"}

// The six forecast description categories and their icons.
const (
	ForecastStormy      = "Stormy"
	ForecastShowers     = "Showers"
	ForecastPartlySunny = "Partly Sunny"
	ForecastCloudy      = "Cloudy"
	ForecastSunny       = "Sunny"
	ForecastFoggy       = "Foggy"
)

var forecastIcons = map[string]string{
	ForecastStormy:      "⛈️",
	ForecastShowers:     "🌦️",
	ForecastPartlySunny: "🌤️",
	ForecastCloudy:      "☁️",
	ForecastSunny:       "☀️",
	ForecastFoggy:       "🌫️",
}

// ForecastIcon returns the icon for a forecast description category,
// defaulting to cloudy for anything unrecognized.
func ForecastIcon(desc string) string {
	if icon, ok := forecastIcons[desc]; ok {
		return icon
	}
	return forecastIcons[ForecastCloudy]
}

// GenerateForecast produces exactly five entries by perturbing the current
// volatility by uniform(-10,+10) and sentiment by uniform(-15,+15) per day
// (independent draws) and classifying through a reduced four-branch table.
func GenerateForecast(m domain.MetricSnapshot, rng Rand) []domain.ForecastDay {
	forecast := make([]domain.ForecastDay, 0, len(ForecastDayLabels))
	for _, day := range ForecastDayLabels {
		vol := m.Volatility + (rng.Float64()-0.5)*20
		sent := m.Sentiment + (rng.Float64()-0.5)*30

		desc := classifyForecast(vol, sent)
		forecast = append(forecast, domain.ForecastDay{
			Day:  day,
			Icon: ForecastIcon(desc),
			Desc: desc,
		})
	}
	return forecast
}

// classifyForecast is the reduced day-slot table: volatility breakpoints
// at 70/50/30 with a single sentiment split at 50.
func classifyForecast(volatility, sentiment float64) string {
	switch {
	case volatility > 70:
		return ForecastStormy
	case volatility > 50:
		return ForecastShowers
	case volatility > 30:
		if sentiment > 50 {
			return ForecastPartlySunny
		}
		return ForecastCloudy
	default:
		if sentiment > 50 {
			return ForecastSunny
		}
		return ForecastFoggy
	}
}
