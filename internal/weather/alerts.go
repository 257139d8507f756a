package weather

import (
	"fmt"
	"math"

	"crypto-weather/internal/domain"
)

const (
	alertStormWarning = "⚠️ STORM WARNING: Extreme volatility expected in next 4 hours"
	alertBearMarket   = "🔴 BEAR MARKET CONDITIONS: 70%+ of major coins declining"

	bigMoverThresholdPct = 15
	bigMoverMinCount     = 3
)

// GenerateAlerts evaluates the three independent alert predicates in a
// fixed order: storm warning, bear market, then high activity. Records
// with a missing 24h change never count as big movers.
func GenerateAlerts(m domain.MetricSnapshot, records []domain.AssetRecord) []string {
	var alerts []string

	if m.Volatility > 80 {
		alerts = append(alerts, alertStormWarning)
	}
	if m.Sentiment < 30 {
		alerts = append(alerts, alertBearMarket)
	}

	movers := 0
	for _, r := range records {
		if r.Change24hPct != nil && math.Abs(*r.Change24hPct) > bigMoverThresholdPct {
			movers++
		}
	}
	if movers > bigMoverMinCount {
		alerts = append(alerts, fmt.Sprintf("📈 HIGH ACTIVITY: %d coins moving >15%% today", movers))
	}

	return alerts
}
