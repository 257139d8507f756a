package weather

import (
	"math"

	"crypto-weather/internal/domain"
)

// Volatility is the mean absolute 24h change across records, capped at 100.
// Missing change fields count as 0. An empty batch reads as neutral (50).
func Volatility(records []domain.AssetRecord) float64 {
	if len(records) == 0 {
		return 50
	}
	sum := 0.0
	for _, r := range records {
		sum += math.Abs(deref(r.Change24hPct))
	}
	return math.Min(sum/float64(len(records)), 100)
}

// Sentiment is the share of records with a positive 24h change, 0..100.
// An empty batch returns 0 rather than dividing by zero.
func Sentiment(records []domain.AssetRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	gains := 0
	for _, r := range records {
		if r.Change24hPct != nil && *r.Change24hPct > 0 {
			gains++
		}
	}
	return 100 * float64(gains) / float64(len(records))
}

// FearGreed is a 0..100 composite around a neutral 50: twice the mean
// signed 24h change, plus a flat boost when the trending list is busy.
func FearGreed(records []domain.AssetRecord, trending []domain.TrendingEntry) float64 {
	if len(records) == 0 {
		return 50
	}
	sum := 0.0
	for _, r := range records {
		sum += deref(r.Change24hPct)
	}
	mean := sum / float64(len(records))

	boost := 0.0
	if len(trending) > 5 {
		boost = 10
	}
	return clamp(50+2*mean+boost, 0, 100)
}

// VolumeAnalysis sums 24h volume and relates it to the mean market cap.
// The ratio is nil when the mean market cap is zero.
func VolumeAnalysis(records []domain.AssetRecord) domain.VolumeStats {
	total := 0.0
	mcapSum := 0.0
	for _, r := range records {
		total += r.TotalVolume
		mcapSum += r.MarketCap
	}

	stats := domain.VolumeStats{Total: total}
	if len(records) > 0 && mcapSum > 0 {
		mean := mcapSum / float64(len(records))
		ratio := total / mean
		stats.Ratio = &ratio
	}
	return stats
}

// TrendAnalysis partitions records into bullish (24h and 7d both up),
// bearish (both down) and mixed (everything else, including records with
// missing change fields). Every record lands in exactly one bucket.
func TrendAnalysis(records []domain.AssetRecord) domain.TrendCounts {
	counts := domain.TrendCounts{}
	for _, r := range records {
		switch {
		case r.Change24hPct != nil && r.Change7dPct != nil &&
			*r.Change24hPct > 0 && *r.Change7dPct > 0:
			counts.Bullish++
		case r.Change24hPct != nil && r.Change7dPct != nil &&
			*r.Change24hPct < 0 && *r.Change7dPct < 0:
			counts.Bearish++
		default:
			counts.Mixed++
		}
	}
	return counts
}

// BuildMetrics assembles the per-cycle metric snapshot from the three
// fetched inputs.
func BuildMetrics(records []domain.AssetRecord, global domain.GlobalSnapshot, trending []domain.TrendingEntry) domain.MetricSnapshot {
	return domain.MetricSnapshot{
		Volatility: Volatility(records),
		Sentiment:  Sentiment(records),
		FearGreed:  FearGreed(records, trending),
		Dominance:  domain.Dominance{BTC: global.BTCDominancePct, ETH: global.ETHDominancePct},
		Volume:     VolumeAnalysis(records),
		Trends:     TrendAnalysis(records),
		Trending:   trending,
	}
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
