package domain

import "time"

// AssetRecord is one tracked asset from the markets query. Change
// percentages are nil when the remote source omits them.
type AssetRecord struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	CurrentPrice float64  `json:"current_price"`
	MarketCap    float64  `json:"market_cap"`
	TotalVolume  float64  `json:"total_volume"`
	Change24hPct *float64 `json:"change_24h_pct"`
	Change7dPct  *float64 `json:"change_7d_pct"`
}

// GlobalSnapshot holds market-wide dominance and cap figures, one per cycle.
type GlobalSnapshot struct {
	BTCDominancePct       float64 `json:"btc_dominance_pct"`
	ETHDominancePct       float64 `json:"eth_dominance_pct"`
	TotalMarketCapUSD     float64 `json:"total_market_cap_usd"`
	TotalVolumeUSD        float64 `json:"total_volume_usd"`
	MarketCapChange24hPct float64 `json:"market_cap_change_24h_pct"`
}

// TrendingEntry is a remote-flagged trending asset. Rank is the slice
// position; only the top entries are rendered.
type TrendingEntry struct {
	Symbol       string   `json:"symbol"`
	Name         string   `json:"name"`
	ThumbURL     string   `json:"thumb_url"`
	PriceUSD     *float64 `json:"price_usd"`
	Change24hPct *float64 `json:"change_24h_pct"`
}

type Dominance struct {
	BTC float64 `json:"btc"`
	ETH float64 `json:"eth"`
}

// VolumeStats carries total 24h volume and the volume-to-market-cap ratio.
// Ratio is nil when the mean market cap is zero, so it is simply not shown.
type VolumeStats struct {
	Total float64  `json:"total"`
	Ratio *float64 `json:"volume_to_mcap_ratio,omitempty"`
}

type TrendCounts struct {
	Bullish int `json:"bullish"`
	Bearish int `json:"bearish"`
	Mixed   int `json:"mixed"`
}

// MetricSnapshot is the derived indicator set for one analysis cycle.
// Invariant: Trends.Bullish + Trends.Bearish + Trends.Mixed equals the
// number of asset records the cycle analyzed.
type MetricSnapshot struct {
	Volatility float64         `json:"volatility"`
	Sentiment  float64         `json:"sentiment"`
	FearGreed  float64         `json:"fear_greed"`
	Dominance  Dominance       `json:"dominance"`
	Volume     VolumeStats     `json:"volume"`
	Trends     TrendCounts     `json:"trends"`
	Trending   []TrendingEntry `json:"trending"`
}

// WeatherCondition is one of the eight fixed sky states the classifier
// can produce. Temperature is a display label, not a physical reading.
type WeatherCondition struct {
	Icon        string `json:"icon"`
	Temperature string `json:"temperature"`
	Condition   string `json:"condition"`
	Description string `json:"description"`
}

type ForecastDay struct {
	Day  string `json:"day"`
	Icon string `json:"icon"`
	Desc string `json:"desc"`
}

// WeatherReport is the top-level aggregate, rebuilt in full every cycle.
// Only the forecast (and the AI annotation fields) may be replaced after
// construction, by the forecast augmenter.
type WeatherReport struct {
	CycleID           uint64           `json:"cycle_id"`
	GeneratedAt       time.Time        `json:"generated_at"`
	Metrics           MetricSnapshot   `json:"metrics"`
	Condition         WeatherCondition `json:"condition"`
	Forecast          []ForecastDay    `json:"forecast"`
	Alerts            []string         `json:"alerts"`
	TotalMarketCapUSD float64          `json:"total_market_cap_usd"`
	AIForecastApplied bool             `json:"ai_forecast_applied"`
	AIForecastNote    string           `json:"ai_forecast_note,omitempty"`
}

type APITier string

const (
	TierDemo APITier = "demo"
	TierPro  APITier = "pro"
)

func (t APITier) IsValid() bool {
	return t == TierDemo || t == TierPro
}

// APIAuth selects the market-data base URL and auth header for a cycle.
type APIAuth struct {
	Tier APITier
	Key  string
}

// Settings is the persisted user preference set.
type Settings struct {
	APITier              APITier  `json:"api_tier"`
	APIKey               string   `json:"api_key"`
	TrackedAssets        []string `json:"tracked_assets"`
	GenerativeAPIKey     string   `json:"generative_api_key"`
	NotificationsEnabled bool     `json:"notifications_enabled"`
	UpdateIntervalMins   int      `json:"update_interval_mins"`
	Theme                string   `json:"theme"`
}

// DefaultTrackedAssets is used whenever the tracked-asset list is empty.
var DefaultTrackedAssets = []string{
	"bitcoin", "ethereum", "binancecoin", "cardano",
	"solana", "polkadot", "avalanche-2", "chainlink",
}

func DefaultSettings() Settings {
	return Settings{
		APITier:              TierDemo,
		TrackedAssets:        append([]string(nil), DefaultTrackedAssets...),
		NotificationsEnabled: true,
		UpdateIntervalMins:   15,
		Theme:                "dark",
	}
}

type ConversationMessage struct {
	Role      string
	Content   string
	CreatedAt time.Time
}

// Float64Ptr is a convenience for building nullable change fields.
func Float64Ptr(v float64) *float64 { return &v }
