package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"crypto-weather/internal/domain"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const (
	coingeckoDemoBaseURL = "https://api.coingecko.com/api/v3"
	coingeckoProBaseURL  = "https://pro-api.coingecko.com/api/v3"
)

// CoinGeckoProvider fetches market, global, and trending data from the
// CoinGecko API. The demo and pro tiers use different hosts and auth
// headers; the caller picks the tier per request.
type CoinGeckoProvider struct {
	client      *http.Client
	demoBaseURL string
	proBaseURL  string
	tracer      trace.Tracer
	limiter     *rate.Limiter
}

// NewCoinGeckoProvider creates a provider with built-in rate limiting.
// The demo tier allows roughly 30 calls per minute; one token every two
// seconds stays safely under that with a small burst for the three
// queries a cycle issues back to back.
func NewCoinGeckoProvider(tracer trace.Tracer) *CoinGeckoProvider {
	return &CoinGeckoProvider{
		client:      &http.Client{Timeout: 30 * time.Second},
		demoBaseURL: coingeckoDemoBaseURL,
		proBaseURL:  coingeckoProBaseURL,
		tracer:      tracer,
		limiter:     rate.NewLimiter(rate.Every(2*time.Second), 3),
	}
}

// marketRow mirrors one entry of /coins/markets. The 24h change appears
// under two names depending on the price_change_percentage parameter, so
// both are decoded and the in_currency variant wins when present.
type marketRow struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	CurrentPrice        float64  `json:"current_price"`
	MarketCap           float64  `json:"market_cap"`
	TotalVolume         float64  `json:"total_volume"`
	Change24h           *float64 `json:"price_change_percentage_24h"`
	Change24hInCurrency *float64 `json:"price_change_percentage_24h_in_currency"`
	Change7dInCurrency  *float64 `json:"price_change_percentage_7d_in_currency"`
}

// FetchMarkets fetches the tracked assets in a single markets query.
func (p *CoinGeckoProvider) FetchMarkets(ctx context.Context, auth domain.APIAuth, ids []string) ([]domain.AssetRecord, error) {
	ctx, span := p.tracer.Start(ctx, "coingecko.fetch-markets")
	defer span.End()

	endpoint := fmt.Sprintf("%s/coins/markets?vs_currency=usd&ids=%s&order=market_cap_desc&per_page=250&page=1&sparkline=false&price_change_percentage=24h,7d",
		p.base(auth), url.QueryEscape(strings.Join(ids, ",")))

	body, err := p.doRequest(ctx, auth, endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch markets: %w", err)
	}

	var rows []marketRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("parse markets: %w", err)
	}

	records := make([]domain.AssetRecord, 0, len(rows))
	for _, row := range rows {
		change24h := row.Change24hInCurrency
		if change24h == nil {
			change24h = row.Change24h
		}
		records = append(records, domain.AssetRecord{
			ID:           row.ID,
			Name:         row.Name,
			CurrentPrice: row.CurrentPrice,
			MarketCap:    row.MarketCap,
			TotalVolume:  row.TotalVolume,
			Change24hPct: change24h,
			Change7dPct:  row.Change7dInCurrency,
		})
	}
	return records, nil
}

// FetchGlobal fetches market-wide dominance and cap figures.
func (p *CoinGeckoProvider) FetchGlobal(ctx context.Context, auth domain.APIAuth) (domain.GlobalSnapshot, error) {
	ctx, span := p.tracer.Start(ctx, "coingecko.fetch-global")
	defer span.End()

	body, err := p.doRequest(ctx, auth, p.base(auth)+"/global")
	if err != nil {
		return domain.GlobalSnapshot{}, fmt.Errorf("fetch global: %w", err)
	}

	var raw struct {
		Data struct {
			MarketCapPercentage map[string]float64 `json:"market_cap_percentage"`
			TotalMarketCap      map[string]float64 `json:"total_market_cap"`
			TotalVolume         map[string]float64 `json:"total_volume"`
			MarketCapChange24h  float64            `json:"market_cap_change_percentage_24h_usd"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return domain.GlobalSnapshot{}, fmt.Errorf("parse global: %w", err)
	}

	// Dominance is keyed "btc"/"eth", but some responses spell out the id.
	btc, ok := raw.Data.MarketCapPercentage["btc"]
	if !ok {
		btc = raw.Data.MarketCapPercentage["bitcoin"]
	}
	eth, ok := raw.Data.MarketCapPercentage["eth"]
	if !ok {
		eth = raw.Data.MarketCapPercentage["ethereum"]
	}

	return domain.GlobalSnapshot{
		BTCDominancePct:       btc,
		ETHDominancePct:       eth,
		TotalMarketCapUSD:     raw.Data.TotalMarketCap["usd"],
		TotalVolumeUSD:        raw.Data.TotalVolume["usd"],
		MarketCapChange24hPct: raw.Data.MarketCapChange24h,
	}, nil
}

// FetchTrending fetches the remote trending list.
func (p *CoinGeckoProvider) FetchTrending(ctx context.Context, auth domain.APIAuth) ([]domain.TrendingEntry, error) {
	ctx, span := p.tracer.Start(ctx, "coingecko.fetch-trending")
	defer span.End()

	body, err := p.doRequest(ctx, auth, p.base(auth)+"/search/trending")
	if err != nil {
		return nil, fmt.Errorf("fetch trending: %w", err)
	}

	var raw struct {
		Coins []struct {
			Item struct {
				Symbol string `json:"symbol"`
				Name   string `json:"name"`
				Thumb  string `json:"thumb"`
				Data   struct {
					PriceUSD *float64        `json:"price"`
					Change   json.RawMessage `json:"price_change_percentage_24h"`
				} `json:"data"`
			} `json:"item"`
		} `json:"coins"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parse trending: %w", err)
	}

	entries := make([]domain.TrendingEntry, 0, len(raw.Coins))
	for _, coin := range raw.Coins {
		entries = append(entries, domain.TrendingEntry{
			Symbol:       coin.Item.Symbol,
			Name:         coin.Item.Name,
			ThumbURL:     coin.Item.Thumb,
			PriceUSD:     coin.Item.Data.PriceUSD,
			Change24hPct: parseTrendingChange(coin.Item.Data.Change),
		})
	}
	return entries, nil
}

// parseTrendingChange handles both shapes the trending endpoint returns
// for the 24h change: a bare number, or a per-currency object.
func parseTrendingChange(raw json.RawMessage) *float64 {
	if len(raw) == 0 {
		return nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return &n
	}
	var byCurrency map[string]float64
	if err := json.Unmarshal(raw, &byCurrency); err == nil {
		if usd, ok := byCurrency["usd"]; ok {
			return &usd
		}
	}
	return nil
}

func (p *CoinGeckoProvider) base(auth domain.APIAuth) string {
	if auth.Tier == domain.TierPro {
		return p.proBaseURL
	}
	return p.demoBaseURL
}

func (p *CoinGeckoProvider) doRequest(ctx context.Context, auth domain.APIAuth, endpoint string) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if auth.Key != "" {
		if auth.Tier == domain.TierPro {
			req.Header.Set("x-cg-pro-api-key", auth.Key)
		} else {
			req.Header.Set("x-cg-demo-api-key", auth.Key)
		}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("coingecko API error %d: %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}
