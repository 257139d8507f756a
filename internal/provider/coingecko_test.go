package provider

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"crypto-weather/internal/domain"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(body string) *http.Response {
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
		Header:     make(http.Header),
	}
}

func newTestProvider(rt roundTripFunc) *CoinGeckoProvider {
	p := NewCoinGeckoProvider(trace.NewNoopTracerProvider().Tracer("test"))
	p.demoBaseURL = "http://demo.example/api/v3"
	p.proBaseURL = "http://pro.example/api/v3"
	p.client = &http.Client{Transport: rt}
	p.limiter = rate.NewLimiter(rate.Every(time.Microsecond), 100)
	return p
}

func TestFetchMarkets(t *testing.T) {
	t.Parallel()

	p := newTestProvider(func(req *http.Request) (*http.Response, error) {
		if req.URL.Host != "demo.example" {
			t.Fatalf("demo tier must use the demo host, got %s", req.URL.Host)
		}
		if !strings.Contains(req.URL.Path, "/coins/markets") {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		if got := req.Header.Get("x-cg-demo-api-key"); got != "demo-key" {
			t.Fatalf("expected demo key header, got %q", got)
		}
		q := req.URL.Query()
		if q.Get("ids") != "bitcoin,ethereum" {
			t.Fatalf("unexpected ids: %q", q.Get("ids"))
		}
		if q.Get("price_change_percentage") != "24h,7d" {
			t.Fatalf("unexpected change windows: %q", q.Get("price_change_percentage"))
		}
		return jsonResponse(`[
			{"id":"bitcoin","name":"Bitcoin","current_price":97000,"market_cap":1.9e12,"total_volume":4.5e10,
			 "price_change_percentage_24h_in_currency":2.4,"price_change_percentage_7d_in_currency":-1.1},
			{"id":"ethereum","name":"Ethereum","current_price":3100,"market_cap":3.7e11,"total_volume":1.8e10,
			 "price_change_percentage_24h":0.9}
		]`), nil
	})

	records, err := p.FetchMarkets(context.Background(),
		domain.APIAuth{Tier: domain.TierDemo, Key: "demo-key"},
		[]string{"bitcoin", "ethereum"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	btc := records[0]
	if btc.ID != "bitcoin" || btc.CurrentPrice != 97000 {
		t.Fatalf("unexpected bitcoin record: %+v", btc)
	}
	if btc.Change24hPct == nil || *btc.Change24hPct != 2.4 {
		t.Fatalf("expected in_currency 24h change, got %+v", btc.Change24hPct)
	}
	if btc.Change7dPct == nil || *btc.Change7dPct != -1.1 {
		t.Fatalf("expected 7d change, got %+v", btc.Change7dPct)
	}
	eth := records[1]
	if eth.Change24hPct == nil || *eth.Change24hPct != 0.9 {
		t.Fatalf("expected plain 24h change fallback, got %+v", eth.Change24hPct)
	}
	if eth.Change7dPct != nil {
		t.Fatalf("expected nil 7d change when omitted, got %f", *eth.Change7dPct)
	}
}

func TestFetchMarketsProTier(t *testing.T) {
	t.Parallel()

	p := newTestProvider(func(req *http.Request) (*http.Response, error) {
		if req.URL.Host != "pro.example" {
			t.Fatalf("pro tier must use the pro host, got %s", req.URL.Host)
		}
		if got := req.Header.Get("x-cg-pro-api-key"); got != "pro-key" {
			t.Fatalf("expected pro key header, got %q", got)
		}
		if got := req.Header.Get("x-cg-demo-api-key"); got != "" {
			t.Fatalf("pro requests must not carry the demo header, got %q", got)
		}
		return jsonResponse(`[]`), nil
	})

	_, err := p.FetchMarkets(context.Background(),
		domain.APIAuth{Tier: domain.TierPro, Key: "pro-key"}, []string{"bitcoin"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFetchMarketsHTTPError(t *testing.T) {
	t.Parallel()

	p := newTestProvider(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusInternalServerError,
			Body:       io.NopCloser(strings.NewReader("boom")),
			Header:     make(http.Header),
		}, nil
	})

	_, err := p.FetchMarkets(context.Background(), domain.APIAuth{Tier: domain.TierDemo}, []string{"bitcoin"})
	if err == nil {
		t.Fatal("expected an error on HTTP 500")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Fatalf("expected status code in error, got %v", err)
	}
}

func TestFetchGlobal(t *testing.T) {
	t.Parallel()

	p := newTestProvider(func(req *http.Request) (*http.Response, error) {
		if !strings.HasSuffix(req.URL.Path, "/global") {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		return jsonResponse(`{"data":{
			"market_cap_percentage":{"btc":52.3,"eth":17.1},
			"total_market_cap":{"usd":2.4e12},
			"total_volume":{"usd":9.8e10},
			"market_cap_change_percentage_24h_usd":1.7
		}}`), nil
	})

	snap, err := p.FetchGlobal(context.Background(), domain.APIAuth{Tier: domain.TierDemo})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.BTCDominancePct != 52.3 || snap.ETHDominancePct != 17.1 {
		t.Fatalf("unexpected dominance: %+v", snap)
	}
	if snap.TotalMarketCapUSD != 2.4e12 || snap.TotalVolumeUSD != 9.8e10 {
		t.Fatalf("unexpected totals: %+v", snap)
	}
	if snap.MarketCapChange24hPct != 1.7 {
		t.Fatalf("unexpected cap change: %+v", snap)
	}
}

func TestFetchGlobalLongDominanceKeys(t *testing.T) {
	t.Parallel()

	p := newTestProvider(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(`{"data":{
			"market_cap_percentage":{"bitcoin":48.0,"ethereum":19.5},
			"total_market_cap":{"usd":1e12},
			"total_volume":{"usd":1e10}
		}}`), nil
	})

	snap, err := p.FetchGlobal(context.Background(), domain.APIAuth{Tier: domain.TierDemo})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.BTCDominancePct != 48.0 || snap.ETHDominancePct != 19.5 {
		t.Fatalf("expected spelled-out key fallback, got %+v", snap)
	}
}

func TestFetchTrending(t *testing.T) {
	t.Parallel()

	p := newTestProvider(func(req *http.Request) (*http.Response, error) {
		if !strings.HasSuffix(req.URL.Path, "/search/trending") {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		return jsonResponse(`{"coins":[
			{"item":{"symbol":"sol","name":"Solana","thumb":"http://img/sol.png",
			 "data":{"price":142.5,"price_change_percentage_24h":3.2}}},
			{"item":{"symbol":"doge","name":"Dogecoin",
			 "data":{"price_change_percentage_24h":{"usd":-4.4,"eur":-4.1}}}},
			{"item":{"symbol":"pepe","name":"Pepe","data":{}}}
		]}`), nil
	})

	entries, err := p.FetchTrending(context.Background(), domain.APIAuth{Tier: domain.TierDemo})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	sol := entries[0]
	if sol.Name != "Solana" || sol.ThumbURL != "http://img/sol.png" {
		t.Fatalf("unexpected first entry: %+v", sol)
	}
	if sol.Change24hPct == nil || *sol.Change24hPct != 3.2 {
		t.Fatalf("expected numeric change, got %+v", sol.Change24hPct)
	}
	doge := entries[1]
	if doge.Change24hPct == nil || *doge.Change24hPct != -4.4 {
		t.Fatalf("expected usd change from object shape, got %+v", doge.Change24hPct)
	}
	if entries[2].Change24hPct != nil {
		t.Fatalf("expected nil change when omitted, got %f", *entries[2].Change24hPct)
	}
}
