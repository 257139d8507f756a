package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"crypto-weather/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const latestReportKey = "weather:latest"

// MarketSource fetches the three remote data sets for a cycle.
type MarketSource interface {
	FetchMarkets(ctx context.Context, auth domain.APIAuth, ids []string) ([]domain.AssetRecord, error)
	FetchGlobal(ctx context.Context, auth domain.APIAuth) (domain.GlobalSnapshot, error)
	FetchTrending(ctx context.Context, auth domain.APIAuth) ([]domain.TrendingEntry, error)
}

// SettingsSource supplies the preference set a cycle runs under.
type SettingsSource interface {
	Load(ctx context.Context) (domain.Settings, error)
}

// FixedSettings is a SettingsSource for deployments without a settings
// store; every cycle runs under the same preference set.
type FixedSettings struct {
	S domain.Settings
}

func (f FixedSettings) Load(ctx context.Context) (domain.Settings, error) {
	return f.S, nil
}

// Augmenter may replace a generated forecast with an AI-produced one.
// The credential comes from the settings store; empty means skip. A nil
// days slice with ok=false means augmentation did not apply; note
// carries the raw model text for display in that case.
type Augmenter interface {
	AugmentForecast(ctx context.Context, m domain.MetricSnapshot, apiKey string) (days []domain.ForecastDay, note string, ok bool)
}

// RedisClient is the cache subset the engine needs.
type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// Service runs analysis cycles: fetch with fallbacks, derive metrics,
// classify, forecast, alert, and publish the assembled report. Reports
// carry a monotonically increasing cycle id; a cycle that finishes after
// a newer one has already published is discarded.
type Service struct {
	tracer    trace.Tracer
	markets   MarketSource
	settings  SettingsSource
	augmenter Augmenter
	redis     RedisClient

	newRand func() Rand

	cycleSeq uint64

	mu      sync.RWMutex
	current *domain.WeatherReport
}

func NewService(
	tracer trace.Tracer,
	markets MarketSource,
	settings SettingsSource,
	augmenter Augmenter,
	redisClient RedisClient,
) *Service {
	return &Service{
		tracer:    tracer,
		markets:   markets,
		settings:  settings,
		augmenter: augmenter,
		redis:     redisClient,
		newRand: func() Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

// SetRandFactory overrides the per-cycle random source. Used by tests.
func (s *Service) SetRandFactory(f func() Rand) { s.newRand = f }

// Run executes one analysis cycle and publishes the resulting report.
// Remote failures on the three market-data queries never surface: each
// falls back to a fixed substitute so a report is always producible.
func (s *Service) Run(ctx context.Context) (*domain.WeatherReport, error) {
	ctx, span := s.tracer.Start(ctx, "weather.run-cycle")
	defer span.End()

	cycleID := atomic.AddUint64(&s.cycleSeq, 1)
	span.SetAttributes(attribute.Int64("cycle_id", int64(cycleID)))

	settings, err := s.settings.Load(ctx)
	if err != nil {
		log.Printf("settings read failed, using defaults: %v", err)
		settings = domain.DefaultSettings()
	}
	auth := domain.APIAuth{Tier: settings.APITier, Key: settings.APIKey}
	ids := settings.TrackedAssets
	if len(ids) == 0 {
		ids = domain.DefaultTrackedAssets
	}

	records, err := s.markets.FetchMarkets(ctx, auth, ids)
	if err != nil {
		log.Printf("markets fetch failed, using synthetic fallback: %v", err)
		records = FallbackAssetRecords()
	}

	global, err := s.markets.FetchGlobal(ctx, auth)
	if err != nil {
		log.Printf("global fetch failed, using fallback figures: %v", err)
		global = FallbackGlobalSnapshot()
	}

	trending, err := s.markets.FetchTrending(ctx, auth)
	if err != nil {
		log.Printf("trending fetch failed, continuing without: %v", err)
		trending = nil
	}

	metrics := BuildMetrics(records, global, trending)
	condition := Classify(metrics.Volatility, metrics.Sentiment)
	forecast := GenerateForecast(metrics, s.newRand())
	alerts := GenerateAlerts(metrics, records)

	report := &domain.WeatherReport{
		CycleID:           cycleID,
		GeneratedAt:       time.Now().UTC(),
		Metrics:           metrics,
		Condition:         condition,
		Forecast:          forecast,
		Alerts:            alerts,
		TotalMarketCapUSD: global.TotalMarketCapUSD,
	}

	s.publish(ctx, report)
	return report, nil
}

// Augment asks the configured augmenter for an AI forecast and, if one
// parses, replaces the report's forecast in place. Runs after the report
// has already been published; a stale report is left untouched.
func (s *Service) Augment(ctx context.Context, report *domain.WeatherReport) {
	if s.augmenter == nil || report == nil {
		return
	}

	ctx, span := s.tracer.Start(ctx, "weather.augment-forecast")
	defer span.End()
	span.SetAttributes(attribute.Int64("cycle_id", int64(report.CycleID)))

	// The credential lives in the settings store, so a key saved after
	// boot takes effect on the next cycle without a restart.
	settings, err := s.settings.Load(ctx)
	if err != nil {
		log.Printf("settings read failed, skipping augmentation: %v", err)
		return
	}
	if settings.GenerativeAPIKey == "" {
		return
	}

	days, note, ok := s.augmenter.AugmentForecast(ctx, report.Metrics, settings.GenerativeAPIKey)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || s.current.CycleID != report.CycleID {
		return
	}
	if ok {
		s.current.Forecast = days
		s.current.AIForecastApplied = true
		s.current.AIForecastNote = ""
	} else {
		s.current.AIForecastNote = note
	}
	s.writeCache(ctx, s.current)
}

// RunCycle is Run followed by a synchronous Augment, for callers (the
// interval poller) that do not need the report before augmentation.
func (s *Service) RunCycle(ctx context.Context) (*domain.WeatherReport, error) {
	report, err := s.Run(ctx)
	if err != nil {
		return nil, err
	}
	s.Augment(ctx, report)
	return s.Current(ctx)
}

// Current returns the latest published report, falling back to the Redis
// copy (e.g. another process produced it) before giving up.
func (s *Service) Current(ctx context.Context) (*domain.WeatherReport, error) {
	s.mu.RLock()
	report := s.current
	s.mu.RUnlock()
	if report != nil {
		copied := *report
		return &copied, nil
	}

	if s.redis != nil {
		data, err := s.redis.Get(ctx, latestReportKey).Bytes()
		if err == nil {
			var cached domain.WeatherReport
			if err := json.Unmarshal(data, &cached); err == nil {
				return &cached, nil
			}
		} else if err != redis.Nil {
			log.Printf("latest report cache read error: %v", err)
		}
	}

	return nil, fmt.Errorf("no weather report available yet")
}

func (s *Service) publish(ctx context.Context, report *domain.WeatherReport) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A slower, older cycle must not clobber a newer report.
	if s.current != nil && s.current.CycleID > report.CycleID {
		log.Printf("discarding stale cycle %d (current is %d)", report.CycleID, s.current.CycleID)
		return
	}
	s.current = report
	s.writeCache(ctx, report)
}

func (s *Service) writeCache(ctx context.Context, report *domain.WeatherReport) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(report)
	if err != nil {
		log.Printf("marshal report for cache: %v", err)
		return
	}
	if err := s.redis.Set(ctx, latestReportKey, data, 0).Err(); err != nil {
		log.Printf("latest report cache write error: %v", err)
	}
}

// FallbackAssetRecords is the synthetic two-asset market list substituted
// when the markets query fails.
func FallbackAssetRecords() []domain.AssetRecord {
	return []domain.AssetRecord{
		{ID: "bitcoin", Name: "Bitcoin", CurrentPrice: 45000, Change24hPct: domain.Float64Ptr(2.5)},
		{ID: "ethereum", Name: "Ethereum", CurrentPrice: 3000, Change24hPct: domain.Float64Ptr(-1.2)},
	}
}

// FallbackGlobalSnapshot is the fixed dominance/cap tuple substituted when
// the global query fails.
func FallbackGlobalSnapshot() domain.GlobalSnapshot {
	return domain.GlobalSnapshot{
		BTCDominancePct:   50,
		ETHDominancePct:   20,
		TotalMarketCapUSD: 1_000_000_000_000,
		TotalVolumeUSD:    50_000_000_000,
	}
}
