package main

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"crypto-weather/internal/bot"
	"crypto-weather/internal/config"
	"crypto-weather/internal/domain"
	"crypto-weather/internal/job"
	"crypto-weather/internal/weather"

	"github.com/gin-gonic/gin"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func TestMainBootstrap(t *testing.T) {
	gin.SetMode(gin.TestMode)
	restore := stubServerDeps()
	defer restore()

	done := make(chan struct{})
	go func() {
		main()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("main did not exit")
	}
}

func stubServerDeps() func() {
	origLoadEnv := loadEnvFunc
	origLoadConfig := loadConfigFunc
	origInitPostgres := initPostgresFunc
	origInitRedis := initRedisFunc
	origInitTracer := initTracerFunc
	origNewMarketSource := newMarketSourceFunc
	origStartPoller := startPollerFunc
	origStartTelegram := startTelegramBotFunc
	origNewRouter := newRouterFunc
	origSetupSignal := setupSignalNotify
	origWait := waitForSignalFunc
	origStartHTTP := startHTTPServerFunc
	origShutdownHTTP := shutdownHTTPServerFunc

	loadEnvFunc = func(...string) error { return nil }
	loadConfigFunc = func() *config.Config {
		return &config.Config{UpdateIntervalMins: 1}
	}
	initPostgresFunc = func(context.Context, string) {}
	initRedisFunc = func(context.Context, string) {}
	initTracerFunc = func(ctx context.Context) (*sdktrace.TracerProvider, trace.Tracer, error) {
		tp := sdktrace.NewTracerProvider()
		return tp, tp.Tracer("test"), nil
	}
	newMarketSourceFunc = func(trace.Tracer) weather.MarketSource { return stubMarketSource{} }
	startPollerFunc = func(*job.WeatherPoller, context.Context) {}
	startTelegramBotFunc = func(bot.ReportProvider, bot.AdvisorAsker) {}
	newRouterFunc = func(...gin.OptionFunc) *gin.Engine { return gin.New() }
	setupSignalNotify = func(c chan<- os.Signal, sig ...os.Signal) {}
	waitForSignalFunc = func(<-chan os.Signal) {}
	startHTTPServerFunc = func(*http.Server) error { return http.ErrServerClosed }
	shutdownHTTPServerFunc = func(*http.Server, context.Context) error { return nil }

	return func() {
		loadEnvFunc = origLoadEnv
		loadConfigFunc = origLoadConfig
		initPostgresFunc = origInitPostgres
		initRedisFunc = origInitRedis
		initTracerFunc = origInitTracer
		newMarketSourceFunc = origNewMarketSource
		startPollerFunc = origStartPoller
		startTelegramBotFunc = origStartTelegram
		newRouterFunc = origNewRouter
		setupSignalNotify = origSetupSignal
		waitForSignalFunc = origWait
		startHTTPServerFunc = origStartHTTP
		shutdownHTTPServerFunc = origShutdownHTTP
	}
}

type stubMarketSource struct{}

func (stubMarketSource) FetchMarkets(ctx context.Context, auth domain.APIAuth, ids []string) ([]domain.AssetRecord, error) {
	return weather.FallbackAssetRecords(), nil
}

func (stubMarketSource) FetchGlobal(ctx context.Context, auth domain.APIAuth) (domain.GlobalSnapshot, error) {
	return weather.FallbackGlobalSnapshot(), nil
}

func (stubMarketSource) FetchTrending(ctx context.Context, auth domain.APIAuth) ([]domain.TrendingEntry, error) {
	return nil, nil
}
