package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crypto-weather/internal/advisor"
	"crypto-weather/internal/bot"
	"crypto-weather/internal/cache"
	"crypto-weather/internal/config"
	"crypto-weather/internal/db"
	"crypto-weather/internal/forecaster"
	"crypto-weather/internal/handler"
	"crypto-weather/internal/job"
	"crypto-weather/internal/provider"
	"crypto-weather/internal/repository"
	"crypto-weather/internal/weather"
	"crypto-weather/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	_ "crypto-weather/docs"
)

var (
	loadEnvFunc      = godotenv.Load
	loadConfigFunc   = config.Load
	initPostgresFunc = db.InitPostgres
	initRedisFunc    = cache.InitRedis
	initTracerFunc   = tracing.InitTracer
	newMarketSourceFunc = func(tracer trace.Tracer) weather.MarketSource {
		return provider.NewCoinGeckoProvider(tracer)
	}
	newWeatherServiceFunc  = weather.NewService
	newWeatherPollerFunc   = job.NewWeatherPoller
	startPollerFunc        = func(p *job.WeatherPoller, ctx context.Context) { go p.Start(ctx) }
	startTelegramBotFunc   = bot.StartTelegramBot
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Crypto Weather API
// @version         1.0
// @description     Market conditions presented as a weather report.

// @host      localhost:8080
// @BasePath  /
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	initPostgresFunc(ctx, cfg.DatabaseURL)
	initRedisFunc(ctx, cfg.RedisURL)

	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Settings come from Postgres when available, otherwise every cycle
	// runs under the environment config.
	var settingsSource weather.SettingsSource = weather.FixedSettings{S: cfg.Settings()}
	var settingsStore handler.SettingsStore
	var convStore advisor.ConversationStore
	if db.Pool != nil {
		settingsRepo := repository.NewSettingsRepository(db.Pool, tracer)
		if err := settingsRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
		settingsSource = settingsRepo
		settingsStore = settingsRepo
		convStore = repository.NewConversationRepository(db.Pool, tracer)
	}

	// Forecast augmentation is gated per cycle on the generative key in
	// the settings store, so the provider needs no boot-time credential.
	augmenter := forecaster.NewAugmenter(tracer, provider.NewGeminiProvider(tracer, cfg.GeminiModel))

	var redisClient weather.RedisClient
	if cache.Client != nil {
		redisClient = cache.Client
	}

	marketSource := newMarketSourceFunc(tracer)
	weatherService := newWeatherServiceFunc(tracer, marketSource, settingsSource, augmenter, redisClient)

	// Interval poller (background goroutine, stopped by ctx cancel)
	poller := newWeatherPollerFunc(tracer, weatherService, settingsSource, cfg.UpdateIntervalMins)
	startPollerFunc(poller, ctx)

	// Advisor (optional)
	var asker bot.AdvisorAsker
	if cfg.OpenAIAPIKey != "" && convStore != nil {
		llmClient := advisor.NewOpenAIClient(cfg.OpenAIAPIKey)
		asker = advisor.NewAdvisorService(tracer, llmClient, weatherService,
			convStore, cfg.OpenAIModel, cfg.AdvisorMaxHistory)
		log.Println("Advisor service enabled")
	}

	os.Setenv("TELEGRAM_BOT_TOKEN", cfg.TelegramBotToken)
	startTelegramBotFunc(weatherService, asker)

	h := newHandlerFunc(tracer, weatherService, settingsStore)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("crypto-weather"))

	h.RegisterRoutes(r, handler.APIKeyAuth(cfg.APIAuthKey))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
