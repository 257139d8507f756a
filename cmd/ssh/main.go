package main

import (
	"context"
	"fmt"
	"log"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"crypto-weather/internal/cache"
	"crypto-weather/internal/config"
	"crypto-weather/internal/db"
	"crypto-weather/internal/forecaster"
	"crypto-weather/internal/job"
	"crypto-weather/internal/provider"
	"crypto-weather/internal/repository"
	"crypto-weather/internal/tui"
	"crypto-weather/internal/weather"
	"crypto-weather/pkg/tracing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel/trace"
	gossh "golang.org/x/crypto/ssh"
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
	newWeatherServiceFunc = weather.NewService
	newWeatherPollerFunc  = job.NewWeatherPoller
	startPollerFunc       = func(p *job.WeatherPoller, ctx context.Context) { go p.Start(ctx) }
	newWishServerFunc     = wish.NewServer
	setupSignalNotify     = ossignal.Notify
	waitForSignalFunc     = func(quit <-chan os.Signal) { <-quit }
)

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

	var settingsSource weather.SettingsSource = weather.FixedSettings{S: cfg.Settings()}
	if db.Pool != nil {
		settingsRepo := repository.NewSettingsRepository(db.Pool, tracer)
		if err := settingsRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
		settingsSource = settingsRepo
	}

	augmenter := forecaster.NewAugmenter(tracer, provider.NewGeminiProvider(tracer, cfg.GeminiModel))

	var redisClient weather.RedisClient
	if cache.Client != nil {
		redisClient = cache.Client
	}

	marketSource := newMarketSourceFunc(tracer)
	weatherService := newWeatherServiceFunc(tracer, marketSource, settingsSource, augmenter, redisClient)

	poller := newWeatherPollerFunc(tracer, weatherService, settingsSource, cfg.UpdateIntervalMins)
	startPollerFunc(poller, ctx)

	// Build Wish SSH server
	addr := fmt.Sprintf("0.0.0.0:%d", cfg.SSHPort)

	srv, err := newWishServerFunc(
		wish.WithAddress(addr),
		wish.WithHostKeyPath(cfg.SSHHostKeyPath),
		wish.WithPublicKeyAuth(func(ctx ssh.Context, key ssh.PublicKey) bool {
			// The dashboard is read-only, so any key may connect. The
			// fingerprint is logged for auditability.
			log.Printf("SSH session: user=%s fingerprint=%s", ctx.User(), gossh.FingerprintSHA256(key))
			return true
		}),
		wish.WithMiddleware(
			bubbletea.Middleware(func(s ssh.Session) (tea.Model, []tea.ProgramOption) {
				svc := tui.Services{
					Reports:  weatherService,
					Runner:   weatherService,
					Username: s.User(),
					Theme:    cfg.Theme,
				}

				model := tui.NewAppModel(svc)
				pty, _, _ := s.Pty()
				model.SetSize(pty.Window.Width, pty.Window.Height)

				return model, []tea.ProgramOption{tea.WithAltScreen()}
			}),
			logging.Middleware(),
		),
	)
	if err != nil {
		log.Fatalf("failed to create SSH server: %v", err)
	}

	if srv != nil {
		go func() {
			log.Printf("SSH server listening on %s", addr)
			if err := srv.ListenAndServe(); err != nil {
				log.Printf("SSH server stopped: %v", err)
			}
		}()
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down SSH server...")

	cancel()

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("SSH server shutdown error: %v", err)
		}
	}

	log.Println("SSH server exited")
}
