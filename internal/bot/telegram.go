package bot

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"crypto-weather/internal/domain"

	tele "gopkg.in/telebot.v3"
)

// ReportProvider supplies the latest weather report for bot commands.
type ReportProvider interface {
	Current(ctx context.Context) (*domain.WeatherReport, error)
}

// AdvisorAsker answers free-form questions about the current report.
type AdvisorAsker interface {
	Ask(ctx context.Context, chatID int64, userMessage string) (string, error)
}

func StartTelegramBot(reports ReportProvider, advisor AdvisorAsker) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/weather", func(c tele.Context) error {
		report, err := reports.Current(context.Background())
		if err != nil {
			return c.Send("No weather report yet, try again in a minute.")
		}
		return c.Send(FormatReport(report))
	})

	b.Handle("/forecast", func(c tele.Context) error {
		report, err := reports.Current(context.Background())
		if err != nil {
			return c.Send("No weather report yet, try again in a minute.")
		}
		return c.Send(FormatForecast(report))
	})

	b.Handle("/alerts", func(c tele.Context) error {
		report, err := reports.Current(context.Background())
		if err != nil {
			return c.Send("No weather report yet, try again in a minute.")
		}
		return c.Send(FormatAlerts(report))
	})

	b.Handle("/ask", func(c tele.Context) error {
		if advisor == nil {
			return c.Send("The advisor is not configured.")
		}
		question := strings.TrimSpace(strings.Join(c.Args(), " "))
		if question == "" {
			return c.Send("Usage: /ask how does the market look?")
		}
		reply, err := advisor.Ask(context.Background(), c.Chat().ID, question)
		if err != nil {
			return c.Send(fmt.Sprintf("Advisor error: %v", err))
		}
		return c.Send(reply)
	})

	log.Println("Telegram bot started")
	go b.Start()
}

// FormatReport renders the current condition and headline metrics.
func FormatReport(r *domain.WeatherReport) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s %s (%s)\n%s\n\n",
		r.Condition.Icon, r.Condition.Condition, r.Condition.Temperature, r.Condition.Description))
	sb.WriteString(fmt.Sprintf("Volatility: %.0f/100\n", r.Metrics.Volatility))
	sb.WriteString(fmt.Sprintf("Sentiment: %.0f/100\n", r.Metrics.Sentiment))
	sb.WriteString(fmt.Sprintf("Fear & Greed: %.0f/100\n", r.Metrics.FearGreed))
	sb.WriteString(fmt.Sprintf("BTC dominance: %.1f%% | ETH: %.1f%%\n",
		r.Metrics.Dominance.BTC, r.Metrics.Dominance.ETH))
	sb.WriteString(fmt.Sprintf("Trends: %d bullish / %d bearish / %d mixed",
		r.Metrics.Trends.Bullish, r.Metrics.Trends.Bearish, r.Metrics.Trends.Mixed))
	if len(r.Alerts) > 0 {
		sb.WriteString(fmt.Sprintf("\n\n%d active alert(s), see /alerts", len(r.Alerts)))
	}
	return sb.String()
}

// FormatForecast renders the 5-day outlook.
func FormatForecast(r *domain.WeatherReport) string {
	var sb strings.Builder
	sb.WriteString("5-Day Market Forecast\n")
	if r.AIForecastApplied {
		sb.WriteString("(AI-generated)\n")
	}
	for _, day := range r.Forecast {
		sb.WriteString(fmt.Sprintf("\n%s %s: %s", day.Icon, day.Day, day.Desc))
	}
	return sb.String()
}

// FormatAlerts renders active alerts, or an all-clear line.
func FormatAlerts(r *domain.WeatherReport) string {
	if len(r.Alerts) == 0 {
		return "No active alerts. Calm skies."
	}
	return strings.Join(r.Alerts, "\n")
}
