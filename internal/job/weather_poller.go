package job

import (
	"context"
	"log"
	"time"

	"crypto-weather/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

// CycleRunner runs one full analysis cycle including augmentation.
type CycleRunner interface {
	RunCycle(ctx context.Context) (*domain.WeatherReport, error)
}

// IntervalSource exposes the stored preference set; the poller only
// reads UpdateIntervalMins from it.
type IntervalSource interface {
	Load(ctx context.Context) (domain.Settings, error)
}

// WeatherPoller runs analysis cycles on an interval so the report stays
// fresh without anyone hitting the refresh endpoint. The interval is
// re-read from the settings store before every wait, so a saved change
// takes effect on the next cycle without a restart.
type WeatherPoller struct {
	tracer    trace.Tracer
	runner    CycleRunner
	intervals IntervalSource
	fallback  time.Duration
}

func NewWeatherPoller(tracer trace.Tracer, runner CycleRunner, intervals IntervalSource, intervalMins int) *WeatherPoller {
	if intervalMins <= 0 {
		intervalMins = 15
	}
	return &WeatherPoller{
		tracer:    tracer,
		runner:    runner,
		intervals: intervals,
		fallback:  time.Duration(intervalMins) * time.Minute,
	}
}

// Start runs a cycle immediately, then after every interval. Blocks
// until ctx is cancelled.
func (p *WeatherPoller) Start(ctx context.Context) {
	log.Printf("Weather poller starting (interval %s)", p.interval(ctx))

	p.runOnce(ctx)

	for {
		timer := time.NewTimer(p.interval(ctx))
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Println("Weather poller stopped")
			return
		case <-timer.C:
			p.runOnce(ctx)
		}
	}
}

func (p *WeatherPoller) interval(ctx context.Context) time.Duration {
	if p.intervals != nil {
		settings, err := p.intervals.Load(ctx)
		if err == nil && settings.UpdateIntervalMins > 0 {
			return time.Duration(settings.UpdateIntervalMins) * time.Minute
		}
	}
	return p.fallback
}

func (p *WeatherPoller) runOnce(ctx context.Context) {
	ctx, span := p.tracer.Start(ctx, "weather-poller.run")
	defer span.End()

	if _, err := p.runner.RunCycle(ctx); err != nil {
		log.Printf("weather cycle error: %v", err)
	}
}
