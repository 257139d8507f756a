package forecaster

import (
	"context"
	"log"

	"crypto-weather/internal/domain"
	"crypto-weather/internal/weather"

	"go.opentelemetry.io/otel/trace"
)

// TextGenerator is the single-turn LLM call the augmenter needs. The
// credential is an argument because it comes from the settings store,
// which is re-read every cycle.
type TextGenerator interface {
	GenerateText(ctx context.Context, apiKey, prompt string) (string, error)
}

// Augmenter asks a generative model for a forecast and normalizes the
// answer into the fixed category set. It never fails a cycle: anything
// that goes wrong reports ok=false and the generated forecast stands.
type Augmenter struct {
	gen    TextGenerator
	tracer trace.Tracer
}

func NewAugmenter(tracer trace.Tracer, gen TextGenerator) *Augmenter {
	return &Augmenter{gen: gen, tracer: tracer}
}

// AugmentForecast builds the prompt, runs the model, and parses the
// result. An empty apiKey means no credential is configured and the
// generated forecast stands; that is a skip, not an error. When the
// output holds no valid 5-entry array, note carries the raw model text
// so the caller can surface what came back.
func (a *Augmenter) AugmentForecast(ctx context.Context, m domain.MetricSnapshot, apiKey string) ([]domain.ForecastDay, string, bool) {
	if a == nil || a.gen == nil || apiKey == "" {
		return nil, "", false
	}

	ctx, span := a.tracer.Start(ctx, "forecaster.augment")
	defer span.End()

	raw, err := a.gen.GenerateText(ctx, apiKey, BuildForecastPrompt(m))
	if err != nil {
		log.Printf("forecast generation failed: %v", err)
		return nil, "", false
	}

	entries, err := ExtractForecastJSON(raw)
	if err != nil {
		log.Printf("forecast output unusable: %v", err)
		return nil, raw, false
	}

	days := make([]domain.ForecastDay, 0, len(weather.ForecastDayLabels))
	for i, entry := range entries {
		days = append(days, NormalizeEntry(entry, i))
	}
	return days, "", true
}
