package forecaster

import (
	"encoding/json"
	"fmt"
	"strings"

	"crypto-weather/internal/domain"
	"crypto-weather/internal/weather"
)

// RawForecastEntry is one element of the model's JSON array before
// normalization.
type RawForecastEntry struct {
	Day  string `json:"day"`
	Desc string `json:"desc"`
}

// ExtractForecastJSON pulls a 5-entry forecast array out of model output.
// Models wrap JSON in prose or code fences often enough that three
// attempts run in order: the raw text, the text with fences stripped,
// and the widest bracket-delimited span.
func ExtractForecastJSON(raw string) ([]RawForecastEntry, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty model output")
	}

	candidates := []string{raw, trimCodeFence(raw)}
	if span := bracketSpan(raw); span != "" {
		candidates = append(candidates, span)
	}

	for _, candidate := range candidates {
		var entries []RawForecastEntry
		if err := json.Unmarshal([]byte(candidate), &entries); err != nil {
			continue
		}
		if len(entries) != len(weather.ForecastDayLabels) {
			continue
		}
		return entries, nil
	}
	return nil, fmt.Errorf("no 5-entry forecast array in model output")
}

// NormalizeEntry maps a raw entry onto one of the six fixed categories by
// keyword, fills a missing day label from the slot position, and derives
// the icon from the category.
func NormalizeEntry(entry RawForecastEntry, position int) domain.ForecastDay {
	day := strings.TrimSpace(entry.Day)
	if day == "" && position >= 0 && position < len(weather.ForecastDayLabels) {
		day = weather.ForecastDayLabels[position]
	}
	desc := normalizeDesc(entry.Desc)
	return domain.ForecastDay{
		Day:  day,
		Icon: weather.ForecastIcon(desc),
		Desc: desc,
	}
}

// normalizeDesc keyword-matches free-form descriptions. The sun/clear
// check runs first, so compound phrases like "mostly sunny" land in
// Sunny; "partly"-style wording only wins when no sun keyword appears.
func normalizeDesc(desc string) string {
	text := strings.ToLower(strings.TrimSpace(desc))
	switch {
	case containsAny(text, "sun", "clear"):
		return weather.ForecastSunny
	case containsAny(text, "partly", "mostly", "interval", "breaks"):
		return weather.ForecastPartlySunny
	case containsAny(text, "storm", "thunder"):
		return weather.ForecastStormy
	case containsAny(text, "shower", "rain"):
		return weather.ForecastShowers
	case containsAny(text, "fog", "haze", "mist"):
		return weather.ForecastFoggy
	case strings.Contains(text, "cloud"):
		return weather.ForecastCloudy
	default:
		return weather.ForecastCloudy
	}
}

func containsAny(text string, tokens ...string) bool {
	for _, token := range tokens {
		if strings.Contains(text, token) {
			return true
		}
	}
	return false
}

func trimCodeFence(v string) string {
	v = strings.TrimSpace(v)
	if strings.HasPrefix(v, "```") {
		v = strings.TrimPrefix(v, "```")
		v = strings.TrimSpace(v)
		if strings.HasPrefix(strings.ToLower(v), "json") {
			v = strings.TrimSpace(v[4:])
		}
		v = strings.TrimSuffix(v, "```")
		v = strings.TrimSpace(v)
	}
	return v
}

// bracketSpan returns the text from the first '[' through the last ']',
// or empty when no such span exists.
func bracketSpan(v string) string {
	start := strings.Index(v, "[")
	end := strings.LastIndex(v, "]")
	if start == -1 || end == -1 || end <= start {
		return ""
	}
	return v[start : end+1]
}
