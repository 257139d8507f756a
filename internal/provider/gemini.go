package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com"

// GeminiProvider sends single-turn text prompts to the Gemini generateContent
// endpoint. The API key is supplied per call because it lives in the
// settings store and can change between cycles; it travels as a query
// parameter, per the REST API.
type GeminiProvider struct {
	client  *http.Client
	baseURL string
	model   string
	tracer  trace.Tracer
}

func NewGeminiProvider(tracer trace.Tracer, model string) *GeminiProvider {
	return &GeminiProvider{
		client:  &http.Client{Timeout: 60 * time.Second},
		baseURL: geminiBaseURL,
		model:   model,
		tracer:  tracer,
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GenerateText sends the prompt and returns the first candidate's text.
// A well-formed response with no candidates or parts yields an empty
// string, not an error; transport and status failures are errors.
func (p *GeminiProvider) GenerateText(ctx context.Context, apiKey, prompt string) (string, error) {
	ctx, span := p.tracer.Start(ctx, "gemini.generate-text")
	defer span.End()

	payload, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal gemini request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", p.baseURL, p.model, apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("gemini API error %d: %s", resp.StatusCode, string(body))
	}

	var parsed geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("parse gemini response: %w", err)
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", nil
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
