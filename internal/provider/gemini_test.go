package provider

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func newTestGemini(rt roundTripFunc) *GeminiProvider {
	p := NewGeminiProvider(trace.NewNoopTracerProvider().Tracer("test"), "gemini-1.5-flash")
	p.baseURL = "http://gemini.example"
	p.client = &http.Client{Transport: rt}
	return p
}

func TestGenerateText(t *testing.T) {
	t.Parallel()

	p := newTestGemini(func(req *http.Request) (*http.Response, error) {
		if req.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", req.Method)
		}
		if !strings.Contains(req.URL.Path, "/v1beta/models/gemini-1.5-flash:generateContent") {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		if req.URL.Query().Get("key") != "test-key" {
			t.Fatalf("expected key query parameter, got %q", req.URL.Query().Get("key"))
		}

		var body geminiRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			t.Fatalf("decode request body: %v", err)
		}
		if len(body.Contents) != 1 || body.Contents[0].Role != "user" {
			t.Fatalf("unexpected request contents: %+v", body.Contents)
		}
		if body.Contents[0].Parts[0].Text != "describe the sky" {
			t.Fatalf("unexpected prompt: %q", body.Contents[0].Parts[0].Text)
		}

		return jsonResponse(`{"candidates":[{"content":{"parts":[{"text":"cloudy with a chance of pumps"}]}}]}`), nil
	})

	text, err := p.GenerateText(context.Background(), "test-key", "describe the sky")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "cloudy with a chance of pumps" {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestGenerateTextEmptyCandidates(t *testing.T) {
	t.Parallel()

	p := newTestGemini(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(`{"candidates":[]}`), nil
	})

	text, err := p.GenerateText(context.Background(), "test-key", "anything")
	if err != nil {
		t.Fatalf("empty candidates must not be an error, got: %v", err)
	}
	if text != "" {
		t.Fatalf("expected empty text, got %q", text)
	}
}

func TestGenerateTextAPIError(t *testing.T) {
	t.Parallel()

	p := newTestGemini(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusTooManyRequests,
			Body:       io.NopCloser(strings.NewReader("quota exceeded")),
			Header:     make(http.Header),
		}, nil
	})

	_, err := p.GenerateText(context.Background(), "test-key", "anything")
	if err == nil {
		t.Fatal("expected an error on HTTP 429")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected status in error, got %v", err)
	}
}
