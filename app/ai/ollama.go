package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	ollama "github.com/ollama/ollama/api"
)

const systemPrompt = "You are a tech news summarizer. Create a concise 2-3 sentence excerpt and a brief summary. Return JSON with 'excerpt' and 'summary' fields."

type OllamaSummarizer struct {
	client  *ollama.Client
	model   string
	timeout time.Duration
}

func NewOllamaSummarizer(baseURL, model string, timeout time.Duration, httpClient *http.Client) (*OllamaSummarizer, error) {
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid AI URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid AI URL: %q", baseURL)
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &OllamaSummarizer{
		client:  ollama.NewClient(base, httpClient),
		model:   model,
		timeout: timeout,
	}, nil
}

// New returns the Ollama summarizer when baseURL is set and the offline
// fallback otherwise.
func New(baseURL, model string, timeout time.Duration, httpClient *http.Client) Summarizer {
	if baseURL == "" {
		slog.Info("AI summaries disabled, using fallback excerpts")
		return Fallback{}
	}

	summarizer, err := NewOllamaSummarizer(baseURL, model, timeout, httpClient)
	if err != nil {
		slog.Warn("AI summaries disabled, using fallback excerpts", "error", err)
		return Fallback{}
	}

	slog.Info("AI summaries enabled", "url", baseURL, "model", model)
	return summarizer
}

func (s *OllamaSummarizer) Summarize(ctx context.Context, title, content string) Summary {
	result, err := s.query(ctx, title, content)
	if err != nil {
		slog.Warn("AI summarization failed", "title", title, "error", err)
		return Summary{Excerpt: FallbackExcerpt(content)}
	}

	summary := Summary{
		Excerpt: strings.TrimSpace(result.Excerpt),
		Summary: strings.TrimSpace(result.Summary),
	}
	if summary.Excerpt == "" {
		summary.Excerpt = FallbackExcerpt(content)
	}

	return summary
}

func (s *OllamaSummarizer) query(ctx context.Context, title, content string) (*Summary, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	stream := false
	req := &ollama.GenerateRequest{
		Model:  s.model,
		System: systemPrompt,
		Prompt: fmt.Sprintf("Title: %s\n\nContent: %s", title, truncate(content, PromptContentLength)),
		Format: json.RawMessage(`"json"`),
		Stream: &stream,
		Options: map[string]interface{}{
			"temperature": 0.2,
			"num_predict": 300,
		},
	}

	var response strings.Builder
	err := s.client.Generate(timeoutCtx, req, func(res ollama.GenerateResponse) error {
		response.WriteString(res.Response)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate summary: %w", err)
	}

	var result Summary
	if err := json.Unmarshal([]byte(response.String()), &result); err != nil {
		return nil, fmt.Errorf("failed to decode summary: %w", err)
	}

	return &result, nil
}
