package ai

import (
	"context"
	"strings"
	"unicode/utf8"
)

const (
	// ExcerptLength is the number of characters kept by the fallback excerpt.
	ExcerptLength = 200
	// PromptContentLength caps the content sent to a backend.
	PromptContentLength = 3000
)

type Summary struct {
	Excerpt string `json:"excerpt"`
	Summary string `json:"summary,omitempty"`
}

// Summarizer produces an excerpt for an article. Implementations never
// fail: they degrade to FallbackExcerpt instead.
type Summarizer interface {
	Summarize(ctx context.Context, title, content string) Summary
}

// FallbackExcerpt keeps the first ExcerptLength characters of content.
func FallbackExcerpt(content string) string {
	return strings.TrimSpace(truncate(content, ExcerptLength)) + "..."
}

// Fallback is the Summarizer used when no backend is configured.
type Fallback struct{}

func (Fallback) Summarize(_ context.Context, _ string, content string) Summary {
	return Summary{Excerpt: FallbackExcerpt(content)}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
