// Package llm provides text generation against LLM providers for the
// `dot llm` commands. Go code assembles the prompt and files; the model
// writes the plan or the code.
package llm

import (
	"context"
	"strings"
)

// Usage tracks token consumption for a single generation.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
}

// Generator sends a prompt to an LLM and returns the generated text.
type Generator interface {
	// Generate sends the prompt and returns the model's text response.
	Generate(ctx context.Context, prompt string) (string, Usage, error)

	// Provider returns the provider name (e.g., "anthropic", "openai").
	Provider() string

	// Model returns the model name used for generation.
	Model() string
}

// stripMarkdownFences removes a surrounding ```...``` fence, if present.
// Models occasionally wrap plain-text answers in one.
func stripMarkdownFences(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.TrimPrefix(t, "```")
	if idx := strings.IndexByte(t, '\n'); idx >= 0 {
		t = t[idx+1:]
	}
	t = strings.TrimSuffix(strings.TrimSpace(t), "```")
	return strings.TrimSpace(t)
}
