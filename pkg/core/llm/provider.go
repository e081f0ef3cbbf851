// Package llm abstracts the language-model backend used for AI-assisted
// filing extraction.
package llm

import "context"

// Provider is the interface for all LLM providers.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
}
