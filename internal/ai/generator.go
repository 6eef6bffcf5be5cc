// Package ai drafts cover letters with a text generation backend.
package ai

import "context"

const (
	ProviderGemini = "gemini"
	ProviderClaude = "claude"

	// DefaultMaxTokens caps the output of a single letter.
	DefaultMaxTokens = 300
)

// Generator sends one prompt and returns the generated text.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}
