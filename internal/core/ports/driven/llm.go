package driven

import "context"

// LLMService provides text generation for answers and summaries.
// This is an optional service - when nil, chat and summarisation degrade
// to deterministic template responses.
//
// Implementations may include:
//   - OpenAI (GPT-4o, GPT-4o-mini)
//   - Local inference servers exposing a compatible API
type LLMService interface {
	// Generate produces a text completion from a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}
