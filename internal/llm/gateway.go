// Package llm sends prompts to a chat-completion provider and decodes the
// JSON object it answers with.
package llm

import (
	"context"
	"errors"
)

var (
	// ErrProviderUnavailable covers transport failures, timeouts, rate limits and 5xx answers.
	ErrProviderUnavailable = errors.New("llm provider unavailable")
	// ErrProviderError covers rejected requests and unusable completions.
	ErrProviderError = errors.New("llm provider error")
)

// Gateway completes a single prompt with one model call.
type Gateway interface {
	// Complete returns the raw text of the first completion choice.
	Complete(ctx context.Context, prompt string) (string, error)
	// Configured reports whether a provider credential is present.
	Configured() bool
}
