// File path: internal/llm/providers/provider.go
package providers

import "context"

// Provider answers single-prompt completions. Generation steps build their
// own prompts; keeping the surface to one call keeps providers trivially
// swappable.
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Name() string
}
