// File path: internal/llm/providers/local.go
package providers

import (
	"context"
	"fmt"
	"strings"
)

// LocalProvider is the no-credentials fallback. It echoes a marker plus the
// tail of the prompt, which keeps the pipeline runnable in development and in
// tests without network access.
type LocalProvider struct{}

func NewLocalProvider() *LocalProvider {
	return &LocalProvider{}
}

func (l *LocalProvider) Complete(ctx context.Context, prompt string) (string, error) {
	trimmed := strings.TrimSpace(prompt)
	if trimmed == "" {
		return "", fmt.Errorf("empty prompt")
	}
	if len(trimmed) > 120 {
		trimmed = trimmed[:120]
	}
	return "[local-stub] " + trimmed, nil
}

func (l *LocalProvider) Name() string {
	return "local"
}
