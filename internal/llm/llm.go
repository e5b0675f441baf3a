// File path: internal/llm/llm.go
package llm

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	openai "github.com/openai/openai-go/v2"
	openaiopt "github.com/openai/openai-go/v2/option"
	googleopt "google.golang.org/api/option"

	"github.com/aastha-batta/course-agent/internal/common"
	"github.com/aastha-batta/course-agent/internal/llm/providers"
)

type Provider = providers.Provider

// NewProvider selects a provider from the environment. LLM_PROVIDER forces a
// choice; otherwise the first configured key wins, and with no keys at all
// the deterministic local provider is returned.
func NewProvider(ctx context.Context) Provider {
	logger := common.Logger()
	openaiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	googleKey := strings.TrimSpace(os.Getenv("GOOGLE_API_KEY"))

	switch strings.ToLower(strings.TrimSpace(os.Getenv("LLM_PROVIDER"))) {
	case "openai":
		if openaiKey != "" {
			return newOpenAI(openaiKey)
		}
		logger.Warn("llm: LLM_PROVIDER=openai but OPENAI_API_KEY not set")
	case "gemini":
		if provider := newGemini(ctx, googleKey); provider != nil {
			return provider
		}
	}

	if openaiKey != "" {
		return newOpenAI(openaiKey)
	}
	if provider := newGemini(ctx, googleKey); provider != nil {
		return provider
	}
	logger.Warn("llm: no provider credentials found; falling back to local provider")
	return providers.NewLocalProvider()
}

func newOpenAI(apiKey string) Provider {
	logger := common.Logger()
	opts := []openaiopt.RequestOption{openaiopt.WithAPIKey(apiKey)}
	if timeoutStr := strings.TrimSpace(os.Getenv("OPENAI_HTTP_TIMEOUT")); timeoutStr != "" {
		timeout, err := time.ParseDuration(timeoutStr)
		if err != nil {
			logger.Warn("llm: invalid OPENAI_HTTP_TIMEOUT, using default", "value", timeoutStr, "error", err)
		} else {
			opts = append(opts, openaiopt.WithRequestTimeout(timeout))
		}
	}
	if endpoint := strings.TrimSpace(os.Getenv("OPENAI_ENDPOINT")); endpoint != "" {
		logger.Info("llm: configuring OpenAI client with custom endpoint", "endpoint", endpoint)
		opts = append(opts, openaiopt.WithBaseURL(endpoint))
	}
	logger.Info("llm: OpenAI provider selected")
	return providers.NewOpenAIProvider(openai.NewClient(opts...))
}

func newGemini(ctx context.Context, apiKey string) Provider {
	logger := common.Logger()
	if apiKey == "" {
		return nil
	}
	client, err := genai.NewClient(ctx, googleopt.WithAPIKey(apiKey))
	if err != nil {
		logger.Warn("llm: gemini client construction failed", "error", err)
		return nil
	}
	logger.Info("llm: Gemini provider selected")
	return providers.NewGeminiProvider(client)
}
