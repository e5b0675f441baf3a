// File path: internal/llm/providers/gemini_client.go
package providers

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"

	"github.com/aastha-batta/course-agent/internal/common"
)

const defaultGeminiModel = "gemini-1.5-flash"

// GeminiProvider serves completions through the Google generative AI API.
type GeminiProvider struct {
	model     *genai.GenerativeModel
	modelName string
}

func NewGeminiProvider(client *genai.Client) *GeminiProvider {
	name := strings.TrimSpace(os.Getenv("GEMINI_MODEL"))
	if name == "" {
		name = defaultGeminiModel
	}
	model := client.GenerativeModel(name)
	model.SetTemperature(0.2)
	common.Logger().Info("llm: Gemini provider configured", "chat_model", name)
	return &GeminiProvider{model: model, modelName: name}
}

func (g *GeminiProvider) Complete(ctx context.Context, prompt string) (string, error) {
	logger := common.Logger()
	logger.Debug("llm: sending generate content request", "model", g.modelName, "prompt_len", len(prompt))
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		logger.Error("llm: generate content failed", "error", err)
		return "", fmt.Errorf("gemini completion: %w", err)
	}
	text := firstText(resp)
	if text == "" {
		return "", fmt.Errorf("gemini completion: empty response")
	}
	logger.Debug("llm: generate content succeeded")
	return text, nil
}

func (g *GeminiProvider) Name() string {
	return "gemini"
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				return string(text)
			}
		}
	}
	return ""
}
