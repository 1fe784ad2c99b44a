package classifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type geminiCompleter struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiBackend builds a Backend on the Gemini API.
func NewGeminiBackend(ctx context.Context, apiKey, modelName string) (Backend, func() error, error) {
	if apiKey == "" {
		return nil, nil, fmt.Errorf("gemini: %w", ErrNotConfigured)
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.1)
	model.SetTopP(0.95)
	model.ResponseMIMEType = "application/json"

	g := &geminiCompleter{client: client, model: model}
	return &promptBackend{llm: g}, client.Close, nil
}

func (g *geminiCompleter) complete(ctx context.Context, system, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(system+"\n\n"+prompt))
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	text := extractText(resp)
	if text == "" {
		return "", fmt.Errorf("empty response from gemini")
	}
	return text, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
	}
	return sb.String()
}
