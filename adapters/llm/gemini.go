package llm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/prushal/voicegate/domain/entities"
	"github.com/prushal/voicegate/domain/repositories"
)

const geminiTimeout = 30 * time.Second

// GeminiChat is a ChatProvider over Google's Gemini API, selected by
// personas configured with provider "gemini".
type GeminiChat struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

var _ repositories.ChatProvider = (*GeminiChat)(nil)

func NewGeminiChat(ctx context.Context, apiKey, model string, logger *zap.Logger) (*GeminiChat, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	if model == "" {
		model = "gemini-2.0-flash"
	}

	return &GeminiChat{client: client, model: model, logger: logger}, nil
}

func (g *GeminiChat) Name() string {
	return "gemini"
}

// Complete sends the prompt, history, and user message to Gemini with
// retry x3 and linear backoff.
func (g *GeminiChat) Complete(ctx context.Context, system string, history []entities.Turn, user string) (string, error) {
	var contents []*genai.Content
	contents = append(contents, genai.NewContentFromText(system, genai.RoleUser))
	for _, turn := range history {
		role := genai.Role(genai.RoleUser)
		if turn.Role == entities.BotRole {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Content, role))
	}
	contents = append(contents, genai.NewContentFromText(user, genai.RoleUser))

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(defaultTemperature)),
		MaxOutputTokens: int32(defaultMaxTokens),
	}

	ctx, cancel := context.WithTimeout(ctx, geminiTimeout)
	defer cancel()

	var response *genai.GenerateContentResponse
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		response, err = g.client.Models.GenerateContent(ctx, g.model, contents, config)
		if err == nil {
			break
		}

		g.logger.Warn("Failed to generate content, retrying",
			zap.Int("attempt", attempt+1),
			zap.Error(err))

		if attempt < 2 {
			time.Sleep(time.Duration(attempt+1) * time.Second)
		}
	}
	if err != nil {
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}

	if len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		return "", fmt.Errorf("no content generated")
	}

	var text string
	for _, part := range response.Candidates[0].Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}
	if text == "" {
		return "", fmt.Errorf("empty response")
	}

	return text, nil
}
