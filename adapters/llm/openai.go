package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/prushal/voicegate/domain/entities"
	"github.com/prushal/voicegate/domain/repositories"
)

const (
	defaultTemperature = 0.8
	defaultMaxTokens   = 300
)

// KeyPool rotates through a set of API keys. Index advances on failure;
// the atomic counter keeps two sessions from deterministically racing
// onto the same exhausted key, though exact fairness is not guaranteed.
type KeyPool struct {
	keys []string
	idx  atomic.Uint64
}

func NewKeyPool(keys []string) *KeyPool {
	return &KeyPool{keys: keys}
}

// Current returns the key at the current rotation position.
func (p *KeyPool) Current() string {
	if len(p.keys) == 0 {
		return ""
	}
	return p.keys[p.idx.Load()%uint64(len(p.keys))]
}

// Rotate advances to the next key and returns it.
func (p *KeyPool) Rotate() string {
	if len(p.keys) == 0 {
		return ""
	}
	return p.keys[p.idx.Add(1)%uint64(len(p.keys))]
}

// Size returns the number of keys in the pool.
func (p *KeyPool) Size() int {
	return len(p.keys)
}

// OpenAIChat is a ChatProvider over the OpenAI chat completion API with
// key rotation on rate-limit and auth failures.
type OpenAIChat struct {
	pool   *KeyPool
	model  string
	logger *zap.Logger

	// newClient is swappable for tests.
	newClient func(apiKey string) chatCompleter
}

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

var _ repositories.ChatProvider = (*OpenAIChat)(nil)

func NewOpenAIChat(keys []string, model string, logger *zap.Logger) *OpenAIChat {
	return &OpenAIChat{
		pool:   NewKeyPool(keys),
		model:  model,
		logger: logger,
		newClient: func(apiKey string) chatCompleter {
			return openai.NewClient(apiKey)
		},
	}
}

func (o *OpenAIChat) Name() string {
	return "openai"
}

// Complete builds the message list (system prompt, recent history, user
// message) and tries every key in the pool before giving up.
func (o *OpenAIChat) Complete(ctx context.Context, system string, history []entities.Turn, user string) (string, error) {
	if o.pool.Size() == 0 {
		return "", errors.New("no API keys configured")
	}

	messages := buildMessages(system, history, user)

	var lastErr error
	for attempt := 0; attempt < o.pool.Size(); attempt++ {
		key := o.pool.Current()
		client := o.newClient(key)

		resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       o.model,
			Messages:    messages,
			Temperature: defaultTemperature,
			MaxTokens:   defaultMaxTokens,
		})
		if err != nil {
			lastErr = err
			o.logger.Warn("Chat completion failed, rotating key",
				zap.Int("attempt", attempt+1),
				zap.Bool("rateLimited", isRotatable(err)),
				zap.Error(err))
			o.pool.Rotate()
			continue
		}

		if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
			lastErr = errors.New("empty completion")
			o.pool.Rotate()
			continue
		}

		return strings.TrimSpace(resp.Choices[0].Message.Content), nil
	}

	return "", fmt.Errorf("all %d keys exhausted: %w", o.pool.Size(), lastErr)
}

func buildMessages(system string, history []entities.Turn, user string) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: system,
	})

	for _, turn := range history {
		role := openai.ChatMessageRoleUser
		if turn.Role == entities.BotRole {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: turn.Content,
		})
	}

	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: user,
	})
	return messages
}

// isRotatable reports whether an error indicates the current key is
// rate-limited or rejected. Any other error also rotates, since a
// different key on a different account may still succeed.
func isRotatable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests, http.StatusUnauthorized, http.StatusForbidden:
			return true
		}
	}
	return false
}
