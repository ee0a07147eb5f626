package llm

import (
	"context"
	"errors"
	"net/http"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/prushal/voicegate/domain/entities"
)

type stubCompleter struct {
	byKey map[string]struct {
		text string
		err  error
	}
	key   string
	calls *map[string]int
}

func (s *stubCompleter) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	(*s.calls)[s.key]++
	r := s.byKey[s.key]
	if r.err != nil {
		return openai.ChatCompletionResponse{}, r.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: r.text}},
		},
	}, nil
}

func newTestChat(t *testing.T, byKey map[string]struct {
	text string
	err  error
}, keys []string) (*OpenAIChat, map[string]int) {
	t.Helper()
	calls := map[string]int{}
	chat := NewOpenAIChat(keys, "gpt-4o-mini", zap.NewNop())
	chat.newClient = func(apiKey string) chatCompleter {
		return &stubCompleter{byKey: byKey, key: apiKey, calls: &calls}
	}
	return chat, calls
}

func TestCompleteRotatesOnRateLimit(t *testing.T) {
	rateLimited := &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests}
	chat, calls := newTestChat(t, map[string]struct {
		text string
		err  error
	}{
		"key-a": {err: rateLimited},
		"key-b": {text: "second key answered"},
	}, []string{"key-a", "key-b"})

	got, err := chat.Complete(context.Background(), "system", nil, "hi")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "second key answered" {
		t.Errorf("reply = %q", got)
	}
	if calls["key-a"] != 1 || calls["key-b"] != 1 {
		t.Errorf("calls = %v, want one per key", calls)
	}
}

func TestCompleteExhaustsAllKeys(t *testing.T) {
	boom := errors.New("boom")
	chat, calls := newTestChat(t, map[string]struct {
		text string
		err  error
	}{
		"key-a": {err: boom},
		"key-b": {err: boom},
	}, []string{"key-a", "key-b"})

	if _, err := chat.Complete(context.Background(), "system", nil, "hi"); err == nil {
		t.Fatal("expected error when all keys fail")
	}
	if calls["key-a"]+calls["key-b"] != 2 {
		t.Errorf("calls = %v, want each key tried once", calls)
	}
}

func TestCompleteNoKeys(t *testing.T) {
	chat := NewOpenAIChat(nil, "gpt-4o-mini", zap.NewNop())
	if _, err := chat.Complete(context.Background(), "system", nil, "hi"); err == nil {
		t.Fatal("expected error with no keys configured")
	}
}

func TestBuildMessagesOrdering(t *testing.T) {
	history := []entities.Turn{
		{Role: entities.UserRole, Content: "q1"},
		{Role: entities.BotRole, Content: "a1"},
	}

	msgs := buildMessages("prompt", history, "q2")
	if len(msgs) != 4 {
		t.Fatalf("len = %d, want 4", len(msgs))
	}
	if msgs[0].Role != openai.ChatMessageRoleSystem || msgs[0].Content != "prompt" {
		t.Errorf("msgs[0] = %+v", msgs[0])
	}
	if msgs[2].Role != openai.ChatMessageRoleAssistant {
		t.Errorf("bot turn mapped to role %q, want assistant", msgs[2].Role)
	}
	if msgs[3].Content != "q2" {
		t.Errorf("last message = %+v", msgs[3])
	}
}

func TestKeyPoolRotation(t *testing.T) {
	p := NewKeyPool([]string{"a", "b", "c"})
	if p.Current() != "a" {
		t.Errorf("Current() = %q, want a", p.Current())
	}
	if p.Rotate() != "b" {
		t.Errorf("Rotate() = %q, want b", p.Current())
	}
	p.Rotate()
	if p.Rotate() != "a" {
		t.Errorf("rotation did not wrap around")
	}
}
