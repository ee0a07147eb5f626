package repositories

import (
	"context"

	"github.com/prushal/voicegate/domain/entities"
)

// ChatProvider produces a chat completion for one user message given the
// persona system prompt and recent history.
type ChatProvider interface {
	Complete(ctx context.Context, system string, history []entities.Turn, user string) (string, error)
	Name() string
}
