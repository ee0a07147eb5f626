package repositories

import (
	"context"

	"github.com/prushal/voicegate/domain/entities"
)

// SessionStore holds per-session conversation history, capped to the most
// recent turns, plus the last-seen text for duplicate suppression.
type SessionStore interface {
	History(ctx context.Context, sessionID string) ([]entities.Turn, error)
	Append(ctx context.Context, sessionID string, turns ...entities.Turn) error
	LastText(ctx context.Context, sessionID string) (string, error)
	SetLastText(ctx context.Context, sessionID string, text string) error
	Delete(ctx context.Context, sessionID string) error
	Close() error
}
