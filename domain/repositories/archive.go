package repositories

import (
	"context"

	"github.com/prushal/voicegate/domain/entities"
)

// ConversationArchive persists completed exchanges for the history API.
type ConversationArchive interface {
	Record(ctx context.Context, rec entities.TurnRecord) error
	BySession(ctx context.Context, sessionID string, limit int) ([]entities.TurnRecord, error)
}
