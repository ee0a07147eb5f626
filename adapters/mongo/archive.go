package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/prushal/voicegate/domain/entities"
	"github.com/prushal/voicegate/domain/repositories"
)

// ConversationArchive persists completed exchanges to the
// "conversations" collection for the history API.
type ConversationArchive struct {
	collection *mongo.Collection
}

// NewConversationArchive creates a Mongo-backed conversation archive.
func NewConversationArchive(db *mongo.Database) repositories.ConversationArchive {
	return &ConversationArchive{
		collection: db.Collection("conversations"),
	}
}

// Record implements repositories.ConversationArchive
func (a *ConversationArchive) Record(ctx context.Context, rec entities.TurnRecord) error {
	if rec.SessionID == "" {
		return errors.New("session id cannot be empty")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	if _, err := a.collection.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("failed to archive turn: %w", err)
	}
	return nil
}

// BySession implements repositories.ConversationArchive
func (a *ConversationArchive) BySession(ctx context.Context, sessionID string, limit int) ([]entities.TurnRecord, error) {
	if sessionID == "" {
		return nil, errors.New("session id cannot be empty")
	}
	if limit <= 0 {
		limit = 50
	}

	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetLimit(int64(limit))

	cursor, err := a.collection.Find(ctx, bson.M{"session_id": sessionID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations for %s: %w", sessionID, err)
	}
	defer cursor.Close(ctx)

	var records []entities.TurnRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode conversations: %w", err)
	}

	// Stored newest-first; return chronological.
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}

	return records, nil
}
