package repositories

import (
	"context"

	"github.com/prushal/voicegate/domain/entities"
)

// Retriever returns the n most semantically similar Q&A records for a query.
type Retriever interface {
	TopMatches(ctx context.Context, text string, n int) ([]entities.Match, error)
}
