package retriever

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/qdrant/go-client/qdrant"

	"github.com/prushal/voicegate/domain/entities"
	"github.com/prushal/voicegate/domain/repositories"
)

// Qdrant retrieves Q&A records from a Qdrant collection. Points carry
// "question" and "answer" string payload fields.
type Qdrant struct {
	client     *qdrant.Client
	collection string
	embedder   repositories.Embedder
}

var _ repositories.Retriever = (*Qdrant)(nil)

// NewQdrant connects to a Qdrant server given an address like
// "https://host:6334" or a bare host.
func NewQdrant(addr, collection string, embedder repositories.Embedder) (*Qdrant, error) {
	if addr == "" {
		return nil, fmt.Errorf("qdrant address is required")
	}

	parsed := addr
	if !strings.HasPrefix(parsed, "http://") && !strings.HasPrefix(parsed, "https://") {
		parsed = "https://" + parsed
	}
	u, err := url.Parse(parsed)
	if err != nil {
		return nil, fmt.Errorf("failed to parse qdrant address: %w", err)
	}

	port := 6334
	if u.Port() != "" {
		if port, err = strconv.Atoi(u.Port()); err != nil {
			return nil, fmt.Errorf("invalid qdrant port: %w", err)
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   u.Hostname(),
		Port:   port,
		UseTLS: u.Scheme == "https",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &Qdrant{client: client, collection: collection, embedder: embedder}, nil
}

func (q *Qdrant) TopMatches(ctx context.Context, text string, n int) ([]entities.Match, error) {
	query, err := q.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	limit := uint64(n)
	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collection,
		Query:          qdrant.NewQuery(query...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant query failed: %w", err)
	}

	matches := make([]entities.Match, 0, len(points))
	for _, point := range points {
		m := entities.Match{Score: point.Score}
		if point.Payload != nil {
			if v, ok := point.Payload["question"]; ok {
				m.Question = v.GetStringValue()
			}
			if v, ok := point.Payload["answer"]; ok {
				m.Answer = v.GetStringValue()
			}
		}
		if m.Answer != "" {
			matches = append(matches, m)
		}
	}

	return matches, nil
}

// Close releases the underlying gRPC connection.
func (q *Qdrant) Close() error {
	return q.client.Close()
}
