package retriever

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/prushal/voicegate/domain/entities"
	"github.com/prushal/voicegate/domain/repositories"
)

// Record is one precomputed Q&A entry with its embedding.
type Record struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Embedding []float32 `json:"embedding"`
}

// JSONFile retrieves by brute-force cosine similarity over records
// loaded once from a JSON file. The default retriever backend.
type JSONFile struct {
	records  []Record
	embedder repositories.Embedder
}

var _ repositories.Retriever = (*JSONFile)(nil)

// NewJSONFile loads records from path.
func NewJSONFile(path string, embedder repositories.Embedder) (*JSONFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read retrieval records: %w", err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse retrieval records: %w", err)
	}

	return &JSONFile{records: records, embedder: embedder}, nil
}

// NewJSONFileFromRecords builds a retriever over in-memory records.
func NewJSONFileFromRecords(records []Record, embedder repositories.Embedder) *JSONFile {
	return &JSONFile{records: records, embedder: embedder}
}

func (j *JSONFile) TopMatches(ctx context.Context, text string, n int) ([]entities.Match, error) {
	if len(j.records) == 0 {
		return nil, nil
	}

	query, err := j.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	matches := make([]entities.Match, 0, len(j.records))
	for _, r := range j.records {
		matches = append(matches, entities.Match{
			Question: r.Question,
			Answer:   r.Answer,
			Score:    Cosine(query, r.Embedding),
		})
	}

	sort.Slice(matches, func(a, b int) bool {
		return matches[a].Score > matches[b].Score
	})

	if n > 0 && len(matches) > n {
		matches = matches[:n]
	}
	return matches, nil
}

// Cosine returns the cosine similarity of two vectors, 0 when either is
// degenerate.
func Cosine(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}

	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
