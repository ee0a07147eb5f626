package embeddings

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/prushal/voicegate/domain/repositories"
)

// OpenAIEmbedder computes text embeddings through the OpenAI API.
type OpenAIEmbedder struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

var _ repositories.Embedder = (*OpenAIEmbedder)(nil)

func NewOpenAIEmbedder(client *openai.Client) *OpenAIEmbedder {
	return &OpenAIEmbedder{
		client: client,
		model:  openai.SmallEmbedding3,
	}
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: e.model,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}

	return resp.Data[0].Embedding, nil
}
