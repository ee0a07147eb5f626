package repositories

import "context"

// Embedder computes a vector embedding for a piece of text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
