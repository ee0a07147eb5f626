package repositories

import "context"

// Synthesizer converts reply text into PCM16 mono 16kHz audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
	Name() string
}
