package repositories

import "context"

// Transcriber converts raw PCM16 mono audio into text. language is a
// BCP-47 tag from the active persona; empty means the provider default.
type Transcriber interface {
	Transcribe(ctx context.Context, pcm []byte, sampleRate int, language string) (string, error)
	Name() string
}
