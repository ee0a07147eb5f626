package stt

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/prushal/voicegate/domain/repositories"
	"github.com/prushal/voicegate/internal/audio"
)

// WhisperTranscriber is the fallback STT provider, calling OpenAI Whisper
// with the utterance wrapped in an in-memory WAV container.
type WhisperTranscriber struct {
	client *openai.Client
	logger *zap.Logger
}

var _ repositories.Transcriber = (*WhisperTranscriber)(nil)

func NewWhisperTranscriber(client *openai.Client, logger *zap.Logger) *WhisperTranscriber {
	return &WhisperTranscriber{client: client, logger: logger}
}

func (w *WhisperTranscriber) Name() string {
	return "whisper"
}

func (w *WhisperTranscriber) Transcribe(ctx context.Context, pcm []byte, sampleRate int, language string) (string, error) {
	wav := audio.EncodeWAV(pcm, sampleRate)

	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: "utterance.wav",
		Reader:   bytes.NewReader(wav),
		Language: iso639(language),
	})
	if err != nil {
		return "", fmt.Errorf("whisper transcription failed: %w", err)
	}

	w.logger.Debug("Whisper STT result",
		zap.Int("audioBytes", len(pcm)),
		zap.Int("textLength", len(resp.Text)))

	return resp.Text, nil
}

// iso639 reduces a BCP-47 tag like "en-US" to the two-letter code
// Whisper expects. Empty input stays empty (autodetect).
func iso639(language string) string {
	if language == "" {
		return ""
	}
	if i := strings.IndexByte(language, '-'); i > 0 {
		language = language[:i]
	}
	return strings.ToLower(language)
}
