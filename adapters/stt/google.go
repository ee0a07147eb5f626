package stt

import (
	"context"
	"fmt"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"go.uber.org/zap"

	"github.com/prushal/voicegate/domain/repositories"
)

// GoogleTranscriber is the primary STT provider, backed by Google Cloud
// Speech-to-Text synchronous recognition. Credentials come from the
// standard GOOGLE_APPLICATION_CREDENTIALS environment.
type GoogleTranscriber struct {
	language string
	logger   *zap.Logger
}

var _ repositories.Transcriber = (*GoogleTranscriber)(nil)

func NewGoogleTranscriber(language string, logger *zap.Logger) *GoogleTranscriber {
	if language == "" {
		language = "en-US"
	}
	return &GoogleTranscriber{language: language, logger: logger}
}

func (g *GoogleTranscriber) Name() string {
	return "google"
}

// Transcribe recognizes one utterance of raw PCM16 mono audio in the
// given language, falling back to the constructor default.
func (g *GoogleTranscriber) Transcribe(ctx context.Context, pcm []byte, sampleRate int, language string) (string, error) {
	if language == "" {
		language = g.language
	}

	client, err := speech.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create speech client: %w", err)
	}
	defer client.Close()

	resp, err := client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz: int32(sampleRate),
			LanguageCode:    language,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: pcm},
		},
	})
	if err != nil {
		return "", fmt.Errorf("recognize failed: %w", err)
	}

	var text string
	for _, result := range resp.Results {
		if len(result.Alternatives) > 0 {
			text += result.Alternatives[0].Transcript
		}
	}

	g.logger.Debug("Google STT result",
		zap.Int("audioBytes", len(pcm)),
		zap.Int("resultCount", len(resp.Results)))

	return text, nil
}
