package tts

import (
	"context"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/prushal/voicegate/domain/repositories"
	"github.com/prushal/voicegate/internal/audio"
)

// openaiTTSRate is the PCM rate the speech endpoint produces; output is
// resampled down to the canonical 16kHz.
const openaiTTSRate = 24000

// OpenAITTS is the fallback TTS provider.
type OpenAITTS struct {
	client *openai.Client
	logger *zap.Logger
}

var _ repositories.Synthesizer = (*OpenAITTS)(nil)

func NewOpenAITTS(client *openai.Client, logger *zap.Logger) *OpenAITTS {
	return &OpenAITTS{client: client, logger: logger}
}

func (o *OpenAITTS) Name() string {
	return "openai"
}

func (o *OpenAITTS) Synthesize(ctx context.Context, text string) ([]byte, error) {
	resp, err := o.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.TTSModel1,
		Voice:          openai.VoiceAlloy,
		Input:          text,
		ResponseFormat: openai.SpeechResponseFormatPcm,
	})
	if err != nil {
		return nil, fmt.Errorf("openai speech request failed: %w", err)
	}
	defer resp.Close()

	raw, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read speech response: %w", err)
	}

	pcm := audio.Resample(raw, openaiTTSRate, audio.DefaultSampleRate)

	o.logger.Debug("OpenAI synthesis complete",
		zap.Int("textLength", len(text)),
		zap.Int("audioBytes", len(pcm)))

	return pcm, nil
}
