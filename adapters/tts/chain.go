package tts

import (
	"context"
	"encoding/base64"
	"strings"

	"go.uber.org/zap"

	"github.com/prushal/voicegate/domain/repositories"
	"github.com/prushal/voicegate/internal/audio"
)

// Chain runs a primary synthesizer with a fallback and degrades to an
// empty string on total failure, never an error. Callers treat empty
// audio as a text-only reply.
type Chain struct {
	primary  repositories.Synthesizer
	fallback repositories.Synthesizer
	logger   *zap.Logger
}

func NewChain(primary, fallback repositories.Synthesizer, logger *zap.Logger) *Chain {
	return &Chain{primary: primary, fallback: fallback, logger: logger}
}

// Synthesize sanitizes text, synthesizes it, and returns base64 WAV
// (PCM16 mono 16kHz).
func (c *Chain) Synthesize(ctx context.Context, text string) string {
	text = SanitizeForSpeech(text)
	if strings.TrimSpace(text) == "" {
		return ""
	}

	for _, s := range []repositories.Synthesizer{c.primary, c.fallback} {
		if s == nil {
			continue
		}

		pcm, err := s.Synthesize(ctx, text)
		if err != nil {
			c.logger.Warn("Synthesizer failed, falling through",
				zap.String("provider", s.Name()),
				zap.Error(err))
			continue
		}
		if len(pcm) == 0 {
			continue
		}

		wav := audio.EncodeWAV(pcm, audio.DefaultSampleRate)
		return base64.StdEncoding.EncodeToString(wav)
	}

	c.logger.Warn("All synthesizers failed, degrading to text-only reply")
	return ""
}
