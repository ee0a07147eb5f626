package stt

import (
	"context"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/prushal/voicegate/domain/repositories"
	"github.com/prushal/voicegate/internal/audio"
)

// Chain runs a primary transcriber with a fallback. It never returns an
// error across this boundary: every failure mode maps to a sentinel
// string so callers treat STT trouble as just another text route.
type Chain struct {
	primary  repositories.Transcriber
	fallback repositories.Transcriber

	// RMS below this is treated as background noise, not speech.
	noiseThreshold float64

	logger *zap.Logger
}

func NewChain(primary, fallback repositories.Transcriber, noiseThreshold float64, logger *zap.Logger) *Chain {
	return &Chain{
		primary:        primary,
		fallback:       fallback,
		noiseThreshold: noiseThreshold,
		logger:         logger,
	}
}

// Transcribe returns recognized text and the name of the provider that
// produced it. language is the active persona's BCP-47 tag. Sentinel
// results carry provider "chain".
func (c *Chain) Transcribe(ctx context.Context, pcm []byte, sampleRate int, language string) (string, string) {
	if len(pcm) == 0 {
		return SentinelNoAudio, "chain"
	}

	if audio.RMS(pcm) < c.noiseThreshold {
		return SentinelNoise, "chain"
	}

	text, provider := c.tryProviders(ctx, pcm, sampleRate, language)
	if text == "" {
		return SentinelServiceError, provider
	}

	text = strings.TrimSpace(text)
	if !containsLetter(text) {
		return SentinelUnrecognized, provider
	}

	return text, provider
}

func (c *Chain) tryProviders(ctx context.Context, pcm []byte, sampleRate int, language string) (string, string) {
	providers := []repositories.Transcriber{c.primary, c.fallback}

	var last string
	for _, p := range providers {
		if p == nil {
			continue
		}
		last = p.Name()

		text, err := p.Transcribe(ctx, pcm, sampleRate, language)
		if err != nil {
			c.logger.Warn("Transcriber failed, falling through",
				zap.String("provider", p.Name()),
				zap.Error(err))
			continue
		}
		if strings.TrimSpace(text) == "" {
			c.logger.Debug("Transcriber returned empty text, falling through",
				zap.String("provider", p.Name()))
			continue
		}

		return text, p.Name()
	}

	if last == "" {
		last = "chain"
	}
	return "", last
}

func containsLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
