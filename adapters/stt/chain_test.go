package stt

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"go.uber.org/zap"
)

type stubTranscriber struct {
	name     string
	text     string
	err      error
	calls    int
	language string
}

func (s *stubTranscriber) Transcribe(ctx context.Context, pcm []byte, sampleRate int, language string) (string, error) {
	s.calls++
	s.language = language
	return s.text, s.err
}

func (s *stubTranscriber) Name() string { return s.name }

// loudPCM returns audio well above any noise threshold.
func loudPCM(n int) []byte {
	pcm := make([]byte, n)
	for i := 0; i < n/2; i++ {
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(int16(8000)))
	}
	return pcm
}

func TestChainEmptyInput(t *testing.T) {
	c := NewChain(&stubTranscriber{name: "p"}, nil, 100, zap.NewNop())

	text, provider := c.Transcribe(context.Background(), nil, 16000, "")
	if text != SentinelNoAudio {
		t.Errorf("text = %q, want %q", text, SentinelNoAudio)
	}
	if provider != "chain" {
		t.Errorf("provider = %q, want chain", provider)
	}
}

func TestChainNoiseGate(t *testing.T) {
	primary := &stubTranscriber{name: "p", text: "should not run"}
	c := NewChain(primary, nil, 100, zap.NewNop())

	text, _ := c.Transcribe(context.Background(), make([]byte, 3200), 16000, "")
	if text != SentinelNoise {
		t.Errorf("text = %q, want %q", text, SentinelNoise)
	}
	if primary.calls != 0 {
		t.Errorf("primary called %d times on noise, want 0", primary.calls)
	}
}

func TestChainFallbackOnPrimaryFailure(t *testing.T) {
	primary := &stubTranscriber{name: "google", err: errors.New("rpc error: code = ResourceExhausted desc = 429")}
	fallback := &stubTranscriber{name: "whisper", text: "hello there"}
	c := NewChain(primary, fallback, 100, zap.NewNop())

	text, provider := c.Transcribe(context.Background(), loudPCM(3200), 16000, "")
	if text != "hello there" {
		t.Errorf("text = %q, want %q", text, "hello there")
	}
	if provider != "whisper" {
		t.Errorf("provider = %q, want whisper", provider)
	}
	if fallback.calls != 1 {
		t.Errorf("fallback called %d times, want exactly 1", fallback.calls)
	}
}

func TestChainFallbackOnEmptyPrimaryText(t *testing.T) {
	primary := &stubTranscriber{name: "google", text: "   "}
	fallback := &stubTranscriber{name: "whisper", text: "fallback result"}
	c := NewChain(primary, fallback, 100, zap.NewNop())

	text, provider := c.Transcribe(context.Background(), loudPCM(3200), 16000, "")
	if text != "fallback result" || provider != "whisper" {
		t.Errorf("got (%q, %q), want fallback result from whisper", text, provider)
	}
}

func TestChainTotalFailure(t *testing.T) {
	primary := &stubTranscriber{name: "google", err: errors.New("down")}
	fallback := &stubTranscriber{name: "whisper", err: errors.New("also down")}
	c := NewChain(primary, fallback, 100, zap.NewNop())

	text, _ := c.Transcribe(context.Background(), loudPCM(3200), 16000, "")
	if text != SentinelServiceError {
		t.Errorf("text = %q, want %q", text, SentinelServiceError)
	}
}

func TestChainNonAlphabeticResult(t *testing.T) {
	primary := &stubTranscriber{name: "google", text: "... 123 !!"}
	c := NewChain(primary, nil, 100, zap.NewNop())

	text, _ := c.Transcribe(context.Background(), loudPCM(3200), 16000, "")
	if text != SentinelUnrecognized {
		t.Errorf("text = %q, want %q", text, SentinelUnrecognized)
	}
}

func TestChainForwardsLanguage(t *testing.T) {
	primary := &stubTranscriber{name: "google", err: errors.New("down")}
	fallback := &stubTranscriber{name: "whisper", text: "hola"}
	c := NewChain(primary, fallback, 100, zap.NewNop())

	c.Transcribe(context.Background(), loudPCM(3200), 16000, "es-ES")
	if primary.language != "es-ES" {
		t.Errorf("primary language = %q, want es-ES", primary.language)
	}
	if fallback.language != "es-ES" {
		t.Errorf("fallback language = %q, want es-ES", fallback.language)
	}
}

func TestISO639Reduction(t *testing.T) {
	cases := map[string]string{
		"en-US": "en",
		"pa-IN": "pa",
		"en":    "en",
		"FR":    "fr",
		"":      "",
	}
	for in, want := range cases {
		if got := iso639(in); got != want {
			t.Errorf("iso639(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsSentinel(t *testing.T) {
	for _, s := range []string{SentinelNoAudio, SentinelNoise, SentinelUnrecognized, SentinelServiceError} {
		if !IsSentinel(s) {
			t.Errorf("IsSentinel(%q) = false", s)
		}
	}
	if IsSentinel("hello") {
		t.Error("IsSentinel(hello) = true")
	}
}
