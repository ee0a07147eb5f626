// Package usecase orchestrates the per-session pipeline: buffered audio
// in, STT chain, resolver cascade, TTS chain, events out. Transports
// (WebSocket, WebRTC) translate wire frames into calls on
// ConversationService and implement Emitter for the way back.
package usecase

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/prushal/voicegate/adapters/stt"
	"github.com/prushal/voicegate/adapters/tts"
	"github.com/prushal/voicegate/domain/repositories"
	"github.com/prushal/voicegate/internal/audio"
	"github.com/prushal/voicegate/personas"
	"github.com/prushal/voicegate/resolver"
)

// resolveTimeout bounds one full STT→resolve→TTS pass.
const resolveTimeout = 60 * time.Second

// Session is one client connection's state.
type Session struct {
	ID    string
	Audio *audio.Buffer

	// textMu serializes text handling per session so duplicate
	// suppression sees a consistent last-text value and events keep
	// their order even when a transport dispatches concurrently.
	textMu sync.Mutex

	mu      sync.Mutex
	runtime *personas.Runtime
}

// Runtime returns the session's current persona runtime.
func (s *Session) Runtime() *personas.Runtime {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runtime
}

func (s *Session) setRuntime(rt *personas.Runtime) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runtime = rt
}

// ConversationService runs the pipeline for every session. Stateless
// apart from the injected stores; safe for concurrent sessions.
type ConversationService struct {
	sttChain *stt.Chain
	ttsChain *tts.Chain
	resolver *resolver.Resolver
	registry *personas.Registry
	store    repositories.SessionStore
	logger   *zap.Logger
}

func NewConversationService(
	sttChain *stt.Chain,
	ttsChain *tts.Chain,
	res *resolver.Resolver,
	registry *personas.Registry,
	store repositories.SessionStore,
	logger *zap.Logger,
) *ConversationService {
	return &ConversationService{
		sttChain: sttChain,
		ttsChain: ttsChain,
		resolver: res,
		registry: registry,
		store:    store,
		logger:   logger,
	}
}

// OpenSession allocates state for a new connection and greets it.
func (s *ConversationService) OpenSession(sessionID string, emitter Emitter) *Session {
	sess := &Session{
		ID:      sessionID,
		Audio:   audio.NewBuffer(),
		runtime: s.registry.Default(),
	}

	persona := sess.Runtime().Persona
	s.emit(emitter, EventServerInfo, ServerInfoPayload{
		SampleRate: audio.DefaultSampleRate,
		Status:     "ready",
		Bot:        persona.ID,
		Welcome:    persona.Welcome,
	})

	s.logger.Info("Session opened",
		zap.String("sessionID", sessionID),
		zap.String("persona", persona.ID))

	return sess
}

// CloseSession releases a session's stored state.
func (s *ConversationService) CloseSession(sess *Session) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.store.Delete(ctx, sess.ID); err != nil {
		s.logger.Warn("Failed to delete session state",
			zap.String("sessionID", sess.ID),
			zap.Error(err))
	}

	s.logger.Info("Session closed", zap.String("sessionID", sess.ID))
}

// SelectBot swaps the session's persona.
func (s *ConversationService) SelectBot(sess *Session, botID string, emitter Emitter) {
	if !s.registry.Has(botID) {
		s.emit(emitter, EventError, ErrorPayload{Message: "unknown bot: " + botID})
		return
	}

	sess.setRuntime(s.registry.Get(botID))
	persona := sess.Runtime().Persona
	s.emit(emitter, EventServerInfo, ServerInfoPayload{
		SampleRate: audio.DefaultSampleRate,
		Status:     "ready",
		Bot:        persona.ID,
		Welcome:    persona.Welcome,
	})

	s.logger.Info("Persona selected",
		zap.String("sessionID", sess.ID),
		zap.String("persona", persona.ID))
}

// HandleText runs typed text through dedupe, the sentinel filter, and
// the resolver. Recognized speech reuses this path.
func (s *ConversationService) HandleText(ctx context.Context, sess *Session, text string, emitter Emitter) {
	sess.textMu.Lock()
	defer sess.textMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, resolveTimeout)
	defer cancel()

	if stt.IsSentinel(text) {
		// Error sentinels must never masquerade as user speech.
		s.emit(emitter, EventError, ErrorPayload{Message: text})
		return
	}

	last, err := s.store.LastText(ctx, sess.ID)
	if err != nil {
		s.logger.Warn("Failed to read last text",
			zap.String("sessionID", sess.ID),
			zap.Error(err))
	}
	if text != "" && text == last {
		s.emit(emitter, EventMessageIgnored, MessageIgnoredPayload{
			Reason:       "duplicate",
			OriginalText: text,
		})
		return
	}
	if err := s.store.SetLastText(ctx, sess.ID, text); err != nil {
		s.logger.Warn("Failed to store last text",
			zap.String("sessionID", sess.ID),
			zap.Error(err))
	}

	s.emit(emitter, EventBotThinking, BotThinkingPayload{Status: "thinking", UserText: text})
	s.emit(emitter, EventRobotSignal, RobotSignalPayload{Action: SignalThinking})

	result := s.resolver.Resolve(ctx, sess.ID, sess.Runtime(), text)
	result.BotAudio = s.ttsChain.Synthesize(ctx, result.BotText)

	s.emit(emitter, EventRobotSignal, RobotSignalPayload{Action: SignalSpeaking})
	s.emit(emitter, EventBotReply, BotReplyPayload{
		UserText:    text,
		BotText:     result.BotText,
		BotAudio:    result.BotAudio,
		Stage:       string(result.Stage),
		Suggestions: result.Suggestions,
	})
	s.emit(emitter, EventRobotSignal, RobotSignalPayload{Action: SignalIdle})
}

// HandleVoiceChunk buffers audio and runs a non-blocking partial
// transcription pass once the rolling window fills.
func (s *ConversationService) HandleVoiceChunk(sess *Session, chunk []byte, emitter Emitter) {
	sess.Audio.Push(chunk)

	window := sess.Audio.Window()
	if window == nil {
		return
	}

	// Feedback only; the final transcription uses the full buffer.
	language := sess.Runtime().Persona.Language
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		text, _ := s.sttChain.Transcribe(ctx, window, audio.DefaultSampleRate, language)
		if stt.IsSentinel(text) {
			return
		}
		s.emit(emitter, EventPartialText, PartialTextPayload{Text: text})
	}()
}

// HandleEndVoice finalizes the utterance, transcribes it, and feeds the
// text through the same path as a typed message.
func (s *ConversationService) HandleEndVoice(ctx context.Context, sess *Session, emitter Emitter) {
	pcm := sess.Audio.Finalize()
	if len(pcm) == 0 {
		s.emit(emitter, EventPartialText, PartialTextPayload{Text: stt.SentinelNoAudio})
		return
	}

	ctx, cancel := context.WithTimeout(ctx, resolveTimeout)
	defer cancel()

	text, provider := s.sttChain.Transcribe(ctx, pcm, audio.DefaultSampleRate, sess.Runtime().Persona.Language)
	s.logger.Info("Utterance transcribed",
		zap.String("sessionID", sess.ID),
		zap.String("provider", provider),
		zap.Int("audioBytes", len(pcm)))

	s.emit(emitter, EventPartialText, PartialTextPayload{Text: text})

	if stt.IsSentinel(text) {
		s.emit(emitter, EventRobotSignal, RobotSignalPayload{Action: SignalIdle})
		return
	}

	s.HandleText(ctx, sess, text, emitter)
}

// HandlePing answers a keepalive probe.
func (s *ConversationService) HandlePing(emitter Emitter) {
	s.emit(emitter, EventPong, PongPayload{Timestamp: time.Now().Unix()})
}

func (s *ConversationService) emit(emitter Emitter, event string, payload any) {
	if err := emitter.Emit(event, payload); err != nil {
		s.logger.Warn("Failed to emit event",
			zap.String("event", event),
			zap.Error(err))
	}
}
