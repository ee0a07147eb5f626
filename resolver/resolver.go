// Package resolver turns recognized user text into a reply through an
// ordered cascade of stages. Every stage is exception-safe: failures
// fall through to the next stage, and the keyword fallback at the
// bottom always produces text.
package resolver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/prushal/voicegate/domain/entities"
	"github.com/prushal/voicegate/domain/repositories"
	"github.com/prushal/voicegate/personas"
)

const (
	// historyWindow is how many recent turns go into the LLM prompt.
	historyWindow = 6

	// retrievalTopN matches are fetched per query; the best one answers
	// directly when it clears retrievalHighConfidence.
	retrievalTopN           = 3
	retrievalHighConfidence = 0.85

	repeatPrefix = "Returning to your question, "
)

// Resolver runs the reply cascade and owns the conversation-history
// side effects.
type Resolver struct {
	store     repositories.SessionStore
	archive   repositories.ConversationArchive
	providers map[string]repositories.ChatProvider
	logger    *zap.Logger

	// now is swappable for clock-dependent rule tests.
	now func() time.Time
}

// New creates a Resolver. archive may be nil; providers maps provider
// names ("openai", "gemini") to configured backends.
func New(
	store repositories.SessionStore,
	archive repositories.ConversationArchive,
	providers map[string]repositories.ChatProvider,
	logger *zap.Logger,
) *Resolver {
	return &Resolver{
		store:     store,
		archive:   archive,
		providers: providers,
		logger:    logger,
		now:       time.Now,
	}
}

// Resolve computes the reply for one user input and records the
// exchange in session history.
func (r *Resolver) Resolve(ctx context.Context, sessionID string, rt *personas.Runtime, text string) entities.ReplyResult {
	persona := rt.Persona

	history, err := r.store.History(ctx, sessionID)
	if err != nil {
		r.logger.Warn("Failed to load session history",
			zap.String("sessionID", sessionID),
			zap.Error(err))
		history = nil
	}

	result := r.cascade(ctx, rt, history, text)

	if isRepeatedQuestion(history, text) && !strings.HasPrefix(result.BotText, repeatPrefix) {
		result.BotText = repeatPrefix + lowerFirst(result.BotText)
	}

	if result.Stage == entities.StageLLM && !endsWithQuestion(result.BotText) {
		r.paceConversation(ctx, rt, history, &result)
	}

	r.recordExchange(ctx, sessionID, persona.ID, text, result)

	return result
}

// cascade runs the stages in order; first hit wins.
func (r *Resolver) cascade(ctx context.Context, rt *personas.Runtime, history []entities.Turn, text string) entities.ReplyResult {
	persona := rt.Persona

	if reply := contactReply(text, persona.ContactEmail); reply != "" {
		return entities.ReplyResult{BotText: reply, Stage: entities.StageContact}
	}

	if entry, ok := rt.KB.Match(text); ok {
		if reply := rt.KB.Reply(entry); reply != "" {
			return entities.ReplyResult{
				BotText:     reply,
				Stage:       entities.StageKnowledge,
				Suggestions: entry.NextSuggestions,
			}
		}
	}

	if reply := smalltalk(text, persona.BotName, r.now()); reply != "" {
		return entities.ReplyResult{BotText: reply, Stage: entities.StageRules}
	}

	if reply := meta(text, persona.BotName, persona.Suggestions); reply != "" {
		return entities.ReplyResult{BotText: reply, Stage: entities.StageMeta}
	}

	ragContext := ""
	if rt.Retriever != nil {
		matches, err := rt.Retriever.TopMatches(ctx, text, retrievalTopN)
		if err != nil {
			r.logger.Warn("Retrieval stage failed, continuing without context",
				zap.Error(err))
		} else if len(matches) > 0 {
			if matches[0].Score >= retrievalHighConfidence {
				return entities.ReplyResult{BotText: matches[0].Answer, Stage: entities.StageRetrieval}
			}
			ragContext = formatRAGContext(matches)
		}
	}

	if provider := r.providerFor(persona); provider != nil {
		system := persona.SystemPrompt
		if ragContext != "" {
			system += "\n\n" + ragContext
		}

		reply, err := provider.Complete(ctx, system, lastN(history, historyWindow), text)
		if err != nil {
			r.logger.Warn("LLM stage failed, falling back to canned replies",
				zap.String("provider", provider.Name()),
				zap.Error(err))
		} else if reply != "" {
			return entities.ReplyResult{BotText: reply, Stage: entities.StageLLM}
		}
	}

	return entities.ReplyResult{BotText: keywordFallback(persona, text), Stage: entities.StageFallback}
}

// paceConversation appends a persona driver line when the reply leaves
// the user hanging, unless the previous bot message already asked
// something.
func (r *Resolver) paceConversation(ctx context.Context, rt *personas.Runtime, history []entities.Turn, result *entities.ReplyResult) {
	prevBot := lastBotMessage(history)
	if wasFollowUp(ctx, r.providerFor(rt.Persona), prevBot) {
		return
	}

	if driver := pickDriver(rt.Persona.Drivers, len(history)); driver != "" {
		result.BotText = strings.TrimSpace(result.BotText) + " " + driver
	}
}

// recordExchange appends the turn pair to session history and archives
// it. Both are best-effort; a storage hiccup never blocks the reply.
func (r *Resolver) recordExchange(ctx context.Context, sessionID, personaID, userText string, result entities.ReplyResult) {
	now := r.now()
	err := r.store.Append(ctx, sessionID,
		entities.Turn{Role: entities.UserRole, Content: userText, Timestamp: now},
		entities.Turn{Role: entities.BotRole, Content: result.BotText, Timestamp: now},
	)
	if err != nil {
		r.logger.Warn("Failed to append session history",
			zap.String("sessionID", sessionID),
			zap.Error(err))
	}

	if r.archive != nil {
		err := r.archive.Record(ctx, entities.TurnRecord{
			SessionID: sessionID,
			Persona:   personaID,
			UserText:  userText,
			BotText:   result.BotText,
			Stage:     result.Stage,
			CreatedAt: now,
		})
		if err != nil {
			r.logger.Warn("Failed to archive exchange",
				zap.String("sessionID", sessionID),
				zap.Error(err))
		}
	}
}

func (r *Resolver) providerFor(persona entities.Persona) repositories.ChatProvider {
	if p, ok := r.providers[persona.Provider]; ok && p != nil {
		return p
	}
	for _, name := range []string{"openai", "gemini"} {
		if p, ok := r.providers[name]; ok && p != nil {
			return p
		}
	}
	return nil
}

// keywordFallback is the guaranteed bottom of the cascade.
func keywordFallback(persona entities.Persona, text string) string {
	q := normalize(text)
	for _, rule := range persona.Fallbacks {
		for _, kw := range rule.Keywords {
			if strings.Contains(q, kw) && len(rule.Responses) > 0 {
				return rule.Responses[len(q)%len(rule.Responses)]
			}
		}
	}

	if persona.DefaultFallback != "" {
		return persona.DefaultFallback
	}
	return "I'm sorry, I didn't quite catch that. Could you say it again?"
}

// isRepeatedQuestion checks whether the user already asked the same
// thing within their last few turns.
func isRepeatedQuestion(history []entities.Turn, text string) bool {
	q := normalize(text)
	if q == "" {
		return false
	}

	seen := 0
	for i := len(history) - 1; i >= 0 && seen < 3; i-- {
		if history[i].Role != entities.UserRole {
			continue
		}
		seen++
		if normalize(history[i].Content) == q {
			return true
		}
	}
	return false
}

func formatRAGContext(matches []entities.Match) string {
	var b strings.Builder
	b.WriteString("Known answers that may help:")
	for _, m := range matches {
		fmt.Fprintf(&b, "\n- Q: %s A: %s", m.Question, m.Answer)
	}
	return b.String()
}

func lastN(history []entities.Turn, n int) []entities.Turn {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}

func lastBotMessage(history []entities.Turn) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == entities.BotRole {
			return history[i].Content
		}
	}
	return ""
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
