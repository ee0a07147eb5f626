package resolver

import (
	"context"
	"strings"

	"github.com/prushal/voicegate/domain/entities"
	"github.com/prushal/voicegate/domain/repositories"
)

// endsWithQuestion reports whether a reply already invites an answer.
func endsWithQuestion(reply string) bool {
	return strings.HasSuffix(strings.TrimSpace(reply), "?")
}

// wasFollowUp asks the provider a yes/no classification of whether the
// previous bot message already asked the user something. Errors count
// as "no" so pacing degrades gracefully.
func wasFollowUp(ctx context.Context, provider repositories.ChatProvider, prevBot string) bool {
	if provider == nil || strings.TrimSpace(prevBot) == "" {
		return false
	}

	answer, err := provider.Complete(ctx,
		"Answer with exactly one word, yes or no.",
		nil,
		"Does this message end by asking the user a question or inviting a reply? Message: "+prevBot)
	if err != nil {
		return false
	}

	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(answer)), "yes")
}

// pickDriver chooses a conversation driver line by how deep the
// conversation is. Returns "" when the persona has none for the phase.
func pickDriver(drivers entities.Drivers, historyLen int) string {
	var pool []string
	switch {
	case historyLen < 2:
		pool = drivers.Intro
	case historyLen < 12:
		pool = drivers.Mid
	default:
		pool = drivers.Closing
	}

	if len(pool) == 0 {
		return ""
	}
	return pool[historyLen%len(pool)]
}
