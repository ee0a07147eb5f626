package resolver

import (
	"fmt"
	"strings"
	"time"
)

// smalltalk answers greetings, pleasantries, and clock/calendar questions
// without any external call. Returns "" when no rule applies.
func smalltalk(text, botName string, now time.Time) string {
	q := normalize(text)

	if reply := timeOfDayGreeting(q, now); reply != "" {
		return reply
	}

	if matchesAny(q, "hi", "hii", "hello", "hey", "hey there", "hello there", "hi there") {
		return fmt.Sprintf("Hello! I'm %s. How can I help you today?", botName)
	}

	if containsAny(q, "how are you", "how r u", "how are u", "how is it going", "how's it going") {
		return "I'm doing great, thank you for asking! How can I help you today?"
	}

	if matchesAny(q, "thanks", "thank you", "thank u", "thx", "thanks a lot", "thank you so much") {
		return "You're welcome! Is there anything else I can help you with?"
	}

	if matchesAny(q, "bye", "goodbye", "good bye", "see you", "see ya", "bye bye") {
		return "Goodbye! Have a great day!"
	}

	if containsAny(q, "what time is it", "current time", "tell me the time", "time right now") {
		return fmt.Sprintf("It's %s right now.", now.Format("3:04 PM"))
	}

	if reply := dateQuery(q, now); reply != "" {
		return reply
	}

	return ""
}

// timeOfDayGreeting validates a "good morning" style greeting against
// the actual clock, correcting the user when the period is wrong.
func timeOfDayGreeting(q string, now time.Time) string {
	var said string
	switch {
	case strings.HasPrefix(q, "good morning"):
		said = "morning"
	case strings.HasPrefix(q, "good afternoon"):
		said = "afternoon"
	case strings.HasPrefix(q, "good evening"):
		said = "evening"
	case strings.HasPrefix(q, "good night"):
		return "Good night! Sleep well, and talk to you soon."
	default:
		return ""
	}

	actual := dayPeriod(now)
	if said == actual {
		return fmt.Sprintf("Good %s! How can I help you today?", actual)
	}
	return fmt.Sprintf("It's actually the %s here, so good %s! How can I help you?", actual, actual)
}

func dayPeriod(now time.Time) string {
	switch h := now.Hour(); {
	case h < 12:
		return "morning"
	case h < 17:
		return "afternoon"
	default:
		return "evening"
	}
}

// dateQuery answers today/tomorrow/yesterday date and weekday questions.
func dateQuery(q string, now time.Time) string {
	asksDate := containsAny(q, "date", "what day")
	if !asksDate {
		return ""
	}

	const layout = "Monday, January 2, 2006"
	switch {
	case strings.Contains(q, "tomorrow"):
		return fmt.Sprintf("Tomorrow is %s.", now.AddDate(0, 0, 1).Format(layout))
	case strings.Contains(q, "yesterday"):
		return fmt.Sprintf("Yesterday was %s.", now.AddDate(0, 0, -1).Format(layout))
	case strings.Contains(q, "today") || strings.Contains(q, "what day is it") || strings.Contains(q, "what is the date"):
		return fmt.Sprintf("Today is %s.", now.Format(layout))
	}
	return ""
}

// meta answers "what can I ask you" style questions with the persona's
// suggested topics.
func meta(text string, botName string, suggestions []string) string {
	q := normalize(text)
	if !containsAny(q,
		"what can i ask",
		"what can you do",
		"what do you know",
		"what can you help",
		"what are you for",
		"who are you") {
		return ""
	}

	if len(suggestions) == 0 {
		return fmt.Sprintf("I'm %s. Ask me anything and I'll do my best to help!", botName)
	}
	return fmt.Sprintf("I'm %s. You can ask me things like: %s", botName, strings.Join(suggestions, " | "))
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Trim(s, "?!.,:;")
	return strings.Join(strings.Fields(s), " ")
}

func matchesAny(q string, phrases ...string) bool {
	for _, p := range phrases {
		if q == p {
			return true
		}
	}
	return false
}

func containsAny(q string, phrases ...string) bool {
	for _, p := range phrases {
		if strings.Contains(q, p) {
			return true
		}
	}
	return false
}
