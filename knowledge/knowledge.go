// Package knowledge loads a persona's intent file and matches user text
// against it: exact phrase, then substring containment, then fuzzy
// similarity.
package knowledge

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/prushal/voicegate/domain/entities"
)

// FuzzyThreshold is the minimum similarity ratio (0-100) for a fuzzy hit.
const FuzzyThreshold = 80

// Base is an immutable set of knowledge entries, safe for concurrent reads.
type Base struct {
	entries []entities.KnowledgeEntry
}

type intentsFile struct {
	FAQs struct {
		Intents []struct {
			Tag             string   `json:"tag"`
			Patterns        []string `json:"patterns"`
			Response        string   `json:"response"`
			Responses       []string `json:"responses"`
			FollowUp        string   `json:"follow_up"`
			NextSuggestions []string `json:"next_suggestions"`
		} `json:"intents"`
	} `json:"faqs"`
}

// New builds a Base from already-loaded entries.
func New(entries []entities.KnowledgeEntry) *Base {
	return &Base{entries: entries}
}

// Load reads an intents JSON file. Both the single "response" and the
// plural "responses" field shapes are accepted.
func Load(path string) (*Base, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read knowledge file: %w", err)
	}
	return Parse(data)
}

// Parse builds a Base from intents JSON bytes.
func Parse(data []byte) (*Base, error) {
	var file intentsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse knowledge file: %w", err)
	}

	entries := make([]entities.KnowledgeEntry, 0, len(file.FAQs.Intents))
	for _, intent := range file.FAQs.Intents {
		responses := intent.Responses
		if len(responses) == 0 && intent.Response != "" {
			responses = []string{intent.Response}
		}
		entries = append(entries, entities.KnowledgeEntry{
			Tag:             intent.Tag,
			Patterns:        intent.Patterns,
			Responses:       responses,
			FollowUp:        intent.FollowUp,
			NextSuggestions: intent.NextSuggestions,
		})
	}

	return &Base{entries: entries}, nil
}

// Len returns the number of entries.
func (b *Base) Len() int {
	return len(b.entries)
}

// Entries returns the loaded entries.
func (b *Base) Entries() []entities.KnowledgeEntry {
	return b.entries
}

// Match finds the entry for user text: exact → substring → fuzzy ratio
// ≥ FuzzyThreshold, first-highest score wins on ties.
func (b *Base) Match(text string) (*entities.KnowledgeEntry, bool) {
	query := normalize(text)
	if query == "" {
		return nil, false
	}

	// Exact phrase.
	for i := range b.entries {
		for _, p := range b.entries[i].Patterns {
			if normalize(p) == query {
				return &b.entries[i], true
			}
		}
	}

	// Substring containment. A pattern inside the query always counts;
	// the query inside a pattern only counts for multi-word queries, so
	// short inputs like "hi" cannot hit the middle of a pattern word.
	queryWords := len(strings.Fields(query))
	for i := range b.entries {
		for _, p := range b.entries[i].Patterns {
			np := normalize(p)
			if np == "" {
				continue
			}
			if strings.Contains(query, np) {
				return &b.entries[i], true
			}
			if queryWords >= 3 && strings.Contains(np, query) {
				return &b.entries[i], true
			}
		}
	}

	// Fuzzy similarity.
	var (
		best      *entities.KnowledgeEntry
		bestScore int
	)
	for i := range b.entries {
		for _, p := range b.entries[i].Patterns {
			score := Ratio(query, normalize(p))
			if score >= FuzzyThreshold && score > bestScore {
				best = &b.entries[i]
				bestScore = score
			}
		}
	}
	if best != nil {
		return best, true
	}

	return nil, false
}

// Reply picks one of an entry's canned responses, appending its
// follow-up line when present.
func (b *Base) Reply(entry *entities.KnowledgeEntry) string {
	if entry == nil || len(entry.Responses) == 0 {
		return ""
	}

	reply := entry.Responses[rand.Intn(len(entry.Responses))]
	if entry.FollowUp != "" {
		reply += " " + entry.FollowUp
	}
	return reply
}

// Ratio is the fuzzywuzzy-style similarity ratio of two strings:
// 100 * (len(a)+len(b) - distance) / (len(a)+len(b)).
func Ratio(a, b string) int {
	lenSum := len([]rune(a)) + len([]rune(b))
	if lenSum == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 100 * (lenSum - dist) / lenSum
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Trim(s, "?!.,:;")
	return strings.Join(strings.Fields(s), " ")
}
