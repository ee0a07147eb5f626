package entities

// KnowledgeEntry is one intent in a persona's knowledge base.
// Immutable after load.
type KnowledgeEntry struct {
	Tag             string   `json:"tag"`
	Patterns        []string `json:"patterns"`
	Responses       []string `json:"responses"`
	FollowUp        string   `json:"follow_up,omitempty"`
	NextSuggestions []string `json:"next_suggestions,omitempty"`
}

// Match is a scored retrieval hit against the persona's Q&A records.
type Match struct {
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Score    float32 `json:"score"`
}
