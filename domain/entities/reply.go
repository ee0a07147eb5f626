package entities

// Stage identifies which resolver stage produced a reply.
type Stage string

const (
	StageContact   Stage = "contact"
	StageKnowledge Stage = "knowledge"
	StageRules     Stage = "rules"
	StageMeta      Stage = "meta"
	StageRetrieval Stage = "retrieval"
	StageLLM       Stage = "llm"
	StageFallback  Stage = "fallback"
)

// ReplyResult is the outcome of resolving one user input.
type ReplyResult struct {
	BotText string `json:"bot_text"`
	// BotAudio is base64 WAV (PCM16 mono 16kHz). Empty means text-only reply.
	BotAudio string `json:"bot_audio,omitempty"`
	Stage    Stage  `json:"stage"`
	// Suggestions are follow-up prompts a client may render as quick
	// replies, set by knowledge entries that carry them.
	Suggestions []string `json:"suggestions,omitempty"`
}

// Utterance is one span of user speech and its recognition result.
type Utterance struct {
	PCM      []byte
	Text     string
	Provider string
}
