package entities

// FallbackRule maps trigger keywords to canned replies used when every
// other resolver stage has failed.
type FallbackRule struct {
	Keywords  []string `json:"keywords"`
	Responses []string `json:"responses"`
}

// Drivers are conversation pacing lines appended to replies that would
// otherwise leave the user hanging.
type Drivers struct {
	Intro   []string `json:"intro,omitempty"`
	Mid     []string `json:"mid,omitempty"`
	Closing []string `json:"closing,omitempty"`
}

// Persona is one chatbot personality: prompt text and knowledge data,
// not a distinct pipeline.
type Persona struct {
	ID           string   `json:"id"`
	BotName      string   `json:"bot_name"`
	SystemPrompt string   `json:"system_prompt"`
	ContactEmail string   `json:"contact_email,omitempty"`
	Provider     string   `json:"provider,omitempty"` // "openai" (default) or "gemini"
	Language     string   `json:"language,omitempty"`
	Welcome      string   `json:"welcome,omitempty"`
	Suggestions  []string `json:"suggestions,omitempty"`
	Drivers      Drivers  `json:"drivers,omitempty"`

	Fallbacks       []FallbackRule `json:"fallbacks,omitempty"`
	DefaultFallback string         `json:"default_fallback,omitempty"`

	Knowledge []KnowledgeEntry `json:"knowledge,omitempty"`
	// KnowledgeFile points at an external intents JSON file whose
	// entries join the inline ones.
	KnowledgeFile string `json:"knowledge_file,omitempty"`
	// RetrievalFile points at a JSON file of {question,answer,embedding}
	// records. Empty disables the retrieval stage for this persona.
	RetrievalFile string `json:"retrieval_file,omitempty"`
}
