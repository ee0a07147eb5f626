package usecase

// Wire event names shared by the WebSocket and WebRTC transports.
const (
	EventServerInfo     = "server_info"
	EventMessage        = "message"
	EventVoiceChunk     = "voice_chunk"
	EventEndVoice       = "end_voice"
	EventSelectBot      = "select_bot"
	EventPing           = "ping"
	EventPong           = "pong"
	EventBotThinking    = "bot_thinking"
	EventPartialText    = "partial_text"
	EventBotReply       = "bot_reply"
	EventMessageIgnored = "message_ignored"
	EventError          = "error"
	EventRobotSignal    = "robot_signal"
)

// Robot display actions, cosmetic hints for a physical companion.
const (
	SignalListening = "listening"
	SignalThinking  = "thinking"
	SignalSpeaking  = "speaking"
	SignalIdle      = "idle"
)

// Emitter delivers one event to the one client a session belongs to.
// Implementations marshal the payload onto their transport.
type Emitter interface {
	Emit(event string, payload any) error
}

// ServerInfoPayload greets a client on connect.
type ServerInfoPayload struct {
	SampleRate int    `json:"sample_rate"`
	Status     string `json:"status"`
	Bot        string `json:"bot"`
	Welcome    string `json:"welcome,omitempty"`
}

// BotThinkingPayload signals that a reply is being computed.
type BotThinkingPayload struct {
	Status   string `json:"status"`
	UserText string `json:"user_text,omitempty"`
}

// PartialTextPayload carries interim or final transcription text.
type PartialTextPayload struct {
	Text string `json:"text"`
}

// BotReplyPayload is the final reply with optional audio.
type BotReplyPayload struct {
	UserText string `json:"user_text,omitempty"`
	BotText  string `json:"bot_text"`
	BotAudio string `json:"bot_audio,omitempty"`
	Stage    string `json:"stage,omitempty"`
	// Suggestions are quick-reply prompts from the matched knowledge
	// entry.
	Suggestions []string `json:"suggestions,omitempty"`
}

// MessageIgnoredPayload explains why an input produced no reply.
type MessageIgnoredPayload struct {
	Reason       string `json:"reason"`
	OriginalText string `json:"original_text,omitempty"`
}

// ErrorPayload carries a human-readable failure reason.
type ErrorPayload struct {
	Message string `json:"message"`
}

// RobotSignalPayload hints a display companion about pipeline state.
type RobotSignalPayload struct {
	Action string `json:"action"`
}

// PongPayload answers a client ping.
type PongPayload struct {
	Timestamp int64 `json:"timestamp"`
}
