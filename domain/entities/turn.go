package entities

import "time"

// Role identifies who produced a conversation turn.
type Role string

const (
	UserRole Role = "user"
	BotRole  Role = "bot"
)

// Turn is one message in a session's conversation history.
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// TurnRecord is a completed user/bot exchange as persisted to the archive.
type TurnRecord struct {
	SessionID string    `json:"session_id" bson:"session_id"`
	Persona   string    `json:"persona" bson:"persona"`
	UserText  string    `json:"user_text" bson:"user_text"`
	BotText   string    `json:"bot_text" bson:"bot_text"`
	Stage     Stage     `json:"stage" bson:"stage"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
