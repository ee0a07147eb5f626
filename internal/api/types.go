package api

import (
	"time"

	"github.com/prushal/voicegate/domain/entities"
)

// AuthRequest asks for a client token bound to a session.
type AuthRequest struct {
	SessionID string `json:"session_id"`
}

// AuthResponse carries the issued token.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	SessionID string    `json:"session_id"`
}

// OfferRequest carries a client's SDP offer for a WebRTC connection.
type OfferRequest struct {
	SDP  string `json:"sdp"`
	Type string `json:"type"`
}

// OfferResponse carries the server's SDP answer.
type OfferResponse struct {
	SDP       string `json:"sdp"`
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
}

// PersonasResponse lists the selectable bots.
type PersonasResponse struct {
	Default  string   `json:"default"`
	Personas []string `json:"personas"`
}

// ConversationsResponse returns a session's archived exchanges in
// chronological order.
type ConversationsResponse struct {
	SessionID string                `json:"session_id"`
	Turns     []entities.TurnRecord `json:"turns"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
