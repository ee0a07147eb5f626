package websocket

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Envelope is the JSON frame exchanged over text messages in both
// directions: {"event": "...", "data": {...}}.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// WriteData is one outbound frame for the write pump.
type WriteData struct {
	MessageType int
	Payload     []byte
}

type messagePayload struct {
	Text string `json:"text"`
}

type selectBotPayload struct {
	Bot string `json:"bot"`
}

// DecodeVoiceChunk extracts PCM bytes from a voice_chunk data field.
// Clients send audio three ways: a base64 string, a JSON array of
// sample bytes, or an object wrapping either under "chunk".
func DecodeVoiceChunk(data json.RawMessage) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty voice_chunk data")
	}

	switch data[0] {
	case '"':
		var encoded string
		if err := json.Unmarshal(data, &encoded); err != nil {
			return nil, fmt.Errorf("failed to parse voice_chunk string: %w", err)
		}
		pcm, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("failed to decode voice_chunk base64: %w", err)
		}
		return pcm, nil

	case '[':
		var samples []int
		if err := json.Unmarshal(data, &samples); err != nil {
			return nil, fmt.Errorf("failed to parse voice_chunk array: %w", err)
		}
		pcm := make([]byte, len(samples))
		for i, s := range samples {
			if s < 0 || s > 255 {
				return nil, fmt.Errorf("voice_chunk byte %d out of range: %d", i, s)
			}
			pcm[i] = byte(s)
		}
		return pcm, nil

	case '{':
		var wrapped struct {
			Chunk json.RawMessage `json:"chunk"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, fmt.Errorf("failed to parse voice_chunk object: %w", err)
		}
		if len(wrapped.Chunk) == 0 {
			return nil, fmt.Errorf("voice_chunk object missing chunk field")
		}
		return DecodeVoiceChunk(wrapped.Chunk)
	}

	return nil, fmt.Errorf("unsupported voice_chunk shape")
}
