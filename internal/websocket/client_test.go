package websocket

import (
	"encoding/json"
	"testing"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/prushal/voicegate/usecase"
)

func TestEmitFramesEnvelope(t *testing.T) {
	c := &Client{
		send:      make(chan WriteData, 1),
		sessionID: "s1",
		logger:    zap.NewNop(),
	}

	err := c.Emit(usecase.EventBotReply, usecase.BotReplyPayload{
		BotText: "hello",
		Stage:   "rules",
	})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}

	frame := <-c.send
	if frame.MessageType != websocket.TextMessage {
		t.Errorf("message type = %d, want text", frame.MessageType)
	}

	var env Envelope
	if err := json.Unmarshal(frame.Payload, &env); err != nil {
		t.Fatalf("frame is not a JSON envelope: %v", err)
	}
	if env.Event != usecase.EventBotReply {
		t.Errorf("event = %q, want %q", env.Event, usecase.EventBotReply)
	}

	var payload usecase.BotReplyPayload
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if payload.BotText != "hello" || payload.Stage != "rules" {
		t.Errorf("payload = %+v", payload)
	}
}

func TestEmitFullBufferDropsNotBlocks(t *testing.T) {
	c := &Client{
		send:      make(chan WriteData), // unbuffered, nothing reading
		sessionID: "s1",
		logger:    zap.NewNop(),
	}

	if err := c.Emit(usecase.EventPong, usecase.PongPayload{}); err == nil {
		t.Error("Emit on a full buffer returned nil, want error")
	}
}
