package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/prushal/voicegate/usecase"
)

// Client is a middleman between the websocket connection and the
// conversation pipeline. It implements usecase.Emitter for the way back.
type Client struct {
	hub  *Hub
	conn *websocket.Conn

	// Buffered channel of outbound frames.
	send chan WriteData

	sessionID string
	session   *usecase.Session
	logger    *zap.Logger
}

var _ usecase.Emitter = (*Client)(nil)

// Emit marshals one event into the JSON envelope and queues it.
func (c *Client) Emit(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", event, err)
	}
	frame, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		return fmt.Errorf("failed to marshal %s envelope: %w", event, err)
	}

	select {
	case c.send <- WriteData{MessageType: websocket.TextMessage, Payload: frame}:
		return nil
	default:
		return fmt.Errorf("send buffer full for session %s", c.sessionID)
	}
}

// readPump pumps messages from the websocket connection to the pipeline.
//
// The application runs readPump in a per-connection goroutine. The
// application ensures that there is at most one reader on a connection by
// executing all reads from this goroutine.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket read error",
					zap.String("sessionID", c.sessionID),
					zap.Error(err))
			}
			break
		}

		switch messageType {
		case websocket.BinaryMessage:
			// Raw PCM16 frames skip the JSON envelope entirely.
			c.hub.svc.HandleVoiceChunk(c.session, message, c)
		case websocket.TextMessage:
			c.handleEnvelope(message)
		}
	}
}

// writePump pumps frames from the send channel to the websocket
// connection, pinging on pingPeriod to keep the read deadline alive.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(frame.MessageType, frame.Payload); err != nil {
				c.logger.Error("WebSocket write error",
					zap.String("sessionID", c.sessionID),
					zap.Error(err))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleEnvelope dispatches one JSON frame. Malformed frames are logged
// and dropped; the connection stays up.
func (c *Client) handleEnvelope(raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.logger.Warn("Dropping malformed frame",
			zap.String("sessionID", c.sessionID),
			zap.Error(err))
		return
	}

	switch env.Event {
	case usecase.EventMessage:
		var payload messagePayload
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			c.logger.Warn("Dropping malformed message payload",
				zap.String("sessionID", c.sessionID),
				zap.Error(err))
			return
		}
		go c.hub.svc.HandleText(context.Background(), c.session, payload.Text, c)

	case usecase.EventVoiceChunk:
		pcm, err := DecodeVoiceChunk(env.Data)
		if err != nil {
			c.logger.Warn("Dropping malformed voice chunk",
				zap.String("sessionID", c.sessionID),
				zap.Error(err))
			return
		}
		c.hub.svc.HandleVoiceChunk(c.session, pcm, c)

	case usecase.EventEndVoice:
		go c.hub.svc.HandleEndVoice(context.Background(), c.session, c)

	case usecase.EventSelectBot:
		var payload selectBotPayload
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			c.logger.Warn("Dropping malformed select_bot payload",
				zap.String("sessionID", c.sessionID),
				zap.Error(err))
			return
		}
		c.hub.svc.SelectBot(c.session, payload.Bot, c)

	case usecase.EventPing:
		c.hub.svc.HandlePing(c)

	default:
		c.logger.Warn("Unknown event",
			zap.String("sessionID", c.sessionID),
			zap.String("event", env.Event))
	}
}
