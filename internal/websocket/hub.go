package websocket

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/prushal/voicegate/usecase"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512 * 1024 // 512KB for audio chunks
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Browser clients connect from arbitrary origins.
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Hub maintains the set of active clients.
type Hub struct {
	// Registered clients by session id.
	clients map[string]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	mu sync.RWMutex

	svc    *usecase.ConversationService
	logger *zap.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(svc *usecase.ConversationService, logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		svc:        svc,
		logger:     logger,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.sessionID] = client
			h.mu.Unlock()
			h.logger.Info("Client registered", zap.String("sessionID", client.sessionID))

		case client := <-h.unregister:
			// A reconnect replaces the map entry; the replaced
			// client's unregister must not tear down the live one.
			h.mu.Lock()
			current, live := h.clients[client.sessionID]
			if live && current == client {
				delete(h.clients, client.sessionID)
				close(client.send)
			}
			h.mu.Unlock()
			if live && current == client {
				h.svc.CloseSession(client.session)
				h.logger.Info("Client unregistered", zap.String("sessionID", client.sessionID))
			}
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleWebSocket upgrades the request and runs the client pumps.
// sessionID comes from a validated token or a fresh uuid.
func HandleWebSocket(hub *Hub, c echo.Context, sessionID string, logger *zap.Logger) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", zap.Error(err))
		return err
	}

	client := &Client{
		hub:       hub,
		conn:      conn,
		send:      make(chan WriteData, 256),
		sessionID: sessionID,
		logger:    logger,
	}
	client.session = hub.svc.OpenSession(sessionID, client)

	client.hub.register <- client

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	go client.readPump()

	return nil
}
