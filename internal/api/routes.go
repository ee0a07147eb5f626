package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	pion "github.com/pion/webrtc/v3"
	"go.uber.org/zap"

	"github.com/prushal/voicegate/domain/repositories"
	"github.com/prushal/voicegate/internal/auth"
	"github.com/prushal/voicegate/internal/webrtc"
	"github.com/prushal/voicegate/internal/websocket"
	"github.com/prushal/voicegate/personas"
	"github.com/prushal/voicegate/usecase"
)

// Handler wires HTTP and WebSocket endpoints to the pipeline.
type Handler struct {
	hub      *websocket.Hub
	svc      *usecase.ConversationService
	tokens   *auth.Tokens
	archive  repositories.ConversationArchive
	registry *personas.Registry
	logger   *zap.Logger
}

func NewHandler(
	hub *websocket.Hub,
	svc *usecase.ConversationService,
	tokens *auth.Tokens,
	archive repositories.ConversationArchive,
	registry *personas.Registry,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		hub:      hub,
		svc:      svc,
		tokens:   tokens,
		archive:  archive,
		registry: registry,
		logger:   logger,
	}
}

// InitRoutes initializes all API routes
func (h *Handler) InitRoutes(e *echo.Echo) {
	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"status":  "ok",
			"service": "voicegate",
			"clients": h.hub.ClientCount(),
		})
	})

	// WebSocket endpoint; token required only when a secret is configured
	e.GET("/ws", h.websocketHandler)

	// WebRTC signaling
	e.POST("/webrtc/offer", h.webrtcOffer)

	// API v1 routes
	v1 := e.Group("/api/v1")
	v1.POST("/auth", h.issueToken)
	v1.GET("/personas", h.listPersonas)
	v1.GET("/conversations", h.getConversations)
}

// websocketHandler upgrades the connection. With auth enabled the
// session id comes from the validated token; otherwise a fresh uuid.
func (h *Handler) websocketHandler(c echo.Context) error {
	sessionID := uuid.New().String()

	if h.tokens.Enabled() {
		token := bearerToken(c)
		if token == "" {
			// Browsers cannot set headers on WebSocket dials.
			token = c.QueryParam("token")
		}
		if token == "" {
			h.logger.Warn("WebSocket connection rejected: missing token")
			return c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "missing_token",
				Message: "Token is required in Authorization header or token query parameter",
			})
		}

		claims, err := h.tokens.ValidateToken(token)
		if err != nil {
			h.logger.Warn("WebSocket connection rejected: invalid token", zap.Error(err))
			return c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "invalid_token",
				Message: "Invalid or expired token",
			})
		}
		if claims.SessionID != "" {
			sessionID = claims.SessionID
		}
	}

	return websocket.HandleWebSocket(h.hub, c, sessionID, h.logger)
}

// webrtcOffer answers a client SDP offer. The answer carries all
// gathered ICE candidates, so one round trip completes signaling.
func (h *Handler) webrtcOffer(c echo.Context) error {
	var req OfferRequest
	if err := c.Bind(&req); err != nil || req.SDP == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "SDP offer is required",
		})
	}

	sessionID := uuid.New().String()
	offer := pion.SessionDescription{Type: pion.SDPTypeOffer, SDP: req.SDP}

	_, answer, err := webrtc.NewPeer(h.svc, sessionID, offer, h.logger)
	if err != nil {
		h.logger.Error("Failed to answer WebRTC offer",
			zap.String("sessionID", sessionID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "webrtc_failed",
			Message: "Could not establish a peer connection",
		})
	}

	return c.JSON(http.StatusOK, OfferResponse{
		SDP:       answer.SDP,
		Type:      answer.Type.String(),
		SessionID: sessionID,
	})
}

// issueToken mints a client token. Disabled deployments reject the call
// rather than minting tokens nothing will verify.
func (h *Handler) issueToken(c echo.Context) error {
	if !h.tokens.Enabled() {
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:   "auth_disabled",
			Message: "Token auth is not configured on this server",
		})
	}

	var req AuthRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}
	if req.SessionID == "" {
		req.SessionID = uuid.New().String()
	}

	token, err := h.tokens.GenerateClientToken(req.SessionID)
	if err != nil {
		h.logger.Error("Failed to generate client token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "token_generation_failed",
			Message: "Failed to generate token",
		})
	}

	return c.JSON(http.StatusOK, AuthResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(24 * time.Hour),
		SessionID: req.SessionID,
	})
}

func (h *Handler) listPersonas(c echo.Context) error {
	return c.JSON(http.StatusOK, PersonasResponse{
		Default:  h.registry.Default().Persona.ID,
		Personas: h.registry.IDs(),
	})
}

// getConversations returns a session's archived history. Without an
// archive configured the endpoint reports the feature as absent.
func (h *Handler) getConversations(c echo.Context) error {
	if h.archive == nil {
		return c.JSON(http.StatusNotImplemented, ErrorResponse{
			Error:   "archive_disabled",
			Message: "Conversation history storage is not configured",
		})
	}

	sessionID := c.QueryParam("session_id")
	if sessionID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_session_id",
			Message: "session_id query parameter is required",
		})
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_limit",
				Message: "limit must be a non-negative integer",
			})
		}
		limit = n
	}

	turns, err := h.archive.BySession(c.Request().Context(), sessionID, limit)
	if err != nil {
		h.logger.Error("Failed to load conversations",
			zap.String("sessionID", sessionID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "archive_error",
			Message: "Failed to load conversation history",
		})
	}

	return c.JSON(http.StatusOK, ConversationsResponse{
		SessionID: sessionID,
		Turns:     turns,
	})
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get("Authorization")
	if len(header) > 7 && header[:7] == "Bearer " {
		return header[7:]
	}
	return ""
}
