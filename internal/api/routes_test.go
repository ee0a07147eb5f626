package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/prushal/voicegate/adapters/sessionstore"
	"github.com/prushal/voicegate/adapters/stt"
	"github.com/prushal/voicegate/adapters/tts"
	"github.com/prushal/voicegate/domain/entities"
	"github.com/prushal/voicegate/domain/repositories"
	"github.com/prushal/voicegate/internal/auth"
	"github.com/prushal/voicegate/internal/websocket"
	"github.com/prushal/voicegate/personas"
	"github.com/prushal/voicegate/resolver"
	"github.com/prushal/voicegate/usecase"
)

type stubArchive struct {
	turns []entities.TurnRecord
	err   error
}

func (a *stubArchive) Record(ctx context.Context, rec entities.TurnRecord) error {
	a.turns = append(a.turns, rec)
	return nil
}

func (a *stubArchive) BySession(ctx context.Context, sessionID string, limit int) ([]entities.TurnRecord, error) {
	return a.turns, a.err
}

func newTestHandler(t *testing.T, secret string, archive repositories.ConversationArchive) (*Handler, *echo.Echo) {
	t.Helper()
	logger := zap.NewNop()

	registry, err := personas.NewRegistry(personas.Options{DefaultID: "gmtt"}, logger)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	store := sessionstore.NewMemory()
	svc := usecase.NewConversationService(
		stt.NewChain(nil, nil, 100, logger),
		tts.NewChain(nil, nil, logger),
		resolver.New(store, nil, nil, logger),
		registry,
		store,
		logger,
	)
	hub := websocket.NewHub(svc, logger)

	h := NewHandler(hub, svc, auth.NewTokens(secret), archive, registry, logger)
	e := echo.New()
	h.InitRoutes(e)
	return h, e
}

func TestHealthEndpoint(t *testing.T) {
	_, e := newTestHandler(t, "", nil)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %v, want ok", body["status"])
	}
}

func TestIssueTokenRoundTrip(t *testing.T) {
	h, e := newTestHandler(t, "test-secret", nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth",
		strings.NewReader(`{"session_id":"s42"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp AuthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("body: %v", err)
	}
	if resp.SessionID != "s42" {
		t.Errorf("session_id = %q, want s42", resp.SessionID)
	}

	claims, err := h.tokens.ValidateToken(resp.Token)
	if err != nil {
		t.Fatalf("issued token does not validate: %v", err)
	}
	if claims.SessionID != "s42" {
		t.Errorf("token session = %q, want s42", claims.SessionID)
	}
}

func TestIssueTokenWhenAuthDisabled(t *testing.T) {
	_, e := newTestHandler(t, "", nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestListPersonas(t *testing.T) {
	_, e := newTestHandler(t, "", nil)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/personas", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp PersonasResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("body: %v", err)
	}
	if resp.Default != "gmtt" {
		t.Errorf("default = %q, want gmtt", resp.Default)
	}
	if len(resp.Personas) == 0 {
		t.Error("no personas listed")
	}
}

func TestGetConversations(t *testing.T) {
	archive := &stubArchive{turns: []entities.TurnRecord{
		{SessionID: "s1", UserText: "hi", BotText: "hello"},
	}}
	_, e := newTestHandler(t, "", archive)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/conversations?session_id=s1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp ConversationsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("body: %v", err)
	}
	if len(resp.Turns) != 1 || resp.Turns[0].UserText != "hi" {
		t.Errorf("turns = %+v", resp.Turns)
	}
}

func TestGetConversationsValidation(t *testing.T) {
	_, e := newTestHandler(t, "", &stubArchive{})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/conversations", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing session_id status = %d, want 400", rec.Code)
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/conversations?session_id=s1&limit=nope", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit status = %d, want 400", rec.Code)
	}
}

func TestGetConversationsWithoutArchive(t *testing.T) {
	_, e := newTestHandler(t, "", nil)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/conversations?session_id=s1", nil))
	if rec.Code != http.StatusNotImplemented {
		t.Errorf("status = %d, want 501", rec.Code)
	}
}

func TestWebSocketRejectsMissingToken(t *testing.T) {
	_, e := newTestHandler(t, "test-secret", nil)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
