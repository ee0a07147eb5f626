package sessionstore

import (
	"context"
	"sync"

	"github.com/prushal/voicegate/domain/entities"
	"github.com/prushal/voicegate/domain/repositories"
)

// maxTurns caps stored history per session; older turns are dropped.
const maxTurns = 20

// Memory is the default SessionStore, an in-process map. Sessions are
// deleted on disconnect rather than expired.
type Memory struct {
	mu       sync.RWMutex
	history  map[string][]entities.Turn
	lastText map[string]string
}

var _ repositories.SessionStore = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		history:  make(map[string][]entities.Turn),
		lastText: make(map[string]string),
	}
}

func (m *Memory) History(ctx context.Context, sessionID string) ([]entities.Turn, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	turns := m.history[sessionID]
	out := make([]entities.Turn, len(turns))
	copy(out, turns)
	return out, nil
}

func (m *Memory) Append(ctx context.Context, sessionID string, turns ...entities.Turn) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	combined := append(m.history[sessionID], turns...)
	if len(combined) > maxTurns {
		combined = combined[len(combined)-maxTurns:]
	}
	m.history[sessionID] = combined
	return nil
}

func (m *Memory) LastText(ctx context.Context, sessionID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastText[sessionID], nil
}

func (m *Memory) SetLastText(ctx context.Context, sessionID string, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastText[sessionID] = text
	return nil
}

func (m *Memory) Delete(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.history, sessionID)
	delete(m.lastText, sessionID)
	return nil
}

func (m *Memory) Close() error {
	return nil
}
