package scout

import (
	"context"
	"sync"

	"draft-scout-api/internal/domain/entity"
	"draft-scout-api/pkg/metrics"
)

// SessionManager keeps per-session conversation history behind a
// TurnStore. Sessions are keyed by ID and never shared across users.
type SessionManager struct {
	store TurnStore
}

// NewSessionManager creates a manager.
func NewSessionManager(store TurnStore) *SessionManager {
	return &SessionManager{store: store}
}

// History returns the session's turns, oldest first.
func (m *SessionManager) History(ctx context.Context, sessionID string) ([]entity.Turn, error) {
	return m.store.History(ctx, sessionID)
}

// AppendExchange records one completed question/answer pair. It is only
// called after the full answer exists, so an abandoned request leaves
// the session untouched.
func (m *SessionManager) AppendExchange(ctx context.Context, sessionID, query, answer string) error {
	err := m.store.Append(ctx, sessionID,
		entity.NewTurn(entity.RoleUser, query),
		entity.NewTurn(entity.RoleAssistant, answer),
	)
	if err != nil {
		return err
	}
	metrics.SessionTurns.WithLabelValues(string(entity.RoleUser)).Inc()
	metrics.SessionTurns.WithLabelValues(string(entity.RoleAssistant)).Inc()
	return nil
}

// Reset clears the session history.
func (m *SessionManager) Reset(ctx context.Context, sessionID string) error {
	return m.store.Reset(ctx, sessionID)
}

// MemoryTurnStore is an in-process TurnStore with a per-session turn
// cap. It backs tests and single-instance deployments without Redis.
type MemoryTurnStore struct {
	mu       sync.Mutex
	sessions map[string][]entity.Turn
	maxTurns int
}

// NewMemoryTurnStore creates a bounded in-memory store.
func NewMemoryTurnStore(maxTurns int) *MemoryTurnStore {
	return &MemoryTurnStore{
		sessions: make(map[string][]entity.Turn),
		maxTurns: maxTurns,
	}
}

// Append adds turns, evicting the oldest past the cap.
func (s *MemoryTurnStore) Append(ctx context.Context, sessionID string, turns ...entity.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		metrics.ActiveSessions.Inc()
	}
	buf := append(s.sessions[sessionID], turns...)
	if s.maxTurns > 0 && len(buf) > s.maxTurns {
		buf = buf[len(buf)-s.maxTurns:]
	}
	s.sessions[sessionID] = buf
	return nil
}

// History returns a copy of the session's turns.
func (s *MemoryTurnStore) History(ctx context.Context, sessionID string) ([]entity.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := s.sessions[sessionID]
	out := make([]entity.Turn, len(turns))
	copy(out, turns)
	return out, nil
}

// Reset drops the session.
func (s *MemoryTurnStore) Reset(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; ok {
		metrics.ActiveSessions.Dec()
	}
	delete(s.sessions, sessionID)
	return nil
}
