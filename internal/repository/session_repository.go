package repository

import (
	"sync"

	"flight-rag/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionRepository is the process-wide session store: a lock-guarded map
// from session id to conversation history. Sessions are never persisted and
// never expire; they live until terminated or the process exits.
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*models.Session
	logger   *zap.Logger
}

func NewSessionRepository(logger *zap.Logger) *SessionRepository {
	return &SessionRepository{
		sessions: make(map[uuid.UUID]*models.Session),
		logger:   logger,
	}
}

// Resolve returns the session for the given id, creating a fresh one when the
// id is empty, malformed, or unknown. The returned history is a snapshot.
func (r *SessionRepository) Resolve(sessionID string) (uuid.UUID, []models.Turn) {
	if id, err := uuid.Parse(sessionID); err == nil {
		r.mu.RLock()
		session, ok := r.sessions[id]
		if ok {
			turns := make([]models.Turn, len(session.Turns))
			copy(turns, session.Turns)
			r.mu.RUnlock()
			return id, turns
		}
		r.mu.RUnlock()
	}

	id := uuid.New()
	r.mu.Lock()
	r.sessions[id] = &models.Session{ID: id}
	r.mu.Unlock()

	r.logger.Info("Session created", zap.String("session_id", id.String()))
	return id, nil
}

// AppendTurn records a question/answer exchange. Appending to a session that
// was terminated in the meantime is a no-op.
func (r *SessionRepository) AppendTurn(id uuid.UUID, turn models.Turn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session, ok := r.sessions[id]; ok {
		session.Turns = append(session.Turns, turn)
	}
}

// Terminate removes the session. Unknown ids are a no-op, so a stale second
// request for the same session cannot fail here.
func (r *SessionRepository) Terminate(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Len reports the number of live sessions.
func (r *SessionRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
