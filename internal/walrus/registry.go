package walrus

import (
	"sync"

	"github.com/google/uuid"
)

// Registry holds live upload sessions by id. Sessions are in-memory only:
// a session's lifetime is bounded to one generate-to-mint cycle and it is
// discarded after mint or cancellation, never reused.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*UploadSession
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[uuid.UUID]*UploadSession),
	}
}

func (r *Registry) Create(storage Storage) *UploadSession {
	session := NewSession(storage)

	r.mu.Lock()
	r.sessions[session.ID] = session
	r.mu.Unlock()

	return session
}

func (r *Registry) Get(id uuid.UUID) (*UploadSession, bool) {
	r.mu.RLock()
	session, ok := r.sessions[id]
	r.mu.RUnlock()
	return session, ok
}

func (r *Registry) Delete(id uuid.UUID) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}
