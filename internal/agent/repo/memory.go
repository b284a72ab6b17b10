package repo

import (
	"context"
	"sync"
	"time"

	"github.com/voicedesk/server/internal/agent/model"
	errx "github.com/voicedesk/server/internal/core/error"
)

// MemorySessionRepository keeps sessions in process memory with the same
// compare-and-swap contract as the Redis repository. It backs tests and
// running the service without Redis.
type MemorySessionRepository struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
}

func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{sessions: map[string]*model.Session{}}
}

func (r *MemorySessionRepository) Get(_ context.Context, callID string) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.sessions[callID]
	if !ok {
		return nil, nil
	}
	return cloneSession(stored), nil
}

func (r *MemorySessionRepository) Put(_ context.Context, session *model.Session, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.sessions[session.CallID]
	if ok {
		if stored.Version != expectedVersion {
			return errx.ErrVersionConflict
		}
	} else if expectedVersion != 0 {
		return errx.ErrVersionConflict
	}

	next := cloneSession(session)
	next.Version = expectedVersion + 1
	next.UpdatedAt = time.Now().UTC()
	r.sessions[session.CallID] = next

	session.Version = next.Version
	return nil
}

func cloneSession(s *model.Session) *model.Session {
	c := *s
	c.Fields = make(map[string]string, len(s.Fields))
	for k, v := range s.Fields {
		c.Fields[k] = v
	}
	return &c
}

var _ model.SessionRepository = (*MemorySessionRepository)(nil)
