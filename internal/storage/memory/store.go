// Package memory is an in-memory session store used in tests and when no
// storage path is configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/Djalilu/interview-app/internal/domain"
	"github.com/Djalilu/interview-app/internal/storage"
)

// Store keeps sessions in insertion order, guarded by a mutex.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*domain.InterviewSession
	order    []string
}

var _ storage.SessionStore = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{sessions: make(map[string]*domain.InterviewSession)}
}

// clone deep-copies a session so stored records and returned records never
// share backing arrays with the caller.
func clone(session *domain.InterviewSession) *domain.InterviewSession {
	out := *session
	if session.Messages != nil {
		out.Messages = append([]domain.Message(nil), session.Messages...)
	}
	if session.QuestionsAndAnswers != nil {
		out.QuestionsAndAnswers = append([]domain.Answer(nil), session.QuestionsAndAnswers...)
	}
	if session.FeedbackReport != nil {
		report := *session.FeedbackReport
		out.FeedbackReport = &report
	}
	return &out
}

// Upsert replaces the record with the same id, or appends it.
func (s *Store) Upsert(_ context.Context, session *domain.InterviewSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.ID]; !ok {
		s.order = append(s.order, session.ID)
	}
	s.sessions[session.ID] = clone(session)
	return nil
}

// GetAll returns the stored sessions in insertion order.
func (s *Store) GetAll(_ context.Context) ([]domain.InterviewSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.InterviewSession, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *clone(s.sessions[id]))
	}
	return out, nil
}

// GetByID returns the session with the given id.
func (s *Store) GetByID(_ context.Context, id string) (*domain.InterviewSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound(fmt.Sprintf("session %s not found", id))
	}
	return clone(session), nil
}
