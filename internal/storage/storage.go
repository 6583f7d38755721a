// Package storage defines the durable history contract for completed
// interview sessions.
package storage

import (
	"context"

	"github.com/Djalilu/interview-app/internal/domain"
)

// SessionStore is the durable mapping from session id to session record.
//
// History is best-effort, not authoritative state: implementations must
// degrade read or parse failures to an empty result rather than propagate
// them. Write failures are returned so the caller can log them, but callers
// never abort the in-memory flow on a failed write.
type SessionStore interface {
	// Upsert replaces the record with the same id, or appends it.
	// Idempotent under repeated calls with an unchanged record.
	Upsert(ctx context.Context, session *domain.InterviewSession) error

	// GetAll returns every stored session in storage order. Consumers are
	// responsible for sorting and filtering.
	GetAll(ctx context.Context) ([]domain.InterviewSession, error)

	// GetByID returns the session with the given id, or a not_found error.
	GetByID(ctx context.Context, id string) (*domain.InterviewSession, error)
}
