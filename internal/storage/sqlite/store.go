// Package sqlite is the SQLite implementation of the session store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/Djalilu/interview-app/internal/domain"
	"github.com/Djalilu/interview-app/internal/storage"
)

// Store persists each session aggregate as a single JSON record row. The
// indexed columns exist only for filtering; the record column is the source
// of truth.
type Store struct {
	db     *sqlx.DB
	logger *slog.Logger
}

var _ storage.SessionStore = (*Store)(nil)

// New opens (or creates) the database at dbPath and initializes the schema.
func New(dbPath string, logger *slog.Logger) (*Store, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	store := &Store{db: db, logger: logger}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *Store) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			job_role TEXT NOT NULL,
			company TEXT NOT NULL,
			language TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			record TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_job_role ON sessions(job_role)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_created ON sessions(created_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	return nil
}

// Upsert writes the session as a whole-record replacement keyed by id.
func (s *Store) Upsert(ctx context.Context, session *domain.InterviewSession) error {
	record, err := json.Marshal(session)
	if err != nil {
		return domain.ErrStorage("failed to marshal session").WithCause(err)
	}

	query := `INSERT INTO sessions (id, job_role, company, language, created_at, record)
	          VALUES (?, ?, ?, ?, ?, ?)
	          ON CONFLICT(id) DO UPDATE SET
	            job_role = excluded.job_role,
	            company = excluded.company,
	            language = excluded.language,
	            created_at = excluded.created_at,
	            record = excluded.record`

	if _, err := s.db.ExecContext(ctx, query,
		session.ID, session.JobRole, session.Company, session.Language, session.Date, string(record)); err != nil {
		return domain.ErrStorage("failed to upsert session").WithCause(err)
	}

	return nil
}

// GetAll returns every stored session in insertion order. A query or decode
// failure degrades to an empty history.
func (s *Store) GetAll(ctx context.Context) ([]domain.InterviewSession, error) {
	var records []string
	if err := s.db.SelectContext(ctx, &records, `SELECT record FROM sessions ORDER BY rowid`); err != nil {
		s.logger.Warn("history read failed, returning empty", slog.String("error", err.Error()))
		return nil, nil
	}

	sessions := make([]domain.InterviewSession, 0, len(records))
	for _, record := range records {
		var session domain.InterviewSession
		if err := json.Unmarshal([]byte(record), &session); err != nil {
			s.logger.Warn("skipping undecodable session record", slog.String("error", err.Error()))
			continue
		}
		sessions = append(sessions, session)
	}

	return sessions, nil
}

// GetByID returns the session with the given id.
func (s *Store) GetByID(ctx context.Context, id string) (*domain.InterviewSession, error) {
	var record string
	err := s.db.GetContext(ctx, &record, `SELECT record FROM sessions WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound(fmt.Sprintf("session %s not found", id))
	}
	if err != nil {
		return nil, domain.ErrNotFound(fmt.Sprintf("session %s not found", id)).WithCause(err)
	}

	var session domain.InterviewSession
	if err := json.Unmarshal([]byte(record), &session); err != nil {
		return nil, domain.ErrNotFound(fmt.Sprintf("session %s not found", id)).WithCause(err)
	}

	return &session, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
