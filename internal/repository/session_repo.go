package repository

import (
	"context"
	"errors"
	"fmt"

	"smsnotes/internal/model"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionRepository defines operations for session rows
type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) error
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// Delete removes a session row; deleting an absent row is not an error.
	Delete(ctx context.Context, id string) error
	// DeleteAllForUser removes every session bound to username.
	DeleteAllForUser(ctx context.Context, username string) error
}

type sessionRepository struct {
	db PgxPool
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db PgxPool) SessionRepository {
	return &sessionRepository{db: db}
}

// Create inserts a session row bound to an existing account
func (r *sessionRepository) Create(ctx context.Context, session *model.Session) error {
	sql := `INSERT INTO sessions (id, username, expires_at, created_at) VALUES ($1, $2, $3, $4)`
	_, err := r.db.Exec(ctx, sql, session.ID, session.Username, session.ExpiresAt, session.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// FindByID retrieves a session row by its id
func (r *sessionRepository) FindByID(ctx context.Context, id string) (*model.Session, error) {
	session := &model.Session{}
	sql := `SELECT id, username, expires_at, created_at FROM sessions WHERE id = $1`
	err := r.db.QueryRow(ctx, sql, id).Scan(&session.ID, &session.Username, &session.ExpiresAt, &session.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return session, nil
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (r *sessionRepository) DeleteAllForUser(ctx context.Context, username string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE username = $1`, username); err != nil {
		return fmt.Errorf("failed to delete sessions for user: %w", err)
	}
	return nil
}
