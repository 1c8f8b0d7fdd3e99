package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"smsnotes/internal/model"
	"smsnotes/internal/repository"
	"smsnotes/internal/utils"

	"github.com/google/uuid"
)

// ErrInvalidSession indicates a token that is unknown, revoked, expired, or
// bound to an account that no longer exists.
var ErrInvalidSession = errors.New("invalid or expired session")

// SessionManager issues, validates, and revokes session tokens. A token is a
// signed JWT wrapping a random session id; the id must resolve to a stored
// session row and the row's account must still be live, so revocation and
// account deletion both kill outstanding tokens immediately.
type SessionManager struct {
	sessions repository.SessionRepository
	users    repository.UserRepository
	jwtUtil  *utils.JWTUtil
}

// NewSessionManager creates a new SessionManager
func NewSessionManager(sessions repository.SessionRepository, users repository.UserRepository, jwtUtil *utils.JWTUtil) *SessionManager {
	return &SessionManager{
		sessions: sessions,
		users:    users,
		jwtUtil:  jwtUtil,
	}
}

// Issue creates a session for username and returns its token
func (m *SessionManager) Issue(ctx context.Context, username string) (string, error) {
	session := &model.Session{
		ID:        uuid.NewString(),
		Username:  username,
		ExpiresAt: time.Now().Add(m.jwtUtil.Expiration()),
		CreatedAt: time.Now(),
	}
	if err := m.sessions.Create(ctx, session); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	token, err := m.jwtUtil.GenerateToken(session.ID, username)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, nil
}

// Validate resolves a token to the username it is bound to. It fails with
// ErrInvalidSession if the token does not verify, the session row is gone,
// the session is past its expiry, or the bound account no longer exists.
func (m *SessionManager) Validate(ctx context.Context, token string) (string, error) {
	claims, err := m.jwtUtil.ValidateToken(token)
	if err != nil {
		return "", ErrInvalidSession
	}

	session, err := m.sessions.FindByID(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return "", ErrInvalidSession
		}
		return "", fmt.Errorf("failed to look up session: %w", err)
	}

	if time.Now().After(session.ExpiresAt) {
		_ = m.sessions.Delete(ctx, session.ID)
		return "", ErrInvalidSession
	}

	if _, err := m.users.FindByUsername(ctx, session.Username); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrInvalidSession
		}
		return "", fmt.Errorf("failed to look up session user: %w", err)
	}

	return session.Username, nil
}

// Revoke deletes the session behind token. Unknown, expired, or malformed
// tokens are a no-op success, so logout is idempotent.
func (m *SessionManager) Revoke(ctx context.Context, token string) error {
	claims, err := m.jwtUtil.ValidateToken(token)
	if err != nil {
		return nil
	}
	return m.sessions.Delete(ctx, claims.SessionID)
}

// RevokeAllFor deletes every session bound to username. Account deletion and
// account update both use it to invalidate stale sessions.
func (m *SessionManager) RevokeAllFor(ctx context.Context, username string) error {
	return m.sessions.DeleteAllForUser(ctx, username)
}
