package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"smsnotes/internal/model"
	"smsnotes/internal/repository"
	"smsnotes/internal/sms"
	"smsnotes/internal/utils"
)

// ErrInvalidCredentials covers both a missing account and a wrong password,
// so login failures do not reveal which usernames exist.
var ErrInvalidCredentials = errors.New("invalid username or password")

// ErrInvalidResetToken indicates a password-reset token that is malformed,
// expired, or not a reset token at all.
var ErrInvalidResetToken = errors.New("invalid or expired reset token")

// AuthService exposes the account state machine: register, login, logout,
// update, delete. Register and Login move a client to Authenticated by
// returning a session token; Logout and Delete move it back to Anonymous.
type AuthService interface {
	Register(ctx context.Context, username, password, verify, phone string) (*model.User, string, error)
	Login(ctx context.Context, username, password string) (*model.User, string, error)
	Logout(ctx context.Context, token string) error
	Update(ctx context.Context, token, username, password, verify, phone string) (*model.User, string, error)
	Delete(ctx context.Context, token string) error
	ValidateSession(ctx context.Context, token string) (*model.User, error)
	ForgotPassword(ctx context.Context, username string) error
	ResetPassword(ctx context.Context, resetToken, password, verify string) (*model.User, string, error)
}

type authService struct {
	users    repository.UserRepository
	sessions *SessionManager
	jwtUtil  *utils.JWTUtil
	sender   sms.Sender
}

// NewAuthService creates a new AuthService
func NewAuthService(users repository.UserRepository, sessions *SessionManager, jwtUtil *utils.JWTUtil, sender sms.Sender) AuthService {
	return &authService{
		users:    users,
		sessions: sessions,
		jwtUtil:  jwtUtil,
		sender:   sender,
	}
}

// Register validates the submitted fields, creates the account, and issues a
// session. Registration implies login. Validation and uniqueness failures
// abort with no state change.
func (s *authService) Register(ctx context.Context, username, password, verify, phone string) (*model.User, string, error) {
	if err := utils.ValidatePassword(password, verify); err != nil {
		return nil, "", err
	}
	normPhone, err := utils.ValidatePhone(phone)
	if err != nil {
		return nil, "", err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:     username,
		Phone:        normPhone,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.sessions.Issue(ctx, user.Username)
	if err != nil {
		return nil, "", fmt.Errorf("user created, but failed to issue session: %w", err)
	}
	return user, token, nil
}

// Login compares the password against the stored hash and issues a session.
// A missing account and a wrong password fail identically.
func (s *authService) Login(ctx context.Context, username, password string) (*model.User, string, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to find user: %w", err)
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.sessions.Issue(ctx, user.Username)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue session: %w", err)
	}
	return user, token, nil
}

// Logout revokes the session. Already-invalid tokens are a no-op success.
func (s *authService) Logout(ctx context.Context, token string) error {
	return s.sessions.Revoke(ctx, token)
}

// Update rewrites the authenticated account. Empty fields keep their current
// value; provided fields are validated exactly as in Register, and the
// uniqueness checks exclude the account itself. On success every session of
// the old identity is revoked and a fresh token is issued for the updated
// account, so the caller stays authenticated under the new credentials.
func (s *authService) Update(ctx context.Context, token, username, password, verify, phone string) (*model.User, string, error) {
	current, err := s.ValidateSession(ctx, token)
	if err != nil {
		return nil, "", err
	}

	if password != "" || verify != "" {
		if err := utils.ValidatePassword(password, verify); err != nil {
			return nil, "", err
		}
	}

	updated := *current
	if username != "" {
		updated.Username = username
	}
	if password != "" {
		hash, err := utils.HashPassword(password)
		if err != nil {
			return nil, "", fmt.Errorf("failed to hash password: %w", err)
		}
		updated.PasswordHash = hash
	}
	if phone != "" {
		normPhone, err := utils.ValidatePhone(phone)
		if err != nil {
			return nil, "", err
		}
		updated.Phone = normPhone
	}

	if err := s.users.Update(ctx, current.Username, &updated); err != nil {
		return nil, "", fmt.Errorf("failed to update user: %w", err)
	}

	// The old identity's tokens are dead from here on; hand back a fresh one.
	if err := s.sessions.RevokeAllFor(ctx, updated.Username); err != nil {
		return nil, "", fmt.Errorf("failed to revoke sessions: %w", err)
	}
	newToken, err := s.sessions.Issue(ctx, updated.Username)
	if err != nil {
		return nil, "", fmt.Errorf("user updated, but failed to issue session: %w", err)
	}
	return &updated, newToken, nil
}

// Delete removes the authenticated account and revokes every session bound
// to it.
func (s *authService) Delete(ctx context.Context, token string) error {
	user, err := s.ValidateSession(ctx, token)
	if err != nil {
		return err
	}

	if err := s.users.Delete(ctx, user.Username); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if err := s.sessions.RevokeAllFor(ctx, user.Username); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}
	return nil
}

// ForgotPassword texts a short-lived reset token to the account's phone. The
// phone is the second factor here: only whoever holds it can finish the reset.
func (s *authService) ForgotPassword(ctx context.Context, username string) error {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return err
	}

	resetToken, err := s.jwtUtil.GenerateResetToken(user.Username)
	if err != nil {
		return fmt.Errorf("failed to create reset token: %w", err)
	}

	msg := "Use this code to reset your password: " + resetToken
	if err := s.sender.Send(ctx, user.Phone, msg); err != nil {
		return fmt.Errorf("failed to send reset sms: %w", err)
	}
	return nil
}

// ResetPassword sets a new password for the account the reset token was
// issued for, revokes its sessions, and logs the caller in.
func (s *authService) ResetPassword(ctx context.Context, resetToken, password, verify string) (*model.User, string, error) {
	if err := utils.ValidatePassword(password, verify); err != nil {
		return nil, "", err
	}

	username, err := s.jwtUtil.ValidateResetToken(resetToken)
	if err != nil {
		return nil, "", ErrInvalidResetToken
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, "", ErrInvalidResetToken
		}
		return nil, "", fmt.Errorf("failed to find user: %w", err)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}
	updated := *user
	updated.PasswordHash = hash
	if err := s.users.Update(ctx, user.Username, &updated); err != nil {
		return nil, "", fmt.Errorf("failed to update password: %w", err)
	}

	// Whoever held the old password loses their sessions along with it.
	if err := s.sessions.RevokeAllFor(ctx, updated.Username); err != nil {
		return nil, "", fmt.Errorf("failed to revoke sessions: %w", err)
	}
	token, err := s.sessions.Issue(ctx, updated.Username)
	if err != nil {
		return nil, "", fmt.Errorf("password reset, but failed to issue session: %w", err)
	}
	return &updated, token, nil
}

// ValidateSession resolves a token to the live account it is bound to
func (s *authService) ValidateSession(ctx context.Context, token string) (*model.User, error) {
	username, err := s.sessions.Validate(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("failed to find session user: %w", err)
	}
	return user, nil
}
