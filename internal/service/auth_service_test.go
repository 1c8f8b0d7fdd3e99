package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"smsnotes/internal/model"
	"smsnotes/internal/repository"
	"smsnotes/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMessage struct {
	To, Text string
}

// fakeSender records messages; a non-nil err makes every send fail.
type fakeSender struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (f *fakeSender) Send(_ context.Context, to, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMessage{To: to, Text: text})
	return nil
}

func (f *fakeSender) last(t *testing.T) sentMessage {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent)
	return f.sent[len(f.sent)-1]
}

func newTestAuth() (AuthService, *repository.Store, *SessionManager, *utils.JWTUtil, *fakeSender) {
	store := repository.NewStore()
	jwtUtil := utils.NewJWTUtil("test-secret", 1)
	sessions := NewSessionManager(store.Sessions(), store, jwtUtil)
	sender := &fakeSender{}
	auth := NewAuthService(store, sessions, jwtUtil, sender)
	return auth, store, sessions, jwtUtil, sender
}

func TestAuthService_Register(t *testing.T) {
	auth, _, _, _, _ := newTestAuth()
	ctx := context.Background()

	user, token, err := auth.Register(ctx, "alice", "Secret1!", "Secret1!", "(208) 555-0100")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.NotEmpty(t, token)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "12085550100", user.Phone, "phone is stored normalized")
	assert.NotEqual(t, "Secret1!", user.PasswordHash)

	// Registration implies login: the token authenticates immediately.
	got, err := auth.ValidateSession(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
}

func TestAuthService_Register_ValidationFailures(t *testing.T) {
	auth, store, _, _, _ := newTestAuth()
	ctx := context.Background()

	_, _, err := auth.Register(ctx, "alice", "Secret1!", "Typo1!", "(208) 555-0100")
	assert.ErrorIs(t, err, utils.ErrPasswordMismatch)

	_, _, err = auth.Register(ctx, "alice", "", "", "(208) 555-0100")
	assert.ErrorIs(t, err, utils.ErrPasswordMismatch)

	_, _, err = auth.Register(ctx, "alice", "Secret1!", "Secret1!", "555-0100")
	assert.ErrorIs(t, err, utils.ErrInvalidPhone)

	// No account came into being along the way.
	_, err = store.FindByUsername(ctx, "alice")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestAuthService_Register_Conflicts(t *testing.T) {
	auth, _, _, _, _ := newTestAuth()
	ctx := context.Background()

	_, _, err := auth.Register(ctx, "alice", "Secret1!", "Secret1!", "(208) 555-0100")
	require.NoError(t, err)

	_, _, err = auth.Register(ctx, "alice", "Other2@", "Other2@", "(208) 555-0101")
	assert.ErrorIs(t, err, repository.ErrUsernameTaken)

	// Equivalent spellings normalize to the same number and collide.
	_, _, err = auth.Register(ctx, "bob", "Other2@", "Other2@", "+1 208 555 0100")
	assert.ErrorIs(t, err, repository.ErrPhoneTaken)
}

func TestAuthService_LoginLogout(t *testing.T) {
	auth, _, _, _, _ := newTestAuth()
	ctx := context.Background()

	_, _, err := auth.Register(ctx, "alice", "Secret1!", "Secret1!", "(208) 555-0100")
	require.NoError(t, err)

	_, _, err = auth.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = auth.Login(ctx, "nobody", "Secret1!")
	assert.ErrorIs(t, err, ErrInvalidCredentials, "unknown user fails the same way as a bad password")

	user, token, err := auth.Login(ctx, "alice", "Secret1!")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	require.NoError(t, auth.Logout(ctx, token))

	_, err = auth.ValidateSession(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidSession)

	// Logout is idempotent: revoking again, or revoking garbage, succeeds.
	assert.NoError(t, auth.Logout(ctx, token))
	assert.NoError(t, auth.Logout(ctx, "not-even-a-token"))
}

func TestAuthService_LogoutRevokesOnlyThatSession(t *testing.T) {
	auth, _, _, _, _ := newTestAuth()
	ctx := context.Background()

	_, t1, err := auth.Register(ctx, "alice", "Secret1!", "Secret1!", "(208) 555-0100")
	require.NoError(t, err)
	_, t2, err := auth.Login(ctx, "alice", "Secret1!")
	require.NoError(t, err)

	require.NoError(t, auth.Logout(ctx, t1))

	_, err = auth.ValidateSession(ctx, t1)
	assert.ErrorIs(t, err, ErrInvalidSession)
	_, err = auth.ValidateSession(ctx, t2)
	assert.NoError(t, err, "the other session survives")
}

func TestAuthService_Update(t *testing.T) {
	auth, _, _, _, _ := newTestAuth()
	ctx := context.Background()

	_, token, err := auth.Register(ctx, "alice", "Secret1!", "Secret1!", "(208) 555-0100")
	require.NoError(t, err)

	user, newToken, err := auth.Update(ctx, token, "alicia", "NewPass1!", "NewPass1!", "(208) 555-0101")
	require.NoError(t, err)
	assert.Equal(t, "alicia", user.Username)
	assert.Equal(t, "12085550101", user.Phone)

	// The token used for the update is dead, the fresh one works.
	_, err = auth.ValidateSession(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidSession)
	got, err := auth.ValidateSession(ctx, newToken)
	require.NoError(t, err)
	assert.Equal(t, "alicia", got.Username)

	// Old credentials no longer log in, new ones do.
	_, _, err = auth.Login(ctx, "alice", "Secret1!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = auth.Login(ctx, "alicia", "NewPass1!")
	assert.NoError(t, err)
}

func TestAuthService_Update_EmptyFieldsKeepValues(t *testing.T) {
	auth, _, _, _, _ := newTestAuth()
	ctx := context.Background()

	_, token, err := auth.Register(ctx, "alice", "Secret1!", "Secret1!", "(208) 555-0100")
	require.NoError(t, err)

	user, _, err := auth.Update(ctx, token, "", "", "", "(208) 555-0101")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "12085550101", user.Phone)

	// The untouched password still logs in.
	_, _, err = auth.Login(ctx, "alice", "Secret1!")
	assert.NoError(t, err)
}

func TestAuthService_Update_Failures(t *testing.T) {
	auth, _, _, _, _ := newTestAuth()
	ctx := context.Background()

	_, _, err := auth.Register(ctx, "bob", "Secret1!", "Secret1!", "(208) 555-0199")
	require.NoError(t, err)
	_, token, err := auth.Register(ctx, "alice", "Secret1!", "Secret1!", "(208) 555-0100")
	require.NoError(t, err)

	_, _, err = auth.Update(ctx, token, "bob", "", "", "")
	assert.ErrorIs(t, err, repository.ErrUsernameTaken)

	_, _, err = auth.Update(ctx, token, "", "", "", "(208) 555-0199")
	assert.ErrorIs(t, err, repository.ErrPhoneTaken)

	_, _, err = auth.Update(ctx, token, "", "NewPass1!", "other", "")
	assert.ErrorIs(t, err, utils.ErrPasswordMismatch)

	_, _, err = auth.Update(ctx, token, "", "", "", "bogus")
	assert.ErrorIs(t, err, utils.ErrInvalidPhone)

	_, _, err = auth.Update(ctx, "garbage", "x", "", "", "")
	assert.ErrorIs(t, err, ErrInvalidSession)

	// After all those failures the session and the account are intact.
	user, err := auth.ValidateSession(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "12085550100", user.Phone)
}

func TestAuthService_Delete(t *testing.T) {
	auth, _, _, _, _ := newTestAuth()
	ctx := context.Background()

	_, token, err := auth.Register(ctx, "alice", "Secret1!", "Secret1!", "(208) 555-0100")
	require.NoError(t, err)
	_, other, err := auth.Login(ctx, "alice", "Secret1!")
	require.NoError(t, err)

	require.NoError(t, auth.Delete(ctx, token))

	// Every session of the account is gone, not just the deleting one.
	_, err = auth.ValidateSession(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidSession)
	_, err = auth.ValidateSession(ctx, other)
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, _, err = auth.Login(ctx, "alice", "Secret1!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Deleting again fails: the session no longer resolves.
	assert.ErrorIs(t, auth.Delete(ctx, token), ErrInvalidSession)

	// The username and phone are reusable.
	_, _, err = auth.Register(ctx, "alice", "Fresh1!", "Fresh1!", "(208) 555-0100")
	assert.NoError(t, err)
}

func TestAuthService_ForgotPassword(t *testing.T) {
	auth, _, _, _, sender := newTestAuth()
	ctx := context.Background()

	_, _, err := auth.Register(ctx, "alice", "Secret1!", "Secret1!", "(208) 555-0100")
	require.NoError(t, err)

	require.NoError(t, auth.ForgotPassword(ctx, "alice"))

	msg := sender.last(t)
	assert.Equal(t, "12085550100", msg.To, "reset code goes to the phone on record")
	assert.Contains(t, msg.Text, "reset your password")

	assert.ErrorIs(t, auth.ForgotPassword(ctx, "nobody"), repository.ErrUserNotFound)
}

func TestAuthService_ForgotPassword_SendFailure(t *testing.T) {
	auth, _, _, _, sender := newTestAuth()
	ctx := context.Background()

	_, _, err := auth.Register(ctx, "alice", "Secret1!", "Secret1!", "(208) 555-0100")
	require.NoError(t, err)

	sender.err = errors.New("carrier down")
	err = auth.ForgotPassword(ctx, "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "carrier down")
}

func TestAuthService_ResetPassword(t *testing.T) {
	auth, _, _, jwtUtil, _ := newTestAuth()
	ctx := context.Background()

	_, oldSession, err := auth.Register(ctx, "alice", "Secret1!", "Secret1!", "(208) 555-0100")
	require.NoError(t, err)

	resetToken, err := jwtUtil.GenerateResetToken("alice")
	require.NoError(t, err)

	user, session, err := auth.ResetPassword(ctx, resetToken, "Fresh1!", "Fresh1!")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	// The reset logs the caller in and kills every pre-reset session.
	_, err = auth.ValidateSession(ctx, session)
	assert.NoError(t, err)
	_, err = auth.ValidateSession(ctx, oldSession)
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, _, err = auth.Login(ctx, "alice", "Secret1!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = auth.Login(ctx, "alice", "Fresh1!")
	assert.NoError(t, err)
}

func TestAuthService_ResetPassword_Failures(t *testing.T) {
	auth, store, _, jwtUtil, _ := newTestAuth()
	ctx := context.Background()

	_, _, err := auth.Register(ctx, "alice", "Secret1!", "Secret1!", "(208) 555-0100")
	require.NoError(t, err)

	resetToken, err := jwtUtil.GenerateResetToken("alice")
	require.NoError(t, err)

	_, _, err = auth.ResetPassword(ctx, resetToken, "Fresh1!", "typo")
	assert.ErrorIs(t, err, utils.ErrPasswordMismatch)

	_, _, err = auth.ResetPassword(ctx, "garbage", "Fresh1!", "Fresh1!")
	assert.ErrorIs(t, err, ErrInvalidResetToken)

	// A session token is not a reset token, even though both are signed by
	// the same key.
	_, sessionToken, err := auth.Login(ctx, "alice", "Secret1!")
	require.NoError(t, err)
	_, _, err = auth.ResetPassword(ctx, sessionToken, "Fresh1!", "Fresh1!")
	assert.ErrorIs(t, err, ErrInvalidResetToken)

	// A reset token for a since-deleted account resolves to nothing.
	require.NoError(t, store.Delete(ctx, "alice"))
	_, _, err = auth.ResetPassword(ctx, resetToken, "Fresh1!", "Fresh1!")
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestAuthService_ResetPassword_ExpiredToken(t *testing.T) {
	auth, _, _, _, _ := newTestAuth()
	ctx := context.Background()

	_, _, err := auth.Register(ctx, "alice", "Secret1!", "Secret1!", "(208) 555-0100")
	require.NoError(t, err)

	// Same key and claims shape, but already past its expiry.
	claims := &utils.ResetClaims{
		Username: "alice",
		Purpose:  "password_reset",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, _, err = auth.ResetPassword(ctx, expired, "Fresh1!", "Fresh1!")
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestSessionManager_ExpiredSessionRow(t *testing.T) {
	_, store, sessions, jwtUtil, _ := newTestAuth()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &model.User{Username: "alice", Phone: "12085550100", PasswordHash: "$2a$10$hash"}))

	// A stored row already past its expiry, wrapped in a still-valid JWT.
	require.NoError(t, store.Sessions().Create(ctx, &model.Session{
		ID:        "stale",
		Username:  "alice",
		ExpiresAt: time.Now().Add(-time.Minute),
	}))
	token, err := jwtUtil.GenerateToken("stale", "alice")
	require.NoError(t, err)

	_, err = sessions.Validate(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidSession)

	// The lazy cleanup removed the row.
	_, err = store.Sessions().FindByID(ctx, "stale")
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
}

func TestSessionManager_ForgedToken(t *testing.T) {
	auth, _, _, _, _ := newTestAuth()
	ctx := context.Background()

	_, _, err := auth.Register(ctx, "alice", "Secret1!", "Secret1!", "(208) 555-0100")
	require.NoError(t, err)

	// A token signed with a different secret never validates, even for a
	// real session id.
	forger := utils.NewJWTUtil("other-secret", 1)
	forged, err := forger.GenerateToken("whatever", "alice")
	require.NoError(t, err)

	_, err = auth.ValidateSession(ctx, forged)
	assert.ErrorIs(t, err, ErrInvalidSession)
}
