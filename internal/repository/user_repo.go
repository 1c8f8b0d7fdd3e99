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

var (
	ErrUsernameTaken = errors.New("username already taken")
	ErrPhoneTaken    = errors.New("phone number already in use")
	ErrUserNotFound  = errors.New("user not found")
)

// PgxPool is the subset of *pgxpool.Pool the repositories depend on. It is
// also satisfied by pgxmock pools in tests.
type PgxPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserRepository defines operations for account data
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	Update(ctx context.Context, username string, updated *model.User) error
	Delete(ctx context.Context, username string) error
}

type userRepository struct {
	db PgxPool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db PgxPool) UserRepository {
	return &userRepository{db: db}
}

// Create checks both uniqueness constraints and inserts the account as one
// atomic unit. Username is checked before phone, so a double collision
// deterministically reports the username conflict.
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin user create: %w", err)
	}
	defer tx.Rollback(ctx)

	var taken bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, user.Username).Scan(&taken); err != nil {
		return fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		return ErrUsernameTaken
	}
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE phone = $1)`, user.Phone).Scan(&taken); err != nil {
		return fmt.Errorf("failed to check phone: %w", err)
	}
	if taken {
		return ErrPhoneTaken
	}

	sql := `INSERT INTO users (username, phone, password_hash, created_at)
            VALUES ($1, $2, $3, $4) RETURNING id`
	if err := tx.QueryRow(ctx, sql, user.Username, user.Phone, user.PasswordHash, user.CreatedAt).Scan(&user.ID); err != nil {
		// A concurrent insert can still slip past the checks; the unique
		// constraints are the backstop.
		return mapUniqueViolation(err, "failed to create user")
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit user create: %w", err)
	}
	return nil
}

// FindByUsername retrieves a user by username
func (r *userRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	user := &model.User{}
	sql := `SELECT id, username, phone, password_hash, created_at FROM users WHERE username = $1`
	err := r.db.QueryRow(ctx, sql, username).Scan(&user.ID, &user.Username, &user.Phone, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by username: %w", err)
	}
	return user, nil
}

// Update rewrites the account identified by username with the values in
// updated. The uniqueness checks exclude the account itself, so rewriting
// unchanged fields never trips a self-collision. Owned note and session rows
// follow the rename via the schema's ON UPDATE CASCADE.
func (r *userRepository) Update(ctx context.Context, username string, updated *model.User) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin user update: %w", err)
	}
	defer tx.Rollback(ctx)

	var taken bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1 AND username <> $2)`, updated.Username, username).Scan(&taken); err != nil {
		return fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		return ErrUsernameTaken
	}
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE phone = $1 AND username <> $2)`, updated.Phone, username).Scan(&taken); err != nil {
		return fmt.Errorf("failed to check phone: %w", err)
	}
	if taken {
		return ErrPhoneTaken
	}

	sql := `UPDATE users SET username = $1, phone = $2, password_hash = $3 WHERE username = $4 RETURNING id`
	if err := tx.QueryRow(ctx, sql, updated.Username, updated.Phone, updated.PasswordHash, username).Scan(&updated.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return mapUniqueViolation(err, "failed to update user")
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit user update: %w", err)
	}
	return nil
}

// Delete removes the account. Session and note rows go with it via the
// schema's ON DELETE CASCADE.
func (r *userRepository) Delete(ctx context.Context, username string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM users WHERE username = $1`, username)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// mapUniqueViolation translates a unique-constraint violation into the
// conflict error for the column that collided.
func mapUniqueViolation(err error, msg string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		switch pgErr.ConstraintName {
		case "users_username_key":
			return ErrUsernameTaken
		case "users_phone_key":
			return ErrPhoneTaken
		}
	}
	return fmt.Errorf("%s: %w", msg, err)
}
