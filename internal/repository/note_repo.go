package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"smsnotes/internal/model"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrEmptyNote = errors.New("note text must not be empty")

// NoteRepository defines operations for note data
type NoteRepository interface {
	Create(ctx context.Context, note *model.Note) error
	// FindByOwner returns one page of the owner's notes, newest first, and
	// whether more pages follow.
	FindByOwner(ctx context.Context, owner string, page, count int) ([]model.Note, bool, error)
	// FindLatest returns the owner's most recent note, or nil when there is none.
	FindLatest(ctx context.Context, owner string) (*model.Note, error)
	// FindAllByOwner returns every note of the owner, newest first.
	FindAllByOwner(ctx context.Context, owner string) ([]model.Note, error)
}

type noteRepository struct {
	db PgxPool
}

// NewNoteRepository creates a new NoteRepository
func NewNoteRepository(db PgxPool) NoteRepository {
	return &noteRepository{db: db}
}

// Create inserts a note owned by an existing account. Empty or
// whitespace-only text is rejected regardless of what the caller vetted.
func (r *noteRepository) Create(ctx context.Context, note *model.Note) error {
	if strings.TrimSpace(note.Text) == "" {
		return ErrEmptyNote
	}

	sql := `INSERT INTO notes (owner, text, created_at) VALUES ($1, $2, $3) RETURNING id`
	if err := r.db.QueryRow(ctx, sql, note.Owner, note.Text, note.CreatedAt).Scan(&note.ID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to create note: %w", err)
	}
	return nil
}

// FindByOwner queries one row past the page size to learn whether more
// pages follow without a second count query.
func (r *noteRepository) FindByOwner(ctx context.Context, owner string, page, count int) ([]model.Note, bool, error) {
	sql := `SELECT id, owner, text, created_at FROM notes WHERE owner = $1 ORDER BY id DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, sql, owner, count+1, page*count)
	if err != nil {
		return nil, false, fmt.Errorf("failed to query notes by owner: %w", err)
	}
	defer rows.Close()

	var notes []model.Note
	for rows.Next() {
		var n model.Note
		if err := rows.Scan(&n.ID, &n.Owner, &n.Text, &n.CreatedAt); err != nil {
			return nil, false, fmt.Errorf("failed to scan note row: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("error iterating note rows: %w", err)
	}

	hasMore := len(notes) > count
	if hasMore {
		notes = notes[:count]
	}
	return notes, hasMore, nil
}

func (r *noteRepository) FindAllByOwner(ctx context.Context, owner string) ([]model.Note, error) {
	sql := `SELECT id, owner, text, created_at FROM notes WHERE owner = $1 ORDER BY id DESC`
	rows, err := r.db.Query(ctx, sql, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to query all notes by owner: %w", err)
	}
	defer rows.Close()

	var notes []model.Note
	for rows.Next() {
		var n model.Note
		if err := rows.Scan(&n.ID, &n.Owner, &n.Text, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan note row: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating note rows: %w", err)
	}
	return notes, nil
}

func (r *noteRepository) FindLatest(ctx context.Context, owner string) (*model.Note, error) {
	note := &model.Note{}
	sql := `SELECT id, owner, text, created_at FROM notes WHERE owner = $1 ORDER BY id DESC LIMIT 1`
	err := r.db.QueryRow(ctx, sql, owner).Scan(&note.ID, &note.Owner, &note.Text, &note.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // having no notes is not an error
		}
		return nil, fmt.Errorf("failed to find latest note: %w", err)
	}
	return note, nil
}
