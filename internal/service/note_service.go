package service

import (
	"context"
	"fmt"
	"time"

	"smsnotes/internal/model"
	"smsnotes/internal/repository"
	"smsnotes/internal/sms"
)

// NotesPerPage is the page size for note listings
const NotesPerPage = 20

// NoteService defines session-authorized operations on notes
type NoteService interface {
	CreateNote(ctx context.Context, token, text string) (*model.Note, error)
	ListNotes(ctx context.Context, token string, page int) ([]model.Note, bool, error)
	LatestNote(ctx context.Context, token string) (*model.Note, error)
	// ExportData returns the authenticated account and every note it owns.
	ExportData(ctx context.Context, token string) (*model.User, []model.Note, error)
}

type noteService struct {
	notes  repository.NoteRepository
	auth   AuthService
	sender sms.Sender
}

// NewNoteService creates a new NoteService
func NewNoteService(notes repository.NoteRepository, auth AuthService, sender sms.Sender) NoteService {
	return &noteService{notes: notes, auth: auth, sender: sender}
}

// CreateNote records a note owned by the authenticated account and texts its
// preview to the account's phone. The store rejects empty text.
func (s *noteService) CreateNote(ctx context.Context, token, text string) (*model.Note, error) {
	user, err := s.auth.ValidateSession(ctx, token)
	if err != nil {
		return nil, err
	}

	note := &model.Note{
		Owner:     user.Username,
		Text:      text,
		CreatedAt: time.Now(),
	}
	if err := s.notes.Create(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	if err := s.sender.Send(ctx, user.Phone, note.Short()); err != nil {
		return nil, fmt.Errorf("note created, but failed to send sms: %w", err)
	}
	return note, nil
}

// ListNotes returns one page of the authenticated account's notes, newest
// first, and whether more pages follow
func (s *noteService) ListNotes(ctx context.Context, token string, page int) ([]model.Note, bool, error) {
	user, err := s.auth.ValidateSession(ctx, token)
	if err != nil {
		return nil, false, err
	}
	return s.notes.FindByOwner(ctx, user.Username, page, NotesPerPage)
}

// LatestNote returns the authenticated account's most recent note, or nil
// when there is none
func (s *noteService) LatestNote(ctx context.Context, token string) (*model.Note, error) {
	user, err := s.auth.ValidateSession(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.notes.FindLatest(ctx, user.Username)
}

func (s *noteService) ExportData(ctx context.Context, token string) (*model.User, []model.Note, error) {
	user, err := s.auth.ValidateSession(ctx, token)
	if err != nil {
		return nil, nil, err
	}

	notes, err := s.notes.FindAllByOwner(ctx, user.Username)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to collect notes for export: %w", err)
	}
	return user, notes, nil
}
