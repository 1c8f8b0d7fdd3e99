package repository

import (
	"context"
	"strings"
	"sync"

	"smsnotes/internal/model"
)

// Store is an in-memory implementation of the repositories, used when no
// database is configured and by the test suite. A single mutex serializes
// every operation, so each check-and-insert pair is atomic and two concurrent
// registrations for the same username or phone cannot both succeed.
//
// Store itself is the UserRepository; Sessions() and Notes() return views
// implementing the other two contracts over the same lock.
type Store struct {
	mu       sync.Mutex
	users    map[string]*model.User // keyed by username
	phones   map[string]string      // phone -> username
	sessions map[string]*model.Session
	notes    []model.Note

	userIDCounter int
	noteIDCounter int64
}

// NewStore creates a new in-memory store
func NewStore() *Store {
	return &Store{
		users:    make(map[string]*model.User),
		phones:   make(map[string]string),
		sessions: make(map[string]*model.Session),
	}
}

// Ensure interfaces are met.
var _ UserRepository = (*Store)(nil)
var _ SessionRepository = (*memorySessionRepo)(nil)
var _ NoteRepository = (*memoryNoteRepo)(nil)

// Sessions returns the SessionRepository view of the store
func (s *Store) Sessions() SessionRepository {
	return &memorySessionRepo{store: s}
}

// Notes returns the NoteRepository view of the store
func (s *Store) Notes() NoteRepository {
	return &memoryNoteRepo{store: s}
}

// --- UserRepository ---

// Create checks username then phone under one lock and inserts
func (s *Store) Create(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.Username]; ok {
		return ErrUsernameTaken
	}
	if _, ok := s.phones[user.Phone]; ok {
		return ErrPhoneTaken
	}

	s.userIDCounter++
	user.ID = s.userIDCounter

	stored := *user
	s.users[user.Username] = &stored
	s.phones[user.Phone] = user.Username
	return nil
}

// FindByUsername retrieves a user by username
func (s *Store) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

// Update rewrites an account, excluding it from its own uniqueness checks.
// Owned notes and sessions follow a rename, mirroring the Postgres schema's
// ON UPDATE CASCADE.
func (s *Store) Update(ctx context.Context, username string, updated *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.users[username]
	if !ok {
		return ErrUserNotFound
	}
	if other, ok := s.users[updated.Username]; ok && other.Username != username {
		return ErrUsernameTaken
	}
	if owner, ok := s.phones[updated.Phone]; ok && owner != username {
		return ErrPhoneTaken
	}

	updated.ID = current.ID
	updated.CreatedAt = current.CreatedAt

	delete(s.users, username)
	delete(s.phones, current.Phone)
	stored := *updated
	s.users[updated.Username] = &stored
	s.phones[updated.Phone] = updated.Username

	if updated.Username != username {
		for _, sess := range s.sessions {
			if sess.Username == username {
				sess.Username = updated.Username
			}
		}
		for i := range s.notes {
			if s.notes[i].Owner == username {
				s.notes[i].Owner = updated.Username
			}
		}
	}
	return nil
}

// Delete removes an account along with its sessions and notes, mirroring the
// Postgres schema's ON DELETE CASCADE.
func (s *Store) Delete(ctx context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[username]
	if !ok {
		return ErrUserNotFound
	}
	delete(s.users, username)
	delete(s.phones, u.Phone)

	for id, sess := range s.sessions {
		if sess.Username == username {
			delete(s.sessions, id)
		}
	}
	kept := s.notes[:0]
	for _, n := range s.notes {
		if n.Owner != username {
			kept = append(kept, n)
		}
	}
	s.notes = kept
	return nil
}

// --- SessionRepository ---

type memorySessionRepo struct {
	store *Store
}

func (r *memorySessionRepo) Create(ctx context.Context, session *model.Session) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.users[session.Username]; !ok {
		return ErrUserNotFound
	}
	stored := *session
	r.store.sessions[session.ID] = &stored
	return nil
}

func (r *memorySessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	sess, ok := r.store.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	copied := *sess
	return &copied, nil
}

func (r *memorySessionRepo) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.sessions, id)
	return nil
}

func (r *memorySessionRepo) DeleteAllForUser(ctx context.Context, username string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for id, sess := range r.store.sessions {
		if sess.Username == username {
			delete(r.store.sessions, id)
		}
	}
	return nil
}

// --- NoteRepository ---

type memoryNoteRepo struct {
	store *Store
}

func (r *memoryNoteRepo) Create(ctx context.Context, note *model.Note) error {
	if strings.TrimSpace(note.Text) == "" {
		return ErrEmptyNote
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.users[note.Owner]; !ok {
		return ErrUserNotFound
	}
	r.store.noteIDCounter++
	note.ID = r.store.noteIDCounter
	r.store.notes = append(r.store.notes, *note)
	return nil
}

func (r *memoryNoteRepo) FindByOwner(ctx context.Context, owner string, page, count int) ([]model.Note, bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var owned []model.Note
	for i := len(r.store.notes) - 1; i >= 0; i-- { // appended in id order; walk backwards for newest first
		if r.store.notes[i].Owner == owner {
			owned = append(owned, r.store.notes[i])
		}
	}

	start := page * count
	if start >= len(owned) {
		return nil, false, nil
	}
	end := start + count
	hasMore := end < len(owned)
	if end > len(owned) {
		end = len(owned)
	}
	return owned[start:end], hasMore, nil
}

func (r *memoryNoteRepo) FindAllByOwner(ctx context.Context, owner string) ([]model.Note, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var owned []model.Note
	for i := len(r.store.notes) - 1; i >= 0; i-- {
		if r.store.notes[i].Owner == owner {
			owned = append(owned, r.store.notes[i])
		}
	}
	return owned, nil
}

func (r *memoryNoteRepo) FindLatest(ctx context.Context, owner string) (*model.Note, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for i := len(r.store.notes) - 1; i >= 0; i-- {
		if r.store.notes[i].Owner == owner {
			copied := r.store.notes[i]
			return &copied, nil
		}
	}
	return nil, nil
}
