package store

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/markdave123-py/Chatlens/internal/models"
)

var (
	ErrNotFound         = errors.New("session not found")
	ErrNoCurrentSession = errors.New("no current session")
)

// titleRunes is how much of the first user message becomes the session title.
const titleRunes = 25

// Store is an in-memory session store with an optional current-session pointer.
// Chat state lives for the lifetime of the process only.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
	current  *string

	now   func() time.Time
	newID func() string
}

type Option func(*Store)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides how session ids are minted.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

func New(opts ...Option) *Store {
	s := &Store{
		sessions: make(map[string]*models.Session),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSession adds an empty session and makes it current.
func (s *Store) CreateSession() models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sess := &models.Session{
		ID:          s.newID(),
		Title:       models.DefaultTitle,
		Messages:    []models.Message{},
		LastUpdated: now,
		CreatedAt:   now,
	}
	s.sessions[sess.ID] = sess
	id := sess.ID
	s.current = &id

	return sess.Clone()
}

// GetCurrent returns the current session, failing when the pointer is unset.
func (s *Store) GetCurrent() (models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return models.Session{}, ErrNoCurrentSession
	}
	sess, ok := s.sessions[*s.current]
	if !ok {
		return models.Session{}, ErrNoCurrentSession
	}
	return sess.Clone(), nil
}

// CurrentID returns the id of the current session, if any.
func (s *Store) CurrentID() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return "", false
	}
	if _, ok := s.sessions[*s.current]; !ok {
		return "", false
	}
	return *s.current, true
}

func (s *Store) SetCurrent(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrNotFound
	}
	s.current = &id
	return nil
}

func (s *Store) Get(id string) (models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return models.Session{}, ErrNotFound
	}
	return sess.Clone(), nil
}

// Rename sets a session title. A blank title leaves the old one in place.
func (s *Store) Rename(id, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}
	if title = strings.TrimSpace(title); title == "" {
		return nil
	}
	sess.Title = title
	return nil
}

// Delete removes a session and unsets the current pointer if it referenced it.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(s.sessions, id)
	if s.current != nil && *s.current == id {
		s.current = nil
	}
	return nil
}

// AppendMessage adds msg to the session transcript and refreshes its recency.
// The first user message names a session that still carries the default title.
func (s *Store) AppendMessage(id string, msg models.Message) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return models.Message{}, ErrNotFound
	}

	now := s.now()
	if msg.ID == "" {
		msg.ID = s.newID()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = now
	}
	if msg.Time == "" {
		msg.Time = msg.CreatedAt.Format("15:04")
	}

	if msg.Role == models.RoleUser && sess.Title == models.DefaultTitle && !hasUserMessage(sess) {
		sess.Title = DeriveTitle(msg.Text)
	}

	sess.Messages = append(sess.Messages, msg)
	sess.LastUpdated = now
	return msg, nil
}

// ListOrderedByRecency returns all sessions, most recently updated first.
func (s *Store) ListOrderedByRecency() []models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess.Clone())
	}
	sortByRecency(out)
	return out
}

// Filter returns sessions whose title contains term, case-insensitively, in recency order.
func (s *Store) Filter(term string) []models.Session {
	all := s.ListOrderedByRecency()
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return all
	}

	out := make([]models.Session, 0, len(all))
	for _, sess := range all {
		if strings.Contains(strings.ToLower(sess.Title), term) {
			out = append(out, sess)
		}
	}
	return out
}

// DeriveTitle shortens the first user message into a session title. The
// message is cut as typed, surrounding whitespace included.
func DeriveTitle(text string) string {
	if utf8.RuneCountInString(text) <= titleRunes {
		return text
	}
	return string([]rune(text)[:titleRunes]) + "..."
}

func hasUserMessage(sess *models.Session) bool {
	for _, m := range sess.Messages {
		if m.Role == models.RoleUser {
			return true
		}
	}
	return false
}

func sortByRecency(sessions []models.Session) {
	sort.Slice(sessions, func(i, j int) bool {
		a, b := sessions[i], sessions[j]
		if !a.LastUpdated.Equal(b.LastUpdated) {
			return a.LastUpdated.After(b.LastUpdated)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}
