// Package session owns per-user chat state: an opaque session id and the
// message transcript for that session. Sessions are never shared between
// users; the manager is the only shared structure and guards its map with a
// mutex.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Default transcript limits. Old messages are dropped first.
const (
	DefaultMaxMessages   = 100
	DefaultMaxCharacters = 100000
)

// Message is one transcript entry. Error marks replies that are error text
// delivered through the normal assistant path, so a renderer can style them
// differently if it wants to.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Error   bool   `json:"error,omitempty"`
}

// Session holds one user's chat transcript. The id is generated once and
// reused for every turn in the session as the correlation key sent upstream.
type Session struct {
	ID string

	mu            sync.RWMutex
	messages      []Message
	totalChars    int
	maxMessages   int
	maxCharacters int
	lastActive    time.Time
}

// Append adds a message to the transcript, dropping the oldest entries when
// the message or character limit is exceeded.
func (s *Session) Append(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = append(s.messages, msg)
	s.totalChars += len(msg.Content)
	s.lastActive = time.Now()

	for s.maxMessages > 0 && len(s.messages) > s.maxMessages {
		s.dropOldest()
	}
	// Keep at least one message even if it alone exceeds the limit.
	for s.maxCharacters > 0 && s.totalChars > s.maxCharacters && len(s.messages) > 1 {
		s.dropOldest()
	}
}

// dropOldest must be called with the lock held.
func (s *Session) dropOldest() {
	s.totalChars -= len(s.messages[0].Content)
	s.messages = s.messages[1:]
}

// Messages returns a copy of the transcript in order.
func (s *Session) Messages() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Clear drops the transcript but keeps the session id.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = nil
	s.totalChars = 0
}

// LastActive reports when the session last saw a message.
func (s *Session) LastActive() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActive
}

// Config tunes the manager. Zero values fall back to the defaults; negative
// limits mean unlimited.
type Config struct {
	MaxMessages   int
	MaxCharacters int
	IdleTTL       time.Duration
}

// Manager creates and tracks sessions by id.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	config   Config
}

// NewManager creates an empty session manager.
func NewManager(config Config) *Manager {
	if config.MaxMessages == 0 {
		config.MaxMessages = DefaultMaxMessages
	}
	if config.MaxCharacters == 0 {
		config.MaxCharacters = DefaultMaxCharacters
	}

	return &Manager{
		sessions: make(map[string]*Session),
		config:   config,
	}
}

// Create starts a new session with a freshly generated id.
func (m *Manager) Create() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pruneLocked()

	s := m.newSession(uuid.NewString())
	m.sessions[s.ID] = s
	return s
}

// GetOrCreate returns the session with the given id, creating it if the
// client presented an id the server has not seen (or has expired).
func (m *Manager) GetOrCreate(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[id]; ok {
		return s
	}

	m.pruneLocked()

	s := m.newSession(id)
	m.sessions[id] = s
	return s
}

// Get returns the session with the given id, if present.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	return s, ok
}

// End removes a session; its transcript is gone once the last reference is
// dropped.
func (m *Manager) End(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.sessions)
}

func (m *Manager) newSession(id string) *Session {
	return &Session{
		ID:            id,
		maxMessages:   m.config.MaxMessages,
		maxCharacters: m.config.MaxCharacters,
		lastActive:    time.Now(),
	}
}

// pruneLocked drops sessions idle past the TTL. Called on session creation
// so the map cannot grow without bound; must be called with the lock held.
func (m *Manager) pruneLocked() {
	if m.config.IdleTTL <= 0 {
		return
	}

	cutoff := time.Now().Add(-m.config.IdleTTL)
	for id, s := range m.sessions {
		if s.LastActive().Before(cutoff) {
			delete(m.sessions, id)
		}
	}
}
