package game

import (
	"sync"
	"time"

	"github.com/KirkDiggler/trickroom/internal/common/uuid"
)

// DefaultCodeLength is the length of generated session codes
const DefaultCodeLength = 6

// maxCodeAttempts bounds how many codes Create tries before giving up
const maxCodeAttempts = 32

// RegistryConfig holds configuration for the session registry
type RegistryConfig struct {
	// CodeLength is the length of generated session codes
	CodeLength int

	// Service dependencies
	UUID uuid.UUID
}

// Registry maps session codes to live sessions. One registry is created at
// process start and passed to everything that needs it.
type Registry struct {
	mu         sync.RWMutex
	sessions   map[string]*Session
	codeLength int
	uuid       uuid.UUID
}

// NewRegistry creates an empty registry
func NewRegistry(cfg *RegistryConfig) (*Registry, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if cfg.UUID == nil {
		return nil, ErrNilUUIDGenerator
	}

	length := cfg.CodeLength
	if length < 1 {
		length = DefaultCodeLength
	}

	return &Registry{
		sessions:   make(map[string]*Session),
		codeLength: length,
		uuid:       cfg.UUID,
	}, nil
}

// Create generates a code no live session uses, builds a session for it
// and registers it
func (r *Registry) Create(build func(code string) (*Session, error)) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := r.uuid.NewCode(r.codeLength)
		if _, taken := r.sessions[code]; taken {
			continue
		}

		session, err := build(code)
		if err != nil {
			return nil, err
		}
		r.sessions[code] = session
		return session, nil
	}

	return nil, ErrCodeExhausted
}

// Add registers a session under its code
func (r *Registry) Add(session *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.sessions[session.Code()]; taken {
		return ErrSessionExists
	}
	r.sessions[session.Code()] = session

	return nil
}

// Get looks a session up by code
func (r *Registry) Get(code string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[code]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Delete removes a session. It reports whether the code was registered.
func (r *Registry) Delete(code string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[code]; !ok {
		return false
	}
	delete(r.sessions, code)
	return true
}

// Len returns the number of live sessions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep removes sessions that have not been used since before cutoff and
// returns their codes
func (r *Registry) Sweep(cutoff time.Time) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []string
	for code, session := range r.sessions {
		if session.LastActive().Before(cutoff) {
			delete(r.sessions, code)
			removed = append(removed, code)
		}
	}

	return removed
}
