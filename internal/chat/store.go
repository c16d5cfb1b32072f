package chat

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultSessionTTL matches the session cookie lifetime.
const DefaultSessionTTL = 7 * 24 * time.Hour

// Store keeps sessions in memory, keyed by a random ID. Sessions are never
// shared between IDs and vanish when the process exits or when they sit idle
// for longer than the TTL.
type Store struct {
	profile   Profile
	generator Generator
	logger    *slog.Logger
	ttl       time.Duration
	now       func() time.Time

	mu       sync.RWMutex
	sessions map[string]*storedSession
}

type storedSession struct {
	session  *Session
	lastSeen time.Time
}

type StoreOption func(*Store)

// WithTTL sets how long an idle session is kept. Non-positive values keep the
// default.
func WithTTL(ttl time.Duration) StoreOption {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

func NewStore(profile Profile, generator Generator, logger *slog.Logger, opts ...StoreOption) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		profile:   profile,
		generator: generator,
		logger:    logger,
		ttl:       DefaultSessionTTL,
		now:       time.Now,
		sessions:  make(map[string]*storedSession),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Profile() Profile {
	return s.profile
}

func (s *Store) TTL() time.Duration {
	return s.ttl
}

func (s *Store) Create() *Session {
	id := uuid.NewString()
	session := NewSession(s.profile, s.generator, WithID(id), WithLogger(s.logger))

	s.mu.Lock()
	s.sessions[id] = &storedSession{session: session, lastSeen: s.now()}
	s.mu.Unlock()

	s.logger.Info("session created", "session_id", id)
	return session
}

// Get returns the session for id and marks it as recently used.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	entry.lastSeen = s.now()
	return entry.session, true
}

// Lookup is Get for untrusted ids: malformed ids are rejected without
// touching the map.
func (s *Store) Lookup(id string) (*Session, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, false
	}
	return s.Get(id)
}

// Resolve returns the session for id, creating a fresh one when id is empty,
// malformed, or unknown (for example after a restart).
func (s *Store) Resolve(id string) *Session {
	if session, ok := s.Lookup(id); ok {
		return session
	}
	return s.Create()
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep removes sessions idle since before now minus the TTL. Sessions with a
// pending request or a live subscriber are kept. It returns the number removed.
func (s *Store) Sweep(now time.Time) int {
	cutoff := now.Add(-s.ttl)

	s.mu.Lock()
	var expired []string
	for id, entry := range s.sessions {
		if entry.lastSeen.Before(cutoff) && !entry.session.InUse() {
			delete(s.sessions, id)
			expired = append(expired, id)
		}
	}
	s.mu.Unlock()

	for _, id := range expired {
		s.logger.Info("session expired", "session_id", id)
	}
	return len(expired)
}

// StartSweeper runs Sweep every interval until ctx is done.
func (s *Store) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		s.logger.Info("session sweeper started", "interval", interval, "ttl", s.ttl)
		for {
			select {
			case <-ticker.C:
				if n := s.Sweep(s.now()); n > 0 {
					s.logger.Debug("sessions swept", "removed", n, "remaining", s.Len())
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
