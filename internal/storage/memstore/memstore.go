// Package memstore is the default ContextStore: a TTL-indexed map keyed by
// session id with an explicit capacity bound. Sessions are isolated; no
// cross-session locking beyond the map mutex.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/sandevgo/vaani/internal/core"
)

type session struct {
	conv     core.ConversationContext
	pending  *core.PendingMarker
	turnIDs  map[string]struct{}
	lastSeen time.Time
}

type Store struct {
	mu          sync.Mutex
	sessions    map[string]*session
	ttl         time.Duration
	window      int
	maxSessions int
	now         func() time.Time // test seam
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(ttl time.Duration, window, maxSessions int, opts ...Option) *Store {
	s := &Store{
		sessions:    make(map[string]*session),
		ttl:         ttl,
		window:      window,
		maxSessions: maxSessions,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Get(_ context.Context, sessionID string) (*core.ConversationContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.live(sessionID)
	if !ok {
		return nil, nil
	}

	// Snapshot: callers must never see concurrent mutation.
	snap := sess.conv
	snap.Turns = make([]core.Turn, len(sess.conv.Turns))
	copy(snap.Turns, sess.conv.Turns)
	snap.ActiveEntities = sess.conv.ActiveEntities.Clone()
	return &snap, nil
}

func (s *Store) Append(_ context.Context, sessionID string, turn core.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.live(sessionID)
	if !ok {
		sess = &session{
			conv:    core.ConversationContext{SessionID: sessionID},
			turnIDs: make(map[string]struct{}),
		}
		s.evictIfFull()
		s.sessions[sessionID] = sess
	}

	now := s.now()
	sess.lastSeen = now
	sess.conv.UpdatedAt = now

	// Idempotent by turn id: transport re-delivery must not duplicate.
	if turn.ID != "" {
		if _, dup := sess.turnIDs[turn.ID]; dup {
			return nil
		}
		sess.turnIDs[turn.ID] = struct{}{}
	}

	sess.conv.Turns = append(sess.conv.Turns, turn)
	if len(sess.conv.Turns) > s.window {
		dropped := sess.conv.Turns[:len(sess.conv.Turns)-s.window]
		for _, d := range dropped {
			delete(sess.turnIDs, d.ID)
		}
		sess.conv.Turns = append([]core.Turn(nil), sess.conv.Turns[len(sess.conv.Turns)-s.window:]...)
	}

	sess.conv.LastIntent = turn.Intent
	// Active entities derive from the most recent non-trivial turn.
	if len(turn.Entities) > 0 {
		sess.conv.ActiveTopic = turn.Intent
		sess.conv.ActiveEntities = turn.Entities.Clone()
	}
	return nil
}

func (s *Store) PeekPending(_ context.Context, sessionID string) (*core.PendingMarker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.live(sessionID)
	if !ok || sess.pending == nil {
		return nil, nil
	}
	marker := *sess.pending
	return &marker, nil
}

func (s *Store) SetPending(_ context.Context, sessionID string, marker core.PendingMarker) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.live(sessionID)
	if !ok {
		sess = &session{
			conv:    core.ConversationContext{SessionID: sessionID},
			turnIDs: make(map[string]struct{}),
		}
		s.evictIfFull()
		s.sessions[sessionID] = sess
	}
	sess.lastSeen = s.now()
	sess.pending = &marker
	return nil
}

func (s *Store) ClearPending(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[sessionID]; ok {
		sess.pending = nil
	}
	return nil
}

// Sweep drops expired sessions and returns how many were evicted.
func (s *Store) Sweep(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	cutoff := s.now().Add(-s.ttl)
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted, nil
}

// Len reports live (non-expired) session count.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	cutoff := s.now().Add(-s.ttl)
	for _, sess := range s.sessions {
		if !sess.lastSeen.Before(cutoff) {
			n++
		}
	}
	return n
}

// live returns the session if present and unexpired, expiring it lazily
// otherwise. Caller holds the lock.
func (s *Store) live(sessionID string) (*session, bool) {
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, false
	}
	if s.now().Sub(sess.lastSeen) > s.ttl {
		delete(s.sessions, sessionID)
		return nil, false
	}
	return sess, true
}

// evictIfFull drops the least recently active session to stay under the
// capacity bound. Caller holds the lock.
func (s *Store) evictIfFull() {
	if s.maxSessions <= 0 || len(s.sessions) < s.maxSessions {
		return
	}
	var oldestID string
	var oldest time.Time
	for id, sess := range s.sessions {
		if oldestID == "" || sess.lastSeen.Before(oldest) {
			oldestID = id
			oldest = sess.lastSeen
		}
	}
	if oldestID != "" {
		delete(s.sessions, oldestID)
	}
}
