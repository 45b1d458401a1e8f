package form

import (
	"io"
	"log/slog"
	"sync"
	"time"
)

type StoreOptions struct {
	Submitter Submitter
	Logger    *slog.Logger
	// TTL is how long an untouched session is kept. Sessions with a
	// submission in flight are never evicted.
	TTL time.Duration
}

// Store keeps one Controller per page session.
type Store struct {
	mu        sync.Mutex
	sessions  map[string]*session
	ttl       time.Duration
	submitter Submitter
	logger    *slog.Logger
}

type session struct {
	ctrl         *Controller
	lastActivity time.Time
}

func NewStore(opts StoreOptions) *Store {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Store{
		sessions:  make(map[string]*session),
		ttl:       ttl,
		submitter: opts.Submitter,
		logger:    logger,
	}
}

// Get returns the controller for id, creating it on first use.
func (s *Store) Get(id string) *Controller {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		sess = &session{
			ctrl: NewController(Options{
				Submitter: s.submitter,
				Logger:    s.logger.With("session", id),
			}),
		}
		s.sessions[id] = sess
	}
	sess.lastActivity = time.Now()
	return sess.ctrl
}

func (s *Store) Lookup(id string) (*Controller, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	sess.lastActivity = time.Now()
	return sess.ctrl, true
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops sessions idle for longer than the TTL and reports how many
// were removed.
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.lastActivity) < s.ttl {
			continue
		}
		if sess.ctrl.Loading() {
			continue
		}
		delete(s.sessions, id)
		removed++
	}
	if removed > 0 {
		s.logger.Debug("sessions swept", "removed", removed, "remaining", len(s.sessions))
	}
	return removed
}
