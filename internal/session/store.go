package session

import (
	"context"
	"log/slog"
	"net/http/cookiejar"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Viherino/iss-bolha-frontend/internal/marketplace"
)

// Store keeps every live browser session in memory, keyed by the
// opaque id carried in the session cookie. Sessions never survive a
// restart: the upstream cookie is the only durable credential and it
// lives in the browser, not here.
type Store struct {
	api    *marketplace.Client
	ttl    time.Duration
	logger *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore builds a session store around the base marketplace client.
func NewStore(api *marketplace.Client, ttl time.Duration, logger *slog.Logger) *Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{
		api:      api,
		ttl:      ttl,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Create builds a fresh session with its own cookie jar and runs the
// one-time bootstrap before returning. parent bounds the session
// lifetime: cancelling it aborts the session's in-flight work.
func (st *Store) Create(parent context.Context) (*Session, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(parent)
	now := time.Now()
	s := &Session{
		id:        uuid.NewString(),
		base:      st.api,
		logger:    st.logger,
		ctx:       ctx,
		cancel:    cancel,
		api:       st.api.ForJar(jar),
		state:     Bootstrapping,
		createdAt: now,
		lastSeen:  now,
	}

	st.mu.Lock()
	st.sessions[s.id] = s
	st.mu.Unlock()

	s.bootstrap(ctx)
	return s, nil
}

// Lookup resolves a session id from a cookie and refreshes its
// last-seen stamp.
func (st *Store) Lookup(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, false
	}
	s.touch(time.Now())
	return s, true
}

// Close drops one session and cancels its lifetime context.
func (st *Store) Close(id string) {
	st.mu.Lock()
	s, ok := st.sessions[id]
	if ok {
		delete(st.sessions, id)
	}
	st.mu.Unlock()
	if ok {
		s.close()
	}
}

// Len reports the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Sweep evicts idle sessions until ctx is cancelled. Run it as a
// background goroutine from main.
func (st *Store) Sweep(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			st.evictExpired(now)
		}
	}
}

func (st *Store) evictExpired(now time.Time) {
	var expired []*Session
	st.mu.Lock()
	for id, s := range st.sessions {
		if s.expired(now, st.ttl) {
			delete(st.sessions, id)
			expired = append(expired, s)
		}
	}
	st.mu.Unlock()

	for _, s := range expired {
		s.close()
	}
	if len(expired) > 0 && st.logger != nil {
		st.logger.Debug("expired sessions evicted", "count", len(expired))
	}
}
