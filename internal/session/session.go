// Package session owns the frontend's answer to "who is using the
// app". Each browser gets one Session holding the upstream cookie jar,
// the auth state machine and, once authenticated, the conversation
// inbox. Only this package mutates session state; everything else reads
// it through accessors.
package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http/cookiejar"
	"sync"
	"time"

	"github.com/Viherino/iss-bolha-frontend/internal/conversation"
	"github.com/Viherino/iss-bolha-frontend/internal/marketplace"
)

// State is the auth lifecycle phase of one browser session.
type State int

const (
	// Bootstrapping is the initial phase while the one-time identity
	// check against the backend is still in flight.
	Bootstrapping State = iota
	// Anonymous means no authenticated user. Steady state.
	Anonymous
	// Authenticated means User is set. Steady state.
	Authenticated
)

func (s State) String() string {
	switch s {
	case Bootstrapping:
		return "bootstrapping"
	case Anonymous:
		return "anonymous"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

var (
	ErrNotAuthenticated = errors.New("session: not authenticated")
	ErrNotFound         = errors.New("session: not found")
)

// Session is one browser's view of the marketplace. The zero value is
// unusable; sessions are created by Store.Create.
type Session struct {
	id     string
	base   *marketplace.Client
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.RWMutex
	api       *marketplace.Client
	state     State
	user      *marketplace.User
	inbox     *conversation.View
	createdAt time.Time
	lastSeen  time.Time
}

// ID is the opaque identifier stored in the browser cookie.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle phase.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// User returns a copy of the authenticated user, or nil. It is non-nil
// exactly when State is Authenticated.
func (s *Session) User() *marketplace.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	copied := *s.user
	return &copied
}

// IsLoggedIn reports whether the session is Authenticated.
func (s *Session) IsLoggedIn() bool {
	return s.State() == Authenticated
}

// API returns the jar-scoped marketplace client of this session.
func (s *Session) API() *marketplace.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.api
}

// Context is the session lifetime context; it is cancelled when the
// session is closed or swept, which aborts any in-flight call bound to
// a context derived from it.
func (s *Session) Context() context.Context { return s.ctx }

// bootstrap runs the one-time identity check. It never re-runs: once
// the session has left Bootstrapping the call is a no-op.
func (s *Session) bootstrap(ctx context.Context) {
	s.mu.Lock()
	if s.state != Bootstrapping {
		s.mu.Unlock()
		return
	}
	api := s.api
	s.mu.Unlock()

	user, err := api.Me(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Bootstrapping {
		return
	}
	if err != nil || user == nil {
		// Any failure, transport or backend, resolves to Anonymous.
		s.state = Anonymous
		s.user = nil
		if err != nil && s.logger != nil {
			s.logger.Debug("session bootstrap resolved anonymous", "session_id", s.id, "error", err)
		}
		return
	}
	s.state = Authenticated
	s.user = user
	if s.logger != nil {
		s.logger.Info("session bootstrapped", "session_id", s.id, "user_id", user.ID)
	}
}

// Login exchanges credentials for an upstream session cookie. On
// failure the backend error is returned and the session is untouched.
func (s *Session) Login(ctx context.Context, email, password string) (*marketplace.User, error) {
	s.mu.RLock()
	api := s.api
	s.mu.RUnlock()

	user, err := api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.state = Authenticated
	s.user = user
	s.inbox = nil
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Info("user logged in", "session_id", s.id, "user_id", user.ID)
	}
	copied := *user
	return &copied, nil
}

// Register creates an account. Session state never changes; the caller
// still has to log in.
func (s *Session) Register(ctx context.Context, params marketplace.RegisterParams) (*marketplace.User, error) {
	s.mu.RLock()
	api := s.api
	s.mu.RUnlock()
	return api.Register(ctx, params)
}

// Logout invalidates the upstream session and unconditionally clears
// local state. A failing backend call must not leave the session
// claiming to be logged in, so the local reset happens regardless.
func (s *Session) Logout(ctx context.Context) {
	s.mu.RLock()
	api := s.api
	s.mu.RUnlock()

	if err := api.Logout(ctx); err != nil && s.logger != nil {
		s.logger.Warn("backend logout failed, clearing local session anyway", "session_id", s.id, "error", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Anonymous
	s.user = nil
	s.inbox = nil
	// Cookie jars cannot be emptied, so the stale upstream cookie is
	// dropped by swapping in a fresh jar.
	if jar, err := cookiejar.New(nil); err == nil {
		s.api = s.base.ForJar(jar)
	}
}

// Inbox returns the conversation view of the authenticated user,
// creating it on first use.
func (s *Session) Inbox() (*conversation.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Authenticated || s.user == nil {
		return nil, ErrNotAuthenticated
	}
	if s.inbox == nil {
		s.inbox = conversation.NewView(s.api, *s.user, s.logger)
	}
	return s.inbox, nil
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) expired(at time.Time, ttl time.Duration) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return at.Sub(s.lastSeen) > ttl
}

func (s *Session) close() {
	if s.cancel != nil {
		s.cancel()
	}
}
