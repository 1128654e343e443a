package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Viherino/iss-bolha-frontend/internal/marketplace"
)

// fakeAuthBackend implements just enough of the marketplace auth API
// for session lifecycle tests.
type fakeAuthBackend struct {
	mu          sync.Mutex
	meOK        bool
	loginOK     bool
	registerOK  bool
	logoutFails bool
	calls       []string
}

func (f *fakeAuthBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.calls = append(f.calls, r.Method+" "+r.URL.Path)
	f.mu.Unlock()

	user := map[string]any{"id": int64(1), "username": "ana", "email": "ana@bolha.si"}
	switch r.URL.Path {
	case "/auth/me":
		if !f.meOK {
			writeMessage(w, http.StatusUnauthorized, "Niste prijavljeni")
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"user": user})
	case "/auth/login":
		if !f.loginOK {
			writeMessage(w, http.StatusUnauthorized, "Napačna e-pošta ali geslo")
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "sid", Value: "upstream"})
		json.NewEncoder(w).Encode(map[string]any{"user": user})
	case "/auth/register":
		if !f.registerOK {
			writeMessage(w, http.StatusConflict, "Uporabnik že obstaja")
			return
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(user)
	case "/auth/logout":
		if f.logoutFails {
			writeMessage(w, http.StatusInternalServerError, "backend down")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.NotFound(w, r)
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

func newTestStore(t *testing.T, backend *fakeAuthBackend) *Store {
	t.Helper()
	server := httptest.NewServer(backend)
	t.Cleanup(server.Close)
	api, err := marketplace.New(server.URL, 5*time.Second, nil)
	if err != nil {
		t.Fatalf("marketplace.New: %v", err)
	}
	return NewStore(api, time.Hour, nil)
}

// checkInvariant asserts that IsLoggedIn and User()!=nil always agree.
func checkInvariant(t *testing.T, s *Session) {
	t.Helper()
	loggedIn := s.IsLoggedIn()
	hasUser := s.User() != nil
	if loggedIn != hasUser {
		t.Fatalf("invariant broken: IsLoggedIn=%v but user present=%v", loggedIn, hasUser)
	}
}

func TestBootstrapResolvesAuthenticated(t *testing.T) {
	store := newTestStore(t, &fakeAuthBackend{meOK: true})
	sess, err := store.Create(context.Background())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got := sess.State(); got != Authenticated {
		t.Errorf("state = %v, want authenticated", got)
	}
	if user := sess.User(); user == nil || user.ID != 1 {
		t.Errorf("user = %+v, want id 1", user)
	}
	checkInvariant(t, sess)
}

func TestBootstrapResolvesAnonymousOnFailure(t *testing.T) {
	store := newTestStore(t, &fakeAuthBackend{meOK: false})
	sess, err := store.Create(context.Background())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got := sess.State(); got != Anonymous {
		t.Errorf("state = %v, want anonymous", got)
	}
	checkInvariant(t, sess)
}

func TestBootstrapRunsOnce(t *testing.T) {
	backend := &fakeAuthBackend{meOK: false}
	store := newTestStore(t, backend)
	sess, _ := store.Create(context.Background())

	// A second bootstrap must be a no-op even if the backend would now
	// answer differently.
	backend.mu.Lock()
	backend.meOK = true
	calls := len(backend.calls)
	backend.mu.Unlock()

	sess.bootstrap(context.Background())
	if got := sess.State(); got != Anonymous {
		t.Errorf("state changed after settled bootstrap: %v", got)
	}
	backend.mu.Lock()
	defer backend.mu.Unlock()
	if len(backend.calls) != calls {
		t.Errorf("bootstrap re-issued identity check: %v", backend.calls)
	}
}

func TestLoginTransitions(t *testing.T) {
	backend := &fakeAuthBackend{meOK: false, loginOK: false}
	store := newTestStore(t, backend)
	sess, _ := store.Create(context.Background())
	ctx := context.Background()

	if _, err := sess.Login(ctx, "ana@bolha.si", "narobe"); err == nil {
		t.Fatal("expected login failure")
	}
	if sess.State() != Anonymous {
		t.Error("failed login must leave state unchanged")
	}
	checkInvariant(t, sess)

	backend.mu.Lock()
	backend.loginOK = true
	backend.mu.Unlock()

	user, err := sess.Login(ctx, "ana@bolha.si", "geslo123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.ID != 1 || sess.State() != Authenticated {
		t.Errorf("after login: user=%+v state=%v", user, sess.State())
	}
	checkInvariant(t, sess)
}

func TestRegisterNeverMutatesState(t *testing.T) {
	backend := &fakeAuthBackend{meOK: false, registerOK: true}
	store := newTestStore(t, backend)
	sess, _ := store.Create(context.Background())

	created, err := sess.Register(context.Background(), marketplace.RegisterParams{
		Username: "ana", Email: "ana@bolha.si", Password: "geslo123",
		FirstName: "Ana", LastName: "Novak",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if created == nil {
		t.Fatal("expected created account payload")
	}
	if sess.State() != Anonymous {
		t.Errorf("register changed session state to %v", sess.State())
	}
	checkInvariant(t, sess)
}

func TestLogoutFailOpen(t *testing.T) {
	tests := []struct {
		name        string
		logoutFails bool
	}{
		{name: "backend succeeds", logoutFails: false},
		{name: "backend fails", logoutFails: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeAuthBackend{loginOK: true, logoutFails: tt.logoutFails}
			store := newTestStore(t, backend)
			sess, _ := store.Create(context.Background())
			ctx := context.Background()

			if _, err := sess.Login(ctx, "ana@bolha.si", "geslo123"); err != nil {
				t.Fatalf("login: %v", err)
			}
			sess.Logout(ctx)
			if sess.State() != Anonymous {
				t.Errorf("state after logout = %v, want anonymous", sess.State())
			}
			if sess.User() != nil {
				t.Error("user still set after logout")
			}
			checkInvariant(t, sess)
		})
	}
}

func TestInboxRequiresAuthentication(t *testing.T) {
	store := newTestStore(t, &fakeAuthBackend{})
	sess, _ := store.Create(context.Background())
	if _, err := sess.Inbox(); err != ErrNotAuthenticated {
		t.Errorf("Inbox err = %v, want ErrNotAuthenticated", err)
	}
}

func TestStoreLookupAndEviction(t *testing.T) {
	store := newTestStore(t, &fakeAuthBackend{})
	sess, _ := store.Create(context.Background())

	if _, ok := store.Lookup(sess.ID()); !ok {
		t.Fatal("freshly created session not found")
	}
	if _, ok := store.Lookup("neznan-id"); ok {
		t.Error("unknown id resolved to a session")
	}
	if store.Len() != 1 {
		t.Errorf("Len = %d, want 1", store.Len())
	}

	store.evictExpired(time.Now().Add(2 * time.Hour))
	if _, ok := store.Lookup(sess.ID()); ok {
		t.Error("expired session still resolvable")
	}
	select {
	case <-sess.Context().Done():
	default:
		t.Error("evicted session context not cancelled")
	}
}
