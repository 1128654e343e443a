package marketplace

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := New(server.URL, 5*time.Second, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client, server
}

func TestNewValidatesBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		wantErr bool
	}{
		{name: "http url", baseURL: "http://localhost:8000", wantErr: false},
		{name: "https url", baseURL: "https://api.bolha.example", wantErr: false},
		{name: "trailing slash trimmed", baseURL: "http://localhost:8000/", wantErr: false},
		{name: "empty", baseURL: "", wantErr: true},
		{name: "whitespace", baseURL: "   ", wantErr: true},
		{name: "bad scheme", baseURL: "ftp://localhost", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.baseURL, time.Second, nil)
			if (err != nil) != tt.wantErr {
				t.Errorf("New(%q) error = %v, wantErr %v", tt.baseURL, err, tt.wantErr)
			}
		})
	}
}

func TestErrorMessageSurfacedVerbatim(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "Napačno geslo"})
	}))

	_, err := client.Login(context.Background(), "a@b.si", "wrong")
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsAPIError(err) {
		t.Fatalf("expected API error, got %T", err)
	}
	if got := err.Error(); got != "Napačno geslo" {
		t.Errorf("error message = %q, want backend message verbatim", got)
	}
}

func TestErrorFallbackWithoutBody(t *testing.T) {
	statuses := []int{http.StatusNotFound, http.StatusInternalServerError, http.StatusBadRequest}
	for _, status := range statuses {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		_, err := client.Me(context.Background())
		if err == nil {
			t.Fatalf("status %d: expected error", status)
		}
		var apiErr *Error
		if !IsAPIError(err) {
			t.Fatalf("status %d: expected API error, got %v", status, err)
		}
		if apiErr = err.(*Error); apiErr.StatusCode != status {
			t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, status)
		}
		if apiErr.Message != "" {
			t.Errorf("Message = %q, want empty fallback", apiErr.Message)
		}
	}
}

func TestSendMessageEmptyContentSkipsNetwork(t *testing.T) {
	var requests int64
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&requests, 1)
	}))

	for _, content := range []string{"", "   ", "\n\t "} {
		err := client.SendMessage(context.Background(), SendMessageParams{
			Content: content, RecipientID: 2, ListingID: 10,
		})
		if err != ErrEmptyContent {
			t.Errorf("content %q: err = %v, want ErrEmptyContent", content, err)
		}
	}
	if n := atomic.LoadInt64(&requests); n != 0 {
		t.Errorf("issued %d requests for whitespace-only content, want 0", n)
	}
}

func TestEndpointPaths(t *testing.T) {
	var gotMethod, gotPath, gotQuery string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath, gotQuery = r.Method, r.URL.Path, r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("[]"))
	}))
	ctx := context.Background()

	tests := []struct {
		name       string
		call       func() error
		wantMethod string
		wantPath   string
		wantQuery  string
	}{
		{
			name:       "conversations",
			call:       func() error { _, err := client.Conversations(ctx); return err },
			wantMethod: http.MethodGet, wantPath: "/message/conversations",
		},
		{
			name:       "thread",
			call:       func() error { _, err := client.Thread(ctx, 10, 2); return err },
			wantMethod: http.MethodGet, wantPath: "/message/conversation/10/2",
		},
		{
			name:       "mark read",
			call:       func() error { return client.MarkRead(ctx, 10, 2) },
			wantMethod: http.MethodPost, wantPath: "/message/mark-read/10/2",
		},
		{
			name:       "delete conversation",
			call:       func() error { return client.DeleteConversation(ctx, 10, 2) },
			wantMethod: http.MethodDelete, wantPath: "/message/delete-conversation/10/2",
		},
		{
			name:       "search listings",
			call:       func() error { _, err := client.SearchListings(ctx, "kolo", 3); return err },
			wantMethod: http.MethodGet, wantPath: "/listing/search", wantQuery: "category=3&q=kolo",
		},
		{
			name:       "search without filters falls back to listing",
			call:       func() error { _, err := client.SearchListings(ctx, "", 0); return err },
			wantMethod: http.MethodGet, wantPath: "/listing",
		},
		{
			name:       "my listings",
			call:       func() error { _, err := client.MyListings(ctx); return err },
			wantMethod: http.MethodGet, wantPath: "/listing/my-listings",
		},
		{
			name:       "categories",
			call:       func() error { _, err := client.Categories(ctx); return err },
			wantMethod: http.MethodGet, wantPath: "/category",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); err != nil {
				t.Fatalf("call: %v", err)
			}
			if gotMethod != tt.wantMethod || gotPath != tt.wantPath {
				t.Errorf("request = %s %s, want %s %s", gotMethod, gotPath, tt.wantMethod, tt.wantPath)
			}
			if tt.wantQuery != "" && gotQuery != tt.wantQuery {
				t.Errorf("query = %q, want %q", gotQuery, tt.wantQuery)
			}
		})
	}
}

func TestForJarIsolatesCookies(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			http.SetCookie(w, &http.Cookie{Name: "sid", Value: "abc"})
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"user":{"id":1,"username":"ana"}}`))
		case "/auth/me":
			if _, err := r.Cookie("sid"); err != nil {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"user":{"id":1,"username":"ana"}}`))
		}
	}))

	jarA, _ := cookiejar.New(nil)
	jarB, _ := cookiejar.New(nil)
	clientA := client.ForJar(jarA)
	clientB := client.ForJar(jarB)
	ctx := context.Background()

	if _, err := clientA.Login(ctx, "ana@bolha.si", "geslo123"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := clientA.Me(ctx); err != nil {
		t.Errorf("client with login cookie: Me failed: %v", err)
	}
	if _, err := clientB.Me(ctx); err == nil {
		t.Error("client with separate jar unexpectedly authenticated")
	}
}
