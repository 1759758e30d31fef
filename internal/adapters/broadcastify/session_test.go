package broadcastify

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/NotJoeMartinez/broadcastify-cli/internal/adapters/localstorage"
	"github.com/NotJoeMartinez/broadcastify-cli/internal/core/domain"
)

func testLogger() *log.Logger {
	return log.New(os.Stderr, "", 0)
}

func newTestProvider(t *testing.T, loginURL string) (*SessionProvider, *localstorage.Storage) {
	t.Helper()
	dir := t.TempDir()
	storage := localstorage.NewStorage(dir)
	storage.SessionPath = filepath.Join(dir, "cookies.json")
	provider := NewSessionProvider(storage, NewSeededUserAgentRotator(1), testLogger())
	if loginURL != "" {
		provider.loginURL = loginURL
	}
	return provider, storage
}

func TestAcquireLogsInAndPersists(t *testing.T) {
	t.Setenv(usernameEnv, "scanner")
	t.Setenv(passwordEnv, "hunter2")

	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.Method != http.MethodPost {
			t.Errorf("login method = %s, want POST", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.PostForm.Get("username"); got != "scanner" {
			t.Errorf("username = %q", got)
		}
		if got := r.PostForm.Get("action"); got != "auth" {
			t.Errorf("action = %q", got)
		}
		w.Header().Add("Set-Cookie", "bcfyuser1=tok123; Path=/; HttpOnly")
		w.Header().Set("Location", "https://www.broadcastify.com")
		w.WriteHeader(http.StatusFound)
	}))
	defer server.Close()

	provider, storage := newTestProvider(t, server.URL)

	session, err := provider.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if session.Token != "tok123" {
		t.Errorf("Token = %q, want tok123", session.Token)
	}
	if hits != 1 {
		t.Errorf("expected 1 login request, got %d", hits)
	}

	// A second provider over the same store must reuse the persisted
	// session without contacting upstream.
	again := NewSessionProvider(storage, NewSeededUserAgentRotator(1), testLogger())
	again.loginURL = "http://127.0.0.1:1/unreachable"

	session, err = again.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire from persisted session: %v", err)
	}
	if session.Token != "tok123" {
		t.Errorf("persisted Token = %q, want tok123", session.Token)
	}
	if hits != 1 {
		t.Errorf("persisted session triggered another login, hits = %d", hits)
	}
}

func TestAcquireMissingCredentials(t *testing.T) {
	t.Setenv(usernameEnv, "")
	t.Setenv(passwordEnv, "")

	provider, _ := newTestProvider(t, "")

	_, err := provider.Acquire(context.Background())
	var authErr *domain.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected *domain.AuthError, got %v", err)
	}
	if !errors.Is(err, domain.ErrMissingCredentials) {
		t.Errorf("error does not wrap ErrMissingCredentials: %v", err)
	}
}

func TestAcquireRejectedLogin(t *testing.T) {
	t.Setenv(usernameEnv, "scanner")
	t.Setenv(passwordEnv, "wrong")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK) // login page re-rendered, no redirect
	}))
	defer server.Close()

	provider, _ := newTestProvider(t, server.URL)

	_, err := provider.Acquire(context.Background())
	var authErr *domain.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected *domain.AuthError, got %v", err)
	}
}

func TestAcquireMissingCookie(t *testing.T) {
	t.Setenv(usernameEnv, "scanner")
	t.Setenv(passwordEnv, "hunter2")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", "https://www.broadcastify.com")
		w.WriteHeader(http.StatusFound) // redirect without a session cookie
	}))
	defer server.Close()

	provider, _ := newTestProvider(t, server.URL)

	_, err := provider.Acquire(context.Background())
	var authErr *domain.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected *domain.AuthError, got %v", err)
	}
}
