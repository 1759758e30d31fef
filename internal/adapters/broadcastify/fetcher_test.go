package broadcastify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/NotJoeMartinez/broadcastify-cli/internal/core/domain"
)

func newTestFetcher(baseURL string) *Fetcher {
	f := NewFetcher(NewSeededUserAgentRotator(1), testLogger())
	f.baseURL = baseURL
	return f
}

func testSegment(t *testing.T, id string) domain.Segment {
	t.Helper()
	date, err := domain.ParseArchiveDate("06/01/2024")
	if err != nil {
		t.Fatal(err)
	}
	return domain.Segment{ID: id, Feed: "123", Date: date}
}

func TestFetchWritesFileNamedAfterFinalURL(t *testing.T) {
	payload := []byte("mp3 bytes go here")

	mux := http.NewServeMux()
	mux.HandleFunc("/123/20240601/seg1", func(w http.ResponseWriter, r *http.Request) {
		if cookie := r.Header.Get("Cookie"); cookie != "bcfyuser1=tok" {
			t.Errorf("Cookie = %q", cookie)
		}
		// The real server redirects to a CDN-backed filename.
		http.Redirect(w, r, "/media/20240601090452-466796-123.mp3", http.StatusFound)
	})
	mux.HandleFunc("/media/20240601090452-466796-123.mp3", func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	destDir := filepath.Join(t.TempDir(), "archives", "123", "06012024")
	fetcher := newTestFetcher(server.URL)

	result := fetcher.Fetch(context.Background(), testSegment(t, "seg1"), destDir, domain.Session{Token: "tok"})
	if !result.OK() {
		t.Fatalf("fetch failed: status=%d err=%v", result.Status, result.Err)
	}

	wantPath := filepath.Join(destDir, "20240601090452-466796-123.mp3")
	if result.Path != wantPath {
		t.Errorf("Path = %q, want %q", result.Path, wantPath)
	}
	data, err := os.ReadFile(wantPath)
	if err != nil {
		t.Fatalf("read downloaded file: %v", err)
	}
	if string(data) != string(payload) {
		t.Errorf("file content = %q, want %q", data, payload)
	}
}

func TestFetchOverwritesExistingFile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/123/20240601/seg1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("new content"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	destDir := t.TempDir()
	existing := filepath.Join(destDir, "seg1")
	if err := os.WriteFile(existing, []byte("old content"), 0644); err != nil {
		t.Fatal(err)
	}

	fetcher := newTestFetcher(server.URL)
	result := fetcher.Fetch(context.Background(), testSegment(t, "seg1"), destDir, domain.Session{Token: "tok"})
	if !result.OK() {
		t.Fatalf("fetch failed: %+v", result)
	}

	data, err := os.ReadFile(existing)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "new content" {
		t.Errorf("file content = %q, want new content", data)
	}
}

func TestFetchNon200IsAResultNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("no such archive"))
	}))
	defer server.Close()

	destDir := t.TempDir()
	fetcher := newTestFetcher(server.URL)

	result := fetcher.Fetch(context.Background(), testSegment(t, "missing"), destDir, domain.Session{Token: "tok"})
	if result.OK() {
		t.Fatal("expected failure result")
	}
	if result.Err != nil {
		t.Fatalf("non-200 must not be a transport error: %v", result.Err)
	}
	if result.Status != http.StatusNotFound {
		t.Errorf("Status = %d, want 404", result.Status)
	}
	if result.Body != "no such archive" {
		t.Errorf("Body = %q", result.Body)
	}

	entries, err := os.ReadDir(destDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("failed fetch wrote files: %v", entries)
	}
}

func TestFetchClassifiesInvalidSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	fetcher := newTestFetcher(server.URL)
	result := fetcher.Fetch(context.Background(), testSegment(t, "seg1"), t.TempDir(), domain.Session{Token: "stale"})
	if !result.InvalidSession() {
		t.Errorf("expected invalid-session classification for status %d", result.Status)
	}
}

func TestFetchTransportError(t *testing.T) {
	fetcher := newTestFetcher("http://127.0.0.1:1")

	result := fetcher.Fetch(context.Background(), testSegment(t, "seg1"), t.TempDir(), domain.Session{Token: "tok"})
	if result.Err == nil {
		t.Fatal("expected transport error")
	}
	if result.OK() {
		t.Fatal("transport error must not be OK")
	}
}
