// Package testutil provides a fake webmail backend for package tests.
package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/nhle/mailassist/internal/api"
)

// Request is a request recorded by the fake backend.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   string
	Cookie string
}

// Backend is an httptest server whose routes are keyed by "METHOD /path".
type Backend struct {
	*httptest.Server

	mu       sync.Mutex
	handlers map[string]http.HandlerFunc
	requests []Request
}

// NewBackend starts a fake backend that is closed when the test completes.
// Unregistered routes answer 404.
func NewBackend(t *testing.T) *Backend {
	t.Helper()

	b := &Backend{handlers: make(map[string]http.HandlerFunc)}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Close)
	return b
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	var cookie string
	if c, err := r.Cookie(api.SessionCookieName); err == nil {
		cookie = c.Value
	}

	key := r.Method + " " + r.URL.Path
	b.mu.Lock()
	b.requests = append(b.requests, Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Body:   string(body),
		Cookie: cookie,
	})
	h, ok := b.handlers[key]
	b.mu.Unlock()

	if !ok {
		WriteJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	h(w, r)
}

// Handle registers h for pattern ("METHOD /path"), replacing any previous handler.
func (b *Backend) Handle(pattern string, h http.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[pattern] = h
}

// JSON registers a fixed JSON response for pattern.
func (b *Backend) JSON(pattern string, status int, body any) {
	b.Handle(pattern, func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, status, body)
	})
}

// Requests returns the recorded requests matching pattern.
func (b *Backend) Requests(pattern string) []Request {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []Request
	for _, r := range b.requests {
		if r.Method+" "+r.Path == pattern {
			out = append(out, r)
		}
	}
	return out
}

// Count returns the number of recorded requests matching pattern.
func (b *Backend) Count(pattern string) int {
	return len(b.Requests(pattern))
}

// Total returns the number of recorded requests.
func (b *Backend) Total() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests)
}

// Client returns an API client pointed at the backend.
func (b *Backend) Client(t *testing.T, opts ...api.Option) *api.Client {
	t.Helper()

	c, err := api.NewClient(b.URL, opts...)
	if err != nil {
		t.Fatalf("creating api client: %v", err)
	}
	return c
}

// WriteJSON writes body as a JSON response.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
