package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// BackendRequest is one GraphQL request received by a FakeBackend.
type BackendRequest struct {
	Query         string
	Variables     map[string]any
	Authorization string
}

// has reports whether the query selects field.
func (r BackendRequest) has(field string) bool {
	return strings.Contains(r.Query, field+"(") || strings.Contains(r.Query, field+"\n") ||
		strings.Contains(r.Query, field+" ") || strings.Contains(r.Query, field+"}")
}

// Responder produces the JSON response body for one request.
type Responder func(req BackendRequest) any

// FakeBackend is an httptest GraphQL server that records every request
// and answers by root field name.
type FakeBackend struct {
	*httptest.Server

	mu       sync.Mutex
	requests []BackendRequest
	handlers map[string]Responder
}

// NewFakeBackend starts a backend that is closed when the test ends.
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()
	fb := &FakeBackend{handlers: map[string]Responder{}}
	fb.Server = httptest.NewServer(http.HandlerFunc(fb.serve))
	t.Cleanup(fb.Close)
	return fb
}

// Handle registers a responder for a root field name.
func (fb *FakeBackend) Handle(field string, fn Responder) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.handlers[field] = fn
}

// HandleData answers field with {"data": {field: value}}.
func (fb *FakeBackend) HandleData(field string, value any) {
	fb.Handle(field, func(BackendRequest) any {
		return map[string]any{"data": map[string]any{field: value}}
	})
}

// HandleErrors answers field with an errors array.
func (fb *FakeBackend) HandleErrors(field string, messages ...string) {
	fb.Handle(field, func(BackendRequest) any {
		errs := make([]map[string]any, 0, len(messages))
		for _, m := range messages {
			errs = append(errs, map[string]any{"message": m})
		}
		return map[string]any{"data": nil, "errors": errs}
	})
}

// Requests returns a copy of every request received so far.
func (fb *FakeBackend) Requests() []BackendRequest {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	out := make([]BackendRequest, len(fb.requests))
	copy(out, fb.requests)
	return out
}

// Count returns how many requests asked for field.
func (fb *FakeBackend) Count(field string) int {
	n := 0
	for _, r := range fb.Requests() {
		if r.has(field) {
			n++
		}
	}
	return n
}

func (fb *FakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	var req struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	br := BackendRequest{
		Query:         req.Query,
		Variables:     req.Variables,
		Authorization: r.Header.Get("Authorization"),
	}

	fb.mu.Lock()
	fb.requests = append(fb.requests, br)
	var fn Responder
	for field, h := range fb.handlers {
		if br.has(field) {
			fn = h
			break
		}
	}
	fb.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if fn == nil {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"errors": []map[string]any{{"message": "no fake handler for query"}},
		})
		return
	}
	_ = json.NewEncoder(w).Encode(fn(br))
}

// ValidToken returns an unsigned-verification JWT that expires in an hour.
func ValidToken() string {
	return tokenExpiring(time.Now().Add(time.Hour))
}

// ExpiredToken returns a JWT whose exp is in the past.
func ExpiredToken() string {
	return tokenExpiring(time.Now().Add(-time.Hour))
}

func tokenExpiring(exp time.Time) string {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "test-user",
		"exp": exp.Unix(),
	})
	s, err := tok.SignedString([]byte("test-signing-key"))
	if err != nil {
		panic(err)
	}
	return s
}

// Credential is a gateway credential backed by a fixed token.
type Credential struct {
	mu        sync.Mutex
	token     string
	valid     bool
	loggedOut bool
}

// NewCredential returns a credential that reports valid.
func NewCredential() *Credential {
	return &Credential{token: ValidToken(), valid: true}
}

// NewExpiredCredential returns a credential that reports invalid.
func NewExpiredCredential() *Credential {
	return &Credential{token: ExpiredToken()}
}

func (c *Credential) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *Credential) IsValid() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.valid && !c.loggedOut
}

func (c *Credential) Logout() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loggedOut = true
	c.token = ""
}

// LoggedOut reports whether Logout was called.
func (c *Credential) LoggedOut() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loggedOut
}
