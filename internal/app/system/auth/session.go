// internal/app/system/auth/session.go
package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// LeastPrivilegedLevel is assigned when the level cannot be resolved.
const LeastPrivilegedLevel = 7

// DashboardLevel is the highest level admitted to the dashboard.
const DashboardLevel = 4

// ErrNoLevel is returned by ResolveLevel when the backend reports no level.
var ErrNoLevel = errors.New("no user level")

// NoLevelMessage is shown on the login page for ErrNoLevel.
const NoLevelMessage = "Your account does not have sufficient privileges."

// LevelFunc performs the backend "who am I" call.
type LevelFunc func(ctx context.Context) (int, error)

// Session is the session/role state of one signed-in browser: the backend
// token and the numeric level derived from it. It is constructed per
// session and passed explicitly to the gateway and the entity stores.
type Session struct {
	mu    sync.Mutex
	id    string
	token string
	level int // 0 until resolved
	now   func() time.Time
}

// NewSession returns an empty session. id may be blank; Login assigns one.
func NewSession(id string) *Session {
	return &Session{id: id, now: time.Now}
}

// ID returns the session identifier used for per-session state.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Login stores the token, activates the session and forgets any level so
// that it is re-derived for the new token.
func (s *Session) Login(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.level = 0
	if s.id == "" {
		s.id = uuid.NewString()
	}
}

// Logout clears the token and level.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.level = 0
}

// Token returns the stored backend token.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// IsValid reports whether a token is present and its exp claim has not
// passed. The signature is not verified; the backend owns the key.
func (s *Session) IsValid() bool {
	s.mu.Lock()
	tok, now := s.token, s.now
	s.mu.Unlock()
	return tokenValid(tok, now())
}

// Level returns the resolved level, or 0 if not yet resolved.
func (s *Session) Level() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.level
}

// SetLevel records a level restored from the session cookie.
func (s *Session) SetLevel(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.level = n
}

// ResolveLevel makes the one-time who-am-I call. A resolved level is
// returned without calling again. If the call fails or yields no level,
// the level becomes LeastPrivilegedLevel and the session is logged out.
func (s *Session) ResolveLevel(ctx context.Context, whoAmI LevelFunc) (int, error) {
	if lvl := s.Level(); lvl > 0 {
		return lvl, nil
	}
	if !s.IsValid() {
		s.Logout()
		s.SetLevel(LeastPrivilegedLevel)
		return LeastPrivilegedLevel, ErrNoLevel
	}

	lvl, err := whoAmI(ctx)
	if err == nil && lvl <= 0 {
		err = ErrNoLevel
	}
	if err != nil {
		s.Logout()
		s.SetLevel(LeastPrivilegedLevel)
		return LeastPrivilegedLevel, err
	}

	s.SetLevel(lvl)
	return lvl, nil
}

func tokenValid(token string, now time.Time) bool {
	if token == "" {
		return false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return false
	}
	if exp == nil {
		return true
	}
	return now.Before(exp.Time)
}
