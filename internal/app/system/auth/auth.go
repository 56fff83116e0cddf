package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session cookie keys                                                         |
*─────────────────────────────────────────────────────────────────────────────*/

const (
	sessionIDKey = "session_id"
	tokenKey     = "token"
	levelKey     = "user_level"
	emailKey     = "user_email"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Current-User helper                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionUser is what we inject into r.Context() for a signed-in request.
type SessionUser struct {
	ID      string // session id
	Email   string
	Level   int
	Session *Session
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & "found?" flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok && u != nil
}

// WithTestUser injects u into the request context. Intended for tests.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

/*─────────────────────────────────────────────────────────────────────────────*
| SessionManager                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

// LevelResolver resolves the level of a session whose cookie carries none.
type LevelResolver func(ctx context.Context, s *Session) (int, error)

// SessionManager keeps the backend token and resolved level in a signed
// cookie and rebuilds a *Session from it on every request.
type SessionManager struct {
	store    *sessions.CookieStore
	name     string
	log      *zap.Logger
	resolver LevelResolver
}

// NewSessionManager builds the cookie store.
//
// In production (secure=true), cookies are Secure + SameSite=None.
// In local dev over http://localhost, use secure=false so cookies are accepted.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		name = "leadhub-session"
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	store.MaxAge(int(maxAge.Seconds()))
	store.Options.Domain = domain
	store.Options.Path = "/"
	store.Options.Secure = secure
	store.Options.HttpOnly = true
	if secure {
		store.Options.SameSite = http.SameSiteNoneMode
	} else {
		store.Options.SameSite = http.SameSiteLaxMode
	}

	logger.Info("session store initialized",
		zap.Bool("secure", secure),
		zap.String("domain", domain),
		zap.Duration("max_age", maxAge))

	return &SessionManager{store: store, name: name, log: logger}, nil
}

// SetLevelResolver installs the who-am-I lookup used when a signed-in
// cookie has no level yet.
func (sm *SessionManager) SetLevelResolver(fn LevelResolver) { sm.resolver = fn }

// Store exposes the underlying cookie store (used by logout to mirror options).
func (sm *SessionManager) Store() *sessions.CookieStore { return sm.store }

// GetSession returns the raw cookie session.
func (sm *SessionManager) GetSession(r *http.Request) (*sessions.Session, error) {
	return sm.store.Get(r, sm.name)
}

// Save writes s and email into the cookie. A logged-out session is
// written as a deletion.
func (sm *SessionManager) Save(w http.ResponseWriter, r *http.Request, s *Session, email string) error {
	if s.Token() == "" {
		return sm.Destroy(w, r)
	}
	cs, _ := sm.store.Get(r, sm.name)
	cs.Values[sessionIDKey] = s.ID()
	cs.Values[tokenKey] = s.Token()
	cs.Values[levelKey] = s.Level()
	cs.Values[emailKey] = email
	return cs.Save(r, w)
}

// Destroy expires the cookie.
func (sm *SessionManager) Destroy(w http.ResponseWriter, r *http.Request) error {
	cs, _ := sm.store.Get(r, sm.name)
	cs.Values = map[any]any{}
	cs.Options.MaxAge = -1
	return cs.Save(r, w)
}

// Load rebuilds the *Session stored in the request cookie.
// ok is false when the cookie holds no token.
func (sm *SessionManager) Load(r *http.Request) (s *Session, email string, ok bool) {
	cs, err := sm.store.Get(r, sm.name)
	if err != nil {
		var scErr securecookie.Error
		if errors.As(err, &scErr) && scErr.IsDecode() {
			// rotated session key or a tampered cookie
			sm.log.Info("session cookie could not be decoded", zap.Error(err))
		}
		return nil, "", false
	}
	tok, _ := cs.Values[tokenKey].(string)
	if tok == "" {
		return nil, "", false
	}
	id, _ := cs.Values[sessionIDKey].(string)
	s = NewSession(id)
	s.Login(tok)
	if lvl, ok := cs.Values[levelKey].(int); ok {
		s.SetLevel(lvl)
	}
	email, _ = cs.Values[emailKey].(string)
	return s, email, true
}

// LoadSessionUser injects the user into context if the cookie carries a
// valid token. An expired token clears the cookie. A missing level is
// resolved once and written back.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, email, ok := sm.Load(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		if !s.IsValid() {
			if err := sm.Destroy(w, r); err != nil {
				sm.log.Warn("clear expired session cookie", zap.Error(err))
			}
			next.ServeHTTP(w, r)
			return
		}

		if s.Level() == 0 && sm.resolver != nil {
			if _, err := sm.resolver(r.Context(), s); err != nil {
				sm.log.Info("level resolution failed; signing out", zap.Error(err))
			}
			if err := sm.Save(w, r, s, email); err != nil {
				sm.log.Warn("save session", zap.Error(err))
			}
			if s.Token() == "" {
				next.ServeHTTP(w, r)
				return
			}
		}

		r = withUser(r, &SessionUser{
			ID:      s.ID(),
			Email:   email,
			Level:   s.Level(),
			Session: s,
		})
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn ensures there is a user in context (set by LoadSessionUser).
// If not signed in:
//   - HTMX: sends HX-Redirect to /login?return=...
//   - HTML: 303 redirect to /login?return=...
//   - API:  401 Unauthorized with a plain error body.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		redirectToLogin(w, r)
	})
}

// RequireLevel admits users whose level is numerically at most max
// (lower is more privileged).
func (sm *SessionManager) RequireLevel(max int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				redirectToLogin(w, r)
				return
			}
			if u.Level <= 0 || u.Level > max {
				if r.Header.Get("HX-Request") == "true" {
					w.Header().Set("HX-Redirect", "/forbidden")
					w.WriteHeader(http.StatusForbidden)
					return
				}
				if wantsHTML(r) {
					http.Redirect(w, r, "/forbidden", http.StatusSeeOther)
					return
				}
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// helpers

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	ret := url.QueryEscape(currentURI(r))

	// HTMX: full-page client redirect (no partial swap)
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/login?return="+ret)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if wantsHTML(r) {
		http.Redirect(w, r, "/login?return="+ret, http.StatusSeeOther)
		return
	}
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

func wantsHTML(r *http.Request) bool {
	if r.Header.Get("HX-Request") == "true" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func currentURI(r *http.Request) string {
	u := *r.URL
	return u.RequestURI()
}
