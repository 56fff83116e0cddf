// Package ratelimit throttles login attempts per client IP and per email.
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Messages shown on the login form when an attempt is throttled.
const (
	MsgTooManyFromIP   = "로그인 시도가 너무 많습니다. 잠시 후 다시 시도하세요."
	MsgTooManyForEmail = "이 계정의 로그인 시도가 너무 많습니다. 몇 분 후 다시 시도하세요."
)

const (
	defaultEmailLimit  = 5
	defaultEmailWindow = 5 * time.Minute
	defaultIPWindow    = time.Minute
)

// Limiter is a fixed-window counter keyed by string. It is safe for
// concurrent use.
type Limiter struct {
	mu       sync.Mutex
	windows  map[string]*window
	limit    int
	duration time.Duration
	now      func() time.Time
}

type window struct {
	count     int
	expiresAt time.Time
}

// New returns a limiter allowing limit hits per key per duration.
func New(limit int, duration time.Duration) *Limiter {
	return &Limiter{
		windows:  make(map[string]*window),
		limit:    limit,
		duration: duration,
		now:      time.Now,
	}
}

// Allow records a hit for key and reports whether it is within the limit.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || now.After(w.expiresAt) {
		l.windows[key] = &window{count: 1, expiresAt: now.Add(l.duration)}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}

// Remaining returns how many hits key has left in its current window.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || l.now().After(w.expiresAt) {
		return l.limit
	}
	if n := l.limit - w.count; n > 0 {
		return n
	}
	return 0
}

// Reset forgets key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}

// Sweep drops expired windows and returns how many were removed.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	n := 0
	for k, w := range l.windows {
		if now.After(w.expiresAt) {
			delete(l.windows, k)
			n++
		}
	}
	return n
}

// ClientIP returns the first X-Forwarded-For entry, then X-Real-IP, then
// the host part of RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
			return ip
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// LoginLimiter combines a per-IP and a per-email limiter.
type LoginLimiter struct {
	ip    *Limiter
	email *Limiter
}

// NewLoginLimiter allows perIP attempts per minute from one address and
// five attempts per five minutes against one email.
func NewLoginLimiter(perIP int) *LoginLimiter {
	if perIP <= 0 {
		perIP = 10
	}
	return &LoginLimiter{
		ip:    New(perIP, defaultIPWindow),
		email: New(defaultEmailLimit, defaultEmailWindow),
	}
}

// Check records an attempt and returns ("", true) if it may proceed, or
// the message to show when it is throttled.
func (ll *LoginLimiter) Check(r *http.Request, email string) (string, bool) {
	if !ll.ip.Allow(ClientIP(r)) {
		return MsgTooManyFromIP, false
	}
	if key := emailKey(email); key != "" && !ll.email.Allow(key) {
		return MsgTooManyForEmail, false
	}
	return "", true
}

// Succeeded clears the email counter after a good login.
func (ll *LoginLimiter) Succeeded(email string) {
	if key := emailKey(email); key != "" {
		ll.email.Reset(key)
	}
}

// Sweep drops expired windows from both limiters.
func (ll *LoginLimiter) Sweep() int {
	return ll.ip.Sweep() + ll.email.Sweep()
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
