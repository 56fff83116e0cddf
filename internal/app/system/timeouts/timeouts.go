// Package timeouts holds the deadlines applied to outbound work.
//
// LeadHub does almost all of its I/O against the GraphQL backend, so the
// buckets follow the shape of that traffic:
//   - Ping: health checks against Mongo
//   - Ledger: single session-ledger or audit writes
//   - Call: one backend round trip (a list page, an update, a login)
//   - Bulk: a bounded fan-out over a selection
//   - Import: a serial spreadsheet import
package timeouts

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Defaults used until Configure is called.
const (
	DefaultPing   = 2 * time.Second
	DefaultLedger = 5 * time.Second
	DefaultCall   = 10 * time.Second
	DefaultBulk   = 60 * time.Second
	DefaultImport = 5 * time.Minute
)

// Config holds timeout values. Zero values are ignored.
type Config struct {
	Ping   time.Duration
	Ledger time.Duration
	Call   time.Duration
	Bulk   time.Duration
	Import time.Duration
}

var (
	mu  sync.RWMutex
	cur = defaults()
)

func defaults() Config {
	return Config{
		Ping:   DefaultPing,
		Ledger: DefaultLedger,
		Call:   DefaultCall,
		Bulk:   DefaultBulk,
		Import: DefaultImport,
	}
}

func get(pick func(Config) time.Duration) time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return pick(cur)
}

// Ping is the health check deadline.
func Ping() time.Duration { return get(func(c Config) time.Duration { return c.Ping }) }

// Ledger is the deadline for one session-ledger or audit write.
func Ledger() time.Duration { return get(func(c Config) time.Duration { return c.Ledger }) }

// Call is the deadline for a single backend request.
func Call() time.Duration { return get(func(c Config) time.Duration { return c.Call }) }

// Bulk is the deadline for a whole bulk action.
func Bulk() time.Duration { return get(func(c Config) time.Duration { return c.Bulk }) }

// Import is the deadline for a whole spreadsheet import.
func Import() time.Duration { return get(func(c Config) time.Duration { return c.Import }) }

// Configure overrides the non-zero values of cfg. Call it at startup.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	set := func(dst *time.Duration, v time.Duration) {
		if v > 0 {
			*dst = v
		}
	}
	set(&cur.Ping, cfg.Ping)
	set(&cur.Ledger, cfg.Ledger)
	set(&cur.Call, cfg.Call)
	set(&cur.Bulk, cfg.Bulk)
	set(&cur.Import, cfg.Import)
}

// Reset restores the defaults. Used by tests.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	cur = defaults()
}

// Current returns the active configuration.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cur
}

// WithTimeout is context.WithTimeout whose cancel logs a warning when the
// deadline was the reason the work stopped.
//
//	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Bulk(), h.Log, "bulk delete")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
