// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/leadhub/internal/app/store/audit"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging for authentication events (login, logout, session expiry).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Auth string
	// Admin controls logging for record changes (accounts, leads, bulk actions, imports).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Admin string
}

// Logger provides convenience methods for logging audit events.
// It logs to both MongoDB (via audit.Store) and structured logs (via zap).
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// getClientIP extracts the client IP from the request.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}

	if event.Actor != "" {
		fields = append(fields, zap.String("actor", event.Actor))
	}
	if event.SessionID != "" {
		fields = append(fields, zap.String("session_id", event.SessionID))
	}
	if event.Subject != "" {
		fields = append(fields, zap.String("subject", event.Subject))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// A nil Logger is a no-op.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	default:
		setting = "all"
	}

	if setting == "off" {
		return
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}

	if (setting == "all" || setting == "db") && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func (l *Logger) event(r *http.Request, category, eventType, actor string) audit.Event {
	return audit.Event{
		Category:  category,
		EventType: eventType,
		Actor:     actor,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	}
}

// --- Authentication Events ---

// LoginSuccess logs a successful login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, sessionID, email string, level int) {
	e := l.event(r, audit.CategoryAuth, audit.EventLoginSuccess, email)
	e.SessionID = sessionID
	e.Details = map[string]string{"level": strconv.Itoa(level)}
	l.Log(ctx, e)
}

// LoginFailed logs a login the backend rejected.
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, email, reason string) {
	e := l.event(r, audit.CategoryAuth, audit.EventLoginFailed, email)
	e.Success = false
	e.FailureReason = reason
	l.Log(ctx, e)
}

// LoginRateLimited logs a login refused by the per-IP limiter.
func (l *Logger) LoginRateLimited(ctx context.Context, r *http.Request, email string) {
	e := l.event(r, audit.CategoryAuth, audit.EventLoginFailedRateLimit, email)
	e.Success = false
	e.FailureReason = "rate limit exceeded"
	l.Log(ctx, e)
}

// LoginDenied logs a login whose level is too low for the dashboard.
func (l *Logger) LoginDenied(ctx context.Context, r *http.Request, email string, level int) {
	e := l.event(r, audit.CategoryAuth, audit.EventLoginDeniedLevel, email)
	e.Success = false
	e.FailureReason = "insufficient level"
	e.Details = map[string]string{"level": strconv.Itoa(level)}
	l.Log(ctx, e)
}

// Logout logs a user logout.
func (l *Logger) Logout(ctx context.Context, r *http.Request, sessionID, email string) {
	e := l.event(r, audit.CategoryAuth, audit.EventLogout, email)
	e.SessionID = sessionID
	l.Log(ctx, e)
}

// SessionExpired logs a request that found its backend token expired.
func (l *Logger) SessionExpired(ctx context.Context, r *http.Request, sessionID, email string) {
	e := l.event(r, audit.CategoryAuth, audit.EventSessionExpired, email)
	e.SessionID = sessionID
	l.Log(ctx, e)
}

// --- Record Events ---

// AccountCreated logs creation of an account.
func (l *Logger) AccountCreated(ctx context.Context, r *http.Request, actor, email string) {
	e := l.event(r, audit.CategoryAdmin, audit.EventAccountCreated, actor)
	e.Subject = email
	l.Log(ctx, e)
}

// AccountUpdated logs an account edit.
func (l *Logger) AccountUpdated(ctx context.Context, r *http.Request, actor, id, level string) {
	e := l.event(r, audit.CategoryAdmin, audit.EventAccountUpdated, actor)
	e.Subject = id
	if level != "" {
		e.Details = map[string]string{"level": level}
	}
	l.Log(ctx, e)
}

// LeadUpdated logs a lead edit.
func (l *Logger) LeadUpdated(ctx context.Context, r *http.Request, actor, id string) {
	e := l.event(r, audit.CategoryAdmin, audit.EventLeadUpdated, actor)
	e.Subject = id
	l.Log(ctx, e)
}

// MemoUpdated logs a memo edit.
func (l *Logger) MemoUpdated(ctx context.Context, r *http.Request, actor, id string) {
	e := l.event(r, audit.CategoryAdmin, audit.EventMemoUpdated, actor)
	e.Subject = id
	l.Log(ctx, e)
}

// Bulk logs a finished bulk action. action is "delete", "manager" or "type".
func (l *Logger) Bulk(ctx context.Context, r *http.Request, actor, screen, action, target string, total, failed int) {
	var eventType string
	switch action {
	case "manager":
		eventType = audit.EventBulkManager
	case "type":
		eventType = audit.EventBulkType
	default:
		eventType = audit.EventBulkDelete
	}
	e := l.event(r, audit.CategoryAdmin, eventType, actor)
	e.Success = failed == 0
	e.Details = map[string]string{
		"screen": screen,
		"total":  strconv.Itoa(total),
		"failed": strconv.Itoa(failed),
	}
	if target != "" {
		e.Details["target"] = target
	}
	l.Log(ctx, e)
}

// LeadImport logs a confirmed spreadsheet import.
func (l *Logger) LeadImport(ctx context.Context, r *http.Request, actor, screen string, total, created, failed int) {
	e := l.event(r, audit.CategoryAdmin, audit.EventLeadImport, actor)
	e.Success = failed == 0
	e.Details = map[string]string{
		"screen":  screen,
		"total":   strconv.Itoa(total),
		"created": strconv.Itoa(created),
		"failed":  strconv.Itoa(failed),
	}
	l.Log(ctx, e)
}
