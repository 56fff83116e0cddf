// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers
// ports, TLS, log level and request limits; everything LeadHub needs on
// top of that lives here.
type AppConfig struct {
	// GraphQL backend that owns accounts and lead records
	GraphQLEndpoint string

	// MongoDB holds only the audit trail and the login ledger
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session cookie
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string
	SessionDomain string // blank means current host
	SessionMaxAge time.Duration

	// List screens
	AccountsPageSize int
	LeadsPageSize    int
	BulkConcurrency  int           // parallel backend calls per bulk action
	ListviewIdleTTL  time.Duration // idle list state is evicted after this

	// Login throttling, attempts per minute per client IP
	LoginRateLimit int

	// Audit logging: "all", "db", "log" or "off"
	AuditLogAuth  string
	AuditLogAdmin string

	// Ledger sessions with no heartbeat for this long are closed
	SessionInactiveAfter time.Duration

	// Import confirmations expire after this
	ImportJobTTL time.Duration

	TimeoutCall   time.Duration
	TimeoutBulk   time.Duration
	TimeoutImport time.Duration
}
