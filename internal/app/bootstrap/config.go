// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"net/url"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for LeadHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: graphql_endpoint, session_name, etc.
//   - Environment variables: LEADHUB_GRAPHQL_ENDPOINT, LEADHUB_SESSION_NAME, etc.
//   - Command-line flags: --graphql_endpoint, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "graphql_endpoint", Default: "http://localhost:4000/graphql", Desc: "GraphQL backend URL"},

	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI (audit trail and login ledger)"},
	{Name: "mongo_database", Default: "leadhub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "leadhub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "24h", Desc: "Session cookie lifetime"},

	// List screens
	{Name: "accounts_page_size", Default: 10, Desc: "Rows per page on the account screen (10, 30 or 100)"},
	{Name: "leads_page_size", Default: 100, Desc: "Rows per page on the lead screens (10, 30 or 100)"},
	{Name: "bulk_concurrency", Default: 8, Desc: "Parallel backend calls per bulk action"},
	{Name: "listview_idle_ttl", Default: "30m", Desc: "Idle list state is dropped after this"},

	{Name: "login_rate_limit", Default: 10, Desc: "Login attempts per minute per client IP"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	{Name: "session_inactive_after", Default: "30m", Desc: "Ledger sessions without a heartbeat are closed after this"},
	{Name: "import_job_ttl", Default: "15m", Desc: "Unconfirmed spreadsheet imports expire after this"},

	// Deadlines
	{Name: "timeout_call", Default: "10s", Desc: "Deadline for one backend request"},
	{Name: "timeout_bulk", Default: "60s", Desc: "Deadline for a whole bulk action"},
	{Name: "timeout_import", Default: "5m", Desc: "Deadline for a whole spreadsheet import"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, LEADHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "LEADHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		GraphQLEndpoint: appValues.String("graphql_endpoint"),

		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 24*time.Hour),

		AccountsPageSize: appValues.Int("accounts_page_size"),
		LeadsPageSize:    appValues.Int("leads_page_size"),
		BulkConcurrency:  appValues.Int("bulk_concurrency"),
		ListviewIdleTTL:  appValues.Duration("listview_idle_ttl", 30*time.Minute),

		LoginRateLimit: appValues.Int("login_rate_limit"),

		AuditLogAuth:  appValues.String("audit_log_auth"),
		AuditLogAdmin: appValues.String("audit_log_admin"),

		SessionInactiveAfter: appValues.Duration("session_inactive_after", 30*time.Minute),
		ImportJobTTL:         appValues.Duration("import_job_ttl", 15*time.Minute),

		TimeoutCall:   appValues.Duration("timeout_call", 10*time.Second),
		TimeoutBulk:   appValues.Duration("timeout_bulk", 60*time.Second),
		TimeoutImport: appValues.Duration("timeout_import", 5*time.Minute),
	}

	return coreCfg, appCfg, nil
}

// allowedPageSizes are the page sizes the list screens offer.
var allowedPageSizes = map[int]bool{10: true, 30: true, 100: true}

var auditModes = map[string]bool{"all": true, "db": true, "log": true, "off": true}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// Configuration errors are caught here, before any connection is made.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if err := validateEndpoint(appCfg.GraphQLEndpoint); err != nil {
		logger.Error("invalid GraphQL endpoint", zap.String("endpoint", appCfg.GraphQLEndpoint), zap.Error(err))
		return err
	}

	if !allowedPageSizes[appCfg.AccountsPageSize] {
		return fmt.Errorf("accounts_page_size must be 10, 30 or 100, got %d", appCfg.AccountsPageSize)
	}
	if !allowedPageSizes[appCfg.LeadsPageSize] {
		return fmt.Errorf("leads_page_size must be 10, 30 or 100, got %d", appCfg.LeadsPageSize)
	}
	if appCfg.BulkConcurrency < 1 {
		return fmt.Errorf("bulk_concurrency must be at least 1, got %d", appCfg.BulkConcurrency)
	}
	if appCfg.LoginRateLimit < 1 {
		return fmt.Errorf("login_rate_limit must be at least 1, got %d", appCfg.LoginRateLimit)
	}
	if !auditModes[appCfg.AuditLogAuth] || !auditModes[appCfg.AuditLogAdmin] {
		return fmt.Errorf("audit_log_auth and audit_log_admin must be one of all, db, log, off")
	}
	if appCfg.SessionName == "" {
		return fmt.Errorf("session_name must not be empty")
	}

	return nil
}

func validateEndpoint(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("graphql_endpoint: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("graphql_endpoint must be an absolute http(s) URL, got %q", raw)
	}
	return nil
}
