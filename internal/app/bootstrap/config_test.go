package bootstrap

import (
	"testing"
	"time"

	"github.com/dalemusser/leadhub/internal/app/system/gateway"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func validConfig() AppConfig {
	return AppConfig{
		GraphQLEndpoint:      "http://localhost:4000/graphql",
		MongoURI:             "mongodb://localhost:27017",
		MongoDatabase:        "leadhub",
		SessionKey:           "dev-only-change-me-please-0123456789ABCDEF",
		SessionName:          "leadhub-session",
		SessionMaxAge:        24 * time.Hour,
		AccountsPageSize:     10,
		LeadsPageSize:        100,
		BulkConcurrency:      8,
		ListviewIdleTTL:      30 * time.Minute,
		LoginRateLimit:       10,
		AuditLogAuth:         "all",
		AuditLogAdmin:        "all",
		SessionInactiveAfter: 30 * time.Minute,
		ImportJobTTL:         15 * time.Minute,
	}
}

func TestValidateConfig_Defaults(t *testing.T) {
	if err := ValidateConfig(&config.CoreConfig{}, validConfig(), testLogger()); err != nil {
		t.Fatalf("default config rejected: %v", err)
	}
}

func TestValidateConfig_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppConfig)
	}{
		{"mongo uri", func(c *AppConfig) { c.MongoURI = "not-a-uri" }},
		{"relative endpoint", func(c *AppConfig) { c.GraphQLEndpoint = "/graphql" }},
		{"non-http endpoint", func(c *AppConfig) { c.GraphQLEndpoint = "ftp://backend/graphql" }},
		{"accounts page size", func(c *AppConfig) { c.AccountsPageSize = 25 }},
		{"leads page size", func(c *AppConfig) { c.LeadsPageSize = 0 }},
		{"bulk concurrency", func(c *AppConfig) { c.BulkConcurrency = 0 }},
		{"login rate limit", func(c *AppConfig) { c.LoginRateLimit = 0 }},
		{"audit mode", func(c *AppConfig) { c.AuditLogAdmin = "verbose" }},
		{"session name", func(c *AppConfig) { c.SessionName = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			if err := ValidateConfig(&config.CoreConfig{}, cfg, testLogger()); err == nil {
				t.Errorf("expected %s to be rejected", tt.name)
			}
		})
	}
}

func TestValidateConfig_AcceptsEveryPageSize(t *testing.T) {
	for _, n := range []int{10, 30, 100} {
		cfg := validConfig()
		cfg.AccountsPageSize = n
		cfg.LeadsPageSize = n
		if err := ValidateConfig(&config.CoreConfig{}, cfg, testLogger()); err != nil {
			t.Errorf("page size %d rejected: %v", n, err)
		}
	}
}

func TestNewServices_WithoutMongo(t *testing.T) {
	deps := DBDeps{Backend: gateway.New("http://localhost:4000/graphql", nil, testLogger())}

	s := newServices(validConfig(), deps, testLogger())

	if s.sessions != nil || s.audits != nil {
		t.Error("ledger and audit stores need a database")
	}
	if s.accounts == nil || s.leads == nil || s.lists == nil || s.jobs == nil || s.limiter == nil {
		t.Error("expected backend stores and in-memory state to be built")
	}
	if s.audit == nil {
		t.Error("audit logger should still log to zap")
	}
}

func TestBuildHandler_RequiresStartup(t *testing.T) {
	svc = nil
	if _, err := BuildHandler(&config.CoreConfig{}, validConfig(), DBDeps{}, testLogger()); err == nil {
		t.Error("expected an error before Startup")
	}
}
