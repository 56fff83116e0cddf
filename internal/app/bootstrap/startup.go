// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/leadhub/internal/app/resources"
	accountstore "github.com/dalemusser/leadhub/internal/app/store/accounts"
	"github.com/dalemusser/leadhub/internal/app/store/audit"
	leadstore "github.com/dalemusser/leadhub/internal/app/store/leads"
	"github.com/dalemusser/leadhub/internal/app/store/sessions"
	"github.com/dalemusser/leadhub/internal/app/system/auditlog"
	"github.com/dalemusser/leadhub/internal/app/system/leadimport"
	"github.com/dalemusser/leadhub/internal/app/system/listview"
	"github.com/dalemusser/leadhub/internal/app/system/ratelimit"
	"github.com/dalemusser/leadhub/internal/app/system/tasks"
	"github.com/dalemusser/leadhub/internal/app/system/timeouts"
	"github.com/dalemusser/leadhub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// services are the process-wide objects shared by the handlers. Startup
// builds them; BuildHandler and Shutdown use them.
type services struct {
	accounts *accountstore.Store
	leads    *leadstore.Store
	lists    *listview.Registry
	jobs     *leadimport.Jobs
	sessions *sessions.Store
	audits   *audit.Store
	audit    *auditlog.Logger
	limiter  *ratelimit.LoginLimiter
	sched    *tasks.Scheduler
}

var svc *services

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	resources.LoadSharedTemplates()

	timeouts.Configure(timeouts.Config{
		Call:   appCfg.TimeoutCall,
		Bulk:   appCfg.TimeoutBulk,
		Import: appCfg.TimeoutImport,
	})

	svc = newServices(appCfg, deps, logger)
	viewdata.SetLoadingSource(deps.Backend.Loading)

	svc.sched.Start()
	logger.Info("background jobs started")
	return nil
}

func newServices(appCfg AppConfig, deps DBDeps, logger *zap.Logger) *services {
	s := &services{
		accounts: accountstore.New(deps.Backend, logger),
		leads:    leadstore.New(deps.Backend, logger),
		lists:    listview.NewRegistry(appCfg.ListviewIdleTTL),
		jobs:     leadimport.NewJobs(appCfg.ImportJobTTL),
		limiter:  ratelimit.NewLoginLimiter(appCfg.LoginRateLimit),
		sched:    tasks.NewScheduler(logger),
	}
	if deps.MongoDatabase != nil {
		s.sessions = sessions.New(deps.MongoDatabase)
		s.audits = audit.New(deps.MongoDatabase)
	}
	s.audit = auditlog.New(s.audits, logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})

	if s.sessions != nil {
		s.sched.Add(tasks.InactiveSessionCleanupJob(s.sessions, logger, appCfg.SessionInactiveAfter))
	}
	s.sched.Add(tasks.TableStateSweepJob(s.lists, logger))
	s.sched.Add(tasks.ImportJobSweepJob(s.jobs, logger))
	s.sched.Add(tasks.LoginLimiterSweepJob(s.limiter, logger))
	return s
}
