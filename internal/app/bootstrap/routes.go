// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"errors"
	"net/http"

	accountsfeature "github.com/dalemusser/leadhub/internal/app/features/accounts"
	auditlogfeature "github.com/dalemusser/leadhub/internal/app/features/auditlog"
	dashboardfeature "github.com/dalemusser/leadhub/internal/app/features/dashboard"
	errorsfeature "github.com/dalemusser/leadhub/internal/app/features/errors"
	healthfeature "github.com/dalemusser/leadhub/internal/app/features/health"
	heartbeatfeature "github.com/dalemusser/leadhub/internal/app/features/heartbeat"
	homefeature "github.com/dalemusser/leadhub/internal/app/features/home"
	leadsfeature "github.com/dalemusser/leadhub/internal/app/features/leads"
	loginfeature "github.com/dalemusser/leadhub/internal/app/features/login"
	logoutfeature "github.com/dalemusser/leadhub/internal/app/features/logout"
	leadstore "github.com/dalemusser/leadhub/internal/app/store/leads"
	"github.com/dalemusser/leadhub/internal/app/system/auth"
	"github.com/dalemusser/leadhub/internal/app/system/limits"
	"github.com/dalemusser/leadhub/internal/app/system/navigation"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"github.com/gorilla/securecookie"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. LeadHub boots the template engine,
// applies CSRF and session middleware, and mounts the login flow, the
// dashboard, the account screen and the lead screens.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	if svc == nil {
		return nil, errors.New("bootstrap: Startup must run before BuildHandler")
	}

	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Cookie sessions written before the level was known resolve it on
	// their next request.
	accounts := svc.accounts
	sessionMgr.SetLevelResolver(func(ctx context.Context, s *auth.Session) (int, error) {
		return s.ResolveLevel(ctx, accounts.For(s).UserLevel)
	})

	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	errLog := errorsfeature.NewErrorLogger(logger)
	logoutHandler := logoutfeature.NewHandler(sessionMgr, svc.audit, svc.sessions, svc.lists, logger)
	errLog.OnSessionExpired(logoutHandler.Expire)

	r := chi.NewRouter()

	r.Use(limits.FormBody)
	r.Use(csrfMiddleware(appCfg.SessionKey, secure, logger)...)

	// Loads SessionUser into context when signed in; auth.CurrentUser(r)
	// reads it.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, deps.Backend, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	r.Handle("/metrics", promhttp.Handler())

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	homeHandler := homefeature.NewHandler(logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	// Authentication
	loginHandler := loginfeature.NewHandler(svc.accounts, sessionMgr, errLog, svc.audit, svc.sessions, svc.limiter, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))
	r.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

	heartbeatHandler := heartbeatfeature.NewHandler(svc.sessions, logger)
	r.Mount("/heartbeat", heartbeatfeature.Routes(heartbeatHandler, sessionMgr))

	// Error pages
	errorsHandler := errorsfeature.NewHandler()
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)

	dashboardHandler := dashboardfeature.NewHandler(svc.sessions, svc.audits, logger)
	r.Mount(navigation.PathDashboard, dashboardfeature.Routes(dashboardHandler, sessionMgr))

	accountsHandler := accountsfeature.NewHandler(svc.accounts, svc.lists, svc.audit, errLog, logger)
	accountsHandler.PageSize = appCfg.AccountsPageSize
	accountsHandler.BulkLimit = appCfg.BulkConcurrency
	r.Mount(navigation.PathAccounts, accountsfeature.Routes(accountsHandler, sessionMgr))

	leadsHandler := leadsfeature.NewHandler(svc.leads, svc.lists, svc.jobs, svc.audit, errLog, logger)
	leadsHandler.PageSize = appCfg.LeadsPageSize
	leadsHandler.BulkLimit = appCfg.BulkConcurrency
	r.Mount(navigation.PathCompany, leadsfeature.Routes(leadsHandler, sessionMgr, leadstore.Company, 2))
	r.Mount(navigation.PathUnallocated, leadsfeature.Routes(leadsHandler, sessionMgr, leadstore.Unallocated, 3))
	r.Mount(navigation.PathAllocated, leadsfeature.Routes(leadsHandler, sessionMgr, leadstore.Allocated, 3))
	r.Mount(navigation.TypePath("{type}"), leadsfeature.TypeRoutes(leadsHandler, sessionMgr))

	auditHandler := auditlogfeature.NewHandler(svc.audits, errLog, logger)
	r.Mount(navigation.PathAudit, auditlogfeature.Routes(auditHandler, sessionMgr))

	return r, nil
}

// csrfMiddleware protects every unsafe method. The key is the first 32
// bytes of the session key; a shorter key gets a random one, which
// invalidates open forms on restart.
func csrfMiddleware(sessionKey string, secure bool, logger *zap.Logger) []func(http.Handler) http.Handler {
	key := []byte(sessionKey)
	if len(key) >= 32 {
		key = key[:32]
	} else {
		logger.Warn("session_key shorter than 32 bytes; using a random CSRF key")
		key = securecookie.GenerateRandomKey(32)
	}

	protect := csrf.Protect(key,
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
	)
	if secure {
		return []func(http.Handler) http.Handler{protect}
	}

	// Without TLS the origin check must be told the request is plain HTTP.
	plaintext := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.TLS == nil {
				r = csrf.PlaintextHTTPRequest(r)
			}
			next.ServeHTTP(w, r)
		})
	}
	return []func(http.Handler) http.Handler{plaintext, protect}
}
