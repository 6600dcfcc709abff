// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	adminauthfeature "github.com/dalemusser/applyhub/internal/app/features/adminauth"
	healthfeature "github.com/dalemusser/applyhub/internal/app/features/health"
	intakefeature "github.com/dalemusser/applyhub/internal/app/features/intake"
	submissionsfeature "github.com/dalemusser/applyhub/internal/app/features/submissions"
	userauthfeature "github.com/dalemusser/applyhub/internal/app/features/userauth"
	accountstore "github.com/dalemusser/applyhub/internal/app/store/accounts"
	auditstore "github.com/dalemusser/applyhub/internal/app/store/audit"
	submissionstore "github.com/dalemusser/applyhub/internal/app/store/submissions"
	"github.com/dalemusser/applyhub/internal/app/system/auditlog"
	"github.com/dalemusser/applyhub/internal/app/system/auth"
	"github.com/dalemusser/applyhub/internal/app/system/credentials"
	"github.com/dalemusser/applyhub/internal/app/system/provision"
	"github.com/dalemusser/applyhub/internal/app/system/ratelimit"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. ApplyHub wires up the session manager,
// rate limiters, and audit logging, then mounts the feature routers: public
// intake, admin and member auth, and the admin review surface. Outbound
// email rides the dispatcher carried in deps.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.ApplyHubMongoDatabase

	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(
		appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain,
		appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	adminHash, err := bcrypt.GenerateFromPassword([]byte(appCfg.AdminPass), credentials.BcryptCost)
	if err != nil {
		logger.Error("admin password hash failed", zap.Error(err))
		return nil, err
	}

	eventStore := auditstore.New(db)
	auditLogger := auditlog.New(eventStore, logger, auditlog.Config{
		Auth:   appCfg.AuditLogAuth,
		Review: appCfg.AuditLogReview,
	})

	subStore := submissionstore.New(db)
	acctStore := accountstore.New(db)

	provisioner := provision.New(acctStore, deps.Notify, auditLogger, logger, provision.Config{
		OrgName:  appCfg.OrgName,
		LoginURL: appCfg.LoginURL,
	})

	submitLimiter := ratelimit.New(appCfg.SubmitLimit, appCfg.SubmitWindow)
	loginLimiter := ratelimit.NewLoginLimiterWithConfig(
		appCfg.LoginIPLimit, appCfg.LoginIPWindow,
		appCfg.LoginUserLimit, appCfg.LoginUserWindow)

	r := chi.NewRouter()

	// Global auth middleware: loads the session identity into context so
	// handlers can call auth.IsAdmin / auth.CurrentUser.
	r.Use(sessionMgr.LoadSession)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.ApplyHubMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Public intake, rate limited per IP. Authenticated admins bypass the
	// limiter so the council can test the form. Rejections land in the
	// audit trail.
	intakeHandler := intakefeature.NewHandler(subStore, auditLogger, logger)
	submitLimit := ratelimit.Middleware(submitLimiter, logger, ratelimit.SubmitLimitMessage,
		func(req *http.Request) bool {
			_, ok := auth.IsAdmin(req)
			return ok
		},
		func(req *http.Request) {
			auditLogger.SubmissionRateLimited(req.Context(), req)
		})
	r.Mount("/api/submit", intakefeature.Routes(intakeHandler, submitLimit))

	// Admin console auth and audit trail
	adminHandler := adminauthfeature.NewHandler(sessionMgr, loginLimiter,
		adminauthfeature.Credentials{Username: appCfg.AdminUser, PasswordHash: string(adminHash)},
		auditLogger, eventStore, logger)
	r.Mount("/api/admin", adminauthfeature.Routes(adminHandler, sessionMgr))

	// Member auth and self-service
	userHandler := userauthfeature.NewHandler(acctStore, sessionMgr, loginLimiter, auditLogger, logger)
	r.Mount("/api/user", userauthfeature.Routes(userHandler, sessionMgr))

	// Admin review surface (list, decide, delete, export)
	reviewHandler := submissionsfeature.NewHandler(subStore, provisioner, auditLogger, logger)
	r.Mount("/api/submissions", submissionsfeature.Routes(reviewHandler, sessionMgr))

	return r, nil
}
