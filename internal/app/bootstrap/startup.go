// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"

	accountstore "github.com/dalemusser/applyhub/internal/app/store/accounts"
)

// defaultAdminPass is the out-of-the-box admin password. Running with it
// in production is loudly warned about at startup.
const defaultAdminPass = "temporary1234"

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if appCfg.AdminPass == defaultAdminPass {
		logger.Warn("admin password is the built-in default; set APPLYHUB_ADMIN_PASS before going to production")
	}
	if appCfg.MailSMTPHost == "" {
		logger.Warn("SMTP host not configured; credential emails will be dropped")
	}

	if n, err := accountstore.New(deps.ApplyHubMongoDatabase).Count(ctx); err == nil {
		logger.Info("member accounts", zap.Int64("count", n))
	} else {
		logger.Warn("counting member accounts failed", zap.Error(err))
	}

	deps.Notify.Start()
	return nil
}
