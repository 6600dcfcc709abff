// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"

	"github.com/dalemusser/applyhub/internal/app/system/timeouts"
)

// appConfigKeys defines the configuration keys for ApplyHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: APPLYHUB_MONGO_URI, APPLYHUB_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "applyhub", Desc: "MongoDB database name"},

	{Name: "session_key", Default: "", Desc: "Session signing key (must be strong in production; blank generates an ephemeral key)"},
	{Name: "session_name", Default: "applyhub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "24h", Desc: "Session lifetime (e.g., 24h, 30m)"},

	{Name: "admin_user", Default: "BHSS_COUNCIL", Desc: "Admin username for the review console"},
	{Name: "admin_pass", Default: "temporary1234", Desc: "Admin password (change this in production)"},

	// Email/SMTP configuration
	{Name: "mail_smtp_host", Default: "", Desc: "SMTP server host (blank disables email sending)"},
	{Name: "mail_smtp_port", Default: 587, Desc: "SMTP server port"},
	{Name: "mail_smtp_user", Default: "", Desc: "SMTP username"},
	{Name: "mail_smtp_pass", Default: "", Desc: "SMTP password"},
	{Name: "mail_from", Default: "noreply@localhost", Desc: "From email address"},
	{Name: "mail_from_name", Default: "BHSS Admin", Desc: "From display name"},

	{Name: "org_name", Default: "BHSS", Desc: "Organization name used in emails"},

	// Base URL for email links (login page, etc.)
	{Name: "base_url", Default: "http://localhost:3000", Desc: "Base URL for email links"},
	{Name: "login_url", Default: "", Desc: "Login page URL (defaults to base_url + /login)"},

	// Public intake rate limiting
	{Name: "submit_limit", Default: 3, Desc: "Max submissions per IP per window"},
	{Name: "submit_window", Default: "24h", Desc: "Submission rate limit window"},

	// Login rate limiting
	{Name: "login_ip_limit", Default: 10, Desc: "Max login attempts per IP per window"},
	{Name: "login_ip_window", Default: "15m", Desc: "Login rate limit window per IP"},
	{Name: "login_user_limit", Default: 5, Desc: "Max login attempts per identity per window"},
	{Name: "login_user_window", Default: "15m", Desc: "Login rate limit window per identity"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_review", Default: "all", Desc: "Intake/review event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Notification dispatcher
	{Name: "notify_queue_size", Default: 64, Desc: "Capacity of the outbound email queue"},
	{Name: "notify_send_timeout", Default: "30s", Desc: "Per-email send timeout"},

	// Database operation timeouts
	{Name: "db_timeout_ping", Default: "2s", Desc: "Timeout for health-check pings"},
	{Name: "db_timeout_short", Default: "5s", Desc: "Timeout for single-document operations"},
	{Name: "db_timeout_medium", Default: "10s", Desc: "Timeout for list queries"},
	{Name: "db_timeout_batch", Default: "60s", Desc: "Timeout for bulk updates and deletes"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "APPLYHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:      appValues.String("mongo_uri"),
		MongoDatabase: appValues.String("mongo_database"),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 24*time.Hour),

		AdminUser: appValues.String("admin_user"),
		AdminPass: appValues.String("admin_pass"),

		MailSMTPHost: appValues.String("mail_smtp_host"),
		MailSMTPPort: appValues.Int("mail_smtp_port"),
		MailSMTPUser: appValues.String("mail_smtp_user"),
		MailSMTPPass: appValues.String("mail_smtp_pass"),
		MailFrom:     appValues.String("mail_from"),
		MailFromName: appValues.String("mail_from_name"),

		OrgName: appValues.String("org_name"),

		BaseURL:  appValues.String("base_url"),
		LoginURL: appValues.String("login_url"),

		SubmitLimit:  appValues.Int("submit_limit"),
		SubmitWindow: appValues.Duration("submit_window", 24*time.Hour),

		LoginIPLimit:    appValues.Int("login_ip_limit"),
		LoginIPWindow:   appValues.Duration("login_ip_window", 15*time.Minute),
		LoginUserLimit:  appValues.Int("login_user_limit"),
		LoginUserWindow: appValues.Duration("login_user_window", 15*time.Minute),

		AuditLogAuth:   appValues.String("audit_log_auth"),
		AuditLogReview: appValues.String("audit_log_review"),

		NotifyQueueSize:   appValues.Int("notify_queue_size"),
		NotifySendTimeout: appValues.Duration("notify_send_timeout", 30*time.Second),

		DBTimeoutPing:   appValues.Duration("db_timeout_ping", timeouts.DefaultPing),
		DBTimeoutShort:  appValues.Duration("db_timeout_short", timeouts.DefaultShort),
		DBTimeoutMedium: appValues.Duration("db_timeout_medium", timeouts.DefaultMedium),
		DBTimeoutBatch:  appValues.Duration("db_timeout_batch", timeouts.DefaultBatch),
	}

	if appCfg.LoginURL == "" {
		appCfg.LoginURL = strings.TrimRight(appCfg.BaseURL, "/") + "/login"
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// ApplyHub validates the MongoDB URI format to catch configuration
// errors early, before attempting to connect.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.AdminUser == "" {
		return fmt.Errorf("admin_user must not be empty")
	}
	if appCfg.SubmitLimit < 1 {
		return fmt.Errorf("submit_limit must be at least 1 (got %d)", appCfg.SubmitLimit)
	}

	// Config is accepted; apply the DB timeout tuning before any backend
	// connects.
	timeouts.Configure(timeouts.Config{
		Ping:   appCfg.DBTimeoutPing,
		Short:  appCfg.DBTimeoutShort,
		Medium: appCfg.DBTimeoutMedium,
		Batch:  appCfg.DBTimeoutBatch,
	})
	return nil
}
